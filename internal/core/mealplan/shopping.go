package mealplan

import (
	"sort"
	"strings"

	"planeats/internal/core/grocery"
	"planeats/internal/core/recipe"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildShoppingList 將所有餐點欄位的食譜食材合併成採買清單。
// 名稱轉小寫並去除前後空白後作為合併鍵，數量乘上份數後直接相加，不做單位換算；
// 第一次出現的名稱與單位為顯示值。未載入食譜的欄位不貢獻任何項目。
// 回傳結果依合併鍵排序。
func BuildShoppingList(days []Day) []ShoppingListItem {
	merged := make(map[string]*ShoppingListItem)

	for i := range days {
		for _, slot := range days[i].Slots() {
			if slot.RecipeDetails == nil || len(slot.RecipeDetails.Ingredients) == 0 {
				continue
			}
			servings := slot.EffectiveServings()
			for _, ing := range slot.RecipeDetails.Ingredients {
				key := strings.ToLower(strings.TrimSpace(ing.Name))
				if key == "" {
					continue
				}
				amount := ing.Amount * servings
				if item, ok := merged[key]; ok {
					item.Amount += amount
					continue
				}
				merged[key] = &ShoppingListItem{
					Ingredient: strings.TrimSpace(ing.Name),
					Amount:     amount,
					Unit:       ing.Unit,
					Category:   grocery.CategorizeForMealPlan(ing.Name),
				}
			}
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]ShoppingListItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, *merged[k])
	}
	return items
}

// GenerateShoppingList 以目前排程整份取代採買清單
func (p *MealPlan) GenerateShoppingList() {
	p.ShoppingList = BuildShoppingList(p.Meals)
}

// RecipeIDs 排程中引用的所有食譜 ID（去重）
func (p *MealPlan) RecipeIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for i := range p.Meals {
		for _, slot := range p.Meals[i].Slots() {
			if slot.Recipe == nil || seen[*slot.Recipe] {
				continue
			}
			seen[*slot.Recipe] = true
			ids = append(ids, *slot.Recipe)
		}
	}
	return ids
}

// AttachRecipes 將已載入的食譜掛到對應欄位，找不到的引用維持未載入
func (p *MealPlan) AttachRecipes(recipes []*recipe.Recipe) {
	byID := make(map[primitive.ObjectID]*recipe.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	for i := range p.Meals {
		for _, slot := range p.Meals[i].Slots() {
			if slot.Recipe == nil {
				continue
			}
			slot.RecipeDetails = byID[*slot.Recipe]
		}
	}
}
