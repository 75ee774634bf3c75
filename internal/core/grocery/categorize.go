// Package grocery 將食材名稱對應到採買分類。
package grocery

import "strings"

// Category 採買清單分類
type Category string

const (
	Produce   Category = "produce"
	Meat      Category = "meat"
	Dairy     Category = "dairy"
	Pantry    Category = "pantry"
	Frozen    Category = "frozen"
	Bakery    Category = "bakery"
	Beverages Category = "beverages"
	Other     Category = "other"
)

// MealPlanCategories 餐計畫採買清單允許的分類
var MealPlanCategories = []Category{Produce, Meat, Dairy, Pantry, Frozen, Bakery, Other}

// StandaloneCategories 獨立採買清單允許的分類（多了 beverages）
var StandaloneCategories = []Category{Produce, Meat, Dairy, Pantry, Frozen, Bakery, Beverages, Other}

type keywordGroup struct {
	category Category
	keywords []string
}

// 依序比對，先符合者勝出
var mealPlanGroups = []keywordGroup{
	{Meat, []string{"chicken", "beef", "pork", "fish", "turkey", "lamb", "salmon", "tuna"}},
	{Dairy, []string{"milk", "cheese", "yogurt", "butter", "cream", "eggs"}},
	{Produce, []string{"apple", "banana", "orange", "tomato", "onion", "carrot", "lettuce", "spinach"}},
	{Bakery, []string{"bread", "bagel", "muffin", "cake", "cookies"}},
	{Frozen, []string{"frozen", "ice cream", "frozen vegetables"}},
}

var beverageGroup = keywordGroup{
	Beverages, []string{"juice", "coffee", "soda", "wine", "beer", "kombucha", "sparkling water"},
}

func match(name string, groups []keywordGroup) (Category, bool) {
	lower := strings.ToLower(name)
	for _, group := range groups {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				return group.category, true
			}
		}
	}
	return "", false
}

// CategorizeForMealPlan 餐計畫採買清單用的分類；名稱只轉小寫不修剪空白，無符合時歸為 pantry
func CategorizeForMealPlan(name string) Category {
	if c, ok := match(name, mealPlanGroups); ok {
		return c
	}
	return Pantry
}

// CategorizeForStandaloneList 獨立採買清單用的分類，多比對飲料關鍵字，無符合時歸為 other
func CategorizeForStandaloneList(name string) Category {
	if c, ok := match(name, mealPlanGroups); ok {
		return c
	}
	if c, ok := match(name, []keywordGroup{beverageGroup}); ok {
		return c
	}
	return Other
}

// Valid 檢查分類是否在允許清單中
func Valid(c Category, allowed []Category) bool {
	for _, a := range allowed {
		if a == c {
			return true
		}
	}
	return false
}
