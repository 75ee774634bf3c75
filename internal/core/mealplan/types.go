package mealplan

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"planeats/internal/core/grocery"
	"planeats/internal/core/recipe"
	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 餐計畫狀態
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusPaused    = "paused"
	StatusArchived  = "archived"
)

// Statuses 允許的狀態
var Statuses = []string{StatusDraft, StatusActive, StatusCompleted, StatusPaused, StatusArchived}

// 餐別
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

const defaultMealsPerDay = 3

// ErrRevisionConflict 寫入時 revision 不符
var ErrRevisionConflict = common.NewError("REVISION_CONFLICT",
	"Meal plan was modified by another request, reload and retry", http.StatusConflict, nil)

// ErrMealPlanNotFound 找不到餐計畫
var ErrMealPlanNotFound = common.ErrNotFound.WithMessage("Meal plan not found")

// Nutrition 營養總和
type Nutrition struct {
	Calories float64 `bson:"calories" json:"calories"`
	Protein  float64 `bson:"protein" json:"protein"`
	Carbs    float64 `bson:"carbs" json:"carbs"`
	Fat      float64 `bson:"fat" json:"fat"`
	Fiber    float64 `bson:"fiber" json:"fiber"`
	Sodium   float64 `bson:"sodium" json:"sodium"`
}

// CustomMeal 不對應食譜的自訂餐點
type CustomMeal struct {
	Name         string    `bson:"name" json:"name"`
	Ingredients  []string  `bson:"ingredients" json:"ingredients"`
	Instructions string    `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Nutrition    Nutrition `bson:"nutrition" json:"nutrition"`
}

// MealEntry 一個餐點欄位，可指向食譜或內嵌自訂餐點
type MealEntry struct {
	Recipe     *primitive.ObjectID `bson:"recipe,omitempty" json:"recipe,omitempty"`
	CustomMeal *CustomMeal         `bson:"customMeal,omitempty" json:"customMeal,omitempty"`
	Servings   float64             `bson:"servings" json:"servings"`
	Notes      string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Completed  bool                `bson:"completed" json:"completed"`
	Rating     int                 `bson:"rating,omitempty" json:"rating,omitempty"`
	Time       string              `bson:"time,omitempty" json:"time,omitempty"`

	// 已載入的食譜，不寫入資料庫
	RecipeDetails *recipe.Recipe `bson:"-" json:"recipeDetails,omitempty"`
}

// EffectiveServings 未設定份數時視為 1
func (m *MealEntry) EffectiveServings() float64 {
	if m == nil || m.Servings <= 0 {
		return 1
	}
	return m.Servings
}

// Day 一天的餐點安排
type Day struct {
	Day            int         `bson:"day" json:"day"`
	Date           time.Time   `bson:"date" json:"date"`
	DayName        string      `bson:"dayName" json:"dayName"`
	Breakfast      *MealEntry  `bson:"breakfast,omitempty" json:"breakfast,omitempty"`
	Lunch          *MealEntry  `bson:"lunch,omitempty" json:"lunch,omitempty"`
	Dinner         *MealEntry  `bson:"dinner,omitempty" json:"dinner,omitempty"`
	Snacks         []MealEntry `bson:"snacks" json:"snacks"`
	TotalNutrition Nutrition   `bson:"totalNutrition" json:"totalNutrition"`
	WaterIntake    float64     `bson:"waterIntake" json:"waterIntake"`
	Notes          string      `bson:"notes,omitempty" json:"notes,omitempty"`
	Mood           string      `bson:"mood,omitempty" json:"mood,omitempty"`
	EnergyLevel    string      `bson:"energyLevel,omitempty" json:"energyLevel,omitempty"`
}

// MainMeals 依序回傳早午晚餐欄位（可能為 nil）
func (d *Day) MainMeals() []*MealEntry {
	return []*MealEntry{d.Breakfast, d.Lunch, d.Dinner}
}

// Slots 回傳所有存在的餐點欄位，包含點心
func (d *Day) Slots() []*MealEntry {
	slots := make([]*MealEntry, 0, 3+len(d.Snacks))
	for _, m := range d.MainMeals() {
		if m != nil {
			slots = append(slots, m)
		}
	}
	for i := range d.Snacks {
		slots = append(slots, &d.Snacks[i])
	}
	return slots
}

// ShoppingListItem 採買項目
type ShoppingListItem struct {
	Ingredient    string           `bson:"ingredient" json:"ingredient"`
	Amount        float64          `bson:"amount" json:"amount"`
	Unit          string           `bson:"unit" json:"unit"`
	Category      grocery.Category `bson:"category" json:"category"`
	Purchased     bool             `bson:"purchased" json:"purchased"`
	EstimatedCost *float64         `bson:"estimatedCost,omitempty" json:"estimatedCost,omitempty"`
	Notes         string           `bson:"notes,omitempty" json:"notes,omitempty"`
}

// TargetNutrition 每日營養目標
type TargetNutrition struct {
	DailyCalories float64 `bson:"dailyCalories,omitempty" json:"dailyCalories,omitempty"`
	ProteinGrams  float64 `bson:"proteinGrams,omitempty" json:"proteinGrams,omitempty"`
	CarbGrams     float64 `bson:"carbGrams,omitempty" json:"carbGrams,omitempty"`
	FatGrams      float64 `bson:"fatGrams,omitempty" json:"fatGrams,omitempty"`
	FiberGrams    float64 `bson:"fiberGrams,omitempty" json:"fiberGrams,omitempty"`
	SodiumMg      float64 `bson:"sodiumMg,omitempty" json:"sodiumMg,omitempty"`
}

// Budget 預算
type Budget struct {
	Total    float64 `bson:"total" json:"total"`
	Spent    float64 `bson:"spent" json:"spent"`
	Currency string  `bson:"currency" json:"currency"`
}

// Settings 餐計畫設定
type Settings struct {
	MealsPerDay              int    `bson:"mealsPerDay" json:"mealsPerDay"`
	SnacksPerDay             int    `bson:"snacksPerDay" json:"snacksPerDay"`
	CookingTime              string `bson:"cookingTime" json:"cookingTime"`
	Difficulty               string `bson:"difficulty" json:"difficulty"`
	VarietyLevel             string `bson:"varietyLevel" json:"varietyLevel"`
	MealPrepFriendly         bool   `bson:"mealPrepFriendly" json:"mealPrepFriendly"`
	AutoGenerateShoppingList bool   `bson:"autoGenerateShoppingList" json:"autoGenerateShoppingList"`
}

// DefaultSettings 新餐計畫的預設設定
func DefaultSettings() Settings {
	return Settings{
		MealsPerDay:              defaultMealsPerDay,
		SnacksPerDay:             2,
		CookingTime:              "moderate",
		Difficulty:               "mixed",
		VarietyLevel:             "medium",
		AutoGenerateShoppingList: true,
	}
}

// GenerationMetadata AI 生成資訊
type GenerationMetadata struct {
	IngredientsUsed     []string  `bson:"ingredientsUsed" json:"ingredientsUsed"`
	CuisinePreferences  []string  `bson:"cuisinePreferences" json:"cuisinePreferences"`
	ExcludedIngredients []string  `bson:"excludedIngredients" json:"excludedIngredients"`
	NutritionalFocus    string    `bson:"nutritionalFocus" json:"nutritionalFocus"`
	Timestamp           time.Time `bson:"timestamp" json:"timestamp"`
}

// Progress 由排程推導的進度，每次寫入前重算
type Progress struct {
	CompletedDays       int `bson:"completedDays" json:"completedDays"`
	CompletedMeals      int `bson:"completedMeals" json:"completedMeals"`
	TotalMeals          int `bson:"totalMeals" json:"totalMeals"`
	AdherencePercentage int `bson:"adherencePercentage" json:"adherencePercentage"`
}

// MealPlan 餐計畫
type MealPlan struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	User                 primitive.ObjectID  `bson:"user" json:"user"`
	Title                string              `bson:"title" json:"title"`
	Description          string              `bson:"description,omitempty" json:"description,omitempty"`
	StartDate            time.Time           `bson:"startDate" json:"startDate"`
	EndDate              time.Time           `bson:"endDate" json:"endDate"`
	Duration             int                 `bson:"duration" json:"duration"`
	Type                 string              `bson:"type" json:"type"`
	Goals                []string            `bson:"goals" json:"goals"`
	TargetNutrition      *TargetNutrition    `bson:"targetNutrition,omitempty" json:"targetNutrition,omitempty"`
	DietaryRestrictions  []string            `bson:"dietaryRestrictions" json:"dietaryRestrictions"`
	Allergies            []string            `bson:"allergies" json:"allergies"`
	PreferredIngredients []string            `bson:"preferredIngredients" json:"preferredIngredients"`
	AvoidedIngredients   []string            `bson:"avoidedIngredients" json:"avoidedIngredients"`
	Meals                []Day               `bson:"meals" json:"meals"`
	ShoppingList         []ShoppingListItem  `bson:"shoppingList" json:"shoppingList"`
	Budget               *Budget             `bson:"budget,omitempty" json:"budget,omitempty"`
	Settings             Settings            `bson:"settings" json:"settings"`
	AIGenerated          bool                `bson:"aiGenerated" json:"aiGenerated"`
	AIPrompt             string              `bson:"aiPrompt,omitempty" json:"aiPrompt,omitempty"`
	AIModel              string              `bson:"aiModel,omitempty" json:"aiModel,omitempty"`
	GenerationMetadata   *GenerationMetadata `bson:"generationMetadata,omitempty" json:"generationMetadata,omitempty"`
	Status               string              `bson:"status" json:"status"`
	Progress             Progress            `bson:"progress" json:"progress"`
	Tags                 []string            `bson:"tags" json:"tags"`
	IsPublic             bool                `bson:"isPublic" json:"isPublic"`
	Revision             int64               `bson:"revision" json:"revision"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CompletionPercentage 完成百分比
func (p *MealPlan) CompletionPercentage() int {
	return AdherencePercentage(p.Progress.CompletedMeals, p.Progress.TotalMeals)
}

// TotalEstimatedCost 採買清單預估總花費
func (p *MealPlan) TotalEstimatedCost() float64 {
	total := 0.0
	for _, item := range p.ShoppingList {
		if item.EstimatedCost != nil {
			total += *item.EstimatedCost
		}
	}
	return total
}

// RemainingDays 距 endDate 尚餘天數（無條件進位），已結束時為 0
func (p *MealPlan) RemainingDays(now time.Time) int {
	days := int(math.Ceil(float64(p.EndDate.Sub(now)) / float64(oneDay)))
	return max(days, 0)
}

// MarshalJSON 附加推導欄位
func (p MealPlan) MarshalJSON() ([]byte, error) {
	type plain MealPlan
	return json.Marshal(struct {
		plain
		CompletionPercentage int     `json:"completionPercentage"`
		RemainingDays        int     `json:"remainingDays"`
		TotalEstimatedCost   float64 `json:"totalEstimatedCost"`
	}{
		plain:                plain(p),
		CompletionPercentage: p.CompletionPercentage(),
		RemainingDays:        p.RemainingDays(time.Now()),
		TotalEstimatedCost:   p.TotalEstimatedCost(),
	})
}

// ListOptions 列表查詢條件
type ListOptions struct {
	Status string
	Skip   int
	Limit  int
}

// Repository 餐計畫儲存介面。
// Update 以 plan.Revision 比對既有文件，成功後 revision 加一；不符時回傳 ErrRevisionConflict。
type Repository interface {
	Create(ctx context.Context, plan *MealPlan) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*MealPlan, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, opts ListOptions) ([]*MealPlan, int64, error)
	Update(ctx context.Context, plan *MealPlan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}
