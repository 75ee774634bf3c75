package recipe

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Units 食材允許的單位
var Units = []string{"cup", "tbsp", "tsp", "oz", "lb", "g", "kg", "ml", "l", "piece", "slice", "clove", "pinch", "dash"}

// Cuisines 料理類型
var Cuisines = []string{"american", "italian", "mexican", "chinese", "indian", "mediterranean", "french", "japanese", "thai", "greek", "korean", "middle-eastern", "spanish", "british", "german", "other"}

// MealTypes 餐別
var MealTypes = []string{"breakfast", "lunch", "dinner", "snack", "dessert", "appetizer", "side-dish"}

// DietaryTags 飲食標籤
var DietaryTags = []string{"vegan", "vegetarian", "keto", "paleo", "gluten-free", "dairy-free", "nut-free", "low-carb", "low-fat", "high-protein", "low-sodium"}

// Difficulties 難度
var Difficulties = []string{"easy", "medium", "hard"}

// Ingredient 食譜食材
type Ingredient struct {
	Name   string  `bson:"name" json:"name" binding:"required,max=100"`
	Amount float64 `bson:"amount" json:"amount" binding:"gte=0"`
	Unit   string  `bson:"unit" json:"unit" binding:"required,oneof=cup tbsp tsp oz lb g kg ml l piece slice clove pinch dash"`
	Notes  string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Instruction 烹調步驟
type Instruction struct {
	Step        int    `bson:"step" json:"step" binding:"gte=1"`
	Description string `bson:"description" json:"description" binding:"required"`
	Duration    int    `bson:"duration,omitempty" json:"duration,omitempty"` // 分鐘
	Temperature int    `bson:"temperature,omitempty" json:"temperature,omitempty"`
}

// Nutrition 每份營養成分
type Nutrition struct {
	Calories      float64 `bson:"calories" json:"calories"`
	Protein       float64 `bson:"protein" json:"protein"`
	Carbohydrates float64 `bson:"carbohydrates" json:"carbohydrates"`
	Fat           float64 `bson:"fat" json:"fat"`
	Fiber         float64 `bson:"fiber" json:"fiber"`
	Sugar         float64 `bson:"sugar" json:"sugar"`
	Sodium        float64 `bson:"sodium" json:"sodium"`
}

// Image 食譜圖片
type Image struct {
	URL       string `bson:"url" json:"url"`
	Alt       string `bson:"alt,omitempty" json:"alt,omitempty"`
	IsPrimary bool   `bson:"isPrimary" json:"isPrimary"`
}

// Rating 評分統計
type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Review 使用者評論
type Review struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Recipe 食譜
type Recipe struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Ingredients  []Ingredient       `bson:"ingredients" json:"ingredients"`
	Instructions []Instruction      `bson:"instructions" json:"instructions"`
	Nutrition    Nutrition          `bson:"nutrition" json:"nutrition"`
	Servings     int                `bson:"servings" json:"servings"`
	PrepTime     int                `bson:"prepTime" json:"prepTime"`
	CookTime     int                `bson:"cookTime" json:"cookTime"`
	Difficulty   string             `bson:"difficulty" json:"difficulty"`
	Cuisine      string             `bson:"cuisine,omitempty" json:"cuisine,omitempty"`
	MealType     []string           `bson:"mealType" json:"mealType"`
	DietaryTags  []string           `bson:"dietaryTags" json:"dietaryTags"`
	Allergens    []string           `bson:"allergens" json:"allergens"`
	Images       []Image            `bson:"images" json:"images"`
	Author       primitive.ObjectID `bson:"author" json:"author"`
	Source       string             `bson:"source" json:"source"`
	Rating       Rating             `bson:"rating" json:"rating"`
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	Tags         []string           `bson:"tags" json:"tags"`
	IsPublic     bool               `bson:"isPublic" json:"isPublic"`
	Views        int                `bson:"views" json:"views"`
	Favorites    int                `bson:"favorites" json:"favorites"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TotalTime 準備加烹調時間
func (r *Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// RecomputeRating 依評論重新計算平均分數
func (r *Recipe) RecomputeRating() {
	r.Rating.Count = len(r.Reviews)
	if r.Rating.Count == 0 {
		r.Rating.Average = 0
		return
	}
	sum := 0
	for _, rv := range r.Reviews {
		sum += rv.Rating
	}
	r.Rating.Average = float64(sum) / float64(r.Rating.Count)
}

// Filter 食譜查詢條件
type Filter struct {
	Search      string
	Ingredients []string
	DietaryTags []string
	MealType    []string
	Cuisine     []string
	Difficulty  []string
	MaxPrepTime int
	MaxCookTime int
	Author      *primitive.ObjectID
	IDs         []primitive.ObjectID
	PublicOnly  bool
	Visibility  *bool  // 非 nil 時比對 isPublic
	SortBy      string // newest, oldest, rating, prepTime, totalTime
	Skip        int
	Limit       int
}

// Repository 食譜儲存介面
type Repository interface {
	Create(ctx context.Context, r *Recipe) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Recipe, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Recipe, error)
	Find(ctx context.Context, f Filter) ([]*Recipe, int64, error)
	Update(ctx context.Context, r *Recipe) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	IncrementFavorites(ctx context.Context, id primitive.ObjectID, delta int) error
	Categories(ctx context.Context) (*Categories, error)
}

// Categories 公開食譜的分類統計
type Categories struct {
	Cuisines     []string `json:"cuisines"`
	MealTypes    []string `json:"mealTypes"`
	DietaryTags  []string `json:"dietaryTags"`
	Difficulties []string `json:"difficulties"`
	Allergens    []string `json:"allergens"`
}
