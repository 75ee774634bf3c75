package preference

import (
	"context"
	"errors"
	"slices"
	"time"

	"planeats/internal/core/recipe"
	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrPreferenceNotFound 使用者尚未建立偏好
var ErrPreferenceNotFound = common.ErrNotFound.WithMessage("Preferences not found")

// Allergens 可選的過敏原
var Allergens = []string{"dairy", "eggs", "fish", "shellfish", "tree-nuts", "peanuts", "wheat", "soy", "sesame"}

// MealPreferences 各餐份量偏好：light、medium、heavy、any
type MealPreferences struct {
	Breakfast string `bson:"breakfast" json:"breakfast"`
	Lunch     string `bson:"lunch" json:"lunch"`
	Dinner    string `bson:"dinner" json:"dinner"`
}

// CookingPreferences 烹飪偏好
type CookingPreferences struct {
	TimeAvailability string `bson:"timeAvailability" json:"timeAvailability"`
	Difficulty       string `bson:"difficulty" json:"difficulty"`
	MealPrep         bool   `bson:"mealPrep" json:"mealPrep"`
}

// MacroRatios 三大營養素比例（百分比）
type MacroRatios struct {
	Protein float64 `bson:"protein" json:"protein"`
	Carbs   float64 `bson:"carbs" json:"carbs"`
	Fat     float64 `bson:"fat" json:"fat"`
}

// SpecificTargets 具體營養目標
type SpecificTargets struct {
	ProteinGrams float64 `bson:"proteinGrams,omitempty" json:"proteinGrams,omitempty"`
	CarbGrams    float64 `bson:"carbGrams,omitempty" json:"carbGrams,omitempty"`
	FatGrams     float64 `bson:"fatGrams,omitempty" json:"fatGrams,omitempty"`
	FiberGrams   float64 `bson:"fiberGrams,omitempty" json:"fiberGrams,omitempty"`
	SodiumMg     float64 `bson:"sodiumMg,omitempty" json:"sodiumMg,omitempty"`
}

// NutritionGoals 營養目標
type NutritionGoals struct {
	DailyCalories       float64         `bson:"dailyCalories,omitempty" json:"dailyCalories,omitempty"`
	MacronutrientRatios MacroRatios     `bson:"macronutrientRatios" json:"macronutrientRatios"`
	SpecificTargets     SpecificTargets `bson:"specificTargets" json:"specificTargets"`
}

// ChannelSettings 單一通道的通知設定
type ChannelSettings struct {
	MealReminders bool `bson:"mealReminders" json:"mealReminders"`
	PlanUpdates   bool `bson:"planUpdates" json:"planUpdates"`
	Newsletter    bool `bson:"newsletter,omitempty" json:"newsletter,omitempty"`
}

// NotificationSettings 通知設定
type NotificationSettings struct {
	Email ChannelSettings `bson:"email" json:"email"`
	Push  ChannelSettings `bson:"push" json:"push"`
}

// UIPreferences 介面偏好
type UIPreferences struct {
	Theme    string `bson:"theme" json:"theme"`
	Language string `bson:"language" json:"language"`
}

// PrivacySettings 隱私設定
type PrivacySettings struct {
	ProfileVisibility string `bson:"profileVisibility" json:"profileVisibility"`
	RecipeSharing     bool   `bson:"recipeSharing" json:"recipeSharing"`
	MealPlanSharing   bool   `bson:"mealPlanSharing" json:"mealPlanSharing"`
}

// Preference 使用者偏好設定，每位使用者一份
type Preference struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	User                 primitive.ObjectID   `bson:"user" json:"user"`
	DietaryPreferences   []string             `bson:"dietaryPreferences" json:"dietaryPreferences"`
	Allergies            []string             `bson:"allergies" json:"allergies"`
	FavoriteIngredients  []string             `bson:"favoriteIngredients" json:"favoriteIngredients"`
	DislikedIngredients  []string             `bson:"dislikedIngredients" json:"dislikedIngredients"`
	CuisinePreferences   []string             `bson:"cuisinePreferences" json:"cuisinePreferences"`
	MealPreferences      MealPreferences      `bson:"mealPreferences" json:"mealPreferences"`
	CookingPreferences   CookingPreferences   `bson:"cookingPreferences" json:"cookingPreferences"`
	NutritionGoals       NutritionGoals       `bson:"nutritionGoals" json:"nutritionGoals"`
	NotificationSettings NotificationSettings `bson:"notificationSettings" json:"notificationSettings"`
	UIPreferences        UIPreferences        `bson:"uiPreferences" json:"uiPreferences"`
	PrivacySettings      PrivacySettings      `bson:"privacySettings" json:"privacySettings"`
	CreatedAt            time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Defaults 新使用者的預設偏好
func Defaults(userID primitive.ObjectID, now time.Time) *Preference {
	return &Preference{
		User:                userID,
		DietaryPreferences:  []string{},
		Allergies:           []string{},
		FavoriteIngredients: []string{},
		DislikedIngredients: []string{},
		CuisinePreferences:  []string{},
		MealPreferences:     MealPreferences{Breakfast: "any", Lunch: "any", Dinner: "any"},
		CookingPreferences:  CookingPreferences{TimeAvailability: "moderate", Difficulty: "medium"},
		NutritionGoals: NutritionGoals{
			MacronutrientRatios: MacroRatios{Protein: 20, Carbs: 50, Fat: 30},
		},
		NotificationSettings: NotificationSettings{
			Email: ChannelSettings{MealReminders: true, PlanUpdates: true, Newsletter: true},
			Push:  ChannelSettings{MealReminders: true, PlanUpdates: true},
		},
		UIPreferences:   UIPreferences{Theme: "dark", Language: "en"},
		PrivacySettings: PrivacySettings{ProfileVisibility: "private"},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate 檢查列舉值與數值範圍
func (p *Preference) Validate() error {
	for _, d := range p.DietaryPreferences {
		if !slices.Contains(recipe.DietaryTags, d) {
			return common.NewValidationError("Invalid dietary preference: " + d)
		}
	}
	for _, a := range p.Allergies {
		if !slices.Contains(Allergens, a) {
			return common.NewValidationError("Invalid allergy: " + a)
		}
	}
	for _, c := range p.CuisinePreferences {
		if !slices.Contains(recipe.Cuisines, c) {
			return common.NewValidationError("Invalid cuisine: " + c)
		}
	}
	portions := []string{"light", "medium", "heavy", "any"}
	for _, m := range []string{p.MealPreferences.Breakfast, p.MealPreferences.Lunch, p.MealPreferences.Dinner} {
		if !slices.Contains(portions, m) {
			return common.NewValidationError("Invalid meal preference: " + m)
		}
	}
	if !slices.Contains([]string{"minimal", "moderate", "extended"}, p.CookingPreferences.TimeAvailability) {
		return common.NewValidationError("Invalid time availability")
	}
	if !slices.Contains(recipe.Difficulties, p.CookingPreferences.Difficulty) {
		return common.NewValidationError("Invalid cooking difficulty")
	}
	if c := p.NutritionGoals.DailyCalories; c != 0 && (c < 800 || c > 5000) {
		return common.NewValidationError("Daily calories must be between 800 and 5000")
	}
	r := p.NutritionGoals.MacronutrientRatios
	if r.Protein < 10 || r.Protein > 40 || r.Carbs < 30 || r.Carbs > 70 || r.Fat < 20 || r.Fat > 40 {
		return common.NewValidationError("Macronutrient ratios out of range")
	}
	if !slices.Contains([]string{"light", "dark", "auto"}, p.UIPreferences.Theme) {
		return common.NewValidationError("Invalid theme")
	}
	if !slices.Contains([]string{"public", "friends", "private"}, p.PrivacySettings.ProfileVisibility) {
		return common.NewValidationError("Invalid profile visibility")
	}
	return nil
}

// Repository 偏好儲存介面，找不到時回傳 ErrPreferenceNotFound
type Repository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*Preference, error)
	Upsert(ctx context.Context, p *Preference) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// Service 偏好服務
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService 創建偏好服務
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get 讀取偏好，不存在時建立預設值
func (s *Service) Get(ctx context.Context, userID primitive.ObjectID) (*Preference, error) {
	p, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	p = Defaults(userID, s.now())
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update 以請求內容整份覆寫偏好；請求由目前偏好解碼而來，未提供的欄位保持原值
func (s *Service) Update(ctx context.Context, userID primitive.ObjectID, apply func(*Preference) error) (*Preference, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	id, created := p.ID, p.CreatedAt
	if err := apply(p); err != nil {
		return nil, err
	}
	p.ID, p.User, p.CreatedAt = id, userID, created
	p.UpdatedAt = s.now()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Reset 恢復預設值
func (s *Service) Reset(ctx context.Context, userID primitive.ObjectID) (*Preference, error) {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	p := Defaults(userID, s.now())
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
