package user

import (
	"context"
	"net/http"
	"time"

	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 使用者相關錯誤。登入時帳號已停用回傳 ErrLoginDeactivated（400），
// 已登入的 token 對應到停用帳號時回傳 ErrAccountDeactivated（401），兩者代碼相同。
var (
	ErrUserNotFound       = common.ErrNotFound.WithMessage("User not found")
	ErrUserExists         = common.NewError("USER_EXISTS", "A user with this email or username already exists", http.StatusBadRequest, nil)
	ErrInvalidCredentials = common.NewError("INVALID_CREDENTIALS", "Email or password is incorrect", http.StatusBadRequest, nil)
	ErrAccountDeactivated = common.NewError("ACCOUNT_DEACTIVATED", "Your account has been deactivated", http.StatusUnauthorized, nil)
	ErrLoginDeactivated   = common.NewError("ACCOUNT_DEACTIVATED", "Your account has been deactivated. Please contact support.", http.StatusBadRequest, nil)
	ErrWrongPassword      = common.NewError("INVALID_CREDENTIALS", "Current password is incorrect", http.StatusBadRequest, nil)
)

// ActivityLevels 活動量
var ActivityLevels = []string{"sedentary", "lightly-active", "moderately-active", "very-active", "extremely-active"}

// Profile 個人資料
type Profile struct {
	FirstName     string  `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName      string  `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Age           int     `bson:"age,omitempty" json:"age,omitempty"`
	Gender        string  `bson:"gender,omitempty" json:"gender,omitempty" binding:"omitempty,oneof=male female other prefer-not-to-say"`
	Height        float64 `bson:"height,omitempty" json:"height,omitempty"`
	Weight        float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	ActivityLevel string  `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`
}

// FullName 有姓名時回傳全名，否則回傳 fallback
func (p Profile) FullName(fallback string) string {
	if p.FirstName != "" && p.LastName != "" {
		return p.FirstName + " " + p.LastName
	}
	return fallback
}

// NutritionGoals 營養目標
type NutritionGoals struct {
	DailyCalories     float64 `bson:"dailyCalories,omitempty" json:"dailyCalories,omitempty"`
	ProteinPercentage float64 `bson:"proteinPercentage" json:"proteinPercentage"`
	CarbPercentage    float64 `bson:"carbPercentage" json:"carbPercentage"`
	FatPercentage     float64 `bson:"fatPercentage" json:"fatPercentage"`
}

// NotificationPrefs 通知開關
type NotificationPrefs struct {
	Email         bool `bson:"email" json:"email"`
	Push          bool `bson:"push" json:"push"`
	MealReminders bool `bson:"mealReminders" json:"mealReminders"`
}

// AppPreferences 介面偏好
type AppPreferences struct {
	Theme         string            `bson:"theme" json:"theme"`
	Notifications NotificationPrefs `bson:"notifications" json:"notifications"`
}

// User 使用者
type User struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username            string               `bson:"username" json:"username"`
	Email               string               `bson:"email" json:"email"`
	PasswordHash        string               `bson:"password" json:"-"`
	Profile             Profile              `bson:"profile" json:"profile"`
	DietaryPreferences  []string             `bson:"dietaryPreferences" json:"dietaryPreferences"`
	Allergies           []string             `bson:"allergies" json:"allergies"`
	FavoriteIngredients []string             `bson:"favoriteIngredients" json:"favoriteIngredients"`
	DislikedIngredients []string             `bson:"dislikedIngredients" json:"dislikedIngredients"`
	SavedRecipes        []primitive.ObjectID `bson:"savedRecipes" json:"savedRecipes"`
	NutritionGoals      NutritionGoals       `bson:"nutritionGoals" json:"nutritionGoals"`
	Preferences         AppPreferences       `bson:"preferences" json:"preferences"`
	IsActive            bool                 `bson:"isActive" json:"isActive"`
	LastLogin           *time.Time           `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// newUser 新使用者的預設值
func newUser(username, email, hash string, now time.Time) *User {
	return &User{
		Username:            username,
		Email:               email,
		PasswordHash:        hash,
		Profile:             Profile{ActivityLevel: "moderately-active"},
		DietaryPreferences:  []string{},
		Allergies:           []string{},
		FavoriteIngredients: []string{},
		DislikedIngredients: []string{},
		SavedRecipes:        []primitive.ObjectID{},
		NutritionGoals:      NutritionGoals{ProteinPercentage: 20, CarbPercentage: 50, FatPercentage: 30},
		Preferences: AppPreferences{
			Theme:         "dark",
			Notifications: NotificationPrefs{Email: true, Push: true, MealReminders: true},
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasSaved 是否已收藏食譜
func (u *User) HasSaved(recipeID primitive.ObjectID) bool {
	for _, id := range u.SavedRecipes {
		if id == recipeID {
			return true
		}
	}
	return false
}

// Repository 使用者儲存介面，找不到時回傳 ErrUserNotFound
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
}
