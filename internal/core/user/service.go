package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"planeats/internal/core/mealplan"
	"planeats/internal/pkg/common"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

// Service 帳號與認證服務
type Service struct {
	repo       Repository
	tokens     *TokenManager
	bcryptCost int
	now        func() time.Time
}

// NewService 創建使用者服務
func NewService(repo Repository, tokens *TokenManager, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost, now: time.Now}
}

// RegisterInput 註冊參數
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ProfileUpdate 個人資料更新，nil 表示不變更
type ProfileUpdate struct {
	Profile             *Profile        `json:"profile"`
	DietaryPreferences  *[]string       `json:"dietaryPreferences"`
	Allergies           *[]string       `json:"allergies"`
	FavoriteIngredients *[]string       `json:"favoriteIngredients"`
	DislikedIngredients *[]string       `json:"dislikedIngredients"`
	NutritionGoals      *NutritionGoals `json:"nutritionGoals"`
	Preferences         *AppPreferences `json:"preferences"`
}

// ValidatePassword 至少 6 碼且包含大寫、小寫與數字
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return common.NewValidationError("Password must be at least 6 characters long")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return common.NewValidationError("Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return nil
}

// Register 建立帳號並簽發 token
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if !usernamePattern.MatchString(username) {
		return nil, "", common.NewValidationError("Username must be 3-30 characters of letters, numbers, hyphens, and underscores")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, "", err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, "", err
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	u := newUser(username, email, string(hash), s.now())
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(u.ID)
	if err != nil {
		return nil, "", err
	}

	common.LogInfo("使用者已註冊", zap.String("user_id", u.ID.Hex()))
	return u, token, nil
}

// Login 驗證帳密並更新最後登入時間
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !u.IsActive {
		return nil, "", ErrLoginDeactivated
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	now := s.now()
	u.LastLogin = &now
	u.UpdatedAt = now
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Authenticate 驗證 token 並回傳啟用中的使用者
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	id, err := s.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrUnauthorized.WithMessage("Token expired, please log in again")
		}
		return nil, common.ErrUnauthorized.WithMessage("Token is malformed")
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized.WithMessage("User not found")
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountDeactivated
	}
	return u, nil
}

// Get 讀取使用者
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile 更新個人資料與飲食偏好
func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdate) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Profile != nil {
		mergeProfile(&u.Profile, *in.Profile)
	}
	if in.DietaryPreferences != nil {
		u.DietaryPreferences = nonNil(*in.DietaryPreferences)
	}
	if in.Allergies != nil {
		u.Allergies = nonNil(*in.Allergies)
	}
	if in.FavoriteIngredients != nil {
		u.FavoriteIngredients = nonNil(*in.FavoriteIngredients)
	}
	if in.DislikedIngredients != nil {
		u.DislikedIngredients = nonNil(*in.DislikedIngredients)
	}
	if in.NutritionGoals != nil {
		g := *in.NutritionGoals
		if g.DailyCalories != 0 {
			u.NutritionGoals.DailyCalories = g.DailyCalories
		}
		if g.ProteinPercentage != 0 {
			u.NutritionGoals.ProteinPercentage = g.ProteinPercentage
		}
		if g.CarbPercentage != 0 {
			u.NutritionGoals.CarbPercentage = g.CarbPercentage
		}
		if g.FatPercentage != 0 {
			u.NutritionGoals.FatPercentage = g.FatPercentage
		}
	}
	if in.Preferences != nil {
		u.Preferences = *in.Preferences
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword 驗證舊密碼後更新
func (s *Service) ChangePassword(ctx context.Context, id primitive.ObjectID, current, next string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

// Deactivate 停用帳號
func (s *Service) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = false
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	common.LogInfo("帳號已停用", zap.String("user_id", id.Hex()))
	return nil
}

// ToggleSavedRecipe 切換食譜收藏，回傳切換後是否為收藏狀態
func (s *Service) ToggleSavedRecipe(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	saved := !u.HasSaved(recipeID)
	if saved {
		u.SavedRecipes = append(u.SavedRecipes, recipeID)
	} else {
		kept := u.SavedRecipes[:0]
		for _, id := range u.SavedRecipes {
			if id != recipeID {
				kept = append(kept, id)
			}
		}
		u.SavedRecipes = kept
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return false, err
	}
	return saved, nil
}

// SavedRecipeIDs 收藏的食譜 ID
func (s *Service) SavedRecipeIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.SavedRecipes, nil
}

// GenerationProfile 提供 AI 生成時合併的飲食偏好
func (s *Service) GenerationProfile(ctx context.Context, userID primitive.ObjectID) (*mealplan.Profile, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &mealplan.Profile{
		DietaryPreferences:  u.DietaryPreferences,
		Allergies:           u.Allergies,
		FavoriteIngredients: u.FavoriteIngredients,
		DislikedIngredients: u.DislikedIngredients,
		DailyCalories:       u.NutritionGoals.DailyCalories,
	}, nil
}

func mergeProfile(dst *Profile, src Profile) {
	if src.FirstName != "" {
		dst.FirstName = src.FirstName
	}
	if src.LastName != "" {
		dst.LastName = src.LastName
	}
	if src.Age != 0 {
		dst.Age = src.Age
	}
	if src.Gender != "" {
		dst.Gender = src.Gender
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
	if src.Weight != 0 {
		dst.Weight = src.Weight
	}
	if src.ActivityLevel != "" {
		dst.ActivityLevel = src.ActivityLevel
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
