package mealplan

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"planeats/internal/core/ai/provider"
	"planeats/internal/core/recipe"
	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	minTitleLength = 3
	maxTitleLength = 100
	maxAIDuration  = 30
)

// Generator 呼叫 LLM 的介面
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*provider.Response, error)
}

// ResponseInvalidator 由帶快取的 Generator 實作，解析失敗的回應不應再被重用
type ResponseInvalidator interface {
	Invalidate(ctx context.Context, systemPrompt, userPrompt string) error
}

// RecipeLookup 批次載入食譜
type RecipeLookup interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*recipe.Recipe, error)
}

// Profile 使用者儲存的飲食偏好，生成時與請求參數合併
type Profile struct {
	DietaryPreferences  []string
	Allergies           []string
	FavoriteIngredients []string
	DislikedIngredients []string
	DailyCalories       float64
}

// ProfileSource 讀取使用者偏好
type ProfileSource interface {
	GenerationProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error)
}

// Notifier 餐計畫事件通知
type Notifier interface {
	MealPlanGenerated(ctx context.Context, plan *MealPlan) error
}

// Service 餐計畫服務
type Service struct {
	repo     Repository
	recipes  RecipeLookup
	ai       Generator
	profiles ProfileSource
	notifier Notifier
	now      func() time.Time
}

// NewService 創建餐計畫服務，profiles 與 notifier 可為 nil
func NewService(repo Repository, recipes RecipeLookup, ai Generator, profiles ProfileSource, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		recipes:  recipes,
		ai:       ai,
		profiles: profiles,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateInput 手動建立餐計畫
type CreateInput struct {
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	StartDate            time.Time        `json:"startDate"`
	EndDate              time.Time        `json:"endDate"`
	Type                 string           `json:"type"`
	Goals                []string         `json:"goals"`
	TargetNutrition      *TargetNutrition `json:"targetNutrition"`
	DietaryRestrictions  []string         `json:"dietaryRestrictions"`
	Allergies            []string         `json:"allergies"`
	PreferredIngredients []string         `json:"preferredIngredients"`
	AvoidedIngredients   []string         `json:"avoidedIngredients"`
	Budget               *Budget          `json:"budget"`
	Settings             *Settings        `json:"settings"`
	Tags                 []string         `json:"tags"`
	IsPublic             bool             `json:"isPublic"`
}

// UpdateInput 可更新的欄位，nil 表示不變更。
// 擁有者、AI 相關欄位與起訖日期不可更新。
type UpdateInput struct {
	Title                *string             `json:"title"`
	Description          *string             `json:"description"`
	Type                 *string             `json:"type"`
	Goals                *[]string           `json:"goals"`
	TargetNutrition      *TargetNutrition    `json:"targetNutrition"`
	DietaryRestrictions  *[]string           `json:"dietaryRestrictions"`
	Allergies            *[]string           `json:"allergies"`
	PreferredIngredients *[]string           `json:"preferredIngredients"`
	AvoidedIngredients   *[]string           `json:"avoidedIngredients"`
	Meals                *[]Day              `json:"meals"`
	ShoppingList         *[]ShoppingListItem `json:"shoppingList"`
	Budget               *Budget             `json:"budget"`
	Settings             *Settings           `json:"settings"`
	Status               *string             `json:"status"`
	Tags                 *[]string           `json:"tags"`
	IsPublic             *bool               `json:"isPublic"`
	Revision             *int64              `json:"revision"`
}

// MealUpdate 更新單一餐點的完成狀態與評分
type MealUpdate struct {
	DayIndex   int    `json:"dayIndex"`
	MealType   string `json:"mealType"`
	SnackIndex int    `json:"snackIndex"`
	Completed  *bool  `json:"completed"`
	Rating     *int   `json:"rating"`
	Revision   *int64 `json:"revision"`
}

// GenerateResult AI 生成結果
type GenerateResult struct {
	Plan                  *MealPlan
	Model                 string
	Provider              string
	GeneratedAt           time.Time
	Prompt                GenerateInput
	TotalNutrition        map[string]any
	AdditionalIngredients []string
}

// List 使用者的餐計畫，依建立時間新到舊
func (s *Service) List(ctx context.Context, userID primitive.ObjectID, opts ListOptions) ([]*MealPlan, int64, error) {
	if opts.Status != "" && !slices.Contains(Statuses, opts.Status) {
		return nil, 0, common.NewValidationError("Invalid status")
	}
	return s.repo.FindByUser(ctx, userID, opts)
}

// Get 讀取餐計畫並載入引用的食譜；非擁有者只能讀取公開計畫
func (s *Service) Get(ctx context.Context, userID, id primitive.ObjectID) (*MealPlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.User != userID && !plan.IsPublic {
		return nil, common.ErrForbidden.WithMessage("You can only view your own meal plans")
	}
	if err := s.resolveRecipes(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Create 建立空排程的餐計畫
func (s *Service) Create(ctx context.Context, userID primitive.ObjectID, in CreateInput) (*MealPlan, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, common.NewValidationError("Start date and end date are required")
	}
	duration, err := DurationBetween(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	plan := &MealPlan{
		User:                 userID,
		Title:                strings.TrimSpace(in.Title),
		Description:          in.Description,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		Duration:             duration,
		Type:                 in.Type,
		Goals:                in.Goals,
		TargetNutrition:      in.TargetNutrition,
		DietaryRestrictions:  nonNil(in.DietaryRestrictions),
		Allergies:            nonNil(in.Allergies),
		PreferredIngredients: nonNil(in.PreferredIngredients),
		AvoidedIngredients:   nonNil(in.AvoidedIngredients),
		Meals:                NewSchedule(in.StartDate, duration),
		Budget:               in.Budget,
		Settings:             DefaultSettings(),
		Tags:                 nonNil(in.Tags),
		IsPublic:             in.IsPublic,
	}
	if in.Settings != nil {
		plan.Settings = *in.Settings
	}
	plan.Prepare(s.now())

	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}
	common.LogInfo("餐計畫已建立",
		zap.String("id", plan.ID.Hex()),
		zap.Int("duration", plan.Duration),
	)
	return plan, nil
}

// Generate 以 LLM 生成餐計畫並儲存
func (s *Service) Generate(ctx context.Context, userID primitive.ObjectID, in GenerateInput) (*GenerateResult, error) {
	in.Ingredients = mergeUnique(in.Ingredients)
	if len(in.Ingredients) == 0 {
		return nil, common.NewValidationError("At least one ingredient is required")
	}
	if in.Duration < 1 || in.Duration > maxAIDuration {
		return nil, common.NewValidationError(fmt.Sprintf("Duration must be between 1 and %d days", maxAIDuration))
	}

	if s.profiles != nil {
		profile, err := s.profiles.GenerationProfile(ctx, userID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		if profile != nil {
			in.DietaryPreferences = mergeUnique(in.DietaryPreferences, profile.DietaryPreferences)
			in.Allergies = mergeUnique(in.Allergies, profile.Allergies)
			in.ExcludeIngredients = mergeUnique(in.ExcludeIngredients, profile.DislikedIngredients)
			in.FavoriteIngredients = mergeUnique(in.FavoriteIngredients, profile.FavoriteIngredients)
			if in.DailyCalories <= 0 {
				in.DailyCalories = profile.DailyCalories
			}
		}
	}
	in.ApplyDefaults()

	systemPrompt, userPrompt := SystemPrompt(), UserPrompt(in)
	resp, err := s.ai.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	now := s.now()
	parsed, err := ParseAIResponse(resp.Content, now)
	if err != nil {
		common.LogWarn("AI 回應解析失敗",
			zap.String("provider", resp.Provider),
			zap.Bool("cache_hit", resp.CacheHit),
			zap.Error(err),
		)
		if inv, ok := s.ai.(ResponseInvalidator); ok {
			if ierr := inv.Invalidate(ctx, systemPrompt, userPrompt); ierr != nil {
				common.LogWarn("AI 回應快取移除失敗", zap.Error(ierr))
			}
		}
		return nil, err
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	aiPrompt, err := common.ToJSON(in)
	if err != nil {
		return nil, err
	}

	plan := &MealPlan{
		User:                 userID,
		Title:                parsed.Title,
		Description:          parsed.Description,
		StartDate:            start,
		EndDate:              start.AddDate(0, 0, in.Duration),
		Duration:             in.Duration,
		Goals:                in.Goals,
		DietaryRestrictions:  in.DietaryPreferences,
		Allergies:            in.Allergies,
		PreferredIngredients: in.Ingredients,
		AvoidedIngredients:   in.ExcludeIngredients,
		Meals:                parsed.Meals,
		Settings:             DefaultSettings(),
		AIGenerated:          true,
		AIPrompt:             aiPrompt,
		AIModel:              resp.Model,
		GenerationMetadata: &GenerationMetadata{
			IngredientsUsed:     in.Ingredients,
			CuisinePreferences:  in.CuisinePreferences,
			ExcludedIngredients: in.ExcludeIngredients,
			NutritionalFocus:    strings.Join(in.Goals, ", "),
			Timestamp:           now,
		},
		Status: StatusActive,
		Tags:   []string{},
	}
	if plan.AIModel == "" {
		plan.AIModel = "unknown"
	}
	if in.DailyCalories > 0 {
		plan.TargetNutrition = &TargetNutrition{DailyCalories: in.DailyCalories}
	}
	plan.Settings.CookingTime = in.CookingTime
	plan.Prepare(now)

	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}

	common.LogInfo("AI 餐計畫已生成",
		zap.String("id", plan.ID.Hex()),
		zap.String("model", plan.AIModel),
		zap.Int("days", len(plan.Meals)),
	)

	if s.notifier != nil {
		if err := s.notifier.MealPlanGenerated(ctx, plan); err != nil {
			common.LogWarn("通知建立失敗", zap.Error(err))
		}
	}

	return &GenerateResult{
		Plan:                  plan,
		Model:                 plan.AIModel,
		Provider:              resp.Provider,
		GeneratedAt:           now,
		Prompt:                in,
		TotalNutrition:        parsed.TotalNutrition,
		AdditionalIngredients: parsed.AdditionalIngredients,
	}, nil
}

// Update 更新餐計畫，revision 不符時回傳 ErrRevisionConflict
func (s *Service) Update(ctx context.Context, userID, id primitive.ObjectID, in UpdateInput) (*MealPlan, error) {
	plan, err := s.loadOwned(ctx, userID, id, "You can only update your own meal plans")
	if err != nil {
		return nil, err
	}
	if err := checkRevision(plan, in.Revision); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		plan.Title = strings.TrimSpace(*in.Title)
	}
	if in.Status != nil {
		if !slices.Contains(Statuses, *in.Status) {
			return nil, common.NewValidationError("Invalid status")
		}
		plan.Status = *in.Status
	}
	if in.Description != nil {
		plan.Description = *in.Description
	}
	if in.Type != nil {
		plan.Type = *in.Type
	}
	if in.Goals != nil {
		plan.Goals = *in.Goals
	}
	if in.TargetNutrition != nil {
		plan.TargetNutrition = in.TargetNutrition
	}
	if in.DietaryRestrictions != nil {
		plan.DietaryRestrictions = nonNil(*in.DietaryRestrictions)
	}
	if in.Allergies != nil {
		plan.Allergies = nonNil(*in.Allergies)
	}
	if in.PreferredIngredients != nil {
		plan.PreferredIngredients = nonNil(*in.PreferredIngredients)
	}
	if in.AvoidedIngredients != nil {
		plan.AvoidedIngredients = nonNil(*in.AvoidedIngredients)
	}
	if in.Meals != nil {
		if plan.Duration > 0 && len(*in.Meals) != plan.Duration {
			return nil, common.NewValidationError(fmt.Sprintf("Meals must contain exactly %d days", plan.Duration))
		}
		plan.Meals = *in.Meals
	}
	if in.ShoppingList != nil {
		plan.ShoppingList = *in.ShoppingList
	}
	if in.Budget != nil {
		plan.Budget = in.Budget
	}
	if in.Settings != nil {
		plan.Settings = *in.Settings
	}
	if in.Tags != nil {
		plan.Tags = nonNil(*in.Tags)
	}
	if in.IsPublic != nil {
		plan.IsPublic = *in.IsPublic
	}

	return s.save(ctx, plan)
}

// Delete 刪除餐計畫
func (s *Service) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.loadOwned(ctx, userID, id, "You can only delete your own meal plans"); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// UpdateMeal 更新某天某餐的完成狀態或評分，並重算進度
func (s *Service) UpdateMeal(ctx context.Context, userID, id primitive.ObjectID, in MealUpdate) (*MealPlan, error) {
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, common.NewValidationError("Rating must be between 1 and 5")
	}

	plan, err := s.loadOwned(ctx, userID, id, "You can only update your own meal plans")
	if err != nil {
		return nil, err
	}
	if err := checkRevision(plan, in.Revision); err != nil {
		return nil, err
	}
	if in.DayIndex < 0 || in.DayIndex >= len(plan.Meals) {
		return nil, common.NewValidationError("Day index out of range")
	}

	day := &plan.Meals[in.DayIndex]
	var entry *MealEntry
	switch in.MealType {
	case MealBreakfast:
		if day.Breakfast == nil {
			day.Breakfast = &MealEntry{Servings: 1}
		}
		entry = day.Breakfast
	case MealLunch:
		if day.Lunch == nil {
			day.Lunch = &MealEntry{Servings: 1}
		}
		entry = day.Lunch
	case MealDinner:
		if day.Dinner == nil {
			day.Dinner = &MealEntry{Servings: 1}
		}
		entry = day.Dinner
	case MealSnack:
		if in.SnackIndex < 0 || in.SnackIndex >= len(day.Snacks) {
			return nil, common.NewValidationError("Snack index out of range")
		}
		entry = &day.Snacks[in.SnackIndex]
	default:
		return nil, common.NewValidationError("Invalid meal type")
	}

	if in.Completed != nil {
		entry.Completed = *in.Completed
	}
	if in.Rating != nil {
		entry.Rating = *in.Rating
	}

	return s.save(ctx, plan)
}

// RegenerateShoppingList 依目前排程重建採買清單（整份取代）
func (s *Service) RegenerateShoppingList(ctx context.Context, userID, id primitive.ObjectID) (*MealPlan, error) {
	plan, err := s.loadOwned(ctx, userID, id, "You can only update your own meal plans")
	if err != nil {
		return nil, err
	}
	if err := s.resolveRecipes(ctx, plan); err != nil {
		return nil, err
	}
	plan.GenerateShoppingList()

	common.LogInfo("採買清單已重建",
		zap.String("id", plan.ID.Hex()),
		zap.Int("items", len(plan.ShoppingList)),
	)
	return s.save(ctx, plan)
}

// DayNutrition 第 day 天（從 1 起算）的營養總和
func (s *Service) DayNutrition(ctx context.Context, userID, id primitive.ObjectID, day int) (*Day, Nutrition, error) {
	plan, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, Nutrition{}, err
	}
	if day < 1 || day > len(plan.Meals) {
		return nil, Nutrition{}, common.ErrNotFound.WithMessage("Day not found in meal plan")
	}
	d := &plan.Meals[day-1]
	return d, CalculateDayNutrition(d), nil
}

// ShoppingList 擁有者讀取餐計畫的採買清單
func (s *Service) ShoppingList(ctx context.Context, userID, id primitive.ObjectID) (*MealPlan, error) {
	return s.loadOwned(ctx, userID, id, "You do not have access to this meal plan")
}

func (s *Service) loadOwned(ctx context.Context, userID, id primitive.ObjectID, forbidden string) (*MealPlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.User != userID {
		return nil, common.ErrForbidden.WithMessage(forbidden)
	}
	return plan, nil
}

func (s *Service) save(ctx context.Context, plan *MealPlan) (*MealPlan, error) {
	plan.Prepare(s.now())
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) resolveRecipes(ctx context.Context, plan *MealPlan) error {
	ids := plan.RecipeIDs()
	if len(ids) == 0 || s.recipes == nil {
		return nil
	}
	recipes, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	plan.AttachRecipes(recipes)
	return nil
}

func checkRevision(plan *MealPlan, revision *int64) error {
	if revision != nil && *revision != plan.Revision {
		return ErrRevisionConflict
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < minTitleLength || n > maxTitleLength {
		return common.NewValidationError("Title must be between 3 and 100 characters")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
