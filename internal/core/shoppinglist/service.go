package shoppinglist

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"planeats/internal/core/grocery"
	"planeats/internal/core/mealplan"
	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MealPlanSource 讀取使用者自己的餐計畫
type MealPlanSource interface {
	ShoppingList(ctx context.Context, userID, id primitive.ObjectID) (*mealplan.MealPlan, error)
}

// Service 採買清單服務
type Service struct {
	repo      Repository
	mealPlans MealPlanSource
	now       func() time.Time
}

// NewService 創建採買清單服務
func NewService(repo Repository, mealPlans MealPlanSource) *Service {
	return &Service{repo: repo, mealPlans: mealPlans, now: time.Now}
}

// ItemInput 新增項目
type ItemInput struct {
	Ingredient    string              `json:"ingredient"`
	Amount        float64             `json:"amount"`
	Unit          string              `json:"unit"`
	Category      grocery.Category    `json:"category"`
	EstimatedCost *float64            `json:"estimatedCost"`
	Notes         string              `json:"notes"`
	Recipe        *primitive.ObjectID `json:"recipe"`
	MealPlan      *primitive.ObjectID `json:"mealPlan"`
}

// CreateInput 建立清單
type CreateInput struct {
	Name   string      `json:"name"`
	Items  []ItemInput `json:"items"`
	Budget *Budget     `json:"budget"`
	Stores []Store     `json:"stores"`
}

// UpdateInput 更新清單，nil 表示不變更
type UpdateInput struct {
	Name     *string  `json:"name"`
	Status   *string  `json:"status"`
	Budget   *Budget  `json:"budget"`
	Stores   *[]Store `json:"stores"`
	IsPublic *bool    `json:"isPublic"`
}

// NewItem 驗證並建立項目；未指定分類時以關鍵字判斷，無符合時為 other
func NewItem(in ItemInput) (Item, error) {
	name := strings.TrimSpace(in.Ingredient)
	if name == "" {
		return Item{}, common.NewValidationError("Ingredient is required")
	}
	if in.Amount < 0 {
		return Item{}, common.NewValidationError("Amount cannot be negative")
	}
	if in.EstimatedCost != nil && *in.EstimatedCost < 0 {
		return Item{}, common.NewValidationError("Estimated cost cannot be negative")
	}
	if utf8.RuneCountInString(in.Notes) > 200 {
		return Item{}, common.NewValidationError("Notes cannot exceed 200 characters")
	}

	category := in.Category
	if category == "" {
		category = grocery.CategorizeForStandaloneList(name)
	} else if !grocery.Valid(category, grocery.StandaloneCategories) {
		return Item{}, common.NewValidationError(fmt.Sprintf("Invalid category: %s", category))
	}

	return Item{
		ID:            primitive.NewObjectID(),
		Ingredient:    name,
		Amount:        in.Amount,
		Unit:          strings.TrimSpace(in.Unit),
		Category:      category,
		EstimatedCost: in.EstimatedCost,
		Notes:         in.Notes,
		Recipe:        in.Recipe,
		MealPlan:      in.MealPlan,
	}, nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 || n > 100 {
		return common.NewValidationError("Name is required and cannot exceed 100 characters")
	}
	return nil
}

// List 使用者的清單
func (s *Service) List(ctx context.Context, userID primitive.ObjectID, status string, skip, limit int) ([]*List, int64, error) {
	if status != "" && !slices.Contains(Statuses, status) {
		return nil, 0, common.NewValidationError("Invalid status")
	}
	return s.repo.FindByUser(ctx, userID, status, skip, limit)
}

// Get 讀取清單；非擁有者視為不存在
func (s *Service) Get(ctx context.Context, userID, id primitive.ObjectID) (*List, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.User != userID {
		return nil, ErrListNotFound
	}
	return l, nil
}

// Create 建立清單
func (s *Service) Create(ctx context.Context, userID primitive.ObjectID, in CreateInput) (*List, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(in.Items))
	for _, ii := range in.Items {
		item, err := NewItem(ii)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	now := s.now()
	l := &List{
		User:      userID,
		Name:      strings.TrimSpace(in.Name),
		Items:     items,
		Status:    StatusActive,
		Budget:    Budget{Currency: "USD"},
		Stores:    in.Stores,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Budget != nil {
		l.Budget = *in.Budget
		if l.Budget.Currency == "" {
			l.Budget.Currency = "USD"
		}
	}
	if l.Stores == nil {
		l.Stores = []Store{}
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update 更新清單屬性
func (s *Service) Update(ctx context.Context, userID, id primitive.ObjectID, in UpdateInput) (*List, error) {
	l, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return nil, err
		}
		l.Name = strings.TrimSpace(*in.Name)
	}
	if in.Status != nil {
		if !slices.Contains(Statuses, *in.Status) {
			return nil, common.NewValidationError("Invalid status")
		}
		l.Status = *in.Status
	}
	if in.Budget != nil {
		l.Budget = *in.Budget
	}
	if in.Stores != nil {
		l.Stores = *in.Stores
	}
	if in.IsPublic != nil {
		l.IsPublic = *in.IsPublic
	}

	return s.save(ctx, l)
}

// Delete 刪除清單
func (s *Service) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddItem 新增項目
func (s *Service) AddItem(ctx context.Context, userID, id primitive.ObjectID, in ItemInput) (*List, error) {
	l, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	item, err := NewItem(in)
	if err != nil {
		return nil, err
	}
	l.Items = append(l.Items, item)
	return s.save(ctx, l)
}

// MarkItem 設定項目購買狀態
func (s *Service) MarkItem(ctx context.Context, userID, id, itemID primitive.ObjectID, purchased bool) (*List, error) {
	l, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(l.Items, func(it Item) bool { return it.ID == itemID })
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	l.Items[idx].Purchased = purchased
	return s.save(ctx, l)
}

// RemoveItem 移除項目
func (s *Service) RemoveItem(ctx context.Context, userID, id, itemID primitive.ObjectID) (*List, error) {
	l, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(l.Items, func(it Item) bool { return it.ID == itemID })
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	l.Items = slices.Delete(l.Items, idx, idx+1)
	return s.save(ctx, l)
}

// FromMealPlan 將餐計畫的彙總採買清單複製成獨立清單，分類沿用餐計畫的結果
func (s *Service) FromMealPlan(ctx context.Context, userID, planID primitive.ObjectID) (*List, error) {
	plan, err := s.mealPlans.ShoppingList(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(plan.ShoppingList))
	for _, src := range plan.ShoppingList {
		items = append(items, Item{
			ID:            primitive.NewObjectID(),
			Ingredient:    src.Ingredient,
			Amount:        src.Amount,
			Unit:          src.Unit,
			Category:      src.Category,
			Purchased:     src.Purchased,
			EstimatedCost: src.EstimatedCost,
			Notes:         src.Notes,
			MealPlan:      &plan.ID,
		})
	}

	now := s.now()
	l := &List{
		User:      userID,
		Name:      truncate(plan.Title+" - Shopping List", 100),
		Items:     items,
		Status:    StatusActive,
		Budget:    Budget{Currency: "USD"},
		Stores:    []Store{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	common.LogInfo("已由餐計畫建立採買清單",
		zap.String("meal_plan", planID.Hex()),
		zap.Int("items", len(items)),
	)
	return l, nil
}

func (s *Service) save(ctx context.Context, l *List) (*List, error) {
	l.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
