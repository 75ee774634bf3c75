package shoppinglist

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"planeats/internal/core/grocery"
	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 清單狀態
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Statuses 允許的狀態
var Statuses = []string{StatusActive, StatusCompleted, StatusArchived}

// 錯誤
var (
	ErrListNotFound = common.ErrNotFound.WithMessage("Shopping list not found or you do not have access to it")
	ErrItemNotFound = common.ErrNotFound.WithMessage("Item not found")
)

// Item 採買項目
type Item struct {
	ID            primitive.ObjectID  `bson:"_id" json:"_id"`
	Ingredient    string              `bson:"ingredient" json:"ingredient"`
	Amount        float64             `bson:"amount" json:"amount"`
	Unit          string              `bson:"unit,omitempty" json:"unit,omitempty"`
	Category      grocery.Category    `bson:"category" json:"category"`
	Purchased     bool                `bson:"purchased" json:"purchased"`
	EstimatedCost *float64            `bson:"estimatedCost,omitempty" json:"estimatedCost,omitempty"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Recipe        *primitive.ObjectID `bson:"recipe,omitempty" json:"recipe,omitempty"`
	MealPlan      *primitive.ObjectID `bson:"mealPlan,omitempty" json:"mealPlan,omitempty"`
}

// Budget 預算
type Budget struct {
	Total    *float64 `bson:"total,omitempty" json:"total,omitempty"`
	Spent    float64  `bson:"spent" json:"spent"`
	Currency string   `bson:"currency" json:"currency"`
}

// Store 商店
type Store struct {
	Name      string `bson:"name" json:"name"`
	Location  string `bson:"location,omitempty" json:"location,omitempty"`
	Preferred bool   `bson:"preferred" json:"preferred"`
}

// List 獨立的採買清單
type List struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Name      string             `bson:"name" json:"name"`
	Items     []Item             `bson:"items" json:"items"`
	Status    string             `bson:"status" json:"status"`
	Budget    Budget             `bson:"budget" json:"budget"`
	Stores    []Store            `bson:"stores" json:"stores"`
	IsPublic  bool               `bson:"isPublic" json:"isPublic"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PurchasedItems 已購買數量
func (l *List) PurchasedItems() int {
	n := 0
	for _, it := range l.Items {
		if it.Purchased {
			n++
		}
	}
	return n
}

// CompletionPercentage round(已購買 / 全部 × 100)，沒有項目時為 0
func (l *List) CompletionPercentage() int {
	if len(l.Items) == 0 {
		return 0
	}
	return int(math.Round(float64(l.PurchasedItems()) / float64(len(l.Items)) * 100))
}

// RemainingBudget 未設定總預算時為 nil
func (l *List) RemainingBudget() *float64 {
	if l.Budget.Total == nil {
		return nil
	}
	remaining := *l.Budget.Total - l.Budget.Spent
	return &remaining
}

// MarshalJSON 附加推導欄位
func (l List) MarshalJSON() ([]byte, error) {
	type plain List
	return json.Marshal(struct {
		plain
		TotalItems           int      `json:"totalItems"`
		PurchasedItems       int      `json:"purchasedItems"`
		CompletionPercentage int      `json:"completionPercentage"`
		RemainingBudget      *float64 `json:"remainingBudget"`
	}{
		plain:                plain(l),
		TotalItems:           len(l.Items),
		PurchasedItems:       l.PurchasedItems(),
		CompletionPercentage: l.CompletionPercentage(),
		RemainingBudget:      l.RemainingBudget(),
	})
}

// Repository 採買清單儲存介面，找不到時回傳 ErrListNotFound
type Repository interface {
	Create(ctx context.Context, l *List) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*List, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, status string, skip, limit int) ([]*List, int64, error)
	Update(ctx context.Context, l *List) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
