package notification

import (
	"context"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"planeats/internal/core/mealplan"
	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 通知類型
const (
	TypeInfo         = "info"
	TypeSuccess      = "success"
	TypeWarning      = "warning"
	TypeError        = "error"
	TypeMealReminder = "meal-reminder"
	TypePlanUpdate   = "plan-update"
)

var (
	// Types 允許的通知類型
	Types = []string{TypeInfo, TypeSuccess, TypeWarning, TypeError, TypeMealReminder, TypePlanUpdate}
	// Priorities 允許的優先度
	Priorities = []string{"low", "medium", "high", "urgent"}
	// EntityTypes 關聯實體類型
	EntityTypes = []string{"recipe", "mealplan", "user", "system"}
)

// ErrNotificationNotFound 找不到通知
var ErrNotificationNotFound = common.ErrNotFound.WithMessage("Notification not found or you do not have permission to delete it")

// RetentionDays 已讀通知保留天數
const RetentionDays = 30

// RelatedEntity 通知關聯的資源
type RelatedEntity struct {
	Type string             `bson:"type" json:"type"`
	ID   primitive.ObjectID `bson:"id" json:"id"`
}

// Notification 使用者通知
type Notification struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User           primitive.ObjectID `bson:"user" json:"user"`
	Title          string             `bson:"title" json:"title"`
	Message        string             `bson:"message" json:"message"`
	Type           string             `bson:"type" json:"type"`
	Read           bool               `bson:"read" json:"read"`
	RelatedEntity  *RelatedEntity     `bson:"relatedEntity,omitempty" json:"relatedEntity,omitempty"`
	Priority       string             `bson:"priority" json:"priority"`
	ActionRequired bool               `bson:"actionRequired" json:"actionRequired"`
	ActionURL      string             `bson:"actionUrl,omitempty" json:"actionUrl,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Repository 通知儲存介面
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	FindByUser(ctx context.Context, userID primitive.ObjectID, read *bool, skip, limit int) ([]*Notification, int64, error)
	// MarkRead ids 為空時標記該使用者所有未讀通知
	MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
	DeleteReadBefore(ctx context.Context, userID primitive.ObjectID, cutoff time.Time) (int64, error)
}

// Service 通知服務
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService 創建通知服務
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create 建立通知，type 與 priority 預設為 info 與 medium
func (s *Service) Create(ctx context.Context, n *Notification) error {
	if n.Type == "" {
		n.Type = TypeInfo
	}
	if n.Priority == "" {
		n.Priority = "medium"
	}
	switch {
	case !slices.Contains(Types, n.Type):
		return common.NewValidationError("Invalid notification type")
	case !slices.Contains(Priorities, n.Priority):
		return common.NewValidationError("Invalid priority")
	case n.RelatedEntity != nil && !slices.Contains(EntityTypes, n.RelatedEntity.Type):
		return common.NewValidationError("Invalid related entity type")
	case n.Title == "" || utf8.RuneCountInString(n.Title) > 100:
		return common.NewValidationError("Title is required and cannot exceed 100 characters")
	case n.Message == "" || utf8.RuneCountInString(n.Message) > 500:
		return common.NewValidationError("Message is required and cannot exceed 500 characters")
	}

	now := s.now()
	n.CreatedAt = now
	n.UpdatedAt = now
	return s.repo.Create(ctx, n)
}

// List 使用者通知，read 為 nil 時不篩選
func (s *Service) List(ctx context.Context, userID primitive.ObjectID, read *bool, skip, limit int) ([]*Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, read, skip, limit)
}

// MarkRead 標記已讀
func (s *Service) MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	return s.repo.MarkRead(ctx, userID, ids)
}

// Delete 刪除一則通知
func (s *Service) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, userID, id)
}

// DeleteOld 刪除超過 days 天的已讀通知
func (s *Service) DeleteOld(ctx context.Context, userID primitive.ObjectID, days int) (int64, error) {
	if days <= 0 {
		days = RetentionDays
	}
	return s.repo.DeleteReadBefore(ctx, userID, s.now().AddDate(0, 0, -days))
}

// MealPlanGenerated AI 餐計畫生成後通知擁有者
func (s *Service) MealPlanGenerated(ctx context.Context, plan *mealplan.MealPlan) error {
	title := "Meal plan ready"
	return s.Create(ctx, &Notification{
		User:          plan.User,
		Title:         title,
		Message:       truncate(fmt.Sprintf("Your %d-day meal plan \"%s\" has been generated.", plan.Duration, plan.Title), 500),
		Type:          TypePlanUpdate,
		RelatedEntity: &RelatedEntity{Type: "mealplan", ID: plan.ID},
		ActionURL:     "/mealplans/" + plan.ID.Hex(),
	})
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
