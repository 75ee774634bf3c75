package notification_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"planeats/internal/core/mealplan"
	"planeats/internal/core/notification"
	"planeats/internal/infrastructure/store/memstore"
	"planeats/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_Defaults(t *testing.T) {
	svc := notification.NewService(memstore.NewNotificationRepository())
	n := &notification.Notification{User: primitive.NewObjectID(), Title: "Hello", Message: "Welcome aboard"}

	require.NoError(t, svc.Create(context.Background(), n))
	assert.False(t, n.ID.IsZero())
	assert.Equal(t, notification.TypeInfo, n.Type)
	assert.Equal(t, "medium", n.Priority)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestCreate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		n    notification.Notification
	}{
		{"type", notification.Notification{Title: "t", Message: "m", Type: "shout"}},
		{"priority", notification.Notification{Title: "t", Message: "m", Priority: "whenever"}},
		{"entity", notification.Notification{Title: "t", Message: "m", RelatedEntity: &notification.RelatedEntity{Type: "store"}}},
		{"empty title", notification.Notification{Message: "m"}},
		{"long title", notification.Notification{Title: strings.Repeat("x", 101), Message: "m"}},
		{"long message", notification.Notification{Title: "t", Message: strings.Repeat("x", 501)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := notification.NewService(memstore.NewNotificationRepository())
			n := tt.n
			err := svc.Create(context.Background(), &n)
			assert.True(t, common.IsValidationError(err), "got %v", err)
		})
	}
}

func TestListAndMarkRead(t *testing.T) {
	svc := notification.NewService(memstore.NewNotificationRepository())
	ctx := context.Background()
	userID := primitive.NewObjectID()

	var ids []primitive.ObjectID
	for _, title := range []string{"one", "two", "three"} {
		n := &notification.Notification{User: userID, Title: title, Message: "body"}
		require.NoError(t, svc.Create(ctx, n))
		ids = append(ids, n.ID)
	}
	require.NoError(t, svc.Create(ctx, &notification.Notification{User: primitive.NewObjectID(), Title: "other", Message: "body"}))

	modified, err := svc.MarkRead(ctx, userID, ids[:1])
	require.NoError(t, err)
	assert.EqualValues(t, 1, modified)

	unread := false
	items, total, err := svc.List(ctx, userID, &unread, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	modified, err = svc.MarkRead(ctx, userID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, modified)

	_, total, err = svc.List(ctx, userID, &unread, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = svc.List(ctx, userID, nil, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestDelete_OnlyOwner(t *testing.T) {
	svc := notification.NewService(memstore.NewNotificationRepository())
	ctx := context.Background()
	n := &notification.Notification{User: primitive.NewObjectID(), Title: "t", Message: "m"}
	require.NoError(t, svc.Create(ctx, n))

	err := svc.Delete(ctx, primitive.NewObjectID(), n.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, n.User, n.ID))
}

func TestDeleteOld(t *testing.T) {
	repo := memstore.NewNotificationRepository()
	svc := notification.NewService(repo)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	old := time.Now().AddDate(0, 0, -45)
	seed := []*notification.Notification{
		{User: userID, Title: "old read", Message: "m", Read: true, CreatedAt: old},
		{User: userID, Title: "old unread", Message: "m", CreatedAt: old},
		{User: userID, Title: "fresh read", Message: "m", Read: true, CreatedAt: time.Now()},
	}
	for _, n := range seed {
		require.NoError(t, repo.Create(ctx, n))
	}

	deleted, err := svc.DeleteOld(ctx, userID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, total, err := svc.List(ctx, userID, nil, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestMealPlanGenerated(t *testing.T) {
	svc := notification.NewService(memstore.NewNotificationRepository())
	ctx := context.Background()
	plan := &mealplan.MealPlan{ID: primitive.NewObjectID(), User: primitive.NewObjectID(), Title: "Lean week", Duration: 5}

	require.NoError(t, svc.MealPlanGenerated(ctx, plan))

	items, _, err := svc.List(ctx, plan.User, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	n := items[0]
	assert.Equal(t, notification.TypePlanUpdate, n.Type)
	assert.Contains(t, n.Message, `5-day meal plan "Lean week"`)
	require.NotNil(t, n.RelatedEntity)
	assert.Equal(t, plan.ID, n.RelatedEntity.ID)
	assert.Equal(t, "/mealplans/"+plan.ID.Hex(), n.ActionURL)
}
