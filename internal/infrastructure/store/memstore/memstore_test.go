package memstore

import (
	"context"
	"testing"
	"time"

	"planeats/internal/core/mealplan"
	"planeats/internal/core/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, page(items, 0, 0))
	assert.Equal(t, []int{3, 4}, page(items, 2, 2))
	assert.Equal(t, []int{5}, page(items, 4, 10))
	assert.Empty(t, page(items, 9, 2))
	assert.Equal(t, []int{1, 2}, page(items, -1, 2))
}

func TestClone_IsDeepAndTruncatesToMillis(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 30, 0, 123456789, time.UTC)
	p := &mealplan.MealPlan{Title: "Copy", Tags: []string{"a"}, CreatedAt: at}

	c := clone(p)
	c.Tags[0] = "b"

	assert.Equal(t, "a", p.Tags[0])
	assert.True(t, c.CreatedAt.Equal(at.Truncate(time.Millisecond)))
}

func TestUserRepository_Uniqueness(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &user.User{Username: "sam", Email: "sam@example.com"}))

	err := repo.Create(ctx, &user.User{Username: "sam2", Email: "sam@example.com"})
	assert.ErrorIs(t, err, user.ErrUserExists)
	err = repo.Create(ctx, &user.User{Username: "sam", Email: "other@example.com"})
	assert.ErrorIs(t, err, user.ErrUserExists)

	got, err := repo.FindByUsername(ctx, "sam")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", got.Email)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestMealPlanRepository_Revision(t *testing.T) {
	repo := NewMealPlanRepository()
	ctx := context.Background()

	p := &mealplan.MealPlan{User: primitive.NewObjectID(), Title: "Rev"}
	require.NoError(t, repo.Create(ctx, p))

	first, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)

	first.Title = "first"
	require.NoError(t, repo.Update(ctx, first))
	assert.EqualValues(t, 1, first.Revision)

	second.Title = "second"
	assert.ErrorIs(t, repo.Update(ctx, second), mealplan.ErrRevisionConflict)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Title)
}

func TestMealPlanRepository_FindByUser(t *testing.T) {
	repo := NewMealPlanRepository()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, status := range []string{mealplan.StatusDraft, mealplan.StatusActive, mealplan.StatusActive} {
		require.NoError(t, repo.Create(ctx, &mealplan.MealPlan{
			User:      owner,
			Title:     status,
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(ctx, &mealplan.MealPlan{User: primitive.NewObjectID(), Status: mealplan.StatusActive}))

	plans, total, err := repo.FindByUser(ctx, owner, mealplan.ListOptions{Status: mealplan.StatusActive, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, plans, 1)
	assert.True(t, plans[0].CreatedAt.Equal(base.Add(2*time.Hour)))
}
