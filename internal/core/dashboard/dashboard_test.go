package dashboard_test

import (
	"context"
	"testing"
	"time"

	"planeats/internal/core/dashboard"
	"planeats/internal/core/mealplan"
	"planeats/internal/core/recipe"
	"planeats/internal/core/user"
	"planeats/internal/infrastructure/store/memstore"
	"planeats/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestGet(t *testing.T) {
	ctx := context.Background()
	users := user.NewService(memstore.NewUserRepository(), user.NewTokenManager("dash-secret", time.Hour), bcrypt.MinCost)
	recipeRepo := memstore.NewRecipeRepository()
	recipes := recipe.NewService(recipeRepo, users)
	planRepo := memstore.NewMealPlanRepository()
	plans := mealplan.NewService(planRepo, recipeRepo, nil, nil, nil)
	svc := dashboard.NewService(users, plans, recipes)

	u, _, err := users.Register(ctx, user.RegisterInput{Username: "dana", Email: "dana@example.com", Password: "Secret123"})
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	statuses := []string{
		mealplan.StatusActive, mealplan.StatusActive, mealplan.StatusCompleted,
		mealplan.StatusDraft, mealplan.StatusDraft, mealplan.StatusDraft, mealplan.StatusPaused,
	}
	for i, status := range statuses {
		require.NoError(t, planRepo.Create(ctx, &mealplan.MealPlan{
			User:      u.ID,
			Title:     status,
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, planRepo.Create(ctx, &mealplan.MealPlan{User: primitive.NewObjectID(), Status: mealplan.StatusActive}))

	for i := 0; i < 8; i++ {
		r := &recipe.Recipe{Title: "Recipe", Author: u.ID, IsPublic: true}
		require.NoError(t, recipeRepo.Create(ctx, r))
		_, _, err := recipes.ToggleFavorite(ctx, u.ID, r.ID)
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, "dana", got.User.Username)
	assert.Equal(t, dashboard.Stats{
		TotalMealPlans:     7,
		ActiveMealPlans:    2,
		CompletedMealPlans: 1,
		SavedRecipes:       8,
	}, got.Stats)
	require.Len(t, got.RecentMealPlans, 5)
	assert.Equal(t, mealplan.StatusPaused, got.RecentMealPlans[0].Status)
	assert.Len(t, got.FavoriteRecipes, 6)
}

func TestGet_EmptyAndMissingUser(t *testing.T) {
	ctx := context.Background()
	users := user.NewService(memstore.NewUserRepository(), user.NewTokenManager("dash-secret", time.Hour), bcrypt.MinCost)
	recipeRepo := memstore.NewRecipeRepository()
	svc := dashboard.NewService(users,
		mealplan.NewService(memstore.NewMealPlanRepository(), recipeRepo, nil, nil, nil),
		recipe.NewService(recipeRepo, users),
	)

	u, _, err := users.Register(ctx, user.RegisterInput{Username: "eli", Email: "eli@example.com", Password: "Secret123"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Stats{}, got.Stats)
	assert.NotNil(t, got.RecentMealPlans)
	assert.NotNil(t, got.FavoriteRecipes)

	_, err = svc.Get(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
