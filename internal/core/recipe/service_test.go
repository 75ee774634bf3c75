package recipe_test

import (
	"context"
	"testing"

	"planeats/internal/core/recipe"
	"planeats/internal/infrastructure/store/memstore"
	"planeats/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeFavorites 以 map 記錄收藏
type fakeFavorites struct {
	saved map[primitive.ObjectID][]primitive.ObjectID
}

func (f *fakeFavorites) ToggleSavedRecipe(_ context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	list := f.saved[userID]
	for i, id := range list {
		if id == recipeID {
			f.saved[userID] = append(list[:i], list[i+1:]...)
			return false, nil
		}
	}
	f.saved[userID] = append(list, recipeID)
	return true, nil
}

func (f *fakeFavorites) SavedRecipeIDs(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return f.saved[userID], nil
}

func newService() (*recipe.Service, *memstore.RecipeRepository) {
	repo := memstore.NewRecipeRepository()
	favs := &fakeFavorites{saved: make(map[primitive.ObjectID][]primitive.ObjectID)}
	return recipe.NewService(repo, favs), repo
}

func validInput(title string) recipe.Input {
	return recipe.Input{
		Title:       title,
		Description: "A simple weeknight dish",
		Ingredients: []recipe.Ingredient{
			{Name: "Chicken thigh", Amount: 500, Unit: "g"},
			{Name: "Garlic", Amount: 3, Unit: "clove"},
		},
		Instructions: []recipe.Instruction{{Description: "Sear"}, {Description: "Roast"}},
		Servings:     4,
		PrepTime:     10,
		CookTime:     30,
		Cuisine:      "french",
		MealType:     []string{"dinner"},
		DietaryTags:  []string{"high-protein"},
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	svc, _ := newService()
	author := primitive.NewObjectID()

	r, err := svc.Create(context.Background(), author, validInput("Garlic chicken"))
	require.NoError(t, err)

	assert.False(t, r.ID.IsZero())
	assert.Equal(t, author, r.Author)
	assert.True(t, r.IsPublic)
	assert.Equal(t, "medium", r.Difficulty)
	assert.Equal(t, "user", r.Source)
	assert.Equal(t, 1, r.Instructions[0].Step)
	assert.Equal(t, 2, r.Instructions[1].Step)
	assert.Equal(t, 40, r.TotalTime())
	assert.NotNil(t, r.Allergens)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService()

	mutations := map[string]func(*recipe.Input){
		"short title":     func(in *recipe.Input) { in.Title = "ab" },
		"short desc":      func(in *recipe.Input) { in.Description = "short" },
		"no ingredients":  func(in *recipe.Input) { in.Ingredients = nil },
		"bad unit":        func(in *recipe.Input) { in.Ingredients[0].Unit = "bucket" },
		"no instructions": func(in *recipe.Input) { in.Instructions = nil },
		"zero servings":   func(in *recipe.Input) { in.Servings = 0 },
		"bad meal type":   func(in *recipe.Input) { in.MealType = []string{"brunch"} },
		"bad dietary tag": func(in *recipe.Input) { in.DietaryTags = []string{"carnivore"} },
		"bad difficulty":  func(in *recipe.Input) { in.Difficulty = "extreme" },
		"bad cuisine":     func(in *recipe.Input) { in.Cuisine = "martian" },
		"negative prep":   func(in *recipe.Input) { in.PrepTime = -1 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validInput("Garlic chicken")
			mutate(&in)
			_, err := svc.Create(context.Background(), primitive.NewObjectID(), in)
			assert.True(t, common.IsValidationError(err), "got %v", err)
		})
	}
}

func TestGet_PrivateRecipesAndViews(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	author := primitive.NewObjectID()
	private := false
	in := validInput("Secret stew")
	in.IsPublic = &private
	r, err := svc.Create(ctx, author, in)
	require.NoError(t, err)

	_, err = svc.Get(ctx, r.ID, nil)
	assert.ErrorIs(t, err, common.ErrForbidden)

	stranger := primitive.NewObjectID()
	_, err = svc.Get(ctx, r.ID, &stranger)
	assert.ErrorIs(t, err, common.ErrForbidden)

	got, err := svc.Get(ctx, r.ID, &author)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)

	got, err = svc.Get(ctx, r.ID, &author)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	_, err = svc.Get(ctx, primitive.NewObjectID(), nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateAndDelete_AuthorOnly(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	author := primitive.NewObjectID()
	r, err := svc.Create(ctx, author, validInput("Garlic chicken"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, primitive.NewObjectID(), r.ID, validInput("Hijacked"))
	assert.ErrorIs(t, err, common.ErrForbidden)

	updated, err := svc.Update(ctx, author, r.ID, validInput("Lemon garlic chicken"))
	require.NoError(t, err)
	assert.Equal(t, "Lemon garlic chicken", updated.Title)

	assert.ErrorIs(t, svc.Delete(ctx, primitive.NewObjectID(), r.ID), common.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, author, r.ID))
	_, err = svc.Get(ctx, r.ID, &author)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAddReview_OnePerUser(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	r, err := svc.Create(ctx, primitive.NewObjectID(), validInput("Garlic chicken"))
	require.NoError(t, err)
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	_, err = svc.AddReview(ctx, alice, r.ID, 5, "Great")
	require.NoError(t, err)
	got, err := svc.AddReview(ctx, bob, r.ID, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3.5, got.Rating.Average)
	assert.Equal(t, 2, got.Rating.Count)

	got, err = svc.AddReview(ctx, bob, r.ID, 4, "Better the second time")
	require.NoError(t, err)
	assert.Len(t, got.Reviews, 2)
	assert.Equal(t, 4.5, got.Rating.Average)

	_, err = svc.AddReview(ctx, bob, r.ID, 0, "")
	assert.True(t, common.IsValidationError(err))
}

func TestToggleFavorite(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	r, err := svc.Create(ctx, primitive.NewObjectID(), validInput("Garlic chicken"))
	require.NoError(t, err)
	fan := primitive.NewObjectID()

	saved, count, err := svc.ToggleFavorite(ctx, fan, r.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, count)

	favs, total, err := svc.ListFavorites(ctx, fan, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, r.ID, favs[0].ID)

	saved, count, err = svc.ToggleFavorite(ctx, fan, r.ID)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 0, count)

	stored, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Favorites)

	favs, total, err = svc.ListFavorites(ctx, fan, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, favs)
}

func TestList_FiltersAndVisibility(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	author := primitive.NewObjectID()

	quick := validInput("Quick salad")
	quick.Ingredients = []recipe.Ingredient{{Name: "Lettuce", Amount: 1, Unit: "piece"}}
	quick.PrepTime, quick.CookTime = 5, 0
	quick.MealType = []string{"lunch"}
	quick.DietaryTags = []string{"vegan"}
	quick.Cuisine = "greek"
	_, err := svc.Create(ctx, author, quick)
	require.NoError(t, err)

	_, err = svc.Create(ctx, author, validInput("Garlic chicken"))
	require.NoError(t, err)

	private := false
	hidden := validInput("Hidden chicken")
	hidden.IsPublic = &private
	_, err = svc.Create(ctx, author, hidden)
	require.NoError(t, err)

	all, total, err := svc.List(ctx, recipe.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	byIngredient, _, err := svc.List(ctx, recipe.Filter{Ingredients: []string{"chicken"}})
	require.NoError(t, err)
	require.Len(t, byIngredient, 1)
	assert.Equal(t, "Garlic chicken", byIngredient[0].Title)

	bySearch, _, err := svc.List(ctx, recipe.Filter{Search: "LETTUCE"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Quick salad", bySearch[0].Title)

	byTag, _, err := svc.List(ctx, recipe.Filter{DietaryTags: []string{"vegan", "keto"}, MaxPrepTime: 5})
	require.NoError(t, err)
	assert.Len(t, byTag, 1)

	sorted, _, err := svc.List(ctx, recipe.Filter{SortBy: "prepTime"})
	require.NoError(t, err)
	assert.Equal(t, "Quick salad", sorted[0].Title)

	mine, total, err := svc.ListByAuthor(ctx, author, "private", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Hidden chicken", mine[0].Title)

	_, total, err = svc.ListByAuthor(ctx, author, "all", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"french", "greek"}, cats.Cuisines)
	assert.Equal(t, []string{"dinner", "lunch"}, cats.MealTypes)
}
