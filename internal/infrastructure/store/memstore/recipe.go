package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"planeats/internal/core/recipe"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeRepository 記憶體食譜儲存
type RecipeRepository struct {
	mu      sync.RWMutex
	recipes map[primitive.ObjectID]*recipe.Recipe
}

// NewRecipeRepository 創建記憶體食譜儲存
func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{recipes: make(map[primitive.ObjectID]*recipe.Recipe)}
}

func (r *RecipeRepository) Create(_ context.Context, rc *recipe.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rc.ID.IsZero() {
		rc.ID = primitive.NewObjectID()
	}
	r.recipes[rc.ID] = clone(rc)
	return nil
}

func (r *RecipeRepository) FindByID(_ context.Context, id primitive.ObjectID) (*recipe.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rc, ok := r.recipes[id]
	if !ok {
		return nil, recipe.ErrRecipeNotFound
	}
	return clone(rc), nil
}

func (r *RecipeRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*recipe.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		if rc, ok := r.recipes[id]; ok {
			out = append(out, clone(rc))
		}
	}
	return out, nil
}

func (r *RecipeRepository) Find(_ context.Context, f recipe.Filter) ([]*recipe.Recipe, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*recipe.Recipe
	for _, rc := range r.recipes {
		if matchRecipe(rc, f) {
			matched = append(matched, rc)
		}
	}

	sortRecipes(matched, f.SortBy)
	total := int64(len(matched))
	return cloneAll(page(matched, f.Skip, f.Limit)), total, nil
}

func matchRecipe(rc *recipe.Recipe, f recipe.Filter) bool {
	if f.PublicOnly && !rc.IsPublic {
		return false
	}
	if f.Visibility != nil && rc.IsPublic != *f.Visibility {
		return false
	}
	if f.Author != nil && rc.Author != *f.Author {
		return false
	}
	if f.IDs != nil && !slices.Contains(f.IDs, rc.ID) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hit := strings.Contains(strings.ToLower(rc.Title), q) || strings.Contains(strings.ToLower(rc.Description), q)
		for _, ing := range rc.Ingredients {
			hit = hit || strings.Contains(strings.ToLower(ing.Name), q)
		}
		if !hit {
			return false
		}
	}
	if len(f.Ingredients) > 0 && !slices.ContainsFunc(rc.Ingredients, func(ing recipe.Ingredient) bool {
		name := strings.ToLower(ing.Name)
		return slices.ContainsFunc(f.Ingredients, func(want string) bool {
			return strings.Contains(name, strings.ToLower(want))
		})
	}) {
		return false
	}
	if !anyOf(rc.DietaryTags, f.DietaryTags) || !anyOf(rc.MealType, f.MealType) {
		return false
	}
	if len(f.Cuisine) > 0 && !slices.Contains(f.Cuisine, rc.Cuisine) {
		return false
	}
	if len(f.Difficulty) > 0 && !slices.Contains(f.Difficulty, rc.Difficulty) {
		return false
	}
	if f.MaxPrepTime > 0 && rc.PrepTime > f.MaxPrepTime {
		return false
	}
	if f.MaxCookTime > 0 && rc.CookTime > f.MaxCookTime {
		return false
	}
	return true
}

// anyOf 與 MongoDB $in 相同：wanted 為空時一律成立
func anyOf(have, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	return slices.ContainsFunc(have, func(h string) bool { return slices.Contains(wanted, h) })
}

func sortRecipes(rs []*recipe.Recipe, by string) {
	var less func(a, b *recipe.Recipe) bool
	switch by {
	case "oldest":
		less = func(a, b *recipe.Recipe) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "rating":
		less = func(a, b *recipe.Recipe) bool {
			if a.Rating.Average != b.Rating.Average {
				return a.Rating.Average > b.Rating.Average
			}
			return a.Favorites > b.Favorites
		}
	case "prepTime":
		less = func(a, b *recipe.Recipe) bool { return a.PrepTime < b.PrepTime }
	case "totalTime":
		less = func(a, b *recipe.Recipe) bool {
			if a.PrepTime != b.PrepTime {
				return a.PrepTime < b.PrepTime
			}
			return a.CookTime < b.CookTime
		}
	default:
		less = func(a, b *recipe.Recipe) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(rs, func(i, j int) bool { return less(rs[i], rs[j]) })
}

func (r *RecipeRepository) Update(_ context.Context, rc *recipe.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recipes[rc.ID]; !ok {
		return recipe.ErrRecipeNotFound
	}
	r.recipes[rc.ID] = clone(rc)
	return nil
}

func (r *RecipeRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recipes[id]; !ok {
		return recipe.ErrRecipeNotFound
	}
	delete(r.recipes, id)
	return nil
}

func (r *RecipeRepository) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(rc *recipe.Recipe) { rc.Views++ })
}

func (r *RecipeRepository) IncrementFavorites(_ context.Context, id primitive.ObjectID, delta int) error {
	return r.mutate(id, func(rc *recipe.Recipe) { rc.Favorites += delta })
}

func (r *RecipeRepository) mutate(id primitive.ObjectID, fn func(*recipe.Recipe)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rc, ok := r.recipes[id]
	if !ok {
		return recipe.ErrRecipeNotFound
	}
	fn(rc)
	return nil
}

func (r *RecipeRepository) Categories(_ context.Context) (*recipe.Categories, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cuisines, mealTypes, tags, difficulties, allergens []string
	for _, rc := range r.recipes {
		if !rc.IsPublic {
			continue
		}
		if rc.Cuisine != "" {
			cuisines = append(cuisines, rc.Cuisine)
		}
		mealTypes = append(mealTypes, rc.MealType...)
		tags = append(tags, rc.DietaryTags...)
		difficulties = append(difficulties, rc.Difficulty)
		allergens = append(allergens, rc.Allergens...)
	}
	return &recipe.Categories{
		Cuisines:     distinct(cuisines),
		MealTypes:    distinct(mealTypes),
		DietaryTags:  distinct(tags),
		Difficulties: distinct(difficulties),
		Allergens:    distinct(allergens),
	}, nil
}

func distinct(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}
