package mongostore

import (
	"context"

	"planeats/internal/core/recipe"
	"planeats/internal/infrastructure/database"
	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RecipeRepository MongoDB 食譜儲存
type RecipeRepository struct {
	coll *mongo.Collection
}

// NewRecipeRepository 創建食譜儲存
func NewRecipeRepository(db *mongo.Database) *RecipeRepository {
	return &RecipeRepository{coll: db.Collection(database.CollectionRecipes)}
}

func (r *RecipeRepository) Create(ctx context.Context, rc *recipe.Recipe) error {
	if rc.ID.IsZero() {
		rc.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, rc)
	return err
}

func (r *RecipeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*recipe.Recipe, error) {
	return findOne[recipe.Recipe](ctx, r.coll, bson.M{"_id": id}, recipe.ErrRecipeNotFound)
}

func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*recipe.Recipe, error) {
	if len(ids) == 0 {
		return []*recipe.Recipe{}, nil
	}
	out, _, err := findPage[recipe.Recipe](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}}, nil, 0, 0)
	return out, err
}

func (r *RecipeRepository) Find(ctx context.Context, f recipe.Filter) ([]*recipe.Recipe, int64, error) {
	return findPage[recipe.Recipe](ctx, r.coll, recipeQuery(f), recipeSort(f.SortBy), f.Skip, f.Limit)
}

// recipeQuery 將 Filter 轉成查詢條件，多值欄位以 $in 比對
func recipeQuery(f recipe.Filter) bson.M {
	q := bson.M{}
	if f.PublicOnly {
		q["isPublic"] = true
	}
	if f.Visibility != nil {
		q["isPublic"] = *f.Visibility
	}
	if f.Author != nil {
		q["author"] = *f.Author
	}
	if f.IDs != nil {
		q["_id"] = bson.M{"$in": f.IDs}
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: common.EscapeRegex(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"ingredients.name": re},
		}
	}
	if len(f.Ingredients) > 0 {
		patterns := bson.A{}
		for _, ing := range f.Ingredients {
			patterns = append(patterns, primitive.Regex{Pattern: common.EscapeRegex(ing), Options: "i"})
		}
		q["ingredients.name"] = bson.M{"$in": patterns}
	}
	in := func(field string, values []string) {
		if len(values) > 0 {
			q[field] = bson.M{"$in": values}
		}
	}
	in("dietaryTags", f.DietaryTags)
	in("mealType", f.MealType)
	in("cuisine", f.Cuisine)
	in("difficulty", f.Difficulty)
	if f.MaxPrepTime > 0 {
		q["prepTime"] = bson.M{"$lte": f.MaxPrepTime}
	}
	if f.MaxCookTime > 0 {
		q["cookTime"] = bson.M{"$lte": f.MaxCookTime}
	}
	return q
}

func recipeSort(by string) bson.D {
	switch by {
	case "rating":
		return bson.D{{Key: "rating.average", Value: -1}, {Key: "favorites", Value: -1}}
	case "oldest":
		return bson.D{{Key: "createdAt", Value: 1}}
	case "prepTime":
		return bson.D{{Key: "prepTime", Value: 1}}
	case "totalTime":
		return bson.D{{Key: "prepTime", Value: 1}, {Key: "cookTime", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func (r *RecipeRepository) Update(ctx context.Context, rc *recipe.Recipe) error {
	return replaceByID(ctx, r.coll, rc.ID, rc, recipe.ErrRecipeNotFound)
}

func (r *RecipeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id}, recipe.ErrRecipeNotFound)
}

func (r *RecipeRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	return r.inc(ctx, id, "views", 1)
}

func (r *RecipeRepository) IncrementFavorites(ctx context.Context, id primitive.ObjectID, delta int) error {
	return r.inc(ctx, id, "favorites", delta)
}

func (r *RecipeRepository) inc(ctx context.Context, id primitive.ObjectID, field string, delta int) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

func (r *RecipeRepository) Categories(ctx context.Context) (*recipe.Categories, error) {
	public := bson.M{"isPublic": true}
	distinct := func(field string) ([]string, error) {
		values, err := r.coll.Distinct(ctx, field, public)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(values))
		for _, v := range values {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}

	var (
		c   recipe.Categories
		err error
	)
	if c.Cuisines, err = distinct("cuisine"); err != nil {
		return nil, err
	}
	if c.MealTypes, err = distinct("mealType"); err != nil {
		return nil, err
	}
	if c.DietaryTags, err = distinct("dietaryTags"); err != nil {
		return nil, err
	}
	if c.Difficulties, err = distinct("difficulty"); err != nil {
		return nil, err
	}
	if c.Allergens, err = distinct("allergens"); err != nil {
		return nil, err
	}
	return &c, nil
}
