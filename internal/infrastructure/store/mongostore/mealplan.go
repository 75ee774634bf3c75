package mongostore

import (
	"context"

	"planeats/internal/core/mealplan"
	"planeats/internal/infrastructure/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MealPlanRepository MongoDB 餐計畫儲存
type MealPlanRepository struct {
	coll *mongo.Collection
}

// NewMealPlanRepository 創建餐計畫儲存
func NewMealPlanRepository(db *mongo.Database) *MealPlanRepository {
	return &MealPlanRepository{coll: db.Collection(database.CollectionMealPlans)}
}

func (r *MealPlanRepository) Create(ctx context.Context, p *mealplan.MealPlan) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.Revision = 0
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *MealPlanRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*mealplan.MealPlan, error) {
	return findOne[mealplan.MealPlan](ctx, r.coll, bson.M{"_id": id}, mealplan.ErrMealPlanNotFound)
}

func (r *MealPlanRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, opts mealplan.ListOptions) ([]*mealplan.MealPlan, int64, error) {
	filter := bson.M{"user": userID}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}
	return findPage[mealplan.MealPlan](ctx, r.coll, filter, bson.D{{Key: "createdAt", Value: -1}}, opts.Skip, opts.Limit)
}

// Update 只在 revision 未變時覆寫，並將 revision 加一
func (r *MealPlanRepository) Update(ctx context.Context, p *mealplan.MealPlan) error {
	expected := p.Revision
	p.Revision = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID, "revision": expected}, p)
	if err != nil {
		p.Revision = expected
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	p.Revision = expected
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": p.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return mealplan.ErrMealPlanNotFound
	}
	return mealplan.ErrRevisionConflict
}

func (r *MealPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id}, mealplan.ErrMealPlanNotFound)
}

func (r *MealPlanRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"user": userID})
	return err
}
