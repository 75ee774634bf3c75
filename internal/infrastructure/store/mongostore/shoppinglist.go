package mongostore

import (
	"context"

	"planeats/internal/core/shoppinglist"
	"planeats/internal/infrastructure/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ShoppingListRepository MongoDB 採買清單儲存
type ShoppingListRepository struct {
	coll *mongo.Collection
}

// NewShoppingListRepository 創建採買清單儲存
func NewShoppingListRepository(db *mongo.Database) *ShoppingListRepository {
	return &ShoppingListRepository{coll: db.Collection(database.CollectionShoppingLists)}
}

func (r *ShoppingListRepository) Create(ctx context.Context, l *shoppinglist.List) error {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, l)
	return err
}

func (r *ShoppingListRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*shoppinglist.List, error) {
	return findOne[shoppinglist.List](ctx, r.coll, bson.M{"_id": id}, shoppinglist.ErrListNotFound)
}

func (r *ShoppingListRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, status string, skip, limit int) ([]*shoppinglist.List, int64, error) {
	filter := bson.M{"user": userID}
	if status != "" {
		filter["status"] = status
	}
	return findPage[shoppinglist.List](ctx, r.coll, filter, bson.D{{Key: "updatedAt", Value: -1}}, skip, limit)
}

func (r *ShoppingListRepository) Update(ctx context.Context, l *shoppinglist.List) error {
	return replaceByID(ctx, r.coll, l.ID, l, shoppinglist.ErrListNotFound)
}

func (r *ShoppingListRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id}, shoppinglist.ErrListNotFound)
}
