package mongostore

import (
	"context"

	"planeats/internal/core/user"
	"planeats/internal/infrastructure/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository MongoDB 使用者儲存
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository 創建使用者儲存
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(database.CollectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*user.User, error) {
	return findOne[user.User](ctx, r.coll, bson.M{"_id": id}, user.ErrUserNotFound)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return findOne[user.User](ctx, r.coll, bson.M{"email": email}, user.ErrUserNotFound)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return findOne[user.User](ctx, r.coll, bson.M{"username": username}, user.ErrUserNotFound)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	return replaceByID(ctx, r.coll, u.ID, u, user.ErrUserNotFound)
}
