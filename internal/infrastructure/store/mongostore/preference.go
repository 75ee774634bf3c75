package mongostore

import (
	"context"

	"planeats/internal/core/preference"
	"planeats/internal/infrastructure/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PreferenceRepository MongoDB 偏好儲存，每位使用者一份文件
type PreferenceRepository struct {
	coll *mongo.Collection
}

// NewPreferenceRepository 創建偏好儲存
func NewPreferenceRepository(db *mongo.Database) *PreferenceRepository {
	return &PreferenceRepository{coll: db.Collection(database.CollectionPreferences)}
}

func (r *PreferenceRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*preference.Preference, error) {
	return findOne[preference.Preference](ctx, r.coll, bson.M{"user": userID}, preference.ErrPreferenceNotFound)
}

func (r *PreferenceRepository) Upsert(ctx context.Context, p *preference.Preference) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"user": p.User}, p, options.Replace().SetUpsert(true))
	return err
}

func (r *PreferenceRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"user": userID}, preference.ErrPreferenceNotFound)
}
