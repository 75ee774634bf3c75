package mongostore

import (
	"context"
	"time"

	"planeats/internal/core/notification"
	"planeats/internal/infrastructure/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationRepository MongoDB 通知儲存
type NotificationRepository struct {
	coll *mongo.Collection
}

// NewNotificationRepository 創建通知儲存
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{coll: db.Collection(database.CollectionNotifications)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, read *bool, skip, limit int) ([]*notification.Notification, int64, error) {
	filter := bson.M{"user": userID}
	if read != nil {
		filter["read"] = *read
	}
	return findPage[notification.Notification](ctx, r.coll, filter, bson.D{{Key: "createdAt", Value: -1}}, skip, limit)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	filter := bson.M{"user": userID, "read": false}
	if len(ids) > 0 {
		filter["_id"] = bson.M{"$in": ids}
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id, "user": userID}, notification.ErrNotificationNotFound)
}

func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, userID primitive.ObjectID, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user": userID, "read": true, "createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
