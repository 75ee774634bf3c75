package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"planeats/internal/core/notification"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationRepository 記憶體通知儲存
type NotificationRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*notification.Notification
	now   func() time.Time
}

// NewNotificationRepository 創建記憶體通知儲存
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[primitive.ObjectID]*notification.Notification), now: time.Now}
}

func (r *NotificationRepository) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	r.items[n.ID] = clone(n)
	return nil
}

func (r *NotificationRepository) FindByUser(_ context.Context, userID primitive.ObjectID, read *bool, skip, limit int) ([]*notification.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*notification.Notification
	for _, n := range r.items {
		if n.User != userID || (read != nil && n.Read != *read) {
			continue
		}
		matched = append(matched, n)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	return cloneAll(page(matched, skip, limit)), total, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var modified int64
	for _, n := range r.items {
		if n.User != userID || n.Read {
			continue
		}
		if len(ids) > 0 && !slices.Contains(ids, n.ID) {
			continue
		}
		n.Read = true
		n.UpdatedAt = r.now()
		modified++
	}
	return modified, nil
}

func (r *NotificationRepository) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.User != userID {
		return notification.ErrNotificationNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *NotificationRepository) DeleteReadBefore(_ context.Context, userID primitive.ObjectID, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, n := range r.items {
		if n.User == userID && n.Read && n.CreatedAt.Before(cutoff) {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}
