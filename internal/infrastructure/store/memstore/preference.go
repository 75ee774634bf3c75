package memstore

import (
	"context"
	"sync"

	"planeats/internal/core/preference"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PreferenceRepository 記憶體偏好儲存，以使用者 ID 為鍵
type PreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[primitive.ObjectID]*preference.Preference
}

// NewPreferenceRepository 創建記憶體偏好儲存
func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{prefs: make(map[primitive.ObjectID]*preference.Preference)}
}

func (r *PreferenceRepository) FindByUser(_ context.Context, userID primitive.ObjectID) (*preference.Preference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[userID]
	if !ok {
		return nil, preference.ErrPreferenceNotFound
	}
	return clone(p), nil
}

func (r *PreferenceRepository) Upsert(_ context.Context, p *preference.Preference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.prefs[p.User] = clone(p)
	return nil
}

func (r *PreferenceRepository) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prefs[userID]; !ok {
		return preference.ErrPreferenceNotFound
	}
	delete(r.prefs, userID)
	return nil
}
