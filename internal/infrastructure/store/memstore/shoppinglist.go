package memstore

import (
	"context"
	"sort"
	"sync"

	"planeats/internal/core/shoppinglist"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShoppingListRepository 記憶體採買清單儲存
type ShoppingListRepository struct {
	mu    sync.RWMutex
	lists map[primitive.ObjectID]*shoppinglist.List
}

// NewShoppingListRepository 創建記憶體採買清單儲存
func NewShoppingListRepository() *ShoppingListRepository {
	return &ShoppingListRepository{lists: make(map[primitive.ObjectID]*shoppinglist.List)}
}

func (r *ShoppingListRepository) Create(_ context.Context, l *shoppinglist.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	r.lists[l.ID] = clone(l)
	return nil
}

func (r *ShoppingListRepository) FindByID(_ context.Context, id primitive.ObjectID) (*shoppinglist.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lists[id]
	if !ok {
		return nil, shoppinglist.ErrListNotFound
	}
	return clone(l), nil
}

func (r *ShoppingListRepository) FindByUser(_ context.Context, userID primitive.ObjectID, status string, skip, limit int) ([]*shoppinglist.List, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*shoppinglist.List
	for _, l := range r.lists {
		if l.User != userID || (status != "" && l.Status != status) {
			continue
		}
		matched = append(matched, l)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].UpdatedAt.After(matched[j].UpdatedAt) })

	total := int64(len(matched))
	return cloneAll(page(matched, skip, limit)), total, nil
}

func (r *ShoppingListRepository) Update(_ context.Context, l *shoppinglist.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lists[l.ID]; !ok {
		return shoppinglist.ErrListNotFound
	}
	r.lists[l.ID] = clone(l)
	return nil
}

func (r *ShoppingListRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lists[id]; !ok {
		return shoppinglist.ErrListNotFound
	}
	delete(r.lists, id)
	return nil
}
