package memstore

import (
	"context"
	"sort"
	"sync"

	"planeats/internal/core/mealplan"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlanRepository 記憶體餐計畫儲存，Update 以 revision 做樂觀鎖
type MealPlanRepository struct {
	mu    sync.RWMutex
	plans map[primitive.ObjectID]*mealplan.MealPlan
}

// NewMealPlanRepository 創建記憶體餐計畫儲存
func NewMealPlanRepository() *MealPlanRepository {
	return &MealPlanRepository{plans: make(map[primitive.ObjectID]*mealplan.MealPlan)}
}

func (r *MealPlanRepository) Create(_ context.Context, p *mealplan.MealPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.Revision = 0
	r.plans[p.ID] = clone(p)
	return nil
}

func (r *MealPlanRepository) FindByID(_ context.Context, id primitive.ObjectID) (*mealplan.MealPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok {
		return nil, mealplan.ErrMealPlanNotFound
	}
	return clone(p), nil
}

func (r *MealPlanRepository) FindByUser(_ context.Context, userID primitive.ObjectID, opts mealplan.ListOptions) ([]*mealplan.MealPlan, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*mealplan.MealPlan
	for _, p := range r.plans {
		if p.User != userID || (opts.Status != "" && p.Status != opts.Status) {
			continue
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	return cloneAll(page(matched, opts.Skip, opts.Limit)), total, nil
}

func (r *MealPlanRepository) Update(_ context.Context, p *mealplan.MealPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.plans[p.ID]
	if !ok {
		return mealplan.ErrMealPlanNotFound
	}
	if current.Revision != p.Revision {
		return mealplan.ErrRevisionConflict
	}
	p.Revision++
	r.plans[p.ID] = clone(p)
	return nil
}

func (r *MealPlanRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[id]; !ok {
		return mealplan.ErrMealPlanNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *MealPlanRepository) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.plans {
		if p.User == userID {
			delete(r.plans, id)
		}
	}
	return nil
}
