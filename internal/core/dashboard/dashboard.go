package dashboard

import (
	"context"

	"planeats/internal/core/mealplan"
	"planeats/internal/core/recipe"
	"planeats/internal/core/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	recentPlanLimit     = 5
	favoriteRecipeLimit = 6
)

// Users 讀取使用者
type Users interface {
	Get(ctx context.Context, id primitive.ObjectID) (*user.User, error)
}

// MealPlans 依狀態列出使用者的餐計畫，新到舊
type MealPlans interface {
	List(ctx context.Context, userID primitive.ObjectID, opts mealplan.ListOptions) ([]*mealplan.MealPlan, int64, error)
}

// Favorites 使用者收藏的食譜
type Favorites interface {
	ListFavorites(ctx context.Context, userID primitive.ObjectID, skip, limit int) ([]*recipe.Recipe, int64, error)
}

// Stats 儀表板統計
type Stats struct {
	TotalMealPlans     int64 `json:"totalMealPlans"`
	ActiveMealPlans    int64 `json:"activeMealPlans"`
	CompletedMealPlans int64 `json:"completedMealPlans"`
	SavedRecipes       int64 `json:"savedRecipes"`
}

// Summary 儀表板內容
type Summary struct {
	User            *user.User           `json:"user"`
	Stats           Stats                `json:"stats"`
	RecentMealPlans []*mealplan.MealPlan `json:"recentMealPlans"`
	FavoriteRecipes []*recipe.Recipe     `json:"favoriteRecipes"`
}

// Service 彙整使用者、餐計畫與收藏
type Service struct {
	users     Users
	plans     MealPlans
	favorites Favorites
}

// NewService 創建儀表板服務
func NewService(users Users, plans MealPlans, favorites Favorites) *Service {
	return &Service{users: users, plans: plans, favorites: favorites}
}

// Get 使用者儀表板：統計、最近 5 份餐計畫與前 6 份收藏食譜
func (s *Service) Get(ctx context.Context, userID primitive.ObjectID) (*Summary, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &Summary{User: u}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plans, total, err := s.plans.List(gctx, userID, mealplan.ListOptions{Limit: recentPlanLimit})
		out.RecentMealPlans, out.Stats.TotalMealPlans = plans, total
		return err
	})
	g.Go(func() error {
		_, total, err := s.plans.List(gctx, userID, mealplan.ListOptions{Status: mealplan.StatusActive, Limit: 1})
		out.Stats.ActiveMealPlans = total
		return err
	})
	g.Go(func() error {
		_, total, err := s.plans.List(gctx, userID, mealplan.ListOptions{Status: mealplan.StatusCompleted, Limit: 1})
		out.Stats.CompletedMealPlans = total
		return err
	})
	g.Go(func() error {
		recipes, total, err := s.favorites.ListFavorites(gctx, userID, 0, favoriteRecipeLimit)
		out.FavoriteRecipes, out.Stats.SavedRecipes = recipes, total
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.RecentMealPlans == nil {
		out.RecentMealPlans = []*mealplan.MealPlan{}
	}
	if out.FavoriteRecipes == nil {
		out.FavoriteRecipes = []*recipe.Recipe{}
	}
	return out, nil
}
