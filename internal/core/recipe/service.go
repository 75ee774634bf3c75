package recipe

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"planeats/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrRecipeNotFound 找不到食譜
var ErrRecipeNotFound = common.ErrNotFound.WithMessage("Recipe not found")

// SortOptions 列表排序方式
var SortOptions = []string{"newest", "oldest", "rating", "prepTime", "totalTime"}

// Favorites 使用者收藏清單，收藏與食譜計數為兩次獨立寫入
type Favorites interface {
	ToggleSavedRecipe(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error)
	SavedRecipeIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Service 食譜服務
type Service struct {
	repo      Repository
	favorites Favorites
	now       func() time.Time
}

// NewService 創建食譜服務
func NewService(repo Repository, favorites Favorites) *Service {
	return &Service{repo: repo, favorites: favorites, now: time.Now}
}

// Input 建立或整份更新食譜的內容
type Input struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	Nutrition    Nutrition     `json:"nutrition"`
	Servings     int           `json:"servings"`
	PrepTime     int           `json:"prepTime"`
	CookTime     int           `json:"cookTime"`
	Difficulty   string        `json:"difficulty"`
	Cuisine      string        `json:"cuisine"`
	MealType     []string      `json:"mealType"`
	DietaryTags  []string      `json:"dietaryTags"`
	Allergens    []string      `json:"allergens"`
	Images       []Image       `json:"images"`
	Tags         []string      `json:"tags"`
	IsPublic     *bool         `json:"isPublic"`
}

// Validate 檢查必填欄位與列舉值
func (in *Input) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(in.Title)); n < 3 || n > 100 {
		return common.NewValidationError("Title must be between 3 and 100 characters")
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(in.Description)); n < 10 || n > 500 {
		return common.NewValidationError("Description must be between 10 and 500 characters")
	}
	if len(in.Ingredients) == 0 {
		return common.NewValidationError("At least one ingredient is required")
	}
	if len(in.Instructions) == 0 {
		return common.NewValidationError("At least one instruction is required")
	}
	if in.Servings < 1 {
		return common.NewValidationError("Servings must be at least 1")
	}
	if in.PrepTime < 0 || in.CookTime < 0 {
		return common.NewValidationError("Prep time and cook time must be positive numbers")
	}
	if len(in.MealType) == 0 {
		return common.NewValidationError("At least one meal type is required")
	}
	for _, mt := range in.MealType {
		if !slices.Contains(MealTypes, mt) {
			return common.NewValidationError("Invalid meal type: " + mt)
		}
	}
	for _, tag := range in.DietaryTags {
		if !slices.Contains(DietaryTags, tag) {
			return common.NewValidationError("Invalid dietary tag: " + tag)
		}
	}
	if in.Difficulty != "" && !slices.Contains(Difficulties, in.Difficulty) {
		return common.NewValidationError("Invalid difficulty")
	}
	if in.Cuisine != "" && !slices.Contains(Cuisines, in.Cuisine) {
		return common.NewValidationError("Invalid cuisine")
	}
	for _, ing := range in.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return common.NewValidationError("Ingredient name is required")
		}
		if !slices.Contains(Units, ing.Unit) {
			return common.NewValidationError("Invalid unit: " + ing.Unit)
		}
	}
	return nil
}

func (in *Input) apply(r *Recipe) {
	r.Title = strings.TrimSpace(in.Title)
	r.Description = strings.TrimSpace(in.Description)
	r.Ingredients = in.Ingredients
	r.Instructions = in.Instructions
	r.Nutrition = in.Nutrition
	r.Servings = in.Servings
	r.PrepTime = in.PrepTime
	r.CookTime = in.CookTime
	r.Difficulty = in.Difficulty
	if r.Difficulty == "" {
		r.Difficulty = "medium"
	}
	r.Cuisine = in.Cuisine
	r.MealType = in.MealType
	r.DietaryTags = nonNil(in.DietaryTags)
	r.Allergens = nonNil(in.Allergens)
	r.Images = in.Images
	if r.Images == nil {
		r.Images = []Image{}
	}
	r.Tags = nonNil(in.Tags)
	if in.IsPublic != nil {
		r.IsPublic = *in.IsPublic
	}
	for i := range r.Instructions {
		if r.Instructions[i].Step == 0 {
			r.Instructions[i].Step = i + 1
		}
	}
}

// List 公開食譜列表
func (s *Service) List(ctx context.Context, f Filter) ([]*Recipe, int64, error) {
	if f.SortBy != "" && !slices.Contains(SortOptions, f.SortBy) {
		f.SortBy = "newest"
	}
	f.PublicOnly = true
	return s.repo.Find(ctx, f)
}

// Get 讀取食譜並增加瀏覽次數；私人食譜只有作者可讀
func (s *Service) Get(ctx context.Context, id primitive.ObjectID, viewer *primitive.ObjectID) (*Recipe, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsPublic && (viewer == nil || *viewer != r.Author) {
		return nil, common.ErrForbidden.WithMessage("This recipe is private")
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		common.LogWarn("瀏覽次數更新失敗", zap.String("id", id.Hex()), zap.Error(err))
	} else {
		r.Views++
	}
	return r, nil
}

// Create 建立食譜
func (s *Service) Create(ctx context.Context, author primitive.ObjectID, in Input) (*Recipe, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	r := &Recipe{
		Author:    author,
		Source:    "user",
		IsPublic:  true,
		Reviews:   []Review{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(r)

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	common.LogInfo("食譜已建立", zap.String("id", r.ID.Hex()))
	return r, nil
}

// Update 作者更新食譜
func (s *Service) Update(ctx context.Context, userID, id primitive.ObjectID, in Input) (*Recipe, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Author != userID {
		return nil, common.ErrForbidden.WithMessage("You can only update your own recipes")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.apply(r)
	r.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete 作者刪除食譜
func (s *Service) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if r.Author != userID {
		return common.ErrForbidden.WithMessage("You can only delete your own recipes")
	}
	return s.repo.Delete(ctx, id)
}

// AddReview 新增或覆寫使用者的評論，並重算平均分數
func (s *Service) AddReview(ctx context.Context, userID, id primitive.ObjectID, rating int, comment string) (*Recipe, error) {
	if rating < 1 || rating > 5 {
		return nil, common.NewValidationError("Rating must be between 1 and 5")
	}
	if utf8.RuneCountInString(comment) > 1000 {
		return nil, common.NewValidationError("Comment cannot exceed 1000 characters")
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsPublic {
		return nil, common.ErrForbidden.WithMessage("Cannot review a private recipe")
	}

	now := s.now()
	idx := slices.IndexFunc(r.Reviews, func(rv Review) bool { return rv.User == userID })
	if idx >= 0 {
		r.Reviews[idx].Rating = rating
		r.Reviews[idx].Comment = comment
		r.Reviews[idx].CreatedAt = now
	} else {
		r.Reviews = append(r.Reviews, Review{User: userID, Rating: rating, Comment: comment, CreatedAt: now})
	}
	r.RecomputeRating()
	r.UpdatedAt = now

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ToggleFavorite 切換收藏，回傳收藏狀態與最新收藏數
func (s *Service) ToggleFavorite(ctx context.Context, userID, id primitive.ObjectID) (bool, int, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, 0, err
	}

	saved, err := s.favorites.ToggleSavedRecipe(ctx, userID, id)
	if err != nil {
		return false, 0, err
	}

	delta := 1
	if !saved {
		delta = -1
	}
	if err := s.repo.IncrementFavorites(ctx, id, delta); err != nil {
		return false, 0, err
	}

	count := r.Favorites + delta
	if count < 0 {
		count = 0
	}
	return saved, count, nil
}

// ListByAuthor 作者自己的食譜，visibility 為 all、public 或 private
func (s *Service) ListByAuthor(ctx context.Context, author primitive.ObjectID, visibility string, skip, limit int) ([]*Recipe, int64, error) {
	f := Filter{Author: &author, SortBy: "newest", Skip: skip, Limit: limit}
	switch visibility {
	case "public":
		v := true
		f.Visibility = &v
	case "private":
		v := false
		f.Visibility = &v
	}
	return s.repo.Find(ctx, f)
}

// ListFavorites 使用者收藏的食譜
func (s *Service) ListFavorites(ctx context.Context, userID primitive.ObjectID, skip, limit int) ([]*Recipe, int64, error) {
	ids, err := s.favorites.SavedRecipeIDs(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []*Recipe{}, 0, nil
	}
	return s.repo.Find(ctx, Filter{IDs: ids, SortBy: "newest", Skip: skip, Limit: limit})
}

// Categories 分類統計
func (s *Service) Categories(ctx context.Context) (*Categories, error) {
	return s.repo.Categories(ctx)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
