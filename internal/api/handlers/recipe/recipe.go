package recipe

import (
	"net/http"
	"strconv"

	"planeats/internal/api/handlers/httpx"
	"planeats/internal/api/middleware"
	"planeats/internal/core/recipe"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler 食譜路由
type Handler struct {
	recipes *recipe.Service
}

// NewHandler 創建食譜 handler
func NewHandler(recipes *recipe.Service) *Handler {
	return &Handler{recipes: recipes}
}

// ReviewRequest 評論請求
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

// List GET /recipes
func (h *Handler) List(c *gin.Context) {
	page := httpx.Page(c, 20, 100)
	f := recipe.Filter{
		Search:      c.Query("search"),
		Ingredients: httpx.CSV(c, "ingredients"),
		DietaryTags: httpx.CSV(c, "dietaryTags"),
		MealType:    httpx.CSV(c, "mealType"),
		Cuisine:     httpx.CSV(c, "cuisine"),
		Difficulty:  httpx.CSV(c, "difficulty"),
		SortBy:      c.DefaultQuery("sortBy", "newest"),
		Skip:        page.Skip(),
		Limit:       page.Limit,
	}
	f.MaxPrepTime, _ = strconv.Atoi(c.Query("maxPrepTime"))
	f.MaxCookTime, _ = strconv.Atoi(c.Query("maxCookTime"))

	recipes, total, err := h.recipes.List(c.Request.Context(), f)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.Paginated(c, "recipes", recipes, page.WithTotal(total))
}

// Get GET /recipes/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	var viewer *primitive.ObjectID
	if uid, ok := middleware.CurrentUserID(c); ok {
		viewer = &uid
	}
	r, err := h.recipes.Get(c.Request.Context(), id, viewer)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": r})
}

// Create POST /recipes
func (h *Handler) Create(c *gin.Context) {
	var in recipe.Input
	if !httpx.BindJSON(c, &in) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	r, err := h.recipes.Create(c.Request.Context(), uid, in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Recipe created successfully",
		"recipe":  r,
	})
}

// Update PUT /recipes/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var in recipe.Input
	if !httpx.BindJSON(c, &in) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	r, err := h.recipes.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe updated successfully",
		"recipe":  r,
	})
}

// Delete DELETE /recipes/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	if err := h.recipes.Delete(c.Request.Context(), uid, id); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// Review POST /recipes/:id/reviews
func (h *Handler) Review(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	r, err := h.recipes.AddReview(c.Request.Context(), uid, id, req.Rating, req.Comment)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Review added successfully",
		"rating":  r.Rating,
		"reviews": r.Reviews,
	})
}

// ToggleFavorite POST /recipes/:id/favorite
func (h *Handler) ToggleFavorite(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	saved, count, err := h.recipes.ToggleFavorite(c.Request.Context(), uid, id)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	msg := "Recipe removed from favorites"
	if saved {
		msg = "Recipe added to favorites"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     msg,
		"isFavorited": saved,
		"favorites":   count,
	})
}

// MyRecipes GET /recipes/my/created
func (h *Handler) MyRecipes(c *gin.Context) {
	page := httpx.Page(c, 20, 100)
	uid, _ := middleware.CurrentUserID(c)

	recipes, total, err := h.recipes.ListByAuthor(c.Request.Context(), uid, c.DefaultQuery("visibility", "all"), page.Skip(), page.Limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.Paginated(c, "recipes", recipes, page.WithTotal(total))
}

// MyFavorites GET /recipes/my/favorites
func (h *Handler) MyFavorites(c *gin.Context) {
	page := httpx.Page(c, 20, 100)
	uid, _ := middleware.CurrentUserID(c)

	recipes, total, err := h.recipes.ListFavorites(c.Request.Context(), uid, page.Skip(), page.Limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.Paginated(c, "recipes", recipes, page.WithTotal(total))
}

// Categories GET /recipes/meta/categories
func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.recipes.Categories(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}
