package shoppinglist

import (
	"net/http"

	"planeats/internal/api/handlers/httpx"
	"planeats/internal/api/middleware"
	"planeats/internal/core/shoppinglist"

	"github.com/gin-gonic/gin"
)

// Handler 採買清單路由
type Handler struct {
	lists *shoppinglist.Service
}

// NewHandler 創建採買清單 handler
func NewHandler(lists *shoppinglist.Service) *Handler {
	return &Handler{lists: lists}
}

// MarkItemRequest 勾選項目
type MarkItemRequest struct {
	Purchased *bool `json:"purchased" binding:"required"`
}

// List GET /shopping-lists
func (h *Handler) List(c *gin.Context) {
	page := httpx.Page(c, 20, 100)
	uid, _ := middleware.CurrentUserID(c)

	lists, total, err := h.lists.List(c.Request.Context(), uid, c.Query("status"), page.Skip(), page.Limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.Paginated(c, "shoppingLists", lists, page.WithTotal(total))
}

// Get GET /shopping-lists/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	l, err := h.lists.Get(c.Request.Context(), uid, id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shoppingList": l})
}

// Create POST /shopping-lists
func (h *Handler) Create(c *gin.Context) {
	var in shoppinglist.CreateInput
	if !httpx.BindJSON(c, &in) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	l, err := h.lists.Create(c.Request.Context(), uid, in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Shopping list created successfully",
		"shoppingList": l,
	})
}

// Update PUT /shopping-lists/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var in shoppinglist.UpdateInput
	if !httpx.BindJSON(c, &in) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	l, err := h.lists.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Shopping list updated successfully",
		"shoppingList": l,
	})
}

// Delete DELETE /shopping-lists/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	if err := h.lists.Delete(c.Request.Context(), uid, id); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shopping list deleted successfully"})
}

// AddItem POST /shopping-lists/:id/items
func (h *Handler) AddItem(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var in shoppinglist.ItemInput
	if !httpx.BindJSON(c, &in) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	l, err := h.lists.AddItem(c.Request.Context(), uid, id, in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Item added successfully",
		"shoppingList": l,
	})
}

// MarkItem PUT /shopping-lists/:id/items/:itemId
func (h *Handler) MarkItem(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := httpx.ParamID(c, "itemId")
	if !ok {
		return
	}
	var req MarkItemRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	l, err := h.lists.MarkItem(c.Request.Context(), uid, id, itemID, *req.Purchased)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Item updated successfully",
		"shoppingList": l,
	})
}

// RemoveItem DELETE /shopping-lists/:id/items/:itemId
func (h *Handler) RemoveItem(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := httpx.ParamID(c, "itemId")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	l, err := h.lists.RemoveItem(c.Request.Context(), uid, id, itemID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Item removed successfully",
		"shoppingList": l,
	})
}

// FromMealPlan POST /shopping-lists/from-mealplan/:id
func (h *Handler) FromMealPlan(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	l, err := h.lists.FromMealPlan(c.Request.Context(), uid, id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Shopping list created from meal plan",
		"shoppingList": l,
	})
}
