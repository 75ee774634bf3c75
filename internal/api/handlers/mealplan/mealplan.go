package mealplan

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"planeats/internal/api/handlers/httpx"
	"planeats/internal/api/middleware"
	"planeats/internal/core/mealplan"
	"planeats/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler 餐計畫路由
type Handler struct {
	plans *mealplan.Service
}

// NewHandler 創建餐計畫 handler
func NewHandler(plans *mealplan.Service) *Handler {
	return &Handler{plans: plans}
}

// CreateRequest 手動建立餐計畫；日期接受 YYYY-MM-DD 或 RFC 3339
type CreateRequest struct {
	Title                string                    `json:"title" binding:"required"`
	Description          string                    `json:"description" binding:"max=500"`
	StartDate            string                    `json:"startDate" binding:"required"`
	EndDate              string                    `json:"endDate" binding:"required"`
	Type                 string                    `json:"type" binding:"omitempty,oneof=weekly daily custom"`
	Goals                []string                  `json:"goals"`
	TargetNutrition      *mealplan.TargetNutrition `json:"targetNutrition"`
	DietaryRestrictions  []string                  `json:"dietaryRestrictions"`
	Allergies            []string                  `json:"allergies"`
	PreferredIngredients []string                  `json:"preferredIngredients"`
	AvoidedIngredients   []string                  `json:"avoidedIngredients"`
	Budget               *mealplan.Budget          `json:"budget"`
	Settings             *mealplan.Settings        `json:"settings"`
	Tags                 []string                  `json:"tags"`
	IsPublic             bool                      `json:"isPublic"`
}

// MealUpdateRequest 更新單一餐點
type MealUpdateRequest struct {
	DayIndex   *int   `json:"dayIndex" binding:"required,min=0"`
	MealType   string `json:"mealType" binding:"required,mealtype"`
	SnackIndex int    `json:"snackIndex" binding:"min=0"`
	Completed  *bool  `json:"completed"`
	Rating     *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Revision   *int64 `json:"revision"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, common.NewValidationError(field + " must be a valid date")
}

// List GET /mealplans
func (h *Handler) List(c *gin.Context) {
	page := httpx.Page(c, 10, 100)
	uid, _ := middleware.CurrentUserID(c)

	plans, total, err := h.plans.List(c.Request.Context(), uid, mealplan.ListOptions{
		Status: c.Query("status"),
		Skip:   page.Skip(),
		Limit:  page.Limit,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.Paginated(c, "mealPlans", plans, page.WithTotal(total))
}

// Get GET /mealplans/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	plan, err := h.plans.Get(c.Request.Context(), uid, id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mealPlan": plan})
}

// Create POST /mealplans
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	plan, err := h.plans.Create(c.Request.Context(), uid, mealplan.CreateInput{
		Title:                req.Title,
		Description:          req.Description,
		StartDate:            start,
		EndDate:              end,
		Type:                 req.Type,
		Goals:                req.Goals,
		TargetNutrition:      req.TargetNutrition,
		DietaryRestrictions:  req.DietaryRestrictions,
		Allergies:            req.Allergies,
		PreferredIngredients: req.PreferredIngredients,
		AvoidedIngredients:   req.AvoidedIngredients,
		Budget:               req.Budget,
		Settings:             req.Settings,
		Tags:                 req.Tags,
		IsPublic:             req.IsPublic,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Meal plan created successfully",
		"mealPlan": plan,
	})
}

// Generate POST /mealplans/generate
func (h *Handler) Generate(c *gin.Context) {
	var in mealplan.GenerateInput
	if !httpx.BindJSON(c, &in) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	res, err := h.plans.Generate(c.Request.Context(), uid, in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "AI meal plan generated successfully",
		"mealPlan": res.Plan,
		"aiMetadata": gin.H{
			"model":                 res.Model,
			"provider":              res.Provider,
			"generatedAt":           res.GeneratedAt,
			"prompt":                res.Prompt,
			"totalNutrition":        res.TotalNutrition,
			"additionalIngredients": res.AdditionalIngredients,
		},
	})
}

// Update PUT /mealplans/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var in mealplan.UpdateInput
	if !httpx.BindJSON(c, &in) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	plan, err := h.plans.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Meal plan updated successfully",
		"mealPlan": plan,
	})
}

// Delete DELETE /mealplans/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	if err := h.plans.Delete(c.Request.Context(), uid, id); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal plan deleted successfully"})
}

// UpdateMeal PUT /mealplans/:id/meals
func (h *Handler) UpdateMeal(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req MealUpdateRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	plan, err := h.plans.UpdateMeal(c.Request.Context(), uid, id, mealplan.MealUpdate{
		DayIndex:   *req.DayIndex,
		MealType:   req.MealType,
		SnackIndex: req.SnackIndex,
		Completed:  req.Completed,
		Rating:     req.Rating,
		Revision:   req.Revision,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Meal updated successfully",
		"mealPlan": plan,
	})
}

// RegenerateShoppingList POST /mealplans/:id/shopping-list
func (h *Handler) RegenerateShoppingList(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	plan, err := h.plans.RegenerateShoppingList(c.Request.Context(), uid, id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Shopping list generated successfully",
		"shoppingList":       plan.ShoppingList,
		"totalEstimatedCost": plan.TotalEstimatedCost(),
		"revision":           plan.Revision,
	})
}

// DayNutrition GET /mealplans/:id/days/:day/nutrition
func (h *Handler) DayNutrition(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		httpx.Error(c, common.NewValidationError("Day must be a number"))
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	d, nutrition, err := h.plans.DayNutrition(c.Request.Context(), uid, id, day)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"day":       d.Day,
		"date":      d.Date,
		"dayName":   d.DayName,
		"nutrition": nutrition,
	})
}
