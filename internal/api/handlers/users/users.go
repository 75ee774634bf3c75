package users

import (
	"net/http"

	"planeats/internal/api/handlers/httpx"
	"planeats/internal/api/middleware"
	"planeats/internal/core/dashboard"
	"planeats/internal/core/user"

	"github.com/gin-gonic/gin"
)

// Handler 使用者個人資料與儀表板
type Handler struct {
	users     *user.Service
	dashboard *dashboard.Service
}

// NewHandler 創建使用者 handler
func NewHandler(users *user.Service, dash *dashboard.Service) *Handler {
	return &Handler{users: users, dashboard: dash}
}

// dashboardUser 儀表板只回傳摘要欄位
type dashboardUser struct {
	ID                 string              `json:"id"`
	Username           string              `json:"username"`
	Email              string              `json:"email"`
	Profile            user.Profile        `json:"profile"`
	DietaryPreferences []string            `json:"dietaryPreferences"`
	Preferences        user.AppPreferences `json:"preferences"`
}

// Profile GET /users/profile
func (h *Handler) Profile(c *gin.Context) {
	id, _ := middleware.CurrentUserID(c)
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UpdateProfile PUT /users/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req user.ProfileUpdate
	if !httpx.BindJSON(c, &req) {
		return
	}

	id, _ := middleware.CurrentUserID(c)
	u, err := h.users.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

// Dashboard GET /users/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	id, _ := middleware.CurrentUserID(c)
	summary, err := h.dashboard.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	u := summary.User
	c.JSON(http.StatusOK, gin.H{
		"user": dashboardUser{
			ID:                 u.ID.Hex(),
			Username:           u.Username,
			Email:              u.Email,
			Profile:            u.Profile,
			DietaryPreferences: u.DietaryPreferences,
			Preferences:        u.Preferences,
		},
		"stats":           summary.Stats,
		"recentMealPlans": summary.RecentMealPlans,
		"favoriteRecipes": summary.FavoriteRecipes,
	})
}
