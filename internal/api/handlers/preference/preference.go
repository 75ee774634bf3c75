package preference

import (
	"io"
	"net/http"

	"planeats/internal/api/handlers/httpx"
	"planeats/internal/api/middleware"
	"planeats/internal/core/preference"
	"planeats/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler 偏好設定路由
type Handler struct {
	prefs *preference.Service
}

// NewHandler 創建偏好 handler
func NewHandler(prefs *preference.Service) *Handler {
	return &Handler{prefs: prefs}
}

// Get GET /preferences
func (h *Handler) Get(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	p, err := h.prefs.Get(c.Request.Context(), uid)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": p})
}

// Update PUT /preferences，請求內容疊加在目前的偏好上
func (h *Handler) Update(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httpx.Error(c, common.ErrInvalidRequest)
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	p, err := h.prefs.Update(c.Request.Context(), uid, func(p *preference.Preference) error {
		if err := common.ParseJSONBytes(body, p); err != nil {
			return common.NewValidationError("Invalid request body")
		}
		return nil
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Preferences updated successfully",
		"preferences": p,
	})
}

// Reset POST /preferences/reset
func (h *Handler) Reset(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	p, err := h.prefs.Reset(c.Request.Context(), uid)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Preferences reset to defaults",
		"preferences": p,
	})
}
