package notification

import (
	"net/http"
	"strconv"

	"planeats/internal/api/handlers/httpx"
	"planeats/internal/api/middleware"
	"planeats/internal/core/notification"
	"planeats/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler 通知路由
type Handler struct {
	notifications *notification.Service
}

// NewHandler 創建通知 handler
func NewHandler(notifications *notification.Service) *Handler {
	return &Handler{notifications: notifications}
}

// MarkReadRequest 標記已讀，ids 為空時標記全部
type MarkReadRequest struct {
	IDs []string `json:"notificationIds" binding:"dive,objectid"`
}

// List GET /notifications?read=
func (h *Handler) List(c *gin.Context) {
	page := httpx.Page(c, 20, 100)
	uid, _ := middleware.CurrentUserID(c)

	var read *bool
	if raw := c.Query("read"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.Error(c, common.NewValidationError("read must be true or false"))
			return
		}
		read = &v
	}

	items, total, err := h.notifications.List(c.Request.Context(), uid, read, page.Skip(), page.Limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.Paginated(c, "notifications", items, page.WithTotal(total))
}

// MarkRead PUT /notifications/read
func (h *Handler) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if c.Request.ContentLength != 0 && !httpx.BindJSON(c, &req) {
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := common.ParseObjectID(raw)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		ids = append(ids, id)
	}

	uid, _ := middleware.CurrentUserID(c)
	n, err := h.notifications.MarkRead(c.Request.Context(), uid, ids)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Notifications marked as read",
		"modifiedCount": n,
	})
}

// Delete DELETE /notifications/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	if err := h.notifications.Delete(c.Request.Context(), uid, id); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}

// DeleteOld DELETE /notifications，刪除 30 天前的已讀通知
func (h *Handler) DeleteOld(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	n, err := h.notifications.DeleteOld(c.Request.Context(), uid, notification.RetentionDays)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Old notifications deleted",
		"deletedCount": n,
	})
}
