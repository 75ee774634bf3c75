package auth

import (
	"net/http"

	"planeats/internal/api/handlers/httpx"
	"planeats/internal/api/middleware"
	"planeats/internal/core/user"
	"planeats/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 帳號相關路由
type Handler struct {
	users *user.Service
}

// NewHandler 創建帳號 handler
func NewHandler(users *user.Service) *Handler {
	return &Handler{users: users}
}

// RegisterRequest 註冊請求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登入請求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest 變更密碼請求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// Register POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	u, token, err := h.users.Register(c.Request.Context(), user.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}

	common.LogInfo("使用者註冊", zap.String("user_id", u.ID.Hex()))
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    u,
	})
}

// Login POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	u, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    u,
	})
}

// Logout POST /auth/logout，token 為無狀態，由用戶端丟棄
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me GET /auth/me
func (h *Handler) Me(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UpdateProfile PUT /auth/profile
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

// ChangePassword PUT /auth/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	id, _ := middleware.CurrentUserID(c)
	if err := h.users.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// DeleteAccount DELETE /auth/account，停用帳號
func (h *Handler) DeleteAccount(c *gin.Context) {
	id, _ := middleware.CurrentUserID(c)
	if err := h.users.Deactivate(c.Request.Context(), id); err != nil {
		httpx.Error(c, err)
		return
	}

	common.LogInfo("帳號已停用", zap.String("user_id", id.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated successfully"})
}

// VerifyToken POST /auth/verify-token
func (h *Handler) VerifyToken(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  u,
	})
}
