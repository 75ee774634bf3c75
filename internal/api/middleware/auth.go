package middleware

import (
	"context"
	"strings"

	"planeats/internal/api/handlers/httpx"
	"planeats/internal/core/user"
	"planeats/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	userKey   = "user"
	userIDKey = "user_id"
)

// Authenticator 由 token 取得使用者
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// Auth 要求 Bearer token，驗證成功後把使用者放入 gin context
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httpx.Error(c, common.ErrUnauthorized.WithMessage("No token provided, authorization denied"))
			return
		}

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			httpx.Error(c, err)
			return
		}

		c.Set(userKey, u)
		c.Set(userIDKey, u.ID)
		c.Next()
	}
}

// OptionalAuth 有合法 token 時載入使用者，否則以訪客身分繼續
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if u, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(userKey, u)
				c.Set(userIDKey, u.ID)
			}
		}
		c.Next()
	}
}

// CurrentUser 取得已驗證的使用者
func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}

// CurrentUserID 取得已驗證的使用者 ID
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
