package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planeats/internal/pkg/common"
)

const errCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"

// BodySizeLimit 拒絕超過 maxSize 位元組的請求體。
// 有 Content-Length 的請求直接回 413；chunked 上傳則在讀取超限時由
// MaxBytesReader 回報錯誤，交給讀取方以 abortUnreadableBody 收尾。
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			common.LogWarn("拒絕過大的請求體",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Int64("declared_bytes", c.Request.ContentLength),
				zap.Int64("limit_bytes", maxSize),
			)
			abortPayloadTooLarge(c)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// abortUnreadableBody 依讀取錯誤種類中止請求：超過上限回 413，其餘回 400
func abortUnreadableBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		common.LogWarn("請求體超過上限",
			zap.String("path", c.Request.URL.Path),
			zap.Int64("limit_bytes", tooLarge.Limit),
		)
		abortPayloadTooLarge(c)
		return
	}

	common.LogWarn("無法讀取請求體", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
		Code:  common.ErrCodeInvalidRequest,
		Error: "Request body could not be read",
	})
}

func abortPayloadTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
		Code:  errCodePayloadTooLarge,
		Error: "Request body too large",
	})
}
