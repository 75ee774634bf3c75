// Package httpx 各 handler 共用的請求解析與錯誤回應
package httpx

import (
	"errors"
	"net/http"

	"planeats/internal/core/mealplan"
	"planeats/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error 將錯誤轉成 JSON 錯誤回應。
// 預期內的錯誤回傳其訊息，未知錯誤一律回傳 "Server error" 並記錄。
func Error(c *gin.Context, err error) {
	status, code := common.StatusOf(err)
	resp := common.ErrorResponse{Code: code}

	var ce *common.CustomError
	var pe *mealplan.ParseError
	switch {
	case errors.As(err, &ce):
		resp.Error = ce.Message
		if ce.Err != nil && gin.IsDebugging() {
			resp.Details = ce.Err.Error()
		}
	case errors.As(err, &pe):
		resp.Error = pe.Error()
	case common.IsValidationError(err):
		resp.Error = err.Error()
	default:
		resp.Error = common.ErrInternalError.Message
		if gin.IsDebugging() {
			resp.Details = err.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		common.LogError("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, resp)
}

// Paginated 列表回應
func Paginated(c *gin.Context, key string, items any, p common.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		key:          items,
		"pagination": p,
	})
}
