package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"planeats/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checker 依賴檢查，回傳 nil 表示可用
type Checker func(ctx context.Context) error

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	Version      string                 `json:"version"`
	Environment  string                 `json:"environment"`
	AIConfigured bool                   `json:"aiConfigured"`
	Runtime      map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查路由
type Handler struct {
	version      string
	env          string
	aiConfigured bool
	checks       map[string]Checker
}

// NewHandler 創建健康檢查 handler，checks 用於 readiness
func NewHandler(version, env string, aiConfigured bool, checks map[string]Checker) *Handler {
	return &Handler{version: version, env: env, aiConfigured: aiConfigured, checks: checks}
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, HealthResponse{
		Status:       "OK",
		Timestamp:    time.Now(),
		Version:      h.version,
		Environment:  h.env,
		AIConfigured: h.aiConfigured,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	})
}

// Ready GET /ready，逐一執行依賴檢查
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = err.Error()
			ready = false
			continue
		}
		results[name] = "ok"
	}

	status := http.StatusOK
	body := gin.H{"status": "ready", "checks": results}
	if !ready {
		status = http.StatusServiceUnavailable
		body["status"] = "not ready"
	}
	c.JSON(status, body)
}

// Live GET /live
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
