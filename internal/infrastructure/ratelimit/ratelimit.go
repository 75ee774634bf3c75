// Package ratelimit 固定視窗計數器，依 key（通常為用戶端 IP）計算請求數。
package ratelimit

import (
	"context"
	"time"
)

// Result 一次計數後的狀態
type Result struct {
	Allowed   bool
	Count     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter 距離視窗重置的時間，至少一秒
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d < time.Second {
		return time.Second
	}
	return d.Round(time.Second)
}

// Store 計數器儲存。Hit 將 key 的計數加一並回傳結果；
// 視窗內第一次計數時設定 window 後重置。
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

func newResult(count, limit int, resetAt time.Time) Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= limit,
		Count:     count,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
