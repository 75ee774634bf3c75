package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore 單一程序內的計數器，最多保留 capacity 個 key；
// 滿載時先清掉已過期的 key，仍不足則移除最早重置的 key。
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*window
	now      func() time.Time
}

// NewMemoryStore 創建記憶體計數器
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &MemoryStore{
		capacity: capacity,
		entries:  make(map[string]*window),
		now:      time.Now,
	}
}

func (s *MemoryStore) Hit(_ context.Context, key string, limit int, win time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.entries[key]
	if !ok || !now.Before(w.resetAt) {
		if !ok && len(s.entries) >= s.capacity {
			s.evict(now)
		}
		w = &window{resetAt: now.Add(win)}
		s.entries[key] = w
	}
	w.count++
	return newResult(w.count, limit, w.resetAt), nil
}

// Len 目前保留的 key 數
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) evict(now time.Time) {
	for k, w := range s.entries {
		if !now.Before(w.resetAt) {
			delete(s.entries, k)
		}
	}
	if len(s.entries) < s.capacity {
		return
	}

	var oldestKey string
	var oldest time.Time
	for k, w := range s.entries {
		if oldestKey == "" || w.resetAt.Before(oldest) {
			oldestKey, oldest = k, w.resetAt
		}
	}
	delete(s.entries, oldestKey)
}
