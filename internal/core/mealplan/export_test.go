package mealplan

import "time"

// SetNow 固定服務時間
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}
