package mealplan

import (
	"math"
	"time"

	"planeats/internal/pkg/common"
)

const oneDay = 24 * time.Hour

// DayNames 英文星期名稱，索引 0 為 Sunday
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayName 回傳日期的英文星期名稱
func DayName(t time.Time) string {
	return DayNames[t.Weekday()]
}

// DurationBetween 驗證 start < end 並回傳 ceil((end-start)/1 天)
func DurationBetween(start, end time.Time) (int, error) {
	if !start.Before(end) {
		return 0, common.NewValidationError("Start date must be before end date")
	}
	return int(math.Ceil(float64(end.Sub(start)) / float64(oneDay))), nil
}

// DateForDay 回傳第 index 天（從 0 起算）的日期
func DateForDay(start time.Time, index int) time.Time {
	return start.AddDate(0, 0, index)
}

// NewSchedule 建立 duration 天的空排程
func NewSchedule(start time.Time, duration int) []Day {
	days := make([]Day, duration)
	for i := range days {
		date := DateForDay(start, i)
		days[i] = Day{
			Day:       i + 1,
			Date:      date,
			DayName:   DayName(date),
			Breakfast: &MealEntry{Servings: 1},
			Lunch:     &MealEntry{Servings: 1},
			Dinner:    &MealEntry{Servings: 1},
			Snacks:    []MealEntry{},
		}
	}
	return days
}

// AlignSchedule 讓排程長度等於 duration（不足補空白天、多出截斷），
// 並依 startDate 重設每一天的序號、日期與星期
func (p *MealPlan) AlignSchedule() {
	if p.Duration > 0 {
		switch {
		case len(p.Meals) > p.Duration:
			p.Meals = p.Meals[:p.Duration]
		case len(p.Meals) < p.Duration:
			p.Meals = append(p.Meals, NewSchedule(p.StartDate, p.Duration)[len(p.Meals):]...)
		}
	}
	for i := range p.Meals {
		date := DateForDay(p.StartDate, i)
		p.Meals[i].Day = i + 1
		p.Meals[i].Date = date
		p.Meals[i].DayName = DayName(date)
	}
}

// ApplyDefaults 補上未設定的欄位
func (p *MealPlan) ApplyDefaults() {
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Type == "" {
		p.Type = "weekly"
	}
	if p.Settings.MealsPerDay <= 0 {
		p.Settings.MealsPerDay = defaultMealsPerDay
	}
	if len(p.Goals) == 0 {
		p.Goals = []string{"maintenance"}
	}
	if p.Meals == nil {
		p.Meals = []Day{}
	}
	if p.ShoppingList == nil {
		p.ShoppingList = []ShoppingListItem{}
	}
	for i := range p.Meals {
		if p.Meals[i].Snacks == nil {
			p.Meals[i].Snacks = []MealEntry{}
		}
	}
}

// Prepare 每次寫入前執行：排程對齊 startDate、重算進度
func (p *MealPlan) Prepare(now time.Time) {
	p.ApplyDefaults()
	if !p.StartDate.IsZero() {
		p.AlignSchedule()
	}
	p.Progress = ComputeProgress(p.Meals, p.Settings.MealsPerDay)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
