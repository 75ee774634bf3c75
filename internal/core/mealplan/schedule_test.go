package mealplan

import (
	"testing"
	"time"

	"planeats/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule_DatesFollowStartDate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday

	days := NewSchedule(start, 7)

	require.Len(t, days, 7)
	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, "Monday", days[0].DayName)
	assert.Equal(t, 4, days[3].Day)
	assert.Equal(t, "Thursday", days[3].DayName)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), days[3].Date)
	assert.Equal(t, "Sunday", days[6].DayName)
	for _, d := range days {
		assert.NotNil(t, d.Breakfast)
		assert.NotNil(t, d.Lunch)
		assert.NotNil(t, d.Dinner)
		assert.NotNil(t, d.Snacks)
		assert.Equal(t, 1.0, d.Breakfast.Servings)
	}
}

func TestDurationBetween(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"whole days", start.AddDate(0, 0, 7), 7},
		{"partial day rounds up", start.Add(36 * time.Hour), 2},
		{"one hour", start.Add(time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DurationBetween(start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDurationBetween_RejectsNonIncreasingRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := DurationBetween(start, start)
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = DurationBetween(start, start.Add(-time.Hour))
	require.Error(t, err)
}

func TestAlignSchedule_RewritesDayFields(t *testing.T) {
	plan := &MealPlan{
		StartDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), // Sunday
		Meals: []Day{
			{Day: 9, DayName: "Friday"},
			{Day: 9, DayName: "Friday"},
		},
	}

	plan.AlignSchedule()

	assert.Equal(t, 1, plan.Meals[0].Day)
	assert.Equal(t, "Sunday", plan.Meals[0].DayName)
	assert.Equal(t, 2, plan.Meals[1].Day)
	assert.Equal(t, "Monday", plan.Meals[1].DayName)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), plan.Meals[1].Date)
}

func TestAlignSchedule_FitsDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	short := &MealPlan{StartDate: start, Duration: 3, Meals: []Day{{Notes: "keep"}}}
	short.AlignSchedule()
	require.Len(t, short.Meals, 3)
	assert.Equal(t, "keep", short.Meals[0].Notes)
	assert.Equal(t, 3, short.Meals[2].Day)
	assert.Equal(t, "Wednesday", short.Meals[2].DayName)
	assert.NotNil(t, short.Meals[2].Breakfast)

	long := &MealPlan{StartDate: start, Duration: 1, Meals: make([]Day, 4)}
	long.AlignSchedule()
	assert.Len(t, long.Meals, 1)
}

func TestPrepare_BackfillsAndRecomputes(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	plan := &MealPlan{
		StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Meals: []Day{
			{Breakfast: &MealEntry{Completed: true}, Lunch: &MealEntry{Completed: true}},
		},
	}

	plan.Prepare(now)

	assert.Equal(t, StatusDraft, plan.Status)
	assert.Equal(t, "Wednesday", plan.Meals[0].DayName)
	assert.Equal(t, plan.StartDate, plan.Meals[0].Date)
	assert.NotNil(t, plan.Meals[0].Snacks)
	assert.NotNil(t, plan.ShoppingList)
	assert.Equal(t, []string{"maintenance"}, plan.Goals)
	assert.Equal(t, 3, plan.Progress.TotalMeals)
	assert.Equal(t, 2, plan.Progress.CompletedMeals)
	assert.Equal(t, 1, plan.Progress.CompletedDays)
	assert.Equal(t, 67, plan.Progress.AdherencePercentage)
	assert.Equal(t, now, plan.CreatedAt)
	assert.Equal(t, now, plan.UpdatedAt)

	later := now.Add(time.Hour)
	plan.Prepare(later)
	assert.Equal(t, now, plan.CreatedAt)
	assert.Equal(t, later, plan.UpdatedAt)
}
