package mealplan

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedDay(main int, snacks int) Day {
	d := Day{
		Breakfast: &MealEntry{},
		Lunch:     &MealEntry{},
		Dinner:    &MealEntry{},
	}
	for i, m := range d.MainMeals() {
		m.Completed = i < main
	}
	for i := 0; i < snacks; i++ {
		d.Snacks = append(d.Snacks, MealEntry{Completed: true})
	}
	return d
}

func TestAdherencePercentage(t *testing.T) {
	assert.Equal(t, 33, AdherencePercentage(7, 21))
	assert.Equal(t, 67, AdherencePercentage(2, 3))
	assert.Equal(t, 100, AdherencePercentage(3, 3))
	assert.Equal(t, 0, AdherencePercentage(5, 0))
}

func TestComputeProgress(t *testing.T) {
	days := make([]Day, 7)
	for i := range days {
		days[i] = completedDay(0, 0)
	}
	days[0] = completedDay(3, 0)
	days[1] = completedDay(2, 0)
	days[2] = completedDay(1, 1)

	p := ComputeProgress(days, 3)

	assert.Equal(t, 21, p.TotalMeals)
	assert.Equal(t, 7, p.CompletedMeals)
	assert.Equal(t, 33, p.AdherencePercentage)
	// 只有完成兩餐以上正餐的日子算完成，點心不算
	assert.Equal(t, 2, p.CompletedDays)
}

func TestComputeProgress_EmptyAndDefaults(t *testing.T) {
	p := ComputeProgress(nil, 0)
	assert.Equal(t, Progress{}, p)

	p = ComputeProgress([]Day{{}}, 0)
	assert.Equal(t, 3, p.TotalMeals)
	assert.Equal(t, 0, p.AdherencePercentage)
}

func TestRemainingDays(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	plan := &MealPlan{EndDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 2, plan.RemainingDays(now))
	assert.Equal(t, 0, plan.RemainingDays(now.AddDate(0, 1, 0)))
}

func TestMealPlan_MarshalJSONAddsDerivedFields(t *testing.T) {
	cost := 4.5
	plan := MealPlan{
		Title:    "Derived",
		EndDate:  time.Now().Add(36 * time.Hour),
		Progress: Progress{CompletedMeals: 1, TotalMeals: 3},
		ShoppingList: []ShoppingListItem{
			{Ingredient: "Rice", EstimatedCost: &cost},
			{Ingredient: "Beans", EstimatedCost: &cost},
			{Ingredient: "Salt"},
		},
	}

	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Derived", out["title"])
	assert.EqualValues(t, 33, out["completionPercentage"])
	assert.EqualValues(t, 2, out["remainingDays"])
	assert.EqualValues(t, 9, out["totalEstimatedCost"])
	assert.Contains(t, out, "progress")

	data, err = json.Marshal(&plan)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"remainingDays":2`)
}
