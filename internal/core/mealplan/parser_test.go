package mealplan

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseNow = time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC) // Wednesday

func TestParseAIResponse_HappyPath(t *testing.T) {
	text := `Here is your plan:
{"meals":[{"breakfast":{"customMeal":{"name":"Oatmeal","nutrition":{"calories":300,"protein":10,"carbs":50,"fat":5}},"servings":2}}]}
Enjoy!`

	plan, err := ParseAIResponse(text, parseNow)
	require.NoError(t, err)

	require.Len(t, plan.Meals, 1)
	day := plan.Meals[0]
	assert.Equal(t, 600.0, day.TotalNutrition.Calories)
	assert.Equal(t, 20.0, day.TotalNutrition.Protein)
	assert.Equal(t, 1, day.Day)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), day.Date)
	assert.Equal(t, "Wednesday", day.DayName)
	require.NotNil(t, day.Lunch)
	require.NotNil(t, day.Dinner)
	assert.Nil(t, day.Lunch.CustomMeal)
	assert.Equal(t, 1.0, day.Lunch.Servings)
	assert.NotNil(t, day.Snacks)
	assert.Equal(t, "Oatmeal", day.Breakfast.CustomMeal.Name)
	assert.Equal(t, []string{}, day.Breakfast.CustomMeal.Ingredients)

	assert.Equal(t, defaultAITitle, plan.Title)
	assert.Equal(t, defaultAIDescription, plan.Description)
	assert.Equal(t, map[string]any{}, plan.TotalNutrition)
	assert.Equal(t, []string{}, plan.AdditionalIngredients)
}

func TestParseAIResponse_KeepsProvidedFields(t *testing.T) {
	text := "```json\n" + `{
  "title": "Veggie Week",
  "description": "Plants {mostly}",
  "meals": [
    {"day": 1, "date": "2024-02-05", "dayName": "Monday",
     "lunch": {"customMeal": {"name": "Soup", "ingredients": [{"name": "carrot"}, "onion"], "instructions": ["Chop", "Boil"],
       "nutrition": {"calories": "250 kcal", "protein": "8g", "carbs": 30, "fat": null}}},
     "snacks": [{"customMeal": {"name": "Apple", "nutrition": {"calories": 95}}, "servings": "2"}]},
    {"day": 2}
  ],
  "totalNutrition": {"dailyAverage": {"calories": 1800}},
  "additionalIngredients": ["salt", {"name": "pepper"}]
}` + "\n```"

	plan, err := ParseAIResponse(text, parseNow)
	require.NoError(t, err)

	assert.Equal(t, "Veggie Week", plan.Title)
	assert.Equal(t, "Plants {mostly}", plan.Description)
	assert.Equal(t, []string{"salt", "pepper"}, plan.AdditionalIngredients)
	assert.Contains(t, plan.TotalNutrition, "dailyAverage")

	require.Len(t, plan.Meals, 2)
	first := plan.Meals[0]
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Monday", first.DayName)
	assert.Equal(t, []string{"carrot", "onion"}, first.Lunch.CustomMeal.Ingredients)
	assert.Equal(t, "Chop\nBoil", first.Lunch.CustomMeal.Instructions)
	assert.Equal(t, 250.0+190.0, first.TotalNutrition.Calories)
	assert.Equal(t, 8.0, first.TotalNutrition.Protein)

	assert.Equal(t, 2, plan.Meals[1].Day)
	assert.Equal(t, "Wednesday", plan.Meals[1].DayName)
}

func TestParseAIResponse_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"no braces", "Sorry, I cannot help with that.", ErrNoJSONFound},
		{"unclosed object", `{"meals": [`, ErrNoJSONFound},
		{"syntax error", `{"meals": [1,]}`, ErrInvalidJSON},
		{"missing meals", `{"title": "x"}`, ErrInvalidMealsFormat},
		{"meals not array", `{"meals": {"day": 1}}`, ErrInvalidMealsFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParseAIResponse(tt.text, parseNow)
			assert.Nil(t, plan)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "Failed to parse AI response")
		})
	}
}

func TestParseAIResponse_ToleratesMistypedFields(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, day Day)
	}{
		{"numeric time", `{"meals":[{"lunch":{"time":730,"customMeal":{"name":"Wrap"}}}]}`, func(t *testing.T, day Day) {
			assert.Equal(t, "730", day.Lunch.Time)
			assert.Equal(t, "Wrap", day.Lunch.CustomMeal.Name)
		}},
		{"boolean servings", `{"meals":[{"dinner":{"servings":true,"customMeal":{"nutrition":{"calories":400}}}}]}`, func(t *testing.T, day Day) {
			assert.Equal(t, 1.0, day.Dinner.Servings)
			assert.Equal(t, 400.0, day.TotalNutrition.Calories)
		}},
		{"numeric date", `{"meals":[{"date":20240105}]}`, func(t *testing.T, day Day) {
			assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), day.Date)
		}},
		{"unparseable date", `{"meals":[{"date":true,"dayName":7}]}`, func(t *testing.T, day Day) {
			assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), day.Date)
			assert.Equal(t, "7", day.DayName)
		}},
		{"string day", `{"meals":["Monday"]}`, func(t *testing.T, day Day) {
			assert.Equal(t, 1, day.Day)
			assert.Equal(t, "Wednesday", day.DayName)
			require.NotNil(t, day.Breakfast)
			assert.Equal(t, 1.0, day.Breakfast.Servings)
			assert.NotNil(t, day.Snacks)
		}},
		{"null day", `{"meals":[null]}`, func(t *testing.T, day Day) {
			assert.Equal(t, 1, day.Day)
			require.NotNil(t, day.Dinner)
		}},
		{"mistyped nutrition and snacks", `{"meals":[{"breakfast":{"customMeal":{"name":"Toast","nutrition":{"calories":true,"protein":6}}},"snacks":["nuts",{"customMeal":{"name":"Pear"}}]}]}`, func(t *testing.T, day Day) {
			assert.Zero(t, day.TotalNutrition.Calories)
			assert.Equal(t, 6.0, day.TotalNutrition.Protein)
			require.Len(t, day.Snacks, 1)
			assert.Equal(t, "Pear", day.Snacks[0].CustomMeal.Name)
		}},
		{"meal slot is a string", `{"meals":[{"lunch":"salad","customMeal":1}]}`, func(t *testing.T, day Day) {
			require.NotNil(t, day.Lunch)
			assert.Nil(t, day.Lunch.CustomMeal)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParseAIResponse(tt.text, parseNow)
			require.NoError(t, err)
			require.Len(t, plan.Meals, 1)
			tt.check(t, plan.Meals[0])
		})
	}
}
