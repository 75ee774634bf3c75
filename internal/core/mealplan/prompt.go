package mealplan

import (
	"fmt"
	"strings"
)

// GenerateInput AI 生成餐計畫的參數（已合併使用者偏好）
type GenerateInput struct {
	Ingredients         []string `json:"ingredients"`
	Duration            int      `json:"duration"`
	DietaryPreferences  []string `json:"dietaryPreferences"`
	Allergies           []string `json:"allergies"`
	Goals               []string `json:"goals"`
	ExcludeIngredients  []string `json:"excludeIngredients"`
	FavoriteIngredients []string `json:"favoriteIngredients"`
	CuisinePreferences  []string `json:"cuisinePreferences"`
	CookingTime         string   `json:"cookingTime"`
	MealTypes           []string `json:"mealTypes"`
	Servings            int      `json:"servings"`
	DailyCalories       float64  `json:"dailyCalories,omitempty"`
}

// ApplyDefaults 補上未提供的參數
func (in *GenerateInput) ApplyDefaults() {
	if len(in.Goals) == 0 {
		in.Goals = []string{"maintenance"}
	}
	if in.CookingTime == "" {
		in.CookingTime = "moderate"
	}
	if len(in.MealTypes) == 0 {
		in.MealTypes = []string{MealBreakfast, MealLunch, MealDinner}
	}
	if in.Servings <= 0 {
		in.Servings = 1
	}
	for _, p := range []*[]string{&in.DietaryPreferences, &in.Allergies, &in.ExcludeIngredients, &in.FavoriteIngredients, &in.CuisinePreferences} {
		if *p == nil {
			*p = []string{}
		}
	}
}

const systemPrompt = `You are PlanEats AI, a specialized meal planning assistant that creates personalized meal plans based on available ingredients and dietary preferences.

Role: Generate structured, practical meal plans that maximize ingredient usage while meeting dietary requirements and nutritional goals.

Task: Create detailed meal plans with specific recipes, cooking instructions, and nutritional information.

Format: Respond with a structured JSON object containing:
- title: Meal plan title
- description: Brief description
- meals: Array of daily meal objects with breakfast, lunch, dinner, and snacks
- totalNutrition: Estimated nutrition totals
- additionalIngredients: Additional ingredients needed

Constraints:
- Use provided ingredients as much as possible
- Respect all dietary restrictions and allergies
- Ensure nutritional balance
- Provide realistic cooking times and difficulty levels
- Include variety across days
- Suggest reasonable portion sizes`

const responseShape = `
Please provide a JSON response with the following structure:
{
  "title": "Meal Plan Title",
  "description": "Brief description",
  "meals": [
    {
      "day": 1,
      "date": "2024-01-01",
      "dayName": "Monday",
      "breakfast": {
        "customMeal": {
          "name": "Recipe Name",
          "ingredients": ["ingredient 1", "ingredient 2"],
          "instructions": "Step-by-step cooking instructions",
          "nutrition": { "calories": 300, "protein": 15, "carbs": 40, "fat": 10 }
        },
        "servings": 1
      },
      "lunch": { /* similar structure */ },
      "dinner": { /* similar structure */ },
      "snacks": [{ /* similar structure */ }]
    }
  ],
  "totalNutrition": {
    "dailyAverage": { "calories": 2000, "protein": 100, "carbs": 250, "fat": 65 }
  },
  "additionalIngredients": ["ingredient 1", "ingredient 2"]
}`

// SystemPrompt 餐計畫生成的系統提示
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt 依參數組出使用者提示，空的條件不列出
func UserPrompt(in GenerateInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day meal plan using these available ingredients: %s.\n\n", in.Duration, strings.Join(in.Ingredients, ", "))

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Servings per meal: %d\n", in.Servings)
	fmt.Fprintf(&b, "- Meal types to include: %s\n", strings.Join(in.MealTypes, ", "))
	fmt.Fprintf(&b, "- Cooking time preference: %s\n", in.CookingTime)

	optional := []struct {
		label  string
		values []string
	}{
		{"Dietary preferences", in.DietaryPreferences},
		{"Allergies to avoid", in.Allergies},
		{"Ingredients to avoid", in.ExcludeIngredients},
		{"Favorite ingredients to prioritize", in.FavoriteIngredients},
		{"Cuisine preferences", in.CuisinePreferences},
		{"Health goals", in.Goals},
	}
	for _, o := range optional {
		if len(o.values) > 0 {
			fmt.Fprintf(&b, "- %s: %s\n", o.label, strings.Join(o.values, ", "))
		}
	}
	if in.DailyCalories > 0 {
		fmt.Fprintf(&b, "- Target daily calories: %g\n", in.DailyCalories)
	}

	b.WriteString(responseShape)
	return b.String()
}

// mergeUnique 依出現順序合併並去重
func mergeUnique(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
