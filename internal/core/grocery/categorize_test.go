package grocery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeForMealPlan(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"Chicken Breast", Meat},
		{"salmon fillet", Meat},
		{"Whole Milk", Dairy},
		{"eggs", Dairy},
		{"Red Onion", Produce},
		{"baby spinach", Produce},
		{"sourdough bread", Bakery},
		{"Frozen peas", Frozen},
		{"vanilla ice cream", Dairy}, // "cream" 在 dairy 群組，先於 frozen
		{"olive oil", Pantry},
		{"", Pantry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeForMealPlan(tt.name))
		})
	}
}

func TestCategorizeForMealPlanIsCaseInsensitive(t *testing.T) {
	names := []string{"Chicken", "BREAD", "Greek Yogurt", "Quinoa", "Frozen Vegetables", "tomato paste"}
	for _, name := range names {
		assert.Equal(t, CategorizeForMealPlan(strings.ToLower(name)), CategorizeForMealPlan(name), name)
		assert.Equal(t, CategorizeForMealPlan(strings.ToUpper(name)), CategorizeForMealPlan(name), name)
	}
}

func TestCategorizeForMealPlanGroupPrecedence(t *testing.T) {
	assert.Equal(t, Meat, CategorizeForMealPlan("frozen chicken breast"))
	assert.Equal(t, Frozen, CategorizeForMealPlan("frozen vegetables"))
	// "frozen carrot" 同時符合 produce 與 frozen，produce 先檢查
	assert.Equal(t, Produce, CategorizeForMealPlan("frozen carrot"))
}

func TestCategorizeForStandaloneList(t *testing.T) {
	assert.Equal(t, Meat, CategorizeForStandaloneList("ground beef"))
	assert.Equal(t, Beverages, CategorizeForStandaloneList("Cranberry Juice"))
	// produce 關鍵字先於飲料
	assert.Equal(t, Produce, CategorizeForStandaloneList("orange juice"))
	assert.Equal(t, Beverages, CategorizeForStandaloneList("cold brew coffee"))
	assert.Equal(t, Other, CategorizeForStandaloneList("paper towels"))
}

func TestFallbacksStayDistinct(t *testing.T) {
	assert.Equal(t, Pantry, CategorizeForMealPlan("rice"))
	assert.Equal(t, Other, CategorizeForStandaloneList("rice"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Beverages, StandaloneCategories))
	assert.False(t, Valid(Beverages, MealPlanCategories))
	assert.False(t, Valid(Category("snacks"), StandaloneCategories))
}
