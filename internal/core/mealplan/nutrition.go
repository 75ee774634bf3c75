package mealplan

func (n Nutrition) scaled(factor float64) Nutrition {
	return Nutrition{
		Calories: n.Calories * factor,
		Protein:  n.Protein * factor,
		Carbs:    n.Carbs * factor,
		Fat:      n.Fat * factor,
		Fiber:    n.Fiber * factor,
		Sodium:   n.Sodium * factor,
	}
}

func (n Nutrition) add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
		Sodium:   n.Sodium + o.Sodium,
	}
}

// CustomMealNutrition 只加總自訂餐點的熱量、蛋白質、碳水與脂肪（乘上份數），
// 指向食譜的欄位不計入。AI 生成的排程使用此規則。
func CustomMealNutrition(d *Day) Nutrition {
	var total Nutrition
	for _, slot := range d.Slots() {
		if slot.CustomMeal == nil {
			continue
		}
		n := slot.CustomMeal.Nutrition
		total = total.add(Nutrition{
			Calories: n.Calories,
			Protein:  n.Protein,
			Carbs:    n.Carbs,
			Fat:      n.Fat,
		}.scaled(slot.EffectiveServings()))
	}
	return total
}

// CalculateDayNutrition 加總一天的營養：已載入食譜的每份營養與自訂餐點營養，皆乘上份數
func CalculateDayNutrition(d *Day) Nutrition {
	var total Nutrition
	for _, slot := range d.Slots() {
		servings := slot.EffectiveServings()
		if r := slot.RecipeDetails; r != nil {
			total = total.add(Nutrition{
				Calories: r.Nutrition.Calories,
				Protein:  r.Nutrition.Protein,
				Carbs:    r.Nutrition.Carbohydrates,
				Fat:      r.Nutrition.Fat,
				Fiber:    r.Nutrition.Fiber,
				Sodium:   r.Nutrition.Sodium,
			}.scaled(servings))
		} else if slot.CustomMeal != nil {
			total = total.add(slot.CustomMeal.Nutrition.scaled(servings))
		}
	}
	return total
}
