package mealplan

import "math"

// ComputeProgress 由排程計算進度。
// totalMeals = 天數 × mealsPerDay；完成的點心也計入 completedMeals；
// 一天至少完成兩餐正餐才算完成。
func ComputeProgress(days []Day, mealsPerDay int) Progress {
	if mealsPerDay <= 0 {
		mealsPerDay = defaultMealsPerDay
	}

	var progress Progress
	progress.TotalMeals = len(days) * mealsPerDay

	for i := range days {
		main := 0
		for _, m := range days[i].MainMeals() {
			if m != nil && m.Completed {
				main++
			}
		}
		snacks := 0
		for _, s := range days[i].Snacks {
			if s.Completed {
				snacks++
			}
		}
		progress.CompletedMeals += main + snacks
		if main >= 2 {
			progress.CompletedDays++
		}
	}

	progress.AdherencePercentage = AdherencePercentage(progress.CompletedMeals, progress.TotalMeals)
	return progress
}

// AdherencePercentage round(completed / total × 100)，total 為 0 時回傳 0
func AdherencePercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
