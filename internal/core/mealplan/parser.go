package mealplan

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"planeats/internal/pkg/common"
)

const (
	defaultAITitle       = "AI Generated Meal Plan"
	defaultAIDescription = "Personalized meal plan created by AI"
)

// AI 回應解析錯誤
var (
	ErrNoJSONFound        = errors.New("no JSON found in response")
	ErrInvalidJSON        = errors.New("invalid JSON")
	ErrInvalidMealsFormat = errors.New("invalid meals format")
)

// ParseError AI 回應無法轉成餐計畫
type ParseError struct {
	Err    error // ErrNoJSONFound、ErrInvalidJSON 或 ErrInvalidMealsFormat
	Detail error
}

func (e *ParseError) Error() string {
	msg := "Failed to parse AI response: " + e.Err.Error()
	if e.Detail != nil {
		msg += " (" + e.Detail.Error() + ")"
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParsedPlan 解析後的 AI 餐計畫
type ParsedPlan struct {
	Title                 string         `json:"title"`
	Description           string         `json:"description"`
	Meals                 []Day          `json:"meals"`
	TotalNutrition        map[string]any `json:"totalNutrition"`
	AdditionalIngredients []string       `json:"additionalIngredients"`
}

// ParseAIResponse 從 LLM 文字中取出 JSON 物件並轉成排程。
// 缺少的 day、date、dayName、三餐與點心會補上預設值，
// 每日營養只加總 customMeal.nutrition × servings。
func ParseAIResponse(text string, now time.Time) (*ParsedPlan, error) {
	candidate, ok := common.ExtractJSONObject(text)
	if !ok {
		return nil, &ParseError{Err: ErrNoJSONFound}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &top); err != nil {
		return nil, &ParseError{Err: ErrInvalidJSON, Detail: err}
	}

	rawMeals := bytes.TrimSpace(top["meals"])
	if len(rawMeals) == 0 || rawMeals[0] != '[' {
		return nil, &ParseError{Err: ErrInvalidMealsFormat}
	}
	var days []aiDay
	if err := json.Unmarshal(rawMeals, &days); err != nil {
		return nil, &ParseError{Err: ErrInvalidMealsFormat, Detail: err}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	meals := make([]Day, 0, len(days))
	for i := range days {
		meals = append(meals, backfillDay(&days[i], i, today, now))
	}

	plan := &ParsedPlan{
		Title:                 stringField(top["title"], defaultAITitle),
		Description:           stringField(top["description"], defaultAIDescription),
		Meals:                 meals,
		TotalNutrition:        map[string]any{},
		AdditionalIngredients: []string{},
	}
	if raw, ok := top["totalNutrition"]; ok {
		_ = json.Unmarshal(raw, &plan.TotalNutrition)
		if plan.TotalNutrition == nil {
			plan.TotalNutrition = map[string]any{}
		}
	}
	if raw, ok := top["additionalIngredients"]; ok {
		var extra flexStrings
		if err := json.Unmarshal(raw, &extra); err == nil && extra != nil {
			plan.AdditionalIngredients = extra
		}
	}
	return plan, nil
}

func backfillDay(d *aiDay, index int, today, now time.Time) Day {
	out := Day{
		Day:       index + 1,
		Date:      today,
		DayName:   DayName(now),
		Breakfast: d.Breakfast.toEntry(),
		Lunch:     d.Lunch.toEntry(),
		Dinner:    d.Dinner.toEntry(),
		Snacks:    make([]MealEntry, 0, len(d.Snacks)),
	}
	if d.Day != nil && *d.Day >= 1 {
		out.Day = int(*d.Day)
	}
	if date, ok := parseDate(d.Date); ok {
		out.Date = date
	}
	if d.DayName != "" {
		out.DayName = d.DayName
	}
	for i := range d.Snacks {
		out.Snacks = append(out.Snacks, *d.Snacks[i].toEntry())
	}
	out.TotalNutrition = CustomMealNutrition(&out)
	return out
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano, "20060102"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringField(raw json.RawMessage, fallback string) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
