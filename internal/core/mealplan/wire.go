package mealplan

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// LLM 回傳的 JSON 型別不一定穩定，以下型別接受常見的變形。

// flexFloat 接受數字、數字字串（可帶單位，如 "15g"）或 null
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexFloat(leadingNumber(s))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func leadingNumber(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && s[end] == '-')) {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// flexStrings 接受字串陣列、物件陣列（取 name 欄位）或單一字串
type flexStrings []string

func (fs *flexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*fs = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*fs = flexStrings{s}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(flexStrings, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var named struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &named); err == nil && named.Name != "" {
			out = append(out, named.Name)
			continue
		}
		out = append(out, string(item))
	}
	*fs = out
	return nil
}

// flexText 接受字串或字串陣列（以換行串接）
type flexText string

func (ft *flexText) UnmarshalJSON(data []byte) error {
	var lines flexStrings
	if err := lines.UnmarshalJSON(data); err != nil {
		return err
	}
	*ft = flexText(strings.Join(lines, "\n"))
	return nil
}

// 以下型別逐欄解碼：單一欄位型別不符時忽略該欄位，不讓整份回應失敗。

type aiNutrition struct {
	Calories flexFloat
	Protein  flexFloat
	Carbs    flexFloat
	Fat      flexFloat
}

func (n *aiNutrition) UnmarshalJSON(data []byte) error {
	fields := looseFields(data)
	looseField(fields, "calories", &n.Calories)
	looseField(fields, "protein", &n.Protein)
	looseField(fields, "carbs", &n.Carbs)
	looseField(fields, "fat", &n.Fat)
	return nil
}

type aiCustomMeal struct {
	Name         string
	Ingredients  flexStrings
	Instructions flexText
	Nutrition    *aiNutrition
}

func (m *aiCustomMeal) UnmarshalJSON(data []byte) error {
	fields := looseFields(data)
	m.Name = looseString(fields["name"])
	looseField(fields, "ingredients", &m.Ingredients)
	looseField(fields, "instructions", &m.Instructions)
	if raw := fields["nutrition"]; isObject(raw) {
		m.Nutrition = &aiNutrition{}
		_ = json.Unmarshal(raw, m.Nutrition)
	}
	return nil
}

type aiMeal struct {
	CustomMeal *aiCustomMeal
	Servings   flexFloat
	Notes      string
	Time       string
}

func (m *aiMeal) UnmarshalJSON(data []byte) error {
	fields := looseFields(data)
	if raw := fields["customMeal"]; isObject(raw) {
		m.CustomMeal = &aiCustomMeal{}
		_ = json.Unmarshal(raw, m.CustomMeal)
	}
	looseField(fields, "servings", &m.Servings)
	m.Notes = looseString(fields["notes"])
	m.Time = looseString(fields["time"])
	return nil
}

// aiDay 非物件的元素（字串、null）視為空白的一天
type aiDay struct {
	Day       *flexFloat
	Date      string
	DayName   string
	Breakfast *aiMeal
	Lunch     *aiMeal
	Dinner    *aiMeal
	Snacks    []aiMeal
}

func (d *aiDay) UnmarshalJSON(data []byte) error {
	fields := looseFields(data)
	if raw, ok := fields["day"]; ok {
		var day flexFloat
		if err := json.Unmarshal(raw, &day); err == nil {
			d.Day = &day
		}
	}
	d.Date = looseString(fields["date"])
	d.DayName = looseString(fields["dayName"])
	d.Breakfast = looseMeal(fields["breakfast"])
	d.Lunch = looseMeal(fields["lunch"])
	d.Dinner = looseMeal(fields["dinner"])

	var snacks []json.RawMessage
	if raw, ok := fields["snacks"]; ok && json.Unmarshal(raw, &snacks) == nil {
		for _, raw := range snacks {
			if meal := looseMeal(raw); meal != nil {
				d.Snacks = append(d.Snacks, *meal)
			}
		}
	}
	return nil
}

func looseMeal(raw json.RawMessage) *aiMeal {
	if !isObject(raw) {
		return nil
	}
	m := &aiMeal{}
	_ = json.Unmarshal(raw, m)
	return m
}

// looseFields 把物件拆成欄位，非物件時回傳 nil
func looseFields(data []byte) map[string]json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return fields
}

// looseField 解碼單一欄位，失敗時 v 維持原值
func looseField(fields map[string]json.RawMessage, key string, v any) {
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, v)
	}
}

// looseString 接受字串或數字（取原始文字），其他型別回傳空字串
func looseString(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func (m *aiMeal) toEntry() *MealEntry {
	if m == nil {
		return &MealEntry{Servings: 1}
	}
	entry := &MealEntry{
		Servings: float64(m.Servings),
		Notes:    m.Notes,
		Time:     m.Time,
	}
	if entry.Servings <= 0 {
		entry.Servings = 1
	}
	if cm := m.CustomMeal; cm != nil {
		entry.CustomMeal = &CustomMeal{
			Name:         cm.Name,
			Ingredients:  []string(cm.Ingredients),
			Instructions: string(cm.Instructions),
		}
		if entry.CustomMeal.Ingredients == nil {
			entry.CustomMeal.Ingredients = []string{}
		}
		if cm.Nutrition != nil {
			entry.CustomMeal.Nutrition = Nutrition{
				Calories: float64(cm.Nutrition.Calories),
				Protein:  float64(cm.Nutrition.Protein),
				Carbs:    float64(cm.Nutrition.Carbs),
				Fat:      float64(cm.Nutrition.Fat),
			}
		}
	}
	return entry
}
