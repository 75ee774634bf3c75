package httpx

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"planeats/internal/core/mealplan"
	"planeats/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterValidators 註冊自訂驗證標籤：objectid 與 mealtype
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if err := v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("mealtype", func(fl validator.FieldLevel) bool {
		return slices.Contains([]string{mealplan.MealBreakfast, mealplan.MealLunch, mealplan.MealDinner, mealplan.MealSnack}, fl.Field().String())
	})
}

// BindJSON 解析並驗證 JSON，失敗時已寫入 400 回應
func BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		Error(c, common.NewValidationError(validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "email":
			msgs = append(msgs, "Please provide a valid email")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "objectid":
			msgs = append(msgs, field+" must be a valid id")
		case "mealtype":
			msgs = append(msgs, "Invalid meal type")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// ParamID 解析路徑上的 ObjectID，格式錯誤時已寫入 400 回應
func ParamID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := common.ParseObjectID(c.Param(name))
	if err != nil {
		Error(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// Page 讀取 page 與 limit 查詢參數
func Page(c *gin.Context, defaultLimit, maxLimit int) common.Pagination {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return common.NewPagination(page, limit, defaultLimit, maxLimit)
}

// CSV 讀取逗號分隔的查詢參數，忽略空白項
func CSV(c *gin.Context, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
