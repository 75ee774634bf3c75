package common

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// ParseObjectID 解析 ObjectID，格式錯誤回傳 ErrInvalidID
func ParseObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// Pagination 分頁參數
type Pagination struct {
	Page  int   `json:"current"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination 以預設值與上限正規化分頁參數
func NewPagination(page, limit, defaultLimit, maxLimit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Skip 回傳要略過的筆數
func (p Pagination) Skip() int {
	return (p.Page - 1) * p.Limit
}

// WithTotal 填入總筆數與總頁數
func (p Pagination) WithTotal(total int64) Pagination {
	p.Total = total
	if p.Limit > 0 {
		p.Pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return p
}

var regexMeta = regexp.MustCompile(`[.*+?^${}()|\[\]\\]`)

// EscapeRegex 跳脫使用者輸入的正規表示式字元
func EscapeRegex(s string) string {
	return regexMeta.ReplaceAllString(s, `\$0`)
}
