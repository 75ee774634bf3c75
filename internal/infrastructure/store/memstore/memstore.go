// Package memstore 以記憶體實作各領域的 Repository，供未設定 MongoDB 時與測試使用。
// 寫入與讀出都經過 bson 編解碼複製，行為與 MongoDB 版本一致（時間精度為毫秒、忽略 bson:"-" 欄位）。
package memstore

import (
	"go.mongodb.org/mongo-driver/bson"
)

// clone 以 bson 往返複製文件
func clone[T any](v *T) *T {
	data, err := bson.Marshal(v)
	if err != nil {
		panic("memstore: marshal: " + err.Error())
	}
	out := new(T)
	if err := bson.Unmarshal(data, out); err != nil {
		panic("memstore: unmarshal: " + err.Error())
	}
	return out
}

func cloneAll[T any](items []*T) []*T {
	out := make([]*T, 0, len(items))
	for _, v := range items {
		out = append(out, clone(v))
	}
	return out
}

// page 套用 skip 與 limit，limit <= 0 表示不限制
func page[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return items[:0]
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
