// Package patch 提供部分更新（PATCH 语义）用的三态 JSON 字段：缺省 / null / 有值。
package patch

import "encoding/json"

type Field[T any] struct {
	Set   bool // 请求体里出现了该 key
	Null  bool // 显式 null
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}

// Ptr 出现且非 null 时返回值指针，否则 nil
func (f Field[T]) Ptr() *T {
	if !f.Set || f.Null {
		return nil
	}
	v := f.Value
	return &v
}
