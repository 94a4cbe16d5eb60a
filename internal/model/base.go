package model

import (
	"time"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

// Timestamps는 timestamp 플러그인이 관리하는 생성/수정 시각
// 값이 이미 있으면 생성 시 덮어쓰지 않음 (import 데이터 보존)
type Timestamps struct {
	CreateTime *time.Time `gorm:"column:create_time" timestamp:"create"`
	UpdateTime *time.Time `gorm:"column:update_time" timestamp:"update"`
}

// Models lists every entity in dependency order (referenced tables first)
func Models() []any {
	return []any{
		&Article{},
		&Comment{},
	}
}

// TimestampMap returns the timestamps formatted with timestamp.Layout,
// nil for values that are not set yet.
func (t Timestamps) TimestampMap() map[string]any {
	return map[string]any{
		"createTime": formatOrNil(t.CreateTime),
		"updateTime": formatOrNil(t.UpdateTime),
	}
}

func formatOrNil(v any) any {
	if s, ok := timestamp.Format(v); ok {
		return s
	}
	return nil
}
