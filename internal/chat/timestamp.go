package chat

import (
	"regexp"
	"strconv"
	"time"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// NormalizeTimestamp 时间戳归一入口。
//
// 接受毫秒时间戳（数值）、ISO-8601 字符串或裸 "HH:MM" 三种形态；
// 解析失败一律回退当前时间，聊天展示不允许因脏时间戳硬失败。
func NormalizeTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case int64:
		return time.UnixMilli(t)
	case int:
		return time.UnixMilli(int64(t))
	case int32:
		return time.UnixMilli(int64(t))
	case uint64:
		return time.UnixMilli(int64(t))
	case float64:
		return time.UnixMilli(int64(t))
	case string:
		return normalizeString(t)
	default:
		return time.Now()
	}
}

func normalizeString(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// 无时区偏移的 ISO 变体
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	// 裸 "HH:MM"，按当天补齐日期
	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			now := time.Now()
			return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		}
	}
	// 字符串形态的毫秒时间戳
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	return time.Now()
}

// FormatClock 列表与气泡展示用的 HH:MM
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
