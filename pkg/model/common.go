// Package model 定义排课引擎的核心数据模型
package model

import (
	"strconv"
	"strings"
)

// WeekdayNames 星期名称（0=周一）
var WeekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayName 返回星期名称
func WeekdayName(day int) string {
	if day < 0 || day >= len(WeekdayNames) {
		return "Unknown"
	}
	return WeekdayNames[day]
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// ParseClock 解析 HH:MM 为当日分钟数，格式错误返回 -1
func ParseClock(clock string) int {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}
