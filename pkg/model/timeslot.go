// Package model 定义排课引擎的核心数据模型
package model

import (
	"fmt"
	"strings"

	apperrors "github.com/paike/paike/pkg/errors"
)

// TimeSlot 可用课时段（某学期内每周固定的一节课时间）
type TimeSlot struct {
	ID              int64  `json:"id" db:"id"`
	PeriodID        int64  `json:"period_id" db:"academic_period_id"`
	DayOfWeek       int    `json:"day_of_week" db:"day_of_week"` // 0=周一 .. 6=周日
	StartTime       string `json:"start_time" db:"start_time"`   // HH:MM
	EndTime         string `json:"end_time" db:"end_time"`       // HH:MM
	DurationMinutes int    `json:"duration_minutes" db:"duration_minutes"`
	SlotCode        string `json:"slot_code" db:"slot_code"`
	IsActive        bool   `json:"is_active" db:"is_active"`
}

// StartMinutes 返回开始时间的当日分钟数
func (ts *TimeSlot) StartMinutes() int {
	return ParseClock(ts.StartTime)
}

// EndMinutes 返回结束时间的当日分钟数
func (ts *TimeSlot) EndMinutes() int {
	return ParseClock(ts.EndTime)
}

// Normalize 补全派生字段（时长与段位编码）
func (ts *TimeSlot) Normalize() {
	start := ts.StartMinutes()
	end := ts.EndMinutes()
	if start >= 0 && end >= 0 {
		ts.DurationMinutes = end - start
	}
	if ts.SlotCode == "" {
		ts.SlotCode = fmt.Sprintf("D%d%s", ts.DayOfWeek, strings.ReplaceAll(ts.StartTime, ":", ""))
	}
}

// String 返回可读表示
func (ts *TimeSlot) String() string {
	return fmt.Sprintf("%s %s-%s", WeekdayName(ts.DayOfWeek), ts.StartTime, ts.EndTime)
}

// HasMinimumBreak 检查两个时段之间是否有足够的课间休息
// 同一天内：两段不重叠且间隔 >= minBreakMinutes 返回 true，重叠返回 false
// 不同天的时段不存在课间休息问题，直接返回 true
func (ts *TimeSlot) HasMinimumBreak(other *TimeSlot, minBreakMinutes int) bool {
	if ts.DayOfWeek != other.DayOfWeek {
		return true
	}
	if ts.EndMinutes() <= other.StartMinutes() {
		return other.StartMinutes()-ts.EndMinutes() >= minBreakMinutes
	}
	if other.EndMinutes() <= ts.StartMinutes() {
		return ts.StartMinutes()-other.EndMinutes() >= minBreakMinutes
	}
	// 时段重叠
	return false
}

// Classroom 教室
type Classroom struct {
	ID       int64  `json:"id" db:"id"`
	Code     string `json:"code" db:"code"`
	Name     string `json:"name" db:"name"`
	Building string `json:"building,omitempty" db:"building"`
	Capacity int    `json:"capacity" db:"capacity"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

// 封锁类型
const (
	BlockScopeGlobal    = "global"    // 全局封锁
	BlockScopeCareer    = "career"    // 按专业封锁
	BlockScopeClassroom = "classroom" // 按教室封锁
)

// BlockedTimeSlot 管理员声明的不可用时段
type BlockedTimeSlot struct {
	ID          int64  `json:"id" db:"id"`
	PeriodID    int64  `json:"period_id" db:"academic_period_id"`
	TimeSlotID  int64  `json:"time_slot_id" db:"time_slot_id"`
	Scope       string `json:"scope" db:"block_type" validate:"oneof=global career classroom"`
	CareerID    int64  `json:"career_id,omitempty" db:"career_id"`
	ClassroomID int64  `json:"classroom_id,omitempty" db:"classroom_id"`
	Reason      string `json:"reason" db:"reason"`
	IsActive    bool   `json:"is_active" db:"is_active"`
}

// Validate 校验封锁配置（范围与目标必须一致）
func (b *BlockedTimeSlot) Validate() error {
	ve := &apperrors.ValidationErrors{}

	if err := validate.Struct(b); err != nil {
		ve.Add("scope", fmt.Sprintf("封锁类型无效: %s", b.Scope))
	}

	switch b.Scope {
	case BlockScopeCareer:
		if b.CareerID == 0 {
			ve.Add("career_id", "按专业封锁必须指定专业")
		}
		if b.ClassroomID != 0 {
			ve.Add("classroom_id", "按专业封锁不应指定教室")
		}
	case BlockScopeClassroom:
		if b.ClassroomID == 0 {
			ve.Add("classroom_id", "按教室封锁必须指定教室")
		}
		if b.CareerID != 0 {
			ve.Add("career_id", "按教室封锁不应指定专业")
		}
	case BlockScopeGlobal:
		if b.CareerID != 0 {
			ve.Add("career_id", "全局封锁不应指定专业")
		}
		if b.ClassroomID != 0 {
			ve.Add("classroom_id", "全局封锁不应指定教室")
		}
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// AppliesToCareer 检查封锁是否对某专业生效
func (b *BlockedTimeSlot) AppliesToCareer(careerID int64) bool {
	if !b.IsActive {
		return false
	}
	switch b.Scope {
	case BlockScopeGlobal:
		return true
	case BlockScopeCareer:
		return careerID != 0 && b.CareerID == careerID
	default:
		// 教室封锁不在专业层面生效
		return false
	}
}

// AppliesToClassroom 检查封锁是否对某教室生效
func (b *BlockedTimeSlot) AppliesToClassroom(classroomID int64) bool {
	if !b.IsActive {
		return false
	}
	switch b.Scope {
	case BlockScopeGlobal:
		return true
	case BlockScopeClassroom:
		return b.ClassroomID == classroomID
	default:
		return false
	}
}
