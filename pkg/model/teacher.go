// Package model 定义排课引擎的核心数据模型
package model

// 教师可用性类型
const (
	AvailabilityFull        = "full"        // 完全可用
	AvailabilityRestricted  = "restricted"  // 受限可用
	AvailabilityUnavailable = "unavailable" // 不可用
)

// Career 专业（学位方向）
type Career struct {
	ID       int64  `json:"id" db:"id"`
	Code     string `json:"code" db:"code"`
	Name     string `json:"name" db:"name"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

// Teacher 教师
type Teacher struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Department string `json:"department,omitempty" db:"department"`
	Status     string `json:"status" db:"status"` // active/inactive/leave

	// 授课资格：按单科或按整个专业授权
	QualifiedSubjectIDs []int64 `json:"qualified_subject_ids,omitempty" db:"-"`
	QualifiedCareerIDs  []int64 `json:"qualified_career_ids,omitempty" db:"-"`
}

// IsActive 检查教师是否在职
func (t *Teacher) IsActive() bool {
	return t.Status == "active"
}

// CanTeachSubject 检查教师是否有资格讲授某课程
// 资格来源：单科授权，或课程所属专业的整体授权
func (t *Teacher) CanTeachSubject(subjectID int64, subjectCareerIDs []int64) bool {
	for _, id := range t.QualifiedSubjectIDs {
		if id == subjectID {
			return true
		}
	}
	for _, cid := range t.QualifiedCareerIDs {
		for _, scid := range subjectCareerIDs {
			if cid == scid {
				return true
			}
		}
	}
	return false
}

// TeacherAvailability 教师可用性限制（硬约束）
type TeacherAvailability struct {
	TeacherID        int64   `json:"teacher_id" db:"teacher_id"`
	PeriodID         int64   `json:"period_id" db:"academic_period_id"`
	Type             string  `json:"availability_type" db:"availability_type"` // full/restricted/unavailable
	MaxTeachingHours *int    `json:"max_teaching_hours,omitempty" db:"max_teaching_hours"`
	AllowedSlotIDs   []int64 `json:"allowed_slot_ids,omitempty" db:"-"` // 仅 restricted 生效
	BlockedDays      []int   `json:"blocked_days,omitempty" db:"-"`     // 0=周一
	Reason           string  `json:"restriction_reason,omitempty" db:"restriction_reason"`
	IsActive         bool    `json:"is_active" db:"is_active"`
}

// CanTeachAt 检查教师在某时段是否可以上课
func (a *TeacherAvailability) CanTeachAt(slot *TimeSlot) bool {
	if !a.IsActive {
		return true // 无生效限制
	}
	if a.Type == AvailabilityUnavailable {
		return false
	}
	for _, day := range a.BlockedDays {
		if day == slot.DayOfWeek {
			return false
		}
	}
	if a.Type == AvailabilityRestricted {
		for _, id := range a.AllowedSlotIDs {
			if id == slot.ID {
				return true
			}
		}
		return false
	}
	return true
}

// AvailableHours 返回允许的最大授课时数
func (a *TeacherAvailability) AvailableHours() int {
	if a.Type == AvailabilityUnavailable {
		return 0
	}
	if a.MaxTeachingHours != nil {
		return *a.MaxTeachingHours
	}
	return 40
}

// TeacherPreference 教师排课偏好（软约束）
type TeacherPreference struct {
	TeacherID           int64   `json:"teacher_id" db:"teacher_id"`
	PeriodID            int64   `json:"period_id" db:"academic_period_id"`
	MaxHoursPerWeek     int     `json:"max_hours_per_week" db:"max_hours_per_week"`
	MaxConsecutiveHours int     `json:"max_consecutive_hours" db:"max_consecutive_hours"`
	MaxDailyHours       int     `json:"max_daily_hours" db:"max_daily_hours"`
	PreferredDays       []int   `json:"preferred_days,omitempty" db:"-"`
	UnavailableSlotIDs  []int64 `json:"unavailable_slot_ids,omitempty" db:"-"`
	PreferredStartTime  string  `json:"preferred_start_time,omitempty" db:"preferred_start_time"` // HH:MM
	PreferredEndTime    string  `json:"preferred_end_time,omitempty" db:"preferred_end_time"`     // HH:MM
}

// DefaultMaxHoursPerWeek 未配置偏好时的默认周最大课时
const DefaultMaxHoursPerWeek = 20

// PrefersDay 检查某天是否符合教师的偏好工作日
// 未声明偏好工作日时任何一天都算符合
func (p *TeacherPreference) PrefersDay(day int) bool {
	if len(p.PreferredDays) == 0 {
		return true
	}
	for _, d := range p.PreferredDays {
		if d == day {
			return true
		}
	}
	return false
}

// DislikesSlot 检查某时段是否在教师声明的不便时段中
func (p *TeacherPreference) DislikesSlot(slotID int64) bool {
	for _, id := range p.UnavailableSlotIDs {
		if id == slotID {
			return true
		}
	}
	return false
}

// RoleAssignment 教师行政职务（占用非授课时数）
type RoleAssignment struct {
	TeacherID        int64  `json:"teacher_id" db:"teacher_id"`
	PeriodID         int64  `json:"period_id" db:"academic_period_id"`
	Role             string `json:"role" db:"role"`
	FreeHoursPerWeek int    `json:"free_hours_per_week" db:"free_hours_per_week"`
	IsActive         bool   `json:"is_active" db:"is_active"`
}
