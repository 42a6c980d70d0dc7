// Package view 提供课表的展示投影与统计
package view

import (
	"sort"

	"github.com/google/uuid"

	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/scheduler"
)

// Entry 一条展开后的课表记录
type Entry struct {
	SessionID      uuid.UUID `json:"session_id"`
	AssignmentID   int64     `json:"assignment_id"`
	SubjectGroupID int64     `json:"subject_group_id"`
	SubjectName    string    `json:"subject_name"`
	SubjectCode    string    `json:"subject_code"`
	CourseYear     int       `json:"course_year"`
	GroupCode      string    `json:"group_code"`
	TeacherID      int64     `json:"teacher_id"`
	TeacherName    string    `json:"teacher_name"`
	ClassroomID    int64     `json:"classroom_id"`
	ClassroomCode  string    `json:"classroom_code"`
	Day            int       `json:"day_of_week"`
	DayName        string    `json:"day_name"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	SessionType    string    `json:"session_type"`
	IsLocked       bool      `json:"is_locked"`
}

// Filter 课表查询条件，零值字段表示不过滤
type Filter struct {
	TeacherID      int64
	SubjectGroupID int64
	ClassroomID    int64
	Day            *int
}

// Expand 将已排节次展开为展示记录
// 引用了快照中不存在的资源的节次被静默跳过
// 结果按 (星期, 开始时间, 课程名) 排序
func Expand(snap *scheduler.Snapshot, sessions []*model.ScheduledSession) []Entry {
	byID := make(map[int64]*model.TeachingAssignment, len(snap.Assignments))
	for _, a := range snap.Assignments {
		byID[a.ID] = a
	}

	entries := make([]Entry, 0, len(sessions))
	for _, s := range sessions {
		a := byID[s.AssignmentID]
		slot := snap.Slot(s.TimeSlotID)
		room := snap.Classroom(s.ClassroomID)
		if a == nil || slot == nil || room == nil {
			continue
		}
		entries = append(entries, Entry{
			SessionID:      s.ID,
			AssignmentID:   a.ID,
			SubjectGroupID: s.SubjectGroupID,
			SubjectName:    a.SubjectName,
			SubjectCode:    a.SubjectCode,
			CourseYear:     a.CourseYear,
			GroupCode:      a.GroupCode,
			TeacherID:      s.TeacherID,
			TeacherName:    snap.TeacherName(s.TeacherID),
			ClassroomID:    room.ID,
			ClassroomCode:  room.Code,
			Day:            slot.DayOfWeek,
			DayName:        model.WeekdayName(slot.DayOfWeek),
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			SessionType:    s.SessionType,
			IsLocked:       s.IsLocked,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		if entries[i].StartTime != entries[j].StartTime {
			return entries[i].StartTime < entries[j].StartTime
		}
		return entries[i].SubjectName < entries[j].SubjectName
	})
	return entries
}

// Apply 按条件过滤展示记录
func (f Filter) Apply(entries []Entry) []Entry {
	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.TeacherID != 0 && e.TeacherID != f.TeacherID {
			continue
		}
		if f.SubjectGroupID != 0 && e.SubjectGroupID != f.SubjectGroupID {
			continue
		}
		if f.ClassroomID != 0 && e.ClassroomID != f.ClassroomID {
			continue
		}
		if f.Day != nil && e.Day != *f.Day {
			continue
		}
		result = append(result, e)
	}
	return result
}
