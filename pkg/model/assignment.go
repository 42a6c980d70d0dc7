// Package model 定义排课引擎的核心数据模型
package model

import "fmt"

// TeachingAssignment 教学任务："某教师每周为某课程分组讲授 N 课时"
type TeachingAssignment struct {
	ID             int64  `json:"id" db:"id"`
	TeacherID      int64  `json:"teacher_id" db:"teacher_id"`
	SubjectGroupID int64  `json:"subject_group_id" db:"subject_group_id"`
	SubjectID      int64  `json:"subject_id" db:"subject_id"`
	SubjectName    string `json:"subject_name" db:"subject_name"`
	SubjectCode    string `json:"subject_code" db:"subject_code"`
	CourseYear     int    `json:"course_year" db:"course_year"` // 课程所属年级
	GroupCode      string `json:"group_code" db:"group_code"`   // 分组编码（如 "A"）
	GroupCapacity  int    `json:"group_capacity" db:"max_capacity"`
	WeeklyHours    int    `json:"weekly_hours" db:"weekly_hours"`
	Status         string `json:"status" db:"status"` // active/inactive/completed
}

// IsActive 检查任务是否有效
func (a *TeachingAssignment) IsActive() bool {
	return a.Status == "active"
}

// Label 返回可读标签（课程 - 分组）
func (a *TeachingAssignment) Label() string {
	return fmt.Sprintf("%s - %s", a.SubjectName, a.GroupCode)
}
