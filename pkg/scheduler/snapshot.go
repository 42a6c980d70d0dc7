// Package scheduler 实现课表生成的约束满足求解器
package scheduler

import (
	"sort"

	"github.com/paike/paike/pkg/model"
)

// Snapshot 排课输入快照
// 由外部加载器一次性装配的不可变数据，求解器自身不做任何 I/O
type Snapshot struct {
	PeriodID int64

	TimeSlots   []*model.TimeSlot
	Classrooms  []*model.Classroom
	Teachers    []*model.Teacher
	Careers     []*model.Career
	Assignments []*model.TeachingAssignment

	Availability map[int64]*model.TeacherAvailability // 教师ID -> 可用性限制
	Preferences  map[int64]*model.TeacherPreference   // 教师ID -> 偏好
	BlockedSlots []*model.BlockedTimeSlot
	RoleHours    map[int64]int // 教师ID -> 行政非授课时数

	CareerSubjects map[int64][]int64 // 专业ID -> 课程ID列表（来自培养方案）

	// 索引缓存
	slotByID       map[int64]*model.TimeSlot
	classroomByID  map[int64]*model.Classroom
	teacherByID    map[int64]*model.Teacher
	blockedBySlot  map[int64][]*model.BlockedTimeSlot
	subjectCareers map[int64][]int64 // 课程ID -> 专业ID列表（反向索引）
	indexed        bool
}

// NewSnapshot 创建空快照
func NewSnapshot(periodID int64) *Snapshot {
	return &Snapshot{
		PeriodID:       periodID,
		Availability:   make(map[int64]*model.TeacherAvailability),
		Preferences:    make(map[int64]*model.TeacherPreference),
		RoleHours:      make(map[int64]int),
		CareerSubjects: make(map[int64][]int64),
	}
}

// BuildIndexes 构建索引缓存（幂等）
func (s *Snapshot) BuildIndexes() {
	s.slotByID = make(map[int64]*model.TimeSlot, len(s.TimeSlots))
	for _, ts := range s.TimeSlots {
		s.slotByID[ts.ID] = ts
	}
	s.classroomByID = make(map[int64]*model.Classroom, len(s.Classrooms))
	for _, c := range s.Classrooms {
		s.classroomByID[c.ID] = c
	}
	s.teacherByID = make(map[int64]*model.Teacher, len(s.Teachers))
	for _, t := range s.Teachers {
		s.teacherByID[t.ID] = t
	}
	s.blockedBySlot = make(map[int64][]*model.BlockedTimeSlot)
	for _, b := range s.BlockedSlots {
		if b.IsActive {
			s.blockedBySlot[b.TimeSlotID] = append(s.blockedBySlot[b.TimeSlotID], b)
		}
	}
	s.subjectCareers = make(map[int64][]int64)
	for careerID, subjects := range s.CareerSubjects {
		for _, subjectID := range subjects {
			s.subjectCareers[subjectID] = append(s.subjectCareers[subjectID], careerID)
		}
	}
	for _, careers := range s.subjectCareers {
		sort.Slice(careers, func(i, j int) bool { return careers[i] < careers[j] })
	}
	s.indexed = true
}

// ensureIndexes 按需构建索引
func (s *Snapshot) ensureIndexes() {
	if !s.indexed {
		s.BuildIndexes()
	}
}

// Slot 按ID获取时段
func (s *Snapshot) Slot(id int64) *model.TimeSlot {
	s.ensureIndexes()
	return s.slotByID[id]
}

// Classroom 按ID获取教室
func (s *Snapshot) Classroom(id int64) *model.Classroom {
	s.ensureIndexes()
	return s.classroomByID[id]
}

// Teacher 按ID获取教师
func (s *Snapshot) Teacher(id int64) *model.Teacher {
	s.ensureIndexes()
	return s.teacherByID[id]
}

// TeacherName 返回教师名称，未知教师返回空串
func (s *Snapshot) TeacherName(id int64) string {
	if t := s.Teacher(id); t != nil {
		return t.Name
	}
	return ""
}

// BlocksForSlot 返回某时段上的全部有效封锁
func (s *Snapshot) BlocksForSlot(slotID int64) []*model.BlockedTimeSlot {
	s.ensureIndexes()
	return s.blockedBySlot[slotID]
}

// SubjectCareers 返回课程所属的专业ID列表
func (s *Snapshot) SubjectCareers(subjectID int64) []int64 {
	s.ensureIndexes()
	return s.subjectCareers[subjectID]
}

// ActiveAssignments 返回全部有效教学任务
func (s *Snapshot) ActiveAssignments() []*model.TeachingAssignment {
	var active []*model.TeachingAssignment
	for _, a := range s.Assignments {
		if a.IsActive() {
			active = append(active, a)
		}
	}
	return active
}

// AssignmentsForCareer 返回课程属于某专业的全部有效教学任务
func (s *Snapshot) AssignmentsForCareer(careerID int64) []*model.TeachingAssignment {
	s.ensureIndexes()
	var result []*model.TeachingAssignment
	for _, a := range s.Assignments {
		if !a.IsActive() {
			continue
		}
		for _, cid := range s.subjectCareers[a.SubjectID] {
			if cid == careerID {
				result = append(result, a)
				break
			}
		}
	}
	return result
}

// SuitableClassrooms 返回容量满足分组规模的教室列表
func (s *Snapshot) SuitableClassrooms(groupSize int) []*model.Classroom {
	var suitable []*model.Classroom
	for _, c := range s.Classrooms {
		if c.IsActive && c.Capacity >= groupSize {
			suitable = append(suitable, c)
		}
	}
	return suitable
}
