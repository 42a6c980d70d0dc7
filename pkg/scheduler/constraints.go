package scheduler

import "github.com/paike/paike/pkg/model"

// isValidPlacement 前向检查：候选落位对当前部分解的全部硬约束检查
func (g *Generator) isValidPlacement(session Session, p Placement) bool {
	g.stats.ConstraintChecks++

	assignment := session.Assignment
	teacherID := assignment.TeacherID
	slotID := p.Slot.ID

	// 教师本次运行内不可重复占用
	if g.teacherBusy.has(teacherID, slotID) {
		return false
	}

	// 教师跨专业不可重复占用（同批次内其他专业已排定的时段）
	if g.global != nil && g.global.Occupied(teacherID, slotID) {
		return false
	}

	// 教室不可重复占用
	if g.roomBusy.has(p.Room.ID, slotID) {
		return false
	}

	// 分组不可重复占用
	if g.groupBusy.has(assignment.SubjectGroupID, slotID) {
		return false
	}

	// 教师可用性限制（硬约束）
	if avail, ok := g.snap.Availability[teacherID]; ok {
		if !avail.CanTeachAt(p.Slot) {
			return false
		}
		if avail.IsActive && avail.MaxTeachingHours != nil {
			if g.teacherBusy.count(teacherID) >= *avail.MaxTeachingHours {
				return false
			}
		}
	}

	day := p.Slot.DayOfWeek
	prefs := g.snap.Preferences[teacherID]

	// 教师单日授课上限（偏好中声明了更低上限时以偏好为准）
	dailyCap := g.cfg.MaxDailyHoursPerTeacher
	if prefs != nil && prefs.MaxDailyHours > 0 && prefs.MaxDailyHours < dailyCap {
		dailyCap = prefs.MaxDailyHours
	}
	if g.teacherBusy.countOnDay(teacherID, g.snap, day) >= dailyCap {
		return false
	}

	// 教师连堂上限（偏好中声明了才生效）
	if prefs != nil && prefs.MaxConsecutiveHours > 0 {
		if g.consecutiveRun(teacherID, p.Slot) > prefs.MaxConsecutiveHours {
			return false
		}
	}

	// 分组单日课时上限
	if g.groupBusy.countOnDay(assignment.SubjectGroupID, g.snap, day) >= g.cfg.MaxDailyHoursPerGroup {
		return false
	}

	// 学生群体单日课次上限（跨学科，对同一 (专业, 年级, 分组) 的学生整体生效）
	cohort := g.cohortKeyFor(assignment, day)
	if g.cohortCount[cohort] >= g.cfg.MaxClassesPerDay {
		return false
	}

	// 同一门课单日节次上限（防止一门课的周课时挤在同一天）
	if g.assignmentSessionsOnDay(assignment.ID, day) >= g.cfg.MaxSessionsPerSubjectPerDay {
		return false
	}

	// 封锁时段：全局封锁一律生效；专业封锁只对本次运行的专业生效；教室封锁只对候选教室生效
	var careerID int64
	if g.career != nil {
		careerID = g.career.ID
	}
	for _, block := range g.snap.BlocksForSlot(slotID) {
		if block.AppliesToCareer(careerID) || block.AppliesToClassroom(p.Room.ID) {
			return false
		}
	}

	// 课间最小休息（对教师和分组分别检查同一天的已排时段）
	if g.cfg.MinBreakMinutes > 0 {
		if !g.hasMinimumBreak(g.teacherBusy.slotsOf(teacherID), p.Slot) {
			return false
		}
		if !g.hasMinimumBreak(g.groupBusy.slotsOf(assignment.SubjectGroupID), p.Slot) {
			return false
		}
	}

	return true
}

// hasMinimumBreak 检查候选时段与同一天已占用时段之间是否都满足最小课间休息
func (g *Generator) hasMinimumBreak(occupied map[int64]bool, candidate *model.TimeSlot) bool {
	for slotID := range occupied {
		existing := g.snap.Slot(slotID)
		if existing == nil || existing.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if !existing.HasMinimumBreak(candidate, g.cfg.MinBreakMinutes) {
			return false
		}
	}
	return true
}

// consecutiveRun 计算候选时段落位后教师当天包含该时段的连堂长度
// 紧邻定义为上一节结束时刻等于下一节开始时刻
func (g *Generator) consecutiveRun(teacherID int64, candidate *model.TimeSlot) int {
	run := 1
	start := candidate.StartMinutes()
	end := candidate.EndMinutes()
	occupied := g.teacherBusy.slotsOf(teacherID)

	for extended := true; extended; {
		extended = false
		for slotID := range occupied {
			s := g.snap.Slot(slotID)
			if s == nil || s.DayOfWeek != candidate.DayOfWeek {
				continue
			}
			if s.EndMinutes() == start {
				start = s.StartMinutes()
				run++
				extended = true
			} else if s.StartMinutes() == end {
				end = s.EndMinutes()
				run++
				extended = true
			}
		}
	}
	return run
}

// assignmentSessionsOnDay 统计某任务当天已排定的节次数
func (g *Generator) assignmentSessionsOnDay(assignmentID int64, day int) int {
	count := 0
	for key, placed := range g.schedule {
		if key.AssignmentID == assignmentID && placed.Slot.DayOfWeek == day {
			count++
		}
	}
	return count
}

// cohortKeyFor 构造学生群体键
func (g *Generator) cohortKeyFor(a *model.TeachingAssignment, day int) cohortKey {
	var careerID int64
	if g.career != nil {
		careerID = g.career.ID
	}
	return cohortKey{
		CareerID:  careerID,
		Year:      a.CourseYear,
		GroupCode: a.GroupCode,
		Day:       day,
	}
}
