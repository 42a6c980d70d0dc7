package scheduler

import (
	"fmt"
	"sort"

	"github.com/paike/paike/pkg/model"
)

// preflight 前置校验：穷尽式执行全部检查，不短路，
// 让一次运行暴露所有问题而不是只报第一个
func (g *Generator) preflight() {
	g.checkTimeSlotSufficiency()
	g.checkTeacherAvailability()
	g.checkTeacherLoad()
	g.checkClassroomFit()
	g.checkQualifications()
}

// checkTimeSlotSufficiency 课时需求与时段供给的总量核对
// 总需求超过 时段数×教室数 时任何搜索都不可能成功；
// 单个学生群体的需求超过时段总数时同样无解
func (g *Generator) checkTimeSlotSufficiency() {
	activeSlots := 0
	for _, slot := range g.snap.TimeSlots {
		if slot.IsActive {
			activeSlots++
		}
	}
	activeRooms := 0
	for _, room := range g.snap.Classrooms {
		if room.IsActive {
			activeRooms++
		}
	}

	totalDemand := 0
	groupDemand := make(map[string]int) // "年级-分组" -> 周课时需求
	for _, a := range g.assignments {
		totalDemand += a.WeeklyHours
		key := fmt.Sprintf("%d-%s", a.CourseYear, a.GroupCode)
		groupDemand[key] += a.WeeklyHours
	}

	if capacity := activeSlots * activeRooms; totalDemand > capacity {
		g.addConflict(model.Conflict{
			Type:        "insufficient_time_slots",
			Severity:    "critical",
			Entity:      "period",
			EntityID:    g.snap.PeriodID,
			EntityName:  fmt.Sprintf("学期 %d", g.snap.PeriodID),
			Description: fmt.Sprintf("总课时需求 %d 超过时段容量 %d（%d 个时段 × %d 间教室）", totalDemand, capacity, activeSlots, activeRooms),
			Details: model.JSONMap{
				"total_demand":   totalDemand,
				"total_capacity": capacity,
				"active_slots":   activeSlots,
				"active_rooms":   activeRooms,
			},
			PossibleSolutions: []string{
				"增加可用时段或启用更多教室",
				"减少本学期开设的教学任务",
			},
			Blocking: true,
		})
	}

	keys := make([]string, 0, len(groupDemand))
	for key := range groupDemand {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if demand := groupDemand[key]; demand > activeSlots {
			g.addConflict(model.Conflict{
				Type:        "insufficient_time_slots",
				Severity:    "critical",
				Entity:      "group",
				EntityName:  key,
				Description: fmt.Sprintf("分组 %s 的周课时需求 %d 超过可用时段数 %d", key, demand, activeSlots),
				Details: model.JSONMap{
					"group_demand": demand,
					"active_slots": activeSlots,
				},
				PossibleSolutions: []string{
					"拆分该分组或调整培养方案的周课时",
					"增加可用时段",
				},
				Blocking: true,
			})
		}
	}
}

// checkTeacherAvailability 完全不可用的教师：其任务必然无法排定，
// 记为阻断冲突并从本次搜索中剔除
func (g *Generator) checkTeacherAvailability() {
	reported := make(map[int64]bool)
	var kept []*model.TeachingAssignment

	for _, a := range g.assignments {
		avail, ok := g.snap.Availability[a.TeacherID]
		if ok && avail.IsActive && avail.Type == model.AvailabilityUnavailable {
			g.excluded[a.ID] = true
			if !reported[a.TeacherID] {
				reported[a.TeacherID] = true
				g.addConflict(model.Conflict{
					Type:             "teacher_unavailable",
					Severity:         "critical",
					Entity:           "teacher",
					EntityID:         a.TeacherID,
					EntityName:       g.snap.TeacherName(a.TeacherID),
					Description:      fmt.Sprintf("教师 %s 本学期完全不可用，其教学任务无法排入课表", g.snap.TeacherName(a.TeacherID)),
					Details:          model.JSONMap{"reason": avail.Reason},
					AffectedSubjects: g.subjectsOfTeacher(a.TeacherID),
					PossibleSolutions: []string{
						"将该教师的教学任务改派给其他教师",
						"调整该教师的可用性设置",
					},
					Blocking: true,
				})
			}
			continue
		}
		kept = append(kept, a)
	}
	g.assignments = kept
}

// checkTeacherLoad 教师总负载核对：授课时数 + 行政职务时数 不得超过周最大课时
func (g *Generator) checkTeacherLoad() {
	teaching := make(map[int64]int)
	for _, a := range g.assignments {
		teaching[a.TeacherID] += a.WeeklyHours
	}

	teacherIDs := make([]int64, 0, len(teaching))
	for id := range teaching {
		teacherIDs = append(teacherIDs, id)
	}
	sort.Slice(teacherIDs, func(i, j int) bool { return teacherIDs[i] < teacherIDs[j] })

	for _, teacherID := range teacherIDs {
		maxHours := model.DefaultMaxHoursPerWeek
		if prefs, ok := g.snap.Preferences[teacherID]; ok && prefs.MaxHoursPerWeek > 0 {
			maxHours = prefs.MaxHoursPerWeek
		}
		roleHours := g.snap.RoleHours[teacherID]
		total := teaching[teacherID] + roleHours
		if total <= maxHours {
			continue
		}
		g.addConflict(model.Conflict{
			Type:        "teacher_overload",
			Severity:    "critical",
			Entity:      "teacher",
			EntityID:    teacherID,
			EntityName:  g.snap.TeacherName(teacherID),
			Description: fmt.Sprintf("教师 %s 总负载 %d 小时（授课 %d + 职务 %d）超过周上限 %d", g.snap.TeacherName(teacherID), total, teaching[teacherID], roleHours, maxHours),
			Details: model.JSONMap{
				"teaching_hours": teaching[teacherID],
				"role_hours":     roleHours,
				"max_hours":      maxHours,
			},
			AffectedSubjects: g.subjectsOfTeacher(teacherID),
			PossibleSolutions: []string{
				"减少该教师的教学任务或行政职务",
				"上调该教师的周最大课时",
			},
			Blocking: true,
		})
	}
}

// checkClassroomFit 分组规模超过所有教室容量时该分组的课必然无处可排
func (g *Generator) checkClassroomFit() {
	maxCapacity := 0
	for _, room := range g.snap.Classrooms {
		if room.IsActive && room.Capacity > maxCapacity {
			maxCapacity = room.Capacity
		}
	}

	reported := make(map[int64]bool)
	for _, a := range g.assignments {
		if a.GroupCapacity <= maxCapacity || reported[a.SubjectGroupID] {
			continue
		}
		reported[a.SubjectGroupID] = true
		g.addConflict(model.Conflict{
			Type:        "no_suitable_classroom",
			Severity:    "critical",
			Entity:      "subject_group",
			EntityID:    a.SubjectGroupID,
			EntityName:  a.Label(),
			Description: fmt.Sprintf("分组 %s 有 %d 名学生，超出最大教室容量 %d", a.Label(), a.GroupCapacity, maxCapacity),
			Details: model.JSONMap{
				"group_capacity": a.GroupCapacity,
				"max_room":       maxCapacity,
			},
			PossibleSolutions: []string{
				"将该分组拆分为多个小组",
				"启用容量更大的教室",
			},
			Blocking: true,
		})
	}
}

// checkQualifications 授课资格核对
// 只对录入过资格数据的教师生效；资格数据缺失按不限处理
func (g *Generator) checkQualifications() {
	for _, a := range g.assignments {
		teacher := g.snap.Teacher(a.TeacherID)
		if teacher == nil {
			continue
		}
		if len(teacher.QualifiedSubjectIDs) == 0 && len(teacher.QualifiedCareerIDs) == 0 {
			continue
		}
		if teacher.CanTeachSubject(a.SubjectID, g.snap.SubjectCareers(a.SubjectID)) {
			continue
		}
		g.addConflict(model.Conflict{
			Type:        "teacher_not_qualified",
			Severity:    "critical",
			Entity:      "teacher",
			EntityID:    a.TeacherID,
			EntityName:  teacher.Name,
			Description: fmt.Sprintf("教师 %s 没有讲授课程 %s 的资格记录", teacher.Name, a.SubjectName),
			Details: model.JSONMap{
				"subject_id":   a.SubjectID,
				"subject_name": a.SubjectName,
			},
			AffectedSubjects: []string{a.SubjectName},
			PossibleSolutions: []string{
				"为该教师补录授课资格",
				"改派有资格的教师",
			},
			Blocking: true,
		})
	}
}

// subjectsOfTeacher 返回某教师全部任务的课程名（去重、有序）
func (g *Generator) subjectsOfTeacher(teacherID int64) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range g.snap.Assignments {
		if a.TeacherID == teacherID && a.IsActive() && !seen[a.SubjectName] {
			seen[a.SubjectName] = true
			names = append(names, a.SubjectName)
		}
	}
	sort.Strings(names)
	return names
}
