package view

// Statistics 课表统计指标
type Statistics struct {
	TotalSessions      int            `json:"total_sessions"`
	SessionsByDay      map[string]int `json:"sessions_by_day"`
	SessionsByType     map[string]int `json:"sessions_by_type"`
	DistinctTeachers   int            `json:"distinct_teachers"`
	DistinctClassrooms int            `json:"distinct_classrooms"`
	DistinctGroups     int            `json:"distinct_groups"`
	DistinctSubjects   int            `json:"distinct_subjects"`
	LockedSessions     int            `json:"locked_sessions"`
}

// BuildStatistics 从展示记录计算统计指标
func BuildStatistics(entries []Entry) *Statistics {
	stats := &Statistics{
		SessionsByDay:  make(map[string]int),
		SessionsByType: make(map[string]int),
	}

	teachers := make(map[int64]bool)
	classrooms := make(map[int64]bool)
	groups := make(map[int64]bool)
	subjects := make(map[string]bool)

	for _, e := range entries {
		stats.TotalSessions++
		stats.SessionsByDay[e.DayName]++
		stats.SessionsByType[e.SessionType]++
		teachers[e.TeacherID] = true
		classrooms[e.ClassroomID] = true
		groups[e.SubjectGroupID] = true
		subjects[e.SubjectCode] = true
		if e.IsLocked {
			stats.LockedSessions++
		}
	}

	stats.DistinctTeachers = len(teachers)
	stats.DistinctClassrooms = len(classrooms)
	stats.DistinctGroups = len(groups)
	stats.DistinctSubjects = len(subjects)
	return stats
}
