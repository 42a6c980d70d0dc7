package scheduler

import (
	"fmt"
	"sort"

	"github.com/paike/paike/pkg/model"
)

// analyzeShortfall 失败分析：逐任务统计已排 / 应排节次差额，
// 为每个未排满的任务生成带建议的诊断冲突
func (g *Generator) analyzeShortfall() {
	scheduled := make(map[int64]int)
	for key := range g.schedule {
		scheduled[key.AssignmentID]++
	}

	sorted := make([]*model.TeachingAssignment, len(g.assignments))
	copy(sorted, g.assignments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, a := range sorted {
		placed := scheduled[a.ID]
		if placed >= a.WeeklyHours {
			continue
		}
		missing := a.WeeklyHours - placed
		g.addConflict(model.Conflict{
			Type:        "incomplete_assignment",
			Severity:    "high",
			Entity:      "assignment",
			EntityID:    a.ID,
			EntityName:  a.Label(),
			Description: fmt.Sprintf("%s 仅排入 %d/%d 节，缺 %d 节", a.Label(), placed, a.WeeklyHours, missing),
			Details: model.JSONMap{
				"teacher":          g.snap.TeacherName(a.TeacherID),
				"required_hours":   a.WeeklyHours,
				"scheduled_hours":  placed,
				"missing_sessions": missing,
			},
			AffectedSubjects: []string{a.SubjectName},
			PossibleSolutions: []string{
				"放宽每日课次或课间休息限制后重新生成",
				"检查该教师的可用性与封锁时段设置",
				"增加可用时段或教室",
			},
			Blocking: false,
		})
	}
}
