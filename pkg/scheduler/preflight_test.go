package scheduler

import (
	"testing"

	"github.com/paike/paike/pkg/model"
)

// conflictTypes 返回全部冲突类型的集合
func conflictTypes(gen *model.Generation) map[string]int {
	types := make(map[string]int)
	for _, c := range gen.Conflicts {
		types[c.Type]++
	}
	return types
}

// preflightGenerator 构造求解器并执行前置校验
func preflightGenerator(snap *Snapshot, assignments []*model.TeachingAssignment) *Generator {
	snap.Assignments = assignments
	snap.BuildIndexes()
	g := NewGenerator(snap, nil)
	g.assignments = assignments
	g.gen = model.NewGeneration(g.batchID, snap.PeriodID, 0, g.cfg.Algorithm)
	g.preflight()
	return g
}

func TestPreflight_MultipleIssuesInOneRun(t *testing.T) {
	snap := newTestSnapshot()
	snap.Availability[1] = &model.TeacherAvailability{
		TeacherID: 1,
		Type:      model.AvailabilityUnavailable,
		IsActive:  true,
	}

	oversized := testAssignment(2, 2, 11, 101, "操作系统", 2)
	oversized.GroupCapacity = 200

	g := preflightGenerator(snap, []*model.TeachingAssignment{
		testAssignment(1, 1, 10, 100, "数据结构", 3),
		oversized,
	})

	// 校验不短路：两个问题都应该在同一次运行中报出
	types := conflictTypes(g.gen)
	if types["teacher_unavailable"] != 1 {
		t.Errorf("teacher_unavailable 冲突数 = %d, expected 1", types["teacher_unavailable"])
	}
	if types["no_suitable_classroom"] != 1 {
		t.Errorf("no_suitable_classroom 冲突数 = %d, expected 1", types["no_suitable_classroom"])
	}

	// 不可用教师的任务被剔除，其余保留
	if !g.excluded[1] {
		t.Error("不可用教师的任务应该被剔除")
	}
	if len(g.assignments) != 1 || g.assignments[0].ID != 2 {
		t.Errorf("剔除后任务数 = %d, expected 1", len(g.assignments))
	}
}

func TestPreflight_TeacherOverload(t *testing.T) {
	snap := newTestSnapshot()
	snap.Preferences[1] = &model.TeacherPreference{TeacherID: 1, MaxHoursPerWeek: 5}
	snap.RoleHours[1] = 3

	g := preflightGenerator(snap, []*model.TeachingAssignment{
		testAssignment(1, 1, 10, 100, "数据结构", 4),
	})

	types := conflictTypes(g.gen)
	if types["teacher_overload"] != 1 {
		t.Fatalf("teacher_overload 冲突数 = %d, expected 1", types["teacher_overload"])
	}
	for _, c := range g.gen.Conflicts {
		if c.Type == "teacher_overload" && !c.Blocking {
			t.Error("负载超限应为阻断冲突")
		}
	}
}

func TestPreflight_QualificationConflictBlocks(t *testing.T) {
	snap := newTestSnapshot()
	snap.Teachers = []*model.Teacher{
		{ID: 1, Name: "张老师", Status: "active", QualifiedSubjectIDs: []int64{999}},
	}

	g := preflightGenerator(snap, []*model.TeachingAssignment{
		testAssignment(1, 1, 10, 100, "数据结构", 2),
	})

	blocking := g.gen.BlockingConflicts()
	found := false
	for _, c := range blocking {
		if c.Type == "teacher_not_qualified" {
			found = true
		}
	}
	if !found {
		t.Error("资格缺失应为阻断冲突")
	}
}

func TestPreflight_GroupDemandExceedsSlots(t *testing.T) {
	snap := newTestSnapshot()

	g := preflightGenerator(snap, []*model.TeachingAssignment{
		testAssignment(1, 1, 10, 100, "数据结构", 13),
	})

	types := conflictTypes(g.gen)
	if types["insufficient_time_slots"] == 0 {
		t.Error("分组需求超过时段数时应该报 insufficient_time_slots")
	}
}

func TestPreflight_Qualifications(t *testing.T) {
	tests := []struct {
		name          string
		teacher       *model.Teacher
		wantConflicts int
	}{
		{
			"无资格记录按不限处理",
			&model.Teacher{ID: 1, Name: "张老师", Status: "active"},
			0,
		},
		{
			"有资格记录但不含该课程",
			&model.Teacher{ID: 1, Name: "张老师", Status: "active", QualifiedSubjectIDs: []int64{999}},
			1,
		},
		{
			"单科授权命中",
			&model.Teacher{ID: 1, Name: "张老师", Status: "active", QualifiedSubjectIDs: []int64{100}},
			0,
		},
		{
			"专业整体授权命中",
			&model.Teacher{ID: 1, Name: "张老师", Status: "active", QualifiedCareerIDs: []int64{1}},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := newTestSnapshot()
			snap.Teachers = []*model.Teacher{tt.teacher}
			snap.CareerSubjects[1] = []int64{100}

			g := preflightGenerator(snap, []*model.TeachingAssignment{
				testAssignment(1, 1, 10, 100, "数据结构", 2),
			})

			types := conflictTypes(g.gen)
			if types["teacher_not_qualified"] != tt.wantConflicts {
				t.Errorf("teacher_not_qualified 冲突数 = %d, expected %d",
					types["teacher_not_qualified"], tt.wantConflicts)
			}
		})
	}
}
