package view

import (
	"testing"

	"github.com/google/uuid"

	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/scheduler"
)

// newViewSnapshot 构造展示层测试快照
func newViewSnapshot() *scheduler.Snapshot {
	snap := scheduler.NewSnapshot(1)
	snap.TimeSlots = []*model.TimeSlot{
		{ID: 1, DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00", IsActive: true},
		{ID: 2, DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00", IsActive: true},
		{ID: 3, DayOfWeek: 1, StartTime: "08:00", EndTime: "09:00", IsActive: true},
	}
	snap.Classrooms = []*model.Classroom{
		{ID: 1, Code: "A101", Name: "教学楼101", Capacity: 40, IsActive: true},
		{ID: 2, Code: "A102", Name: "教学楼102", Capacity: 30, IsActive: true},
	}
	snap.Teachers = []*model.Teacher{
		{ID: 1, Name: "张老师", Status: "active"},
		{ID: 2, Name: "李老师", Status: "active"},
	}
	snap.Assignments = []*model.TeachingAssignment{
		{
			ID: 1, TeacherID: 1, SubjectGroupID: 10, SubjectID: 100,
			SubjectName: "数据结构", SubjectCode: "CS201", CourseYear: 2,
			GroupCode: "A", GroupCapacity: 30, WeeklyHours: 2, Status: "active",
		},
		{
			ID: 2, TeacherID: 2, SubjectGroupID: 11, SubjectID: 101,
			SubjectName: "操作系统", SubjectCode: "CS301", CourseYear: 3,
			GroupCode: "B", GroupCapacity: 25, WeeklyHours: 1, Status: "active",
		},
	}
	snap.BuildIndexes()
	return snap
}

// testSessions 三个有效节次 + 一个引用未知时段的节次
func testSessions() []*model.ScheduledSession {
	return []*model.ScheduledSession{
		{
			ID: uuid.New(), AssignmentID: 1, SubjectGroupID: 10, TeacherID: 1,
			TimeSlotID: 3, ClassroomID: 1, SessionType: model.SessionTypeLecture,
		},
		{
			ID: uuid.New(), AssignmentID: 1, SubjectGroupID: 10, TeacherID: 1,
			TimeSlotID: 1, ClassroomID: 1, SessionType: model.SessionTypeLecture, IsLocked: true,
		},
		{
			ID: uuid.New(), AssignmentID: 2, SubjectGroupID: 11, TeacherID: 2,
			TimeSlotID: 2, ClassroomID: 2, SessionType: model.SessionTypeLab,
		},
		{
			ID: uuid.New(), AssignmentID: 2, SubjectGroupID: 11, TeacherID: 2,
			TimeSlotID: 999, ClassroomID: 2, SessionType: model.SessionTypeLab,
		},
	}
}

func TestExpand(t *testing.T) {
	snap := newViewSnapshot()
	entries := Expand(snap, testSessions())

	// 引用未知时段的节次被跳过
	if len(entries) != 3 {
		t.Fatalf("展开记录数 = %d, expected 3", len(entries))
	}

	// 按 (星期, 开始时间) 排序
	if entries[0].Day != 0 || entries[0].StartTime != "08:00" {
		t.Errorf("首条记录 = %s %s, expected Monday 08:00", entries[0].DayName, entries[0].StartTime)
	}
	if entries[2].Day != 1 {
		t.Errorf("末条记录星期 = %d, expected 1", entries[2].Day)
	}

	// 关联字段正确填充
	first := entries[0]
	if first.SubjectName != "数据结构" || first.TeacherName != "张老师" || first.ClassroomCode != "A101" {
		t.Errorf("关联字段 = %s/%s/%s, 填充不正确", first.SubjectName, first.TeacherName, first.ClassroomCode)
	}
	if !first.IsLocked {
		t.Error("锁定标记应该保留在展示记录中")
	}
}

func TestFilter_Apply(t *testing.T) {
	snap := newViewSnapshot()
	entries := Expand(snap, testSessions())
	monday := 0

	tests := []struct {
		name     string
		filter   Filter
		expected int
	}{
		{"不过滤", Filter{}, 3},
		{"按教师", Filter{TeacherID: 1}, 2},
		{"按分组", Filter{SubjectGroupID: 11}, 1},
		{"按教室", Filter{ClassroomID: 2}, 1},
		{"按星期", Filter{Day: &monday}, 2},
		{"组合条件", Filter{TeacherID: 1, Day: &monday}, 1},
		{"无匹配", Filter{TeacherID: 999}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Apply(entries); len(got) != tt.expected {
				t.Errorf("Apply() 记录数 = %d, expected %d", len(got), tt.expected)
			}
		})
	}
}

func TestBuildGrid(t *testing.T) {
	snap := newViewSnapshot()
	entries := Expand(snap, testSessions())
	grid := BuildGrid(entries)

	// 只包含实际出现过课的天
	if len(grid.Days) != 2 {
		t.Fatalf("天数 = %d, expected 2", len(grid.Days))
	}
	if grid.Days[0] != "Monday" || grid.Days[1] != "Tuesday" {
		t.Errorf("Days = %v, expected [Monday Tuesday]", grid.Days)
	}

	// 两个不同的时间行，按开始时间排序
	if len(grid.Rows) != 2 {
		t.Fatalf("行数 = %d, expected 2", len(grid.Rows))
	}
	if grid.Rows[0].StartTime != "08:00" || grid.Rows[1].StartTime != "09:00" {
		t.Errorf("行顺序 = [%s %s], expected [08:00 09:00]", grid.Rows[0].StartTime, grid.Rows[1].StartTime)
	}

	// 每行的单元格数与天数一致
	for i, row := range grid.Rows {
		if len(row.Cells) != len(grid.Days) {
			t.Errorf("第 %d 行单元格数 = %d, expected %d", i, len(row.Cells), len(grid.Days))
		}
	}

	// 周一 08:00 和周二 08:00 各一节课
	if len(grid.Rows[0].Cells[0]) != 1 || len(grid.Rows[0].Cells[1]) != 1 {
		t.Errorf("08:00 行的课次分布 = %d/%d, expected 1/1",
			len(grid.Rows[0].Cells[0]), len(grid.Rows[0].Cells[1]))
	}
	if got := grid.Rows[0].Cells[0][0].SubjectName; got != "数据结构" {
		t.Errorf("周一 08:00 的课程 = %s, expected 数据结构", got)
	}
}

func TestBuildStatistics(t *testing.T) {
	snap := newViewSnapshot()
	entries := Expand(snap, testSessions())
	stats := BuildStatistics(entries)

	if stats.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, expected 3", stats.TotalSessions)
	}
	if stats.SessionsByDay["Monday"] != 2 || stats.SessionsByDay["Tuesday"] != 1 {
		t.Errorf("SessionsByDay = %v, expected Monday:2 Tuesday:1", stats.SessionsByDay)
	}
	if stats.SessionsByType[model.SessionTypeLecture] != 2 || stats.SessionsByType[model.SessionTypeLab] != 1 {
		t.Errorf("SessionsByType = %v, expected lecture:2 lab:1", stats.SessionsByType)
	}
	if stats.DistinctTeachers != 2 || stats.DistinctClassrooms != 2 || stats.DistinctGroups != 2 {
		t.Errorf("去重统计 = %d/%d/%d, expected 2/2/2",
			stats.DistinctTeachers, stats.DistinctClassrooms, stats.DistinctGroups)
	}
	if stats.LockedSessions != 1 {
		t.Errorf("LockedSessions = %d, expected 1", stats.LockedSessions)
	}
}

func TestBuildGrid_Empty(t *testing.T) {
	grid := BuildGrid(nil)
	if len(grid.Days) != 0 || len(grid.Rows) != 0 {
		t.Errorf("空输入的周视图应该为空, got %d 天 %d 行", len(grid.Days), len(grid.Rows))
	}
}
