package scheduler

import (
	"testing"

	"github.com/paike/paike/pkg/model"
)

func TestSnapshot_SubjectCareers(t *testing.T) {
	snap := newTestSnapshot()
	snap.CareerSubjects[1] = []int64{100, 101}
	snap.CareerSubjects[2] = []int64{100}
	snap.BuildIndexes()

	careers := snap.SubjectCareers(100)
	if len(careers) != 2 {
		t.Fatalf("课程 100 的专业数 = %d, expected 2", len(careers))
	}
	// 反向索引按专业ID稳定排序
	if careers[0] != 1 || careers[1] != 2 {
		t.Errorf("专业列表 = %v, expected [1 2]", careers)
	}

	if got := snap.SubjectCareers(999); len(got) != 0 {
		t.Errorf("未知课程的专业数 = %d, expected 0", len(got))
	}
}

func TestSnapshot_AssignmentsForCareer(t *testing.T) {
	snap := newTestSnapshot()
	inactive := testAssignment(3, 1, 12, 102, "离散数学", 2)
	inactive.Status = "inactive"
	snap.Assignments = []*model.TeachingAssignment{
		testAssignment(1, 1, 10, 100, "数据结构", 3),
		testAssignment(2, 2, 11, 101, "操作系统", 2),
		inactive,
	}
	snap.CareerSubjects[1] = []int64{100, 102}
	snap.BuildIndexes()

	result := snap.AssignmentsForCareer(1)
	if len(result) != 1 {
		t.Fatalf("专业 1 的任务数 = %d, expected 1", len(result))
	}
	if result[0].ID != 1 {
		t.Errorf("任务ID = %d, expected 1", result[0].ID)
	}
}

func TestSnapshot_SuitableClassrooms(t *testing.T) {
	snap := newTestSnapshot()

	tests := []struct {
		name      string
		groupSize int
		expected  int
	}{
		{"小分组两间都合适", 20, 2},
		{"大分组只剩大教室", 30, 1},
		{"超出全部容量", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snap.SuitableClassrooms(tt.groupSize); len(got) != tt.expected {
				t.Errorf("SuitableClassrooms(%d) 数量 = %d, expected %d", tt.groupSize, len(got), tt.expected)
			}
		})
	}
}

func TestSnapshot_BlocksForSlot(t *testing.T) {
	snap := newTestSnapshot()
	snap.BlockedSlots = []*model.BlockedTimeSlot{
		{ID: 1, TimeSlotID: 3, Scope: model.BlockScopeGlobal, IsActive: true},
		{ID: 2, TimeSlotID: 3, Scope: model.BlockScopeCareer, CareerID: 1, IsActive: true},
		{ID: 3, TimeSlotID: 3, Scope: model.BlockScopeGlobal, IsActive: false},
	}
	snap.BuildIndexes()

	blocks := snap.BlocksForSlot(3)
	if len(blocks) != 2 {
		t.Errorf("时段 3 的有效封锁数 = %d, expected 2（失效封锁不进索引）", len(blocks))
	}
	if got := snap.BlocksForSlot(1); len(got) != 0 {
		t.Errorf("时段 1 的封锁数 = %d, expected 0", len(got))
	}
}

func TestSnapshot_Lookups(t *testing.T) {
	snap := newTestSnapshot()
	snap.BuildIndexes()

	if slot := snap.Slot(1); slot == nil || slot.DayOfWeek != 0 {
		t.Error("Slot(1) 应该返回周一的第一个时段")
	}
	if snap.Slot(999) != nil {
		t.Error("未知时段应该返回 nil")
	}
	if name := snap.TeacherName(1); name != "张老师" {
		t.Errorf("TeacherName(1) = %s, expected 张老师", name)
	}
	if name := snap.TeacherName(999); name != "" {
		t.Errorf("未知教师名称 = %q, expected 空串", name)
	}
}
