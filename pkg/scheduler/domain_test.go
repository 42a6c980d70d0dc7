package scheduler

import (
	"testing"

	"github.com/paike/paike/pkg/model"
)

func TestBuildSessions(t *testing.T) {
	assignments := []*model.TeachingAssignment{
		testAssignment(1, 1, 10, 100, "数据结构", 3),
		testAssignment(2, 2, 11, 101, "操作系统", 2),
	}

	sessions := buildSessions(assignments)
	if len(sessions) != 5 {
		t.Fatalf("节次数 = %d, expected 5", len(sessions))
	}

	// 周课时逐一展开为带序号的节次
	counts := make(map[int64][]int)
	for _, s := range sessions {
		counts[s.Assignment.ID] = append(counts[s.Assignment.ID], s.Index)
	}
	if len(counts[1]) != 3 || len(counts[2]) != 2 {
		t.Errorf("展开数量 = %d/%d, expected 3/2", len(counts[1]), len(counts[2]))
	}
	for id, indexes := range counts {
		for i, index := range indexes {
			if index != i {
				t.Errorf("任务 %d 的节次序号 = %v, 应从 0 连续递增", id, indexes)
				break
			}
		}
	}
}

func TestGenerator_BuildDomains(t *testing.T) {
	snap := newTestSnapshot()
	snap.Assignments = []*model.TeachingAssignment{
		testAssignment(1, 1, 10, 100, "数据结构", 1),
	}
	snap.BuildIndexes()

	g := NewGenerator(snap, nil)
	g.assignments = snap.Assignments
	g.gen = model.NewGeneration(g.batchID, snap.PeriodID, 0, g.cfg.Algorithm)
	g.buildDomains()

	// 分组 30 人：只有 40 座的教室合适，域 = 1 教室 × 12 时段
	key := sessionKey{AssignmentID: 1, Index: 0}
	if len(g.domains[key]) != 12 {
		t.Errorf("候选域大小 = %d, expected 12", len(g.domains[key]))
	}
	for _, p := range g.domains[key] {
		if p.Room.ID != 1 {
			t.Errorf("候选教室 = %d, 容量不足的教室不应进入域", p.Room.ID)
		}
	}
}

func TestGenerator_BuildDomains_EmptyDomainWarning(t *testing.T) {
	snap := newTestSnapshot()
	huge := testAssignment(1, 1, 10, 100, "数据结构", 1)
	huge.GroupCapacity = 500
	snap.Assignments = []*model.TeachingAssignment{huge}
	snap.BuildIndexes()

	g := NewGenerator(snap, nil)
	g.assignments = snap.Assignments
	g.gen = model.NewGeneration(g.batchID, snap.PeriodID, 0, g.cfg.Algorithm)
	g.buildDomains()

	found := false
	for _, w := range g.gen.Warnings {
		if w.Type == "empty_domain" {
			found = true
		}
	}
	if !found {
		t.Error("空候选域应该记为警告")
	}
}

func TestGenerator_OrderSessions(t *testing.T) {
	snap := newTestSnapshot()
	small := testAssignment(2, 2, 11, 101, "操作系统", 1)
	small.GroupCapacity = 30 // 只有 1 间教室合适
	wide := testAssignment(1, 1, 10, 100, "数据结构", 1)
	wide.GroupCapacity = 20 // 2 间教室都合适
	snap.Assignments = []*model.TeachingAssignment{wide, small}
	snap.BuildIndexes()

	g := NewGenerator(snap, nil)
	g.assignments = snap.Assignments
	g.gen = model.NewGeneration(g.batchID, snap.PeriodID, 0, g.cfg.Algorithm)
	g.buildDomains()

	ordered := g.orderSessions()
	if len(ordered) != 2 {
		t.Fatalf("待排节次数 = %d, expected 2", len(ordered))
	}
	// 最受限优先：域小的任务 2 排在前面
	if ordered[0].Assignment.ID != 2 {
		t.Errorf("首个节次的任务 = %d, expected 2（候选域最小）", ordered[0].Assignment.ID)
	}
}

func TestGenerator_OrderSessions_SkipsPlaced(t *testing.T) {
	snap := newTestSnapshot()
	snap.Assignments = []*model.TeachingAssignment{
		testAssignment(1, 1, 10, 100, "数据结构", 2),
	}
	snap.BuildIndexes()

	g := NewGenerator(snap, nil)
	g.assignments = snap.Assignments
	g.gen = model.NewGeneration(g.batchID, snap.PeriodID, 0, g.cfg.Algorithm)
	g.buildDomains()

	// 第一节已锁定落位：排序结果只包含剩下的一节
	g.schedule[sessionKey{AssignmentID: 1, Index: 0}] = Placement{
		Slot: snap.Slot(1),
		Room: snap.Classroom(1),
	}

	ordered := g.orderSessions()
	if len(ordered) != 1 {
		t.Fatalf("待排节次数 = %d, expected 1", len(ordered))
	}
	if ordered[0].Index != 1 {
		t.Errorf("剩余节次序号 = %d, expected 1", ordered[0].Index)
	}
}
