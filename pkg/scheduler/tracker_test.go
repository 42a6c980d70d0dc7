package scheduler

import (
	"testing"

	"github.com/paike/paike/pkg/model"
)

func TestOccupancy(t *testing.T) {
	o := newOccupancy()

	if o.has(1, 5) {
		t.Error("空跟踪器不应有任何占用")
	}

	o.add(1, 5)
	o.add(1, 6)
	o.add(2, 5)

	if !o.has(1, 5) || !o.has(1, 6) || !o.has(2, 5) {
		t.Error("记录的占用应该可以查到")
	}
	if o.count(1) != 2 {
		t.Errorf("count(1) = %d, expected 2", o.count(1))
	}

	o.remove(1, 5)
	if o.has(1, 5) {
		t.Error("撤销后不应再有占用")
	}
	if o.count(1) != 1 {
		t.Errorf("撤销后 count(1) = %d, expected 1", o.count(1))
	}
}

func TestOccupancy_CountOnDay(t *testing.T) {
	snap := newTestSnapshot()
	snap.BuildIndexes()

	o := newOccupancy()
	// 时段 1、2 在周一，时段 5 在周二
	o.add(1, 1)
	o.add(1, 2)
	o.add(1, 5)

	if count := o.countOnDay(1, snap, 0); count != 2 {
		t.Errorf("countOnDay(周一) = %d, expected 2", count)
	}
	if count := o.countOnDay(1, snap, 1); count != 1 {
		t.Errorf("countOnDay(周二) = %d, expected 1", count)
	}
	if count := o.countOnDay(1, snap, 2); count != 0 {
		t.Errorf("countOnDay(周三) = %d, expected 0", count)
	}
}

func TestTeacherOccupancy_MergeSessions(t *testing.T) {
	global := NewTeacherOccupancy()
	global.MergeSessions([]*model.ScheduledSession{
		{TeacherID: 1, TimeSlotID: 3},
		{TeacherID: 1, TimeSlotID: 4},
		{TeacherID: 2, TimeSlotID: 3},
	})

	if !global.Occupied(1, 3) || !global.Occupied(1, 4) || !global.Occupied(2, 3) {
		t.Error("并入的节次应该标记为占用")
	}
	if global.Occupied(2, 4) {
		t.Error("未并入的组合不应被占用")
	}
	if global.Count(1) != 2 {
		t.Errorf("Count(1) = %d, expected 2", global.Count(1))
	}
}
