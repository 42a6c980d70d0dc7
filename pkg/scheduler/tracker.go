package scheduler

import "github.com/paike/paike/pkg/model"

// occupancy 占用跟踪器：实体ID -> 已占用的时段ID集合
type occupancy struct {
	slots map[int64]map[int64]bool
}

// newOccupancy 创建占用跟踪器
func newOccupancy() *occupancy {
	return &occupancy{slots: make(map[int64]map[int64]bool)}
}

// has 检查实体在某时段是否已被占用
func (o *occupancy) has(entityID, slotID int64) bool {
	return o.slots[entityID][slotID]
}

// add 记录占用
func (o *occupancy) add(entityID, slotID int64) {
	set, ok := o.slots[entityID]
	if !ok {
		set = make(map[int64]bool)
		o.slots[entityID] = set
	}
	set[slotID] = true
}

// remove 撤销占用
func (o *occupancy) remove(entityID, slotID int64) {
	delete(o.slots[entityID], slotID)
}

// count 返回实体占用的时段总数
func (o *occupancy) count(entityID int64) int {
	return len(o.slots[entityID])
}

// slotsOf 返回实体占用的全部时段ID
func (o *occupancy) slotsOf(entityID int64) map[int64]bool {
	return o.slots[entityID]
}

// countOnDay 返回实体在某天占用的时段数
func (o *occupancy) countOnDay(entityID int64, snap *Snapshot, day int) int {
	count := 0
	for slotID := range o.slots[entityID] {
		if slot := snap.Slot(slotID); slot != nil && slot.DayOfWeek == day {
			count++
		}
	}
	return count
}

// cohortKey 学生群体键：同（专业, 年级, 分组编码）的学生每天一起上课，
// 日课次上限按群体而非单科统计
type cohortKey struct {
	CareerID  int64
	Year      int
	GroupCode string
	Day       int
}

// TeacherOccupancy 跨专业共享的教师全局占用跟踪器
// 由协调器在同一批次内按顺序传递，使跨专业的教师冲突在结构上不可能发生
type TeacherOccupancy struct {
	slots map[int64]map[int64]bool
}

// NewTeacherOccupancy 创建全局教师占用跟踪器
func NewTeacherOccupancy() *TeacherOccupancy {
	return &TeacherOccupancy{slots: make(map[int64]map[int64]bool)}
}

// Occupied 检查教师在某时段是否已被其他专业占用
func (o *TeacherOccupancy) Occupied(teacherID, slotID int64) bool {
	return o.slots[teacherID][slotID]
}

// Add 记录教师在某时段的占用
func (o *TeacherOccupancy) Add(teacherID, slotID int64) {
	set, ok := o.slots[teacherID]
	if !ok {
		set = make(map[int64]bool)
		o.slots[teacherID] = set
	}
	set[slotID] = true
}

// MergeSessions 将一次生成的全部节次并入全局跟踪器
func (o *TeacherOccupancy) MergeSessions(sessions []*model.ScheduledSession) {
	for _, s := range sessions {
		o.Add(s.TeacherID, s.TimeSlotID)
	}
}

// Count 返回教师已占用的时段总数
func (o *TeacherOccupancy) Count(teacherID int64) int {
	return len(o.slots[teacherID])
}
