package scheduler

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"
)

// 局部搜索精化参数
const (
	refineMaxIterations    = 500
	refineTabuSize         = 50
	refinePlateauThreshold = 100
)

// refine 局部搜索精化：在硬可行解空间内做单节次迁移，
// 接受软约束得分不降的移动，禁忌表阻止平分移动造成的循环
// 只改善得分，从不破坏可行性，也不改变已排节次的数量
func (g *Generator) refine(ctx context.Context, deadline time.Time) {
	if len(g.schedule) == 0 {
		return
	}
	g.rebuildTrackers()

	index := make(map[sessionKey]Session, len(g.sessions))
	for _, s := range g.sessions {
		index[s.key()] = s
	}
	placed := make([]Session, 0, len(g.schedule))
	for _, p := range g.flattenSchedule() {
		if g.locked[p.key] {
			continue
		}
		if s, ok := index[p.key]; ok {
			placed = append(placed, s)
		}
	}
	if len(placed) == 0 {
		return
	}

	// 固定种子保证同样输入下精化结果可复现
	rng := rand.New(rand.NewSource(g.snap.PeriodID<<16 | int64(len(placed))))
	tabu := newTabuList(refineTabuSize)
	tabu.add(g.scheduleHash())

	bestScore := g.scoreSchedule()
	noImprovement := 0
	improved := 0

	for i := 0; i < refineMaxIterations; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if time.Now().After(deadline) {
			break
		}
		if noImprovement >= refinePlateauThreshold {
			break
		}

		session := placed[rng.Intn(len(placed))]
		domain := g.domains[session.key()]
		if len(domain) == 0 {
			noImprovement++
			continue
		}
		candidate := domain[rng.Intn(len(domain))]
		current := g.schedule[session.key()]
		if candidate.Slot.ID == current.Slot.ID && candidate.Room.ID == current.Room.ID {
			noImprovement++
			continue
		}

		old, ok := g.applyMove(session, candidate)
		if !ok {
			noImprovement++
			continue
		}

		key := g.scheduleHash()
		score := g.scoreSchedule()
		switch {
		case score > bestScore:
			bestScore = score
			tabu.add(key)
			noImprovement = 0
			improved++
		case score == bestScore && !tabu.contains(key):
			// 平分移动：接受以跳出局部平台，靠禁忌表防循环
			tabu.add(key)
			noImprovement++
		default:
			g.revertMove(session, candidate, old)
			noImprovement++
		}
	}

	if improved > 0 {
		g.log.RefinementComplete(g.gen.ID.String(), improved, bestScore)
	}
}

// applyMove 将某节次迁移到新落位，保持硬可行性；失败时原样恢复
func (g *Generator) applyMove(s Session, p Placement) (Placement, bool) {
	old := g.schedule[s.key()]
	g.undo(s, old)
	if !g.isValidPlacement(s, p) {
		g.commit(s, old)
		return old, false
	}
	g.commit(s, p)
	return old, true
}

// revertMove 撤销一次迁移
func (g *Generator) revertMove(s Session, applied, old Placement) {
	g.undo(s, applied)
	g.commit(s, old)
}

// rebuildTrackers 从当前解重建全部占用跟踪器
// 搜索失败恢复最大部分解之后跟踪器与解不再一致，精化前必须重建
func (g *Generator) rebuildTrackers() {
	g.teacherBusy = newOccupancy()
	g.roomBusy = newOccupancy()
	g.groupBusy = newOccupancy()
	g.cohortCount = make(map[cohortKey]int)

	index := make(map[sessionKey]Session, len(g.sessions))
	for _, s := range g.sessions {
		index[s.key()] = s
	}
	for key, p := range g.schedule {
		s, ok := index[key]
		if !ok {
			continue
		}
		a := s.Assignment
		g.teacherBusy.add(a.TeacherID, p.Slot.ID)
		g.roomBusy.add(p.Room.ID, p.Slot.ID)
		g.groupBusy.add(a.SubjectGroupID, p.Slot.ID)
		g.cohortCount[g.cohortKeyFor(a, p.Slot.DayOfWeek)]++
	}
}

// scheduleHash 当前解的 FNV-1a 哈希，用作禁忌表键
func (g *Generator) scheduleHash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v int64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	for _, p := range g.flattenSchedule() {
		write(p.key.AssignmentID)
		write(int64(p.key.Index))
		write(p.slot.ID)
		write(p.room.ID)
	}
	return h.Sum64()
}

// tabuList 禁忌表：固定容量，超出时淘汰最旧条目
type tabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
}

// newTabuList 创建禁忌表
func newTabuList(size int) *tabuList {
	return &tabuList{
		items:   make(map[uint64]struct{}),
		order:   make([]uint64, 0, size),
		maxSize: size,
	}
}

// add 添加禁忌键
func (t *tabuList) add(key uint64) {
	if _, exists := t.items[key]; exists {
		return
	}
	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}
	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

// contains 检查键是否被禁忌
func (t *tabuList) contains(key uint64) bool {
	_, exists := t.items[key]
	return exists
}
