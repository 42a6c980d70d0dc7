package scheduler

import (
	"fmt"
	"sort"

	"github.com/paike/paike/pkg/model"
)

// Session 原子节次：教学任务按周课时拆出的单个课时单元
type Session struct {
	Assignment *model.TeachingAssignment
	Index      int // 0..WeeklyHours-1
}

// sessionKey 节次的唯一键
type sessionKey struct {
	AssignmentID int64
	Index        int
}

// key 返回节次键
func (s Session) key() sessionKey {
	return sessionKey{AssignmentID: s.Assignment.ID, Index: s.Index}
}

// String 返回可读表示
func (s Session) String() string {
	return fmt.Sprintf("%s #%d", s.Assignment.Label(), s.Index+1)
}

// Placement 一个候选落位：(时段, 教室)
type Placement struct {
	Slot *model.TimeSlot
	Room *model.Classroom
}

// buildSessions 将教学任务展开为节次列表
func buildSessions(assignments []*model.TeachingAssignment) []Session {
	var sessions []Session
	for _, a := range assignments {
		for i := 0; i < a.WeeklyHours; i++ {
			sessions = append(sessions, Session{Assignment: a, Index: i})
		}
	}
	return sessions
}

// buildDomains 为每个节次计算候选域：{容量足够的教室} × {全部时段}
// 空域记为警告，本身不致命；只有导致搜索失败时才会体现为失败
func (g *Generator) buildDomains() {
	g.sessions = buildSessions(g.assignments)
	g.domains = make(map[sessionKey][]Placement, len(g.sessions))

	for _, session := range g.sessions {
		suitable := g.snap.SuitableClassrooms(session.Assignment.GroupCapacity)

		domain := make([]Placement, 0, len(suitable)*len(g.snap.TimeSlots))
		for _, room := range suitable {
			for _, slot := range g.snap.TimeSlots {
				if !slot.IsActive {
					continue
				}
				domain = append(domain, Placement{Slot: slot, Room: room})
			}
		}
		g.domains[session.key()] = domain

		if len(domain) == 0 {
			g.addWarning(model.Warning{
				Type:    "empty_domain",
				Entity:  session.String(),
				Message: fmt.Sprintf("%s 第 %d 节没有任何可用的 (时段, 教室) 组合", session.Assignment.Label(), session.Index+1),
			})
		}
	}
}

// orderSessions 最受限优先排序：候选域小的节次先排
// 同域大小按 (任务ID, 节次序号) 保证确定性；已锁定落位的节次不参与搜索
func (g *Generator) orderSessions() []Session {
	ordered := make([]Session, 0, len(g.sessions))
	for _, s := range g.sessions {
		if _, placed := g.schedule[s.key()]; placed {
			continue
		}
		ordered = append(ordered, s)
	}

	sort.Slice(ordered, func(i, j int) bool {
		di := len(g.domains[ordered[i].key()])
		dj := len(g.domains[ordered[j].key()])
		if di != dj {
			return di < dj
		}
		if ordered[i].Assignment.ID != ordered[j].Assignment.ID {
			return ordered[i].Assignment.ID < ordered[j].Assignment.ID
		}
		return ordered[i].Index < ordered[j].Index
	})

	return ordered
}
