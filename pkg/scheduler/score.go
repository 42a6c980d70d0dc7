package scheduler

import (
	"sort"

	"github.com/paike/paike/pkg/model"
)

// placedSession 打分用的展开表示
type placedSession struct {
	key       sessionKey
	teacherID int64
	groupID   int64
	slot      *model.TimeSlot
	room      *model.Classroom
}

// scoreSchedule 计算优化得分（0-100，100 为无任何软约束扣分）
// 扣分相对于节次数归一：score = 100 - penalties/(n*10)*100
// 部分解同样可打分，用于比较不完整结果的质量
func (g *Generator) scoreSchedule() float64 {
	n := len(g.schedule)
	if n == 0 {
		return 0
	}

	placed := g.flattenSchedule()

	penalties := 0.0
	penalties += g.penaltyTeacherGaps(placed)
	penalties += g.penaltyDailyBalance(placed)
	penalties += g.penaltyPreferences(placed)
	penalties += g.penaltyClassroomSpread(placed)
	penalties += g.penaltyDailyChanges(placed)

	score := 100 - penalties/float64(n*10)*100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// flattenSchedule 将当前解展开为确定顺序的打分列表
func (g *Generator) flattenSchedule() []placedSession {
	index := make(map[sessionKey]*model.TeachingAssignment, len(g.sessions))
	for _, s := range g.sessions {
		index[s.key()] = s.Assignment
	}

	placed := make([]placedSession, 0, len(g.schedule))
	for key, p := range g.schedule {
		a := index[key]
		if a == nil {
			continue
		}
		placed = append(placed, placedSession{
			key:       key,
			teacherID: a.TeacherID,
			groupID:   a.SubjectGroupID,
			slot:      p.Slot,
			room:      p.Room,
		})
	}
	sort.Slice(placed, func(i, j int) bool {
		if placed[i].key.AssignmentID != placed[j].key.AssignmentID {
			return placed[i].key.AssignmentID < placed[j].key.AssignmentID
		}
		return placed[i].key.Index < placed[j].key.Index
	})
	return placed
}

// penaltyTeacherGaps 教师空档扣分：不允许空档时，
// 同一天相邻两节之间存在真实间隙（下一节开始晚于上一节结束）每处扣权重分
func (g *Generator) penaltyTeacherGaps(placed []placedSession) float64 {
	if g.cfg.AllowTeacherGaps || g.cfg.WeightMinimizeTeacherGaps == 0 {
		return 0
	}

	byTeacherDay := make(map[int64]map[int][]*model.TimeSlot)
	for _, p := range placed {
		days, ok := byTeacherDay[p.teacherID]
		if !ok {
			days = make(map[int][]*model.TimeSlot)
			byTeacherDay[p.teacherID] = days
		}
		days[p.slot.DayOfWeek] = append(days[p.slot.DayOfWeek], p.slot)
	}

	gaps := 0
	for _, days := range byTeacherDay {
		for _, slots := range days {
			sort.Slice(slots, func(i, j int) bool {
				return slots[i].StartMinutes() < slots[j].StartMinutes()
			})
			for i := 1; i < len(slots); i++ {
				if slots[i].StartMinutes() > slots[i-1].EndMinutes() {
					gaps++
				}
			}
		}
	}
	return float64(gaps * g.cfg.WeightMinimizeTeacherGaps)
}

// penaltyDailyBalance 分布均衡扣分：按天统计全表节次数，
// 对实际用到的天求方差，方差越大说明课越集中、扣分越多
func (g *Generator) penaltyDailyBalance(placed []placedSession) float64 {
	if g.cfg.WeightBalancedDistribution == 0 {
		return 0
	}

	counts := make(map[int]int)
	for _, p := range placed {
		counts[p.slot.DayOfWeek]++
	}
	daysUsed := len(counts)
	if daysUsed == 0 {
		return 0
	}

	mean := float64(len(placed)) / float64(daysUsed)
	variance := 0.0
	for _, c := range counts {
		diff := float64(c) - mean
		variance += diff * diff
	}
	variance /= float64(daysUsed)
	return variance * float64(g.cfg.WeightBalancedDistribution)
}

// penaltyPreferences 教师偏好扣分：落在声明的不便时段扣 2 倍权重，
// 落在非偏好工作日或偏好时间窗之外各扣 0.5 倍权重
func (g *Generator) penaltyPreferences(placed []placedSession) float64 {
	if g.cfg.WeightTeacherPreferences == 0 {
		return 0
	}

	weight := float64(g.cfg.WeightTeacherPreferences)
	total := 0.0
	for _, p := range placed {
		prefs, ok := g.snap.Preferences[p.teacherID]
		if !ok {
			continue
		}
		if prefs.DislikesSlot(p.slot.ID) {
			total += 2 * weight
			continue
		}
		if !prefs.PrefersDay(p.slot.DayOfWeek) {
			total += 0.5 * weight
		}
		if prefs.PreferredStartTime != "" {
			if start := model.ParseClock(prefs.PreferredStartTime); start >= 0 && p.slot.StartMinutes() < start {
				total += 0.5 * weight
				continue
			}
		}
		if prefs.PreferredEndTime != "" {
			if end := model.ParseClock(prefs.PreferredEndTime); end >= 0 && p.slot.EndMinutes() > end {
				total += 0.5 * weight
			}
		}
	}
	return total
}

// penaltyClassroomSpread 教室分散扣分：同一教师同一天用到的不同教室数减一，
// 每个教师每天累计后乘以权重
func (g *Generator) penaltyClassroomSpread(placed []placedSession) float64 {
	if g.cfg.WeightClassroomProximity == 0 {
		return 0
	}

	type teacherDay struct {
		teacherID int64
		day       int
	}
	rooms := make(map[teacherDay]map[int64]bool)
	for _, p := range placed {
		key := teacherDay{teacherID: p.teacherID, day: p.slot.DayOfWeek}
		set, ok := rooms[key]
		if !ok {
			set = make(map[int64]bool)
			rooms[key] = set
		}
		set[p.room.ID] = true
	}

	spread := 0
	for _, set := range rooms {
		if len(set) > 1 {
			spread += len(set) - 1
		}
	}
	return float64(spread * g.cfg.WeightClassroomProximity)
}

// penaltyDailyChanges 日内换教室扣分：同一教师同一天按时间排序后，
// 相邻两节教室不同每处扣权重分
func (g *Generator) penaltyDailyChanges(placed []placedSession) float64 {
	if g.cfg.WeightMinimizeDailyChanges == 0 {
		return 0
	}

	type teacherDay struct {
		teacherID int64
		day       int
	}
	byTeacherDay := make(map[teacherDay][]placedSession)
	for _, p := range placed {
		key := teacherDay{teacherID: p.teacherID, day: p.slot.DayOfWeek}
		byTeacherDay[key] = append(byTeacherDay[key], p)
	}

	changes := 0
	for _, sessions := range byTeacherDay {
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].slot.StartMinutes() < sessions[j].slot.StartMinutes()
		})
		for i := 1; i < len(sessions); i++ {
			if sessions[i].room.ID != sessions[i-1].room.ID {
				changes++
			}
		}
	}
	return float64(changes * g.cfg.WeightMinimizeDailyChanges)
}
