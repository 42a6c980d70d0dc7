package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paike/paike/pkg/logger"
	"github.com/paike/paike/pkg/model"
)

// Generator 回溯排课求解器
// 一次性使用：创建、配置、Generate，之后丢弃
type Generator struct {
	snap   *Snapshot
	cfg    *model.GenerationConfig
	career *model.Career     // nil = 全学期（不分专业）
	global *TeacherOccupancy // 跨专业共享的教师占用，可为 nil

	batchID     uuid.UUID
	assignments []*model.TeachingAssignment
	excluded    map[int64]bool // 前置校验剔除的任务ID
	preplaced   []*model.ScheduledSession
	locked      map[sessionKey]bool

	sessions []Session
	domains  map[sessionKey][]Placement
	schedule map[sessionKey]Placement
	best     map[sessionKey]Placement // 搜索过程中见过的最大部分解

	teacherBusy *occupancy
	roomBusy    *occupancy
	groupBusy   *occupancy
	cohortCount map[cohortKey]int

	gen      *model.Generation
	stats    model.SearchStats
	deadline time.Time
	timedOut bool

	log *logger.GeneratorLogger
}

// Result 一次生成的完整结果
// 求解器从不向外抛错：一切问题都记录在 Generation 内
type Result struct {
	Generation *model.Generation
	Sessions   []*model.ScheduledSession
	Stats      model.SearchStats
	Duration   time.Duration
}

// NewGenerator 创建求解器
func NewGenerator(snap *Snapshot, cfg *model.GenerationConfig) *Generator {
	if cfg == nil {
		cfg = model.DefaultGenerationConfig()
	}
	return &Generator{
		snap:        snap,
		cfg:         cfg,
		batchID:     uuid.New(),
		excluded:    make(map[int64]bool),
		schedule:    make(map[sessionKey]Placement),
		best:        make(map[sessionKey]Placement),
		locked:      make(map[sessionKey]bool),
		teacherBusy: newOccupancy(),
		roomBusy:    newOccupancy(),
		groupBusy:   newOccupancy(),
		cohortCount: make(map[cohortKey]int),
		log:         logger.NewGeneratorLogger(),
	}
}

// SetCareer 限定本次运行只排某个专业
func (g *Generator) SetCareer(career *model.Career) {
	g.career = career
}

// SetBatchID 设置批次标识（协调器统一分配）
func (g *Generator) SetBatchID(batchID uuid.UUID) {
	g.batchID = batchID
}

// SetGlobalOccupancy 注入跨专业共享的教师占用跟踪器
func (g *Generator) SetGlobalOccupancy(global *TeacherOccupancy) {
	g.global = global
}

// SetAssignments 覆盖本次运行的任务集（默认取快照中全部有效任务）
func (g *Generator) SetAssignments(assignments []*model.TeachingAssignment) {
	g.assignments = assignments
}

// SetLockedSessions 注入外部锁定的节次
// 锁定节次在搜索前原样落位，搜索与精化都不得移动它们
func (g *Generator) SetLockedSessions(sessions []*model.ScheduledSession) {
	g.preplaced = sessions
}

// Generate 执行一次完整生成：前置校验、域构造、回溯搜索、打分与失败分析
// 按约定不返回 error，所有结果（包括失败）都体现在 Result.Generation 中
func (g *Generator) Generate(ctx context.Context) *Result {
	start := time.Now()

	var careerID int64
	if g.career != nil {
		careerID = g.career.ID
	}
	g.gen = model.NewGeneration(g.batchID, g.snap.PeriodID, careerID, g.cfg.Algorithm)
	g.gen.AlgorithmParameters = model.JSONMap{"config": g.cfg}

	if g.assignments == nil {
		if g.career != nil {
			g.assignments = g.snap.AssignmentsForCareer(g.career.ID)
		} else {
			g.assignments = g.snap.ActiveAssignments()
		}
	}

	requested := g.assignments
	g.preflight()

	g.buildDomains()
	// 被前置校验剔除的任务仍计入应排节次，让成功率如实反映缺口
	excludedSessions := 0
	for _, a := range requested {
		if g.excluded[a.ID] {
			excludedSessions += a.WeeklyHours
		}
	}
	g.gen.TotalSessions = len(g.sessions) + excludedSessions

	// 存在阻断冲突时不进入搜索：直接以 failed 结束，零节次返回，
	// 让调用方先解决冲突再重新生成
	if blocking := g.gen.BlockingConflicts(); len(blocking) > 0 {
		g.log.PreflightBlocked(g.gen.ID.String(), len(blocking))
		duration := time.Since(start)
		g.finalize(duration)
		result := &Result{
			Generation: g.gen,
			Sessions:   g.collectSessions(),
			Stats:      g.stats,
			Duration:   duration,
		}
		g.log.GenerationComplete(g.gen.ID.String(), g.gen.Status, duration, g.gen.OptimizationScore)
		return result
	}

	g.applyLockedSessions()
	g.gen.Status = model.StatusRunning
	g.log.StartGeneration(g.gen.ID.String(), len(g.assignments), len(g.sessions))

	g.deadline = start.Add(g.cfg.MaxExecutionTime())
	ordered := g.orderSessions()
	if !g.search(ctx, ordered, 0) {
		// 完整解不存在（或超时）：恢复搜索中见过的最大部分解
		g.schedule = g.best
	}

	if g.timedOut {
		g.log.SearchTimeout(g.gen.ID.String(), len(g.schedule))
		g.addWarning(model.Warning{
			Type:    "timeout",
			Entity:  "generation",
			Message: "搜索超时，返回截至超时为止的最优部分解",
			Details: model.JSONMap{"scheduled": len(g.schedule), "total": g.gen.TotalSessions},
		})
	}

	if g.cfg.EnableRefinement && !g.timedOut {
		g.refine(ctx, g.deadline)
	}

	if len(g.schedule) < g.gen.TotalSessions {
		g.analyzeShortfall()
	}
	g.postValidate()

	duration := time.Since(start)
	g.finalize(duration)

	result := &Result{
		Generation: g.gen,
		Sessions:   g.collectSessions(),
		Stats:      g.stats,
		Duration:   duration,
	}
	g.log.GenerationComplete(g.gen.ID.String(), g.gen.Status, duration, g.gen.OptimizationScore)
	return result
}

// applyLockedSessions 将外部锁定的节次原样落位并占用对应资源
// 引用了未知资源或无效任务的锁定节次记为警告后忽略
func (g *Generator) applyLockedSessions() {
	if len(g.preplaced) == 0 {
		return
	}
	byID := make(map[int64]*model.TeachingAssignment, len(g.assignments))
	for _, a := range g.assignments {
		byID[a.ID] = a
	}
	nextIndex := make(map[int64]int)

	for _, s := range g.preplaced {
		a := byID[s.AssignmentID]
		slot := g.snap.Slot(s.TimeSlotID)
		room := g.snap.Classroom(s.ClassroomID)
		if a == nil || slot == nil || room == nil {
			g.addWarning(model.Warning{
				Type:    "invalid_locked_session",
				Entity:  s.ID.String(),
				Message: "锁定节次引用了未知的任务、时段或教室，已忽略",
			})
			continue
		}
		idx := nextIndex[a.ID]
		if idx >= a.WeeklyHours {
			g.addWarning(model.Warning{
				Type:    "invalid_locked_session",
				Entity:  s.ID.String(),
				Message: fmt.Sprintf("%s 的锁定节次多于周课时数，已忽略多余部分", a.Label()),
			})
			continue
		}
		nextIndex[a.ID] = idx + 1

		session := Session{Assignment: a, Index: idx}
		g.commit(session, Placement{Slot: slot, Room: room})
		g.locked[session.key()] = true
	}
}

// search 回溯搜索：按最受限优先的顺序逐节次尝试落位
// 返回 true 表示从 index 起的所有节次均已排入
func (g *Generator) search(ctx context.Context, ordered []Session, index int) bool {
	if index >= len(ordered) {
		return true
	}
	if time.Now().After(g.deadline) {
		g.timedOut = true
		return false
	}
	select {
	case <-ctx.Done():
		g.timedOut = true
		return false
	default:
	}

	session := ordered[index]
	key := session.key()
	g.stats.NodesExplored++

	placeable := false
	for _, p := range g.domains[key] {
		if !g.isValidPlacement(session, p) {
			continue
		}
		placeable = true

		g.commit(session, p)
		if g.search(ctx, ordered, index+1) {
			return true
		}
		g.undo(session, p)
		g.stats.Backtracks++

		if g.timedOut {
			return false
		}
	}

	// 当前前缀下本节次无任何可行落位：跳过它继续排后面的节次，
	// 争取尽量大的部分解（完整解此时在该分支已不可能）
	if !placeable {
		g.search(ctx, ordered, index+1)
	}
	return false
}

// commit 落位并更新全部占用跟踪器，同时维护最大部分解
func (g *Generator) commit(session Session, p Placement) {
	a := session.Assignment
	g.schedule[session.key()] = p
	g.teacherBusy.add(a.TeacherID, p.Slot.ID)
	g.roomBusy.add(p.Room.ID, p.Slot.ID)
	g.groupBusy.add(a.SubjectGroupID, p.Slot.ID)
	g.cohortCount[g.cohortKeyFor(a, p.Slot.DayOfWeek)]++

	if len(g.schedule) > len(g.best) {
		g.best = make(map[sessionKey]Placement, len(g.schedule))
		for k, v := range g.schedule {
			g.best[k] = v
		}
	}
}

// undo 撤销落位
func (g *Generator) undo(session Session, p Placement) {
	a := session.Assignment
	delete(g.schedule, session.key())
	g.teacherBusy.remove(a.TeacherID, p.Slot.ID)
	g.roomBusy.remove(p.Room.ID, p.Slot.ID)
	g.groupBusy.remove(a.SubjectGroupID, p.Slot.ID)
	g.cohortCount[g.cohortKeyFor(a, p.Slot.DayOfWeek)]--
}

// postValidate 终局防御性检查：学生群体日课次上限的二次核对
// 搜索逻辑正确时不应触发，触发即高可见度警告
func (g *Generator) postValidate() {
	counts := make(map[cohortKey]int)
	index := make(map[sessionKey]*model.TeachingAssignment, len(g.sessions))
	for _, s := range g.sessions {
		index[s.key()] = s.Assignment
	}
	for key, p := range g.schedule {
		a := index[key]
		if a == nil {
			continue
		}
		counts[g.cohortKeyFor(a, p.Slot.DayOfWeek)]++
	}
	for cohort, count := range counts {
		if count > g.cfg.MaxClassesPerDay {
			g.log.ConstraintViolation("cohort_daily_cap", model.WeekdayName(cohort.Day))
			g.addWarning(model.Warning{
				Type:    "cohort_daily_cap_exceeded",
				Entity:  cohort.GroupCode,
				Message: "终局检查发现学生群体单日课次超限，请上报此问题",
				Details: model.JSONMap{
					"career_id": cohort.CareerID,
					"year":      cohort.Year,
					"day":       model.WeekdayName(cohort.Day),
					"count":     count,
					"max":       g.cfg.MaxClassesPerDay,
				},
			})
		}
	}
}

// finalize 结算终态、成功率与得分
func (g *Generator) finalize(duration time.Duration) {
	g.gen.SessionsScheduled = len(g.schedule)
	g.gen.ExecutionSeconds = duration.Seconds()
	g.gen.CalculateSuccessRate()
	g.gen.OptimizationScore = g.scoreSchedule()

	now := time.Now()
	g.gen.CompletedAt = &now

	switch {
	case g.gen.TotalSessions == 0 || g.gen.SessionsScheduled == 0:
		g.gen.Status = model.StatusFailed
	case g.gen.SessionsScheduled == g.gen.TotalSessions && len(g.gen.BlockingConflicts()) == 0:
		g.gen.Status = model.StatusCompleted
	default:
		g.gen.Status = model.StatusPartial
	}

	g.gen.AlgorithmParameters["stats"] = g.stats
}

// collectSessions 导出已排定节次，按 (任务ID, 节次序号) 确定性排序
func (g *Generator) collectSessions() []*model.ScheduledSession {
	index := make(map[sessionKey]*model.TeachingAssignment, len(g.sessions))
	for _, s := range g.sessions {
		index[s.key()] = s.Assignment
	}

	keys := make([]sessionKey, 0, len(g.schedule))
	for key := range g.schedule {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].AssignmentID != keys[j].AssignmentID {
			return keys[i].AssignmentID < keys[j].AssignmentID
		}
		return keys[i].Index < keys[j].Index
	})

	sessions := make([]*model.ScheduledSession, 0, len(keys))
	for _, key := range keys {
		a := index[key]
		p := g.schedule[key]
		if a == nil {
			continue
		}
		sessions = append(sessions, &model.ScheduledSession{
			ID:             uuid.New(),
			GenerationID:   g.gen.ID,
			AssignmentID:   a.ID,
			SubjectGroupID: a.SubjectGroupID,
			TeacherID:      a.TeacherID,
			TimeSlotID:     p.Slot.ID,
			ClassroomID:    p.Room.ID,
			DurationSlots:  1,
			SessionType:    model.SessionTypeLecture,
			IsLocked:       g.locked[key],
		})
	}
	return sessions
}

// addConflict 追加冲突记录
func (g *Generator) addConflict(c model.Conflict) {
	g.gen.Conflicts = append(g.gen.Conflicts, c)
	g.log.ConstraintViolation(c.Type, c.Description)
}

// addWarning 追加警告记录
func (g *Generator) addWarning(w model.Warning) {
	g.gen.Warnings = append(g.gen.Warnings, w)
}
