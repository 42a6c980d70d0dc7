// Package coordinator 按专业顺序编排多次排课运行
package coordinator

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/paike/paike/pkg/errors"
	"github.com/paike/paike/pkg/logger"
	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/scheduler"
)

// Coordinator 跨专业排课协调器
// 同一批次内各专业严格串行求解，共享的教师占用跟踪器
// 让跨专业的教师冲突在结构上不可能发生
type Coordinator struct {
	snap *scheduler.Snapshot
	cfg  *model.GenerationConfig
	log  zerolog.Logger
}

// BatchResult 一个批次的完整结果
type BatchResult struct {
	Summary model.BatchSummary
	Runs    []*scheduler.Result
}

// New 创建协调器
func New(snap *scheduler.Snapshot, cfg *model.GenerationConfig) *Coordinator {
	if cfg == nil {
		cfg = model.DefaultGenerationConfig()
	}
	return &Coordinator{
		snap: snap,
		cfg:  cfg,
		log:  logger.Get().With().Str("component", "coordinator").Logger(),
	}
}

// GenerateAll 为学期内全部有效专业依次生成课表
// 没有任何可运行的专业时返回错误；单个专业的失败只体现在其运行记录中
func (c *Coordinator) GenerateAll(ctx context.Context) (*BatchResult, error) {
	careers := c.activeCareers()
	if len(careers) == 0 {
		return nil, apperrors.NoActiveCareers(c.snap.PeriodID)
	}

	batchID := uuid.New()
	global := scheduler.NewTeacherOccupancy()
	result := &BatchResult{
		Summary: model.BatchSummary{
			BatchID:      batchID,
			PeriodID:     c.snap.PeriodID,
			TotalCareers: len(careers),
		},
	}

	c.log.Info().
		Str("batch_id", batchID.String()).
		Int64("period_id", c.snap.PeriodID).
		Int("careers", len(careers)).
		Msg("开始批次排课")
	start := time.Now()

	for _, career := range careers {
		run := c.generateCareer(ctx, career, batchID, global)
		result.Runs = append(result.Runs, run)

		if run.Generation.Status == model.StatusCompleted {
			result.Summary.SuccessfulCareers++
			result.Summary.TotalSessions += run.Generation.SessionsScheduled
			// 只并入完整成功的运行：后续专业据此避开已占用的教师
			global.MergeSessions(run.Sessions)
		} else {
			result.Summary.FailedCareers++
		}
	}

	c.log.Info().
		Str("batch_id", batchID.String()).
		Int("successful", result.Summary.SuccessfulCareers).
		Int("failed", result.Summary.FailedCareers).
		Int("total_sessions", result.Summary.TotalSessions).
		Dur("duration", time.Since(start)).
		Msg("批次排课完成")

	return result, nil
}

// generateCareer 为单个专业执行一次生成
func (c *Coordinator) generateCareer(ctx context.Context, career *model.Career, batchID uuid.UUID, global *scheduler.TeacherOccupancy) *scheduler.Result {
	c.log.Info().
		Str("career_code", career.Code).
		Str("career_name", career.Name).
		Msg("开始生成专业课表")

	assignments := c.snap.AssignmentsForCareer(career.ID)
	if len(assignments) == 0 {
		// 无任务的专业记为空的失败运行，不静默跳过
		return c.emptyRun(career, batchID, "该专业在本学期没有有效的教学任务或培养方案课程")
	}

	gen := scheduler.NewGenerator(c.snap, c.cfg)
	gen.SetCareer(career)
	gen.SetBatchID(batchID)
	gen.SetGlobalOccupancy(global)
	gen.SetAssignments(assignments)

	run := gen.Generate(ctx)

	c.log.Info().
		Str("career_code", career.Code).
		Str("status", run.Generation.Status).
		Int("scheduled", run.Generation.SessionsScheduled).
		Int("total", run.Generation.TotalSessions).
		Float64("score", run.Generation.OptimizationScore).
		Msg("专业课表生成结束")

	return run
}

// emptyRun 构造一条空的失败运行记录
func (c *Coordinator) emptyRun(career *model.Career, batchID uuid.UUID, note string) *scheduler.Result {
	gen := model.NewGeneration(batchID, c.snap.PeriodID, career.ID, c.cfg.Algorithm)
	gen.Status = model.StatusFailed
	gen.Notes = note
	now := time.Now()
	gen.CompletedAt = &now

	c.log.Warn().
		Str("career_code", career.Code).
		Str("note", note).
		Msg("专业无可排任务")

	return &scheduler.Result{Generation: gen}
}

// activeCareers 返回有效专业，按专业代码稳定排序
func (c *Coordinator) activeCareers() []*model.Career {
	var careers []*model.Career
	for _, career := range c.snap.Careers {
		if career.IsActive {
			careers = append(careers, career)
		}
	}
	sort.Slice(careers, func(i, j int) bool { return careers[i].Code < careers[j].Code })
	return careers
}
