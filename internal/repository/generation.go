package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	apperrors "github.com/paike/paike/pkg/errors"
	"github.com/paike/paike/pkg/model"
)

// GenerationRepository 生成记录与已排节次的数据访问
type GenerationRepository struct {
	db DB
	tx Transactor
}

// NewGenerationRepository 创建生成记录仓储
func NewGenerationRepository(db DB, tx Transactor) *GenerationRepository {
	return &GenerationRepository{db: db, tx: tx}
}

// SaveRun 在单个事务内保存生成记录及其全部节次
// 节次只在保存时写入，之后不再修改，只会被新一次生成取代
func (r *GenerationRepository) SaveRun(ctx context.Context, gen *model.Generation, sessions []*model.ScheduledSession) error {
	return r.tx.Transaction(ctx, func(tx *sql.Tx) error {
		if err := insertGeneration(ctx, tx, gen); err != nil {
			return err
		}
		for _, s := range sessions {
			if err := insertSession(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertGeneration 写入生成记录
func insertGeneration(ctx context.Context, tx *sql.Tx, gen *model.Generation) error {
	conflicts, err := json.Marshal(gen.Conflicts)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化冲突记录失败")
	}
	warnings, err := json.Marshal(gen.Warnings)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化警告记录失败")
	}
	params, err := json.Marshal(gen.AlgorithmParameters)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化算法参数失败")
	}

	query := `
		INSERT INTO schedule_generations (
			id, batch_id, academic_period_id, career_id, status,
			started_at, completed_at, execution_time_seconds,
			total_sessions_to_schedule, sessions_scheduled, success_rate,
			conflicts_detected, warnings, optimization_score,
			algorithm_used, algorithm_parameters, is_published, notes
		) VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err = tx.ExecContext(ctx, query,
		gen.ID, gen.BatchID, gen.PeriodID, gen.CareerID, gen.Status,
		gen.StartedAt, gen.CompletedAt, gen.ExecutionSeconds,
		gen.TotalSessions, gen.SessionsScheduled, gen.SuccessRate,
		conflicts, warnings, gen.OptimizationScore,
		gen.AlgorithmUsed, params, gen.IsPublished, gen.Notes)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "写入生成记录失败")
	}
	return nil
}

// insertSession 写入单个已排节次
func insertSession(ctx context.Context, tx *sql.Tx, s *model.ScheduledSession) error {
	query := `
		INSERT INTO scheduled_sessions (
			id, generation_id, assignment_id, subject_group_id,
			teacher_id, time_slot_id, classroom_id,
			duration_slots, session_type, is_locked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.ExecContext(ctx, query,
		s.ID, s.GenerationID, s.AssignmentID, s.SubjectGroupID,
		s.TeacherID, s.TimeSlotID, s.ClassroomID,
		s.DurationSlots, s.SessionType, s.IsLocked)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "写入已排节次失败")
	}
	return nil
}

// GetByID 按ID获取生成记录
func (r *GenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Generation, error) {
	query := `
		SELECT id, batch_id, academic_period_id, COALESCE(career_id, 0), status,
		       started_at, completed_at, execution_time_seconds,
		       total_sessions_to_schedule, sessions_scheduled, success_rate,
		       conflicts_detected, warnings, optimization_score,
		       algorithm_used, algorithm_parameters, is_published, COALESCE(notes, '')
		FROM schedule_generations
		WHERE id = $1`

	gen, err := scanGeneration(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("生成记录", id.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询生成记录失败")
	}
	return gen, nil
}

// scanner 行扫描接口
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanGeneration 扫描一行生成记录
func scanGeneration(row scanner) (*model.Generation, error) {
	gen := &model.Generation{}
	var conflicts, warnings, params []byte
	err := row.Scan(&gen.ID, &gen.BatchID, &gen.PeriodID, &gen.CareerID, &gen.Status,
		&gen.StartedAt, &gen.CompletedAt, &gen.ExecutionSeconds,
		&gen.TotalSessions, &gen.SessionsScheduled, &gen.SuccessRate,
		&conflicts, &warnings, &gen.OptimizationScore,
		&gen.AlgorithmUsed, &params, &gen.IsPublished, &gen.Notes)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		if err := json.Unmarshal(conflicts, &gen.Conflicts); err != nil {
			return nil, err
		}
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &gen.Warnings); err != nil {
			return nil, err
		}
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &gen.AlgorithmParameters); err != nil {
			return nil, err
		}
	}
	return gen, nil
}

// List 按条件列出生成记录，按开始时间倒序
func (r *GenerationRepository) List(ctx context.Context, filter ListFilter) ([]*model.Generation, error) {
	query := `
		SELECT id, batch_id, academic_period_id, COALESCE(career_id, 0), status,
		       started_at, completed_at, execution_time_seconds,
		       total_sessions_to_schedule, sessions_scheduled, success_rate,
		       conflicts_detected, warnings, optimization_score,
		       algorithm_used, algorithm_parameters, is_published, COALESCE(notes, '')
		FROM schedule_generations
		WHERE ($1 = 0 OR academic_period_id = $1)
		  AND ($2 = 0 OR career_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY started_at DESC
		LIMIT $4 OFFSET $5`

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, query, filter.PeriodID, filter.CareerID, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询生成记录列表失败")
	}
	defer rows.Close()

	var result []*model.Generation
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描生成记录失败")
		}
		result = append(result, gen)
	}
	return result, rows.Err()
}

// ListByBatch 列出一个批次内的全部生成记录
func (r *GenerationRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*model.Generation, error) {
	query := `
		SELECT id, batch_id, academic_period_id, COALESCE(career_id, 0), status,
		       started_at, completed_at, execution_time_seconds,
		       total_sessions_to_schedule, sessions_scheduled, success_rate,
		       conflicts_detected, warnings, optimization_score,
		       algorithm_used, algorithm_parameters, is_published, COALESCE(notes, '')
		FROM schedule_generations
		WHERE batch_id = $1
		ORDER BY started_at`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询批次记录失败")
	}
	defer rows.Close()

	var result []*model.Generation
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描生成记录失败")
		}
		result = append(result, gen)
	}
	return result, rows.Err()
}

// GetSessions 获取一次生成的全部已排节次
func (r *GenerationRepository) GetSessions(ctx context.Context, generationID uuid.UUID) ([]*model.ScheduledSession, error) {
	query := `
		SELECT id, generation_id, assignment_id, subject_group_id,
		       teacher_id, time_slot_id, classroom_id,
		       duration_slots, session_type, is_locked
		FROM scheduled_sessions
		WHERE generation_id = $1
		ORDER BY assignment_id, id`

	rows, err := r.db.QueryContext(ctx, query, generationID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询已排节次失败")
	}
	defer rows.Close()

	var sessions []*model.ScheduledSession
	for rows.Next() {
		s := &model.ScheduledSession{}
		if err := rows.Scan(&s.ID, &s.GenerationID, &s.AssignmentID, &s.SubjectGroupID,
			&s.TeacherID, &s.TimeSlotID, &s.ClassroomID,
			&s.DurationSlots, &s.SessionType, &s.IsLocked); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描已排节次失败")
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Publish 发布一次生成的课表
// 只有 completed 状态可发布；同学期同专业的其他已发布课表自动下线
// 重复发布同一记录是幂等操作
func (r *GenerationRepository) Publish(ctx context.Context, id uuid.UUID) error {
	gen, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if gen.Status != model.StatusCompleted {
		return apperrors.NotPublishable(gen.Status)
	}
	if gen.IsPublished {
		return nil
	}

	return r.tx.Transaction(ctx, func(tx *sql.Tx) error {
		unpublish := `
			UPDATE schedule_generations
			SET is_published = false
			WHERE academic_period_id = $1
			  AND career_id IS NOT DISTINCT FROM NULLIF($2, 0)
			  AND is_published`
		if _, err := tx.ExecContext(ctx, unpublish, gen.PeriodID, gen.CareerID); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "下线旧课表失败")
		}

		publish := `UPDATE schedule_generations SET is_published = true WHERE id = $1`
		if _, err := tx.ExecContext(ctx, publish, id); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "发布课表失败")
		}
		return nil
	})
}

// Unpublish 下线已发布的课表，重复下线是幂等操作
func (r *GenerationRepository) Unpublish(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE schedule_generations SET is_published = false WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "下线课表失败")
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return apperrors.NotFound("生成记录", id.String())
	}
	return nil
}

// DeleteBatch 删除一个批次的全部记录与节次
func (r *GenerationRepository) DeleteBatch(ctx context.Context, batchID uuid.UUID) error {
	return r.tx.Transaction(ctx, func(tx *sql.Tx) error {
		sessions := `
			DELETE FROM scheduled_sessions
			WHERE generation_id IN (SELECT id FROM schedule_generations WHERE batch_id = $1)`
		if _, err := tx.ExecContext(ctx, sessions, batchID); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除批次节次失败")
		}
		generations := `DELETE FROM schedule_generations WHERE batch_id = $1`
		if _, err := tx.ExecContext(ctx, generations, batchID); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除批次记录失败")
		}
		return nil
	})
}

// LatestPublished 获取某学期某专业当前发布的课表
func (r *GenerationRepository) LatestPublished(ctx context.Context, periodID, careerID int64) (*model.Generation, error) {
	query := `
		SELECT id, batch_id, academic_period_id, COALESCE(career_id, 0), status,
		       started_at, completed_at, execution_time_seconds,
		       total_sessions_to_schedule, sessions_scheduled, success_rate,
		       conflicts_detected, warnings, optimization_score,
		       algorithm_used, algorithm_parameters, is_published, COALESCE(notes, '')
		FROM schedule_generations
		WHERE academic_period_id = $1
		  AND career_id IS NOT DISTINCT FROM NULLIF($2, 0)
		  AND is_published
		ORDER BY started_at DESC
		LIMIT 1`

	gen, err := scanGeneration(r.db.QueryRowContext(ctx, query, periodID, careerID))
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.CodeNotFound, "该学期没有已发布的课表")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询已发布课表失败")
	}
	return gen, nil
}
