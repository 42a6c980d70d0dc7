// Package model 定义排课引擎的核心数据模型
package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/paike/paike/pkg/errors"
)

// 生成状态
const (
	StatusPending   = "pending"   // 待执行
	StatusRunning   = "running"   // 执行中
	StatusCompleted = "completed" // 全部排入
	StatusPartial   = "partial"   // 部分排入
	StatusFailed    = "failed"    // 失败
)

// 求解算法
const (
	AlgorithmBacktracking = "backtracking" // 回溯 + 前向检查
)

// GenerationConfig 单次排课的运行配置
type GenerationConfig struct {
	Algorithm               string `json:"algorithm" validate:"oneof=backtracking"`
	MaxExecutionTimeSeconds int    `json:"max_execution_time_seconds" validate:"gte=1"`

	// 硬性上限
	AllowTeacherGaps            bool `json:"allow_teacher_gaps"`
	MaxDailyHoursPerTeacher     int  `json:"max_daily_hours_per_teacher" validate:"gte=1"`
	MaxDailyHoursPerGroup       int  `json:"max_daily_hours_per_group" validate:"gte=1"`
	MaxClassesPerDay            int  `json:"max_classes_per_day" validate:"gte=1,lte=15"`
	MaxSessionsPerSubjectPerDay int  `json:"max_sessions_per_subject_per_day" validate:"gte=1,lte=5"`
	MinBreakMinutes             int  `json:"min_break_between_classes" validate:"gte=0"`

	// 成功后是否执行局部搜索精化
	EnableRefinement bool `json:"enable_refinement"`

	// 软约束权重 (0-10)
	WeightMinimizeTeacherGaps  int `json:"weight_minimize_teacher_gaps" validate:"gte=0,lte=10"`
	WeightTeacherPreferences   int `json:"weight_teacher_preferences" validate:"gte=0,lte=10"`
	WeightBalancedDistribution int `json:"weight_balanced_distribution" validate:"gte=0,lte=10"`
	WeightClassroomProximity   int `json:"weight_classroom_proximity" validate:"gte=0,lte=10"`
	WeightMinimizeDailyChanges int `json:"weight_minimize_daily_changes" validate:"gte=0,lte=10"`
}

// DefaultGenerationConfig 返回默认运行配置
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		Algorithm:                   AlgorithmBacktracking,
		MaxExecutionTimeSeconds:     300,
		AllowTeacherGaps:            true,
		MaxDailyHoursPerTeacher:     6,
		MaxDailyHoursPerGroup:       6,
		MaxClassesPerDay:            8,
		MaxSessionsPerSubjectPerDay: 2,
		MinBreakMinutes:             0,
		EnableRefinement:            false,
		WeightMinimizeTeacherGaps:   5,
		WeightTeacherPreferences:    3,
		WeightBalancedDistribution:  7,
		WeightClassroomProximity:    2,
		WeightMinimizeDailyChanges:  4,
	}
}

// Validate 校验运行配置
func (c *GenerationConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		ve := &apperrors.ValidationErrors{}
		var invalid validator.ValidationErrors
		if ok := asValidationErrors(err, &invalid); ok {
			for _, fe := range invalid {
				ve.Add(fe.Field(), fmt.Sprintf("不满足约束 '%s'", fe.Tag()))
			}
			return ve
		}
		return apperrors.Wrap(err, apperrors.CodeValidationFail, "运行配置无效")
	}
	return nil
}

// asValidationErrors 提取 validator 的字段错误
func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		*target = ve
		return true
	}
	return false
}

// MaxExecutionTime 返回超时时长
func (c *GenerationConfig) MaxExecutionTime() time.Duration {
	return time.Duration(c.MaxExecutionTimeSeconds) * time.Second
}

// Conflict 冲突记录（阻断或诊断信息的规范格式）
type Conflict struct {
	Type              string   `json:"type"`
	Severity          string   `json:"severity"` // critical/high/medium/low
	Entity            string   `json:"entity"`
	EntityID          int64    `json:"entity_id,omitempty"`
	EntityName        string   `json:"entity_name"`
	Description       string   `json:"description"`
	Details           JSONMap  `json:"details,omitempty"`
	AffectedSubjects  []string `json:"affected_subjects,omitempty"`
	PossibleSolutions []string `json:"possible_solutions,omitempty"`
	Blocking          bool     `json:"blocking"`
}

// Warning 非阻断警告记录
type Warning struct {
	Type    string  `json:"type"`
	Entity  string  `json:"entity"`
	Message string  `json:"message"`
	Details JSONMap `json:"details,omitempty"`
}

// SearchStats 搜索统计
type SearchStats struct {
	NodesExplored    int `json:"nodes_explored"`
	Backtracks       int `json:"backtracks"`
	ConstraintChecks int `json:"constraint_checks"`
}

// Generation 一次排课执行的记录
type Generation struct {
	ID       uuid.UUID `json:"id" db:"id"`
	BatchID  uuid.UUID `json:"batch_id" db:"batch_id"`
	PeriodID int64     `json:"period_id" db:"academic_period_id"`
	CareerID int64     `json:"career_id,omitempty" db:"career_id"` // 0 = 全学期（不分专业）

	Status           string     `json:"status" db:"status"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ExecutionSeconds float64    `json:"execution_time_seconds" db:"execution_time_seconds"`

	TotalSessions     int     `json:"total_sessions_to_schedule" db:"total_sessions_to_schedule"`
	SessionsScheduled int     `json:"sessions_scheduled" db:"sessions_scheduled"`
	SuccessRate       float64 `json:"success_rate" db:"success_rate"`

	Conflicts         []Conflict `json:"conflicts_detected" db:"-"`
	Warnings          []Warning  `json:"warnings" db:"-"`
	OptimizationScore float64    `json:"optimization_score" db:"optimization_score"`

	AlgorithmUsed       string  `json:"algorithm_used" db:"algorithm_used"`
	AlgorithmParameters JSONMap `json:"algorithm_parameters" db:"-"`

	IsPublished bool   `json:"is_published" db:"is_published"`
	Notes       string `json:"notes,omitempty" db:"notes"`
}

// NewGeneration 创建待执行的生成记录
func NewGeneration(batchID uuid.UUID, periodID, careerID int64, algorithm string) *Generation {
	return &Generation{
		ID:            uuid.New(),
		BatchID:       batchID,
		PeriodID:      periodID,
		CareerID:      careerID,
		Status:        StatusPending,
		StartedAt:     time.Now(),
		AlgorithmUsed: algorithm,
	}
}

// CalculateSuccessRate 计算并更新成功率
func (g *Generation) CalculateSuccessRate() float64 {
	if g.TotalSessions > 0 {
		g.SuccessRate = float64(g.SessionsScheduled) / float64(g.TotalSessions) * 100
	} else {
		g.SuccessRate = 0
	}
	return g.SuccessRate
}

// IsTerminal 检查生成记录是否处于终态
func (g *Generation) IsTerminal() bool {
	switch g.Status {
	case StatusCompleted, StatusPartial, StatusFailed:
		return true
	}
	return false
}

// BlockingConflicts 返回所有阻断性冲突
func (g *Generation) BlockingConflicts() []Conflict {
	var blocking []Conflict
	for _, c := range g.Conflicts {
		if c.Blocking {
			blocking = append(blocking, c)
		}
	}
	return blocking
}

// 节次类型
const (
	SessionTypeLecture  = "lecture"
	SessionTypeLab      = "lab"
	SessionTypeWorkshop = "workshop"
	SessionTypeSeminar  = "seminar"
)

// ScheduledSession 一个已排定的节次（节次 -> 时段+教室）
type ScheduledSession struct {
	ID             uuid.UUID `json:"id" db:"id"`
	GenerationID   uuid.UUID `json:"generation_id" db:"generation_id"`
	AssignmentID   int64     `json:"assignment_id" db:"assignment_id"`
	SubjectGroupID int64     `json:"subject_group_id" db:"subject_group_id"`
	TeacherID      int64     `json:"teacher_id" db:"teacher_id"`
	TimeSlotID     int64     `json:"time_slot_id" db:"time_slot_id"`
	ClassroomID    int64     `json:"classroom_id" db:"classroom_id"`
	DurationSlots  int       `json:"duration_slots" db:"duration_slots"`
	SessionType    string    `json:"session_type" db:"session_type"`
	IsLocked       bool      `json:"is_locked" db:"is_locked"`
}

// BatchSummary 一个批次（一次协调器执行）的汇总
type BatchSummary struct {
	BatchID           uuid.UUID `json:"batch_id"`
	PeriodID          int64     `json:"period_id"`
	TotalCareers      int       `json:"total_careers"`
	SuccessfulCareers int       `json:"successful_careers"`
	FailedCareers     int       `json:"failed_careers"`
	TotalSessions     int       `json:"total_sessions"`
}
