package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/paike/paike/pkg/coordinator"
	"github.com/paike/paike/pkg/errors"
	"github.com/paike/paike/pkg/logger"
	"github.com/paike/paike/pkg/model"
)

// GenerateRequest 排课生成请求
type GenerateRequest struct {
	PeriodID int64                   `json:"period_id"`
	Config   *model.GenerationConfig `json:"config,omitempty"`
}

// RunOutput 单次运行的响应体
type RunOutput struct {
	Generation *model.Generation         `json:"generation"`
	Sessions   []*model.ScheduledSession `json:"sessions,omitempty"`
	Stats      model.SearchStats         `json:"search_stats"`
}

// GenerateResponse 排课生成响应
type GenerateResponse struct {
	Summary model.BatchSummary `json:"summary"`
	Runs    []RunOutput        `json:"runs"`
	Preview bool               `json:"preview,omitempty"`
}

// Generate 执行一次完整的批次排课并持久化结果
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	h.runBatch(w, r, false)
}

// Preview 试算：执行排课但不持久化任何结果
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	h.runBatch(w, r, true)
}

// runBatch 生成与试算的公共流程
func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request, preview bool) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.PeriodID <= 0 {
		respondError(w, errors.InvalidInput("period_id", "必须为正整数"))
		return
	}

	cfg := req.Config
	if cfg == nil {
		cfg = model.DefaultGenerationConfig()
		cfg.MaxExecutionTimeSeconds = int(h.cfg.Generator.DefaultTimeout.Seconds())
		cfg.EnableRefinement = h.cfg.Generator.EnableRefinement
	}
	if err := cfg.Validate(); err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.API.Timeout+cfg.MaxExecutionTime())
	defer cancel()

	snap, err := h.catalog.LoadSnapshot(ctx, req.PeriodID)
	if err != nil {
		respondError(w, err)
		return
	}

	coord := coordinator.New(snap, cfg)
	batch, err := coord.GenerateAll(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := GenerateResponse{Summary: batch.Summary, Preview: preview}
	for _, run := range batch.Runs {
		if !preview {
			if err := h.runs.SaveRun(ctx, run.Generation, run.Sessions); err != nil {
				logger.WithError(err).
					Str("generation_id", run.Generation.ID.String()).
					Msg("保存生成结果失败")
				respondError(w, err)
				return
			}
		}
		if h.metrics != nil {
			h.metrics.ObserveGeneration(
				run.Generation.Status,
				run.Duration,
				run.Generation.SessionsScheduled,
				run.Stats.Backtracks,
				run.Generation.OptimizationScore,
			)
		}
		resp.Runs = append(resp.Runs, RunOutput{
			Generation: run.Generation,
			Sessions:   run.Sessions,
			Stats:      run.Stats,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}
