package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/paike/paike/internal/repository"
	"github.com/paike/paike/pkg/errors"
	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/view"
)

// pathID 解析路径中的 UUID 参数
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的ID格式")
	}
	return id, nil
}

// GetGeneration 查询单次生成记录
func (h *Handler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	gen, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, gen)
}

// ListGenerations 列出生成记录
func (h *Handler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()
	q := r.URL.Query()
	if v := q.Get("period_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, errors.InvalidInput("period_id", "必须为整数"))
			return
		}
		filter = filter.WithPeriod(id)
	}
	if v := q.Get("career_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, errors.InvalidInput("career_id", "必须为整数"))
			return
		}
		filter = filter.WithCareer(id)
	}
	if v := q.Get("status"); v != "" {
		filter = filter.WithStatus(v)
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	result, err := h.runs.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generations": result,
		"count":       len(result),
	})
}

// GetConflicts 查询一次生成的冲突报告
func (h *Handler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	gen, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generation_id": gen.ID,
		"status":        gen.Status,
		"conflicts":     gen.Conflicts,
		"warnings":      gen.Warnings,
		"blocking":      gen.BlockingConflicts(),
	})
}

// sessionEntries 加载一次生成的节次并展开为展示记录
func (h *Handler) sessionEntries(r *http.Request) (*model.Generation, []view.Entry, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, nil, err
	}
	gen, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := h.runs.GetSessions(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	snap, err := h.catalog.LoadSnapshot(r.Context(), gen.PeriodID)
	if err != nil {
		return nil, nil, err
	}

	entries := view.Expand(snap, sessions)

	filter := view.Filter{}
	q := r.URL.Query()
	if v := q.Get("teacher_id"); v != "" {
		filter.TeacherID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("group_id"); v != "" {
		filter.SubjectGroupID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("classroom_id"); v != "" {
		filter.ClassroomID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("day"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			filter.Day = &d
		}
	}
	return gen, filter.Apply(entries), nil
}

// GetSessions 查询一次生成的课表列表视图
func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	gen, entries, err := h.sessionEntries(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generation_id": gen.ID,
		"sessions":      entries,
		"count":         len(entries),
	})
}

// GetGrid 查询一次生成的课表周视图
func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	gen, entries, err := h.sessionEntries(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generation_id": gen.ID,
		"grid":          view.BuildGrid(entries),
	})
}

// GetStatistics 查询一次生成的统计指标
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	gen, entries, err := h.sessionEntries(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generation_id":      gen.ID,
		"status":             gen.Status,
		"success_rate":       gen.SuccessRate,
		"optimization_score": gen.OptimizationScore,
		"statistics":         view.BuildStatistics(entries),
	})
}

// Publish 发布课表
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.runs.Publish(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generation_id": id,
		"published":     true,
	})
}

// Unpublish 下线课表
func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.runs.Unpublish(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generation_id": id,
		"published":     false,
	})
}

// GetPublished 查询某学期（可选某专业）当前发布的课表
func (h *Handler) GetPublished(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	periodID, err := strconv.ParseInt(q.Get("period_id"), 10, 64)
	if err != nil || periodID <= 0 {
		respondError(w, errors.InvalidInput("period_id", "必须为正整数"))
		return
	}
	var careerID int64
	if v := q.Get("career_id"); v != "" {
		careerID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, errors.InvalidInput("career_id", "必须为整数"))
			return
		}
	}

	gen, err := h.runs.LatestPublished(r.Context(), periodID, careerID)
	if err != nil {
		respondError(w, err)
		return
	}
	sessions, err := h.runs.GetSessions(r.Context(), gen.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	snap, err := h.catalog.LoadSnapshot(r.Context(), gen.PeriodID)
	if err != nil {
		respondError(w, err)
		return
	}
	entries := view.Expand(snap, sessions)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generation": gen,
		"sessions":   entries,
		"count":      len(entries),
	})
}

// GetBatch 查询一个批次的全部运行记录
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	runs, err := h.runs.ListByBatch(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if len(runs) == 0 {
		respondError(w, errors.NotFound("批次", id.String()))
		return
	}

	summary := model.BatchSummary{
		BatchID:      id,
		PeriodID:     runs[0].PeriodID,
		TotalCareers: len(runs),
	}
	for _, gen := range runs {
		if gen.Status == model.StatusCompleted {
			summary.SuccessfulCareers++
			summary.TotalSessions += gen.SessionsScheduled
		} else {
			summary.FailedCareers++
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary":     summary,
		"generations": runs,
	})
}

// DeleteBatch 删除一个批次及其全部节次
func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.runs.DeleteBatch(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": id,
		"deleted":  true,
	})
}
