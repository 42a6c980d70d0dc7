// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paike/paike/internal/config"
	"github.com/paike/paike/internal/metrics"
	"github.com/paike/paike/internal/repository"
	"github.com/paike/paike/pkg/errors"
)

// Handler 排课服务的HTTP处理器集合
type Handler struct {
	catalog *repository.CatalogRepository
	runs    *repository.GenerationRepository
	cfg     *config.Config
	metrics *metrics.Metrics
}

// New 创建处理器
func New(catalog *repository.CatalogRepository, runs *repository.GenerationRepository, cfg *config.Config, m *metrics.Metrics) *Handler {
	return &Handler{
		catalog: catalog,
		runs:    runs,
		cfg:     cfg,
		metrics: m,
	}
}

// Register 注册全部路由
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/generations", h.instrument("/api/v1/generations", h.Generate))
	mux.HandleFunc("POST /api/v1/generations/preview", h.instrument("/api/v1/generations/preview", h.Preview))
	mux.HandleFunc("GET /api/v1/generations", h.instrument("/api/v1/generations", h.ListGenerations))
	mux.HandleFunc("GET /api/v1/generations/{id}", h.instrument("/api/v1/generations/:id", h.GetGeneration))
	mux.HandleFunc("GET /api/v1/generations/{id}/conflicts", h.instrument("/api/v1/generations/:id/conflicts", h.GetConflicts))
	mux.HandleFunc("GET /api/v1/generations/{id}/sessions", h.instrument("/api/v1/generations/:id/sessions", h.GetSessions))
	mux.HandleFunc("GET /api/v1/generations/{id}/grid", h.instrument("/api/v1/generations/:id/grid", h.GetGrid))
	mux.HandleFunc("GET /api/v1/generations/{id}/statistics", h.instrument("/api/v1/generations/:id/statistics", h.GetStatistics))
	mux.HandleFunc("POST /api/v1/generations/{id}/publish", h.instrument("/api/v1/generations/:id/publish", h.Publish))
	mux.HandleFunc("POST /api/v1/generations/{id}/unpublish", h.instrument("/api/v1/generations/:id/unpublish", h.Unpublish))
	mux.HandleFunc("GET /api/v1/schedules/published", h.instrument("/api/v1/schedules/published", h.GetPublished))
	mux.HandleFunc("GET /api/v1/batches/{id}", h.instrument("/api/v1/batches/:id", h.GetBatch))
	mux.HandleFunc("DELETE /api/v1/batches/{id}", h.instrument("/api/v1/batches/:id", h.DeleteBatch))
}

// instrument 包装处理函数，记录请求指标
func (h *Handler) instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if h.metrics != nil {
			h.metrics.ObserveHTTP(r.Method, path, rec.status, time.Since(start))
		}
	}
}

// statusRecorder 捕获响应状态码
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader 记录状态码
func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.CodeInternal, "内部错误")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
	})
}
