package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetPublished_RequiresPeriodID(t *testing.T) {
	h := New(nil, nil, nil, nil)
	mux := http.NewServeMux()
	h.Register(mux)

	tests := []struct {
		name   string
		target string
	}{
		{"缺少 period_id", "/api/v1/schedules/published"},
		{"period_id 非整数", "/api/v1/schedules/published?period_id=abc"},
		{"period_id 非正数", "/api/v1/schedules/published?period_id=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("状态码 = %d, expected %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGetPublished_RejectsBadCareerID(t *testing.T) {
	h := New(nil, nil, nil, nil)
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/published?period_id=1&career_id=abc", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, expected %d", rec.Code, http.StatusBadRequest)
	}
}
