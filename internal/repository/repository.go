// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
)

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx 事务接口
type Tx interface {
	DB
	Commit() error
	Rollback() error
}

// Transactor 提供事务执行能力
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// ListFilter 列表查询过滤器
type ListFilter struct {
	PeriodID int64  `json:"period_id,omitempty"`
	CareerID int64  `json:"career_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}

// DefaultListFilter 返回默认过滤器
func DefaultListFilter() ListFilter {
	return ListFilter{
		Offset: 0,
		Limit:  20,
	}
}

// WithPeriod 设置学期过滤
func (f ListFilter) WithPeriod(periodID int64) ListFilter {
	f.PeriodID = periodID
	return f
}

// WithCareer 设置专业过滤
func (f ListFilter) WithCareer(careerID int64) ListFilter {
	f.CareerID = careerID
	return f
}

// WithStatus 设置状态过滤
func (f ListFilter) WithStatus(status string) ListFilter {
	f.Status = status
	return f
}
