// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	// 添加学期ID
	if periodID, ok := ctx.Value("period_id").(string); ok {
		l = l.With().Str("period_id", periodID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields 添加多个字段
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// GeneratorLogger 排课引擎专用日志器
type GeneratorLogger struct {
	base *zerolog.Logger
}

// NewGeneratorLogger 创建排课引擎日志器
func NewGeneratorLogger() *GeneratorLogger {
	l := Get().With().Str("component", "generator").Logger()
	return &GeneratorLogger{base: &l}
}

// StartGeneration 记录排课开始
func (l *GeneratorLogger) StartGeneration(generationID string, assignments, sessions int) {
	l.base.Info().
		Str("generation_id", generationID).
		Int("assignments", assignments).
		Int("sessions", sessions).
		Msg("开始生成课表")
}

// ConstraintViolation 记录约束违反
func (l *GeneratorLogger) ConstraintViolation(conflictType, details string) {
	l.base.Warn().
		Str("conflict_type", conflictType).
		Str("details", details).
		Msg("约束违反")
}

// GenerationComplete 记录排课完成
func (l *GeneratorLogger) GenerationComplete(generationID, status string, duration time.Duration, score float64) {
	l.base.Info().
		Str("generation_id", generationID).
		Str("status", status).
		Dur("duration", duration).
		Float64("score", score).
		Msg("课表生成完成")
}

// RefinementComplete 记录局部搜索精化结果
func (l *GeneratorLogger) RefinementComplete(generationID string, moves int, score float64) {
	l.base.Info().
		Str("generation_id", generationID).
		Int("improving_moves", moves).
		Float64("score", score).
		Msg("局部搜索精化完成")
}

// PreflightBlocked 记录前置校验发现阻断冲突、放弃搜索
func (l *GeneratorLogger) PreflightBlocked(generationID string, conflicts int) {
	l.base.Warn().
		Str("generation_id", generationID).
		Int("blocking_conflicts", conflicts).
		Msg("前置校验存在阻断冲突，本次生成终止")
}

// SearchTimeout 记录搜索超时
func (l *GeneratorLogger) SearchTimeout(generationID string, scheduled int) {
	l.base.Warn().
		Str("generation_id", generationID).
		Int("sessions_scheduled", scheduled).
		Msg("搜索超时，保留部分解")
}
