package logger

import (
	"context"

	"go.uber.org/zap"

	"habittracker/pkg/trace"
)

func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

// NewDevelopmentLogger 本地调试用，输出可读格式
func NewDevelopmentLogger() *zap.Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return l
}

// ForMode picks the development logger for gin's debug mode.
func ForMode(mode string) *zap.Logger {
	if mode == "debug" {
		return NewDevelopmentLogger()
	}
	return NewLogger()
}

// WithTrace 从 context 中提取 trace_id 并添加到 logger
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
