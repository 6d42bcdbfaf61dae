package trace

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// NewID 生成按时间排序的 trace ID（UUIDv7），日志中可直接按 ID 排序
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Start 为一次 turn 挂上 trace_id；ctx 已带 trace_id 时原样返回
func Start(ctx context.Context) context.Context {
	if FromContext(ctx) != "" {
		return ctx
	}
	return WithContext(ctx, NewID())
}

// FromContext 从 context 中获取 trace_id
func FromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok {
		return traceID
	}
	return ""
}

func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}
