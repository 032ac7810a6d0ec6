// Package logger carries a zap logger through a context.
package logger

import (
	"context"

	"go.uber.org/zap"
)

type key struct{}

func NewContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, l)
}

// L returns the context's logger, or the global one when none was set.
func L(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(key{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.L()
}
