package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestContextRoundTrip(t *testing.T) {
	l := zap.NewNop().Named("test")
	ctx := NewContext(context.Background(), l)
	require.Same(t, l, L(ctx))
}

func TestFallsBackToGlobal(t *testing.T) {
	require.Same(t, zap.L(), L(context.Background()))
	require.Same(t, zap.L(), L(nil)) //nolint:staticcheck
}
