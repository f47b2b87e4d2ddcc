package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/erp/core/internal/infrastructure/telemetry"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(meter)

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestBusinessMetrics_Record(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordTransition(ctx, "CONFIRMED", true)
	bm.RecordTransition(ctx, "CANCELLED", false)
	bm.RecordReceive(ctx, 15, true)
	bm.RecordReceive(ctx, 0, false)
}
