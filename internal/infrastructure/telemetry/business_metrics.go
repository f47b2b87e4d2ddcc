// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics tracks document lifecycle and receiving activity
type BusinessMetrics struct {
	transitionTotal metric.Int64Counter
	receiveTotal    metric.Int64Counter
	receiveQuantity metric.Float64Counter
}

// NewBusinessMetrics creates a BusinessMetrics instance on the given meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	transitionTotal, err := meter.Int64Counter(
		"erp_order_transition_total",
		metric.WithDescription("Total number of sales order status transitions attempted"),
		metric.WithUnit("{transitions}"),
	)
	if err != nil {
		return nil, err
	}

	receiveTotal, err := meter.Int64Counter(
		"erp_goods_receive_total",
		metric.WithDescription("Total number of goods receive operations attempted"),
		metric.WithUnit("{receipts}"),
	)
	if err != nil {
		return nil, err
	}

	receiveQuantity, err := meter.Float64Counter(
		"erp_goods_receive_quantity_total",
		metric.WithDescription("Total quantity of goods received across all products"),
		metric.WithUnit("{units}"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		transitionTotal: transitionTotal,
		receiveTotal:    receiveTotal,
		receiveQuantity: receiveQuantity,
	}, nil
}

// RecordTransition counts one transition attempt by target status and outcome
func (m *BusinessMetrics) RecordTransition(ctx context.Context, target string, success bool) {
	m.transitionTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("target", target),
			attribute.Bool("success", success),
		))
}

// RecordReceive counts one receive attempt by outcome. Quantity is the total
// received across all lines and only accumulates for successful calls.
func (m *BusinessMetrics) RecordReceive(ctx context.Context, quantity float64, success bool) {
	m.receiveTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("success", success)))
	if success && quantity > 0 {
		m.receiveQuantity.Add(ctx, quantity)
	}
}
