package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	projectWriteCounter  metric.Int64Counter
	projectWriteDuration metric.Float64Histogram
	projectWriteErrors   metric.Int64Counter

	sessionGateCounter metric.Int64Counter
)

// InitProjectMetrics creates the project instruments on the global meter provider.
func InitProjectMetrics() error {
	meter := otel.Meter("devfolio.project")

	var err error

	projectWriteCounter, err = meter.Int64Counter(
		"project.write.count",
		metric.WithDescription("Number of committed project writes"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	projectWriteDuration, err = meter.Float64Histogram(
		"project.write.duration",
		metric.WithDescription("Duration of project write transactions"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	projectWriteErrors, err = meter.Int64Counter(
		"project.write.errors",
		metric.WithDescription("Number of failed project writes"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	sessionGateCounter, err = meter.Int64Counter(
		"session.gate.decisions",
		metric.WithDescription("Session gate outcomes"),
		metric.WithUnit("{request}"),
	)
	return err
}

// RecordProjectWrite records a committed create, update or delete.
func RecordProjectWrite(ctx context.Context, op string, durationMs float64) {
	if projectWriteCounter != nil {
		projectWriteCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
	if projectWriteDuration != nil {
		projectWriteDuration.Record(ctx, durationMs,
			metric.WithAttributes(attribute.String("op", op), attribute.String("status", "success")),
		)
	}
}

func RecordProjectWriteError(ctx context.Context, op, errorType string, durationMs float64) {
	if projectWriteErrors != nil {
		projectWriteErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("op", op), attribute.String("error_type", errorType)),
		)
	}
	if projectWriteDuration != nil {
		projectWriteDuration.Record(ctx, durationMs,
			metric.WithAttributes(attribute.String("op", op), attribute.String("status", "error")),
		)
	}
}

// RecordSessionGate counts allow/deny decisions; reason is "ok", "absent" or "provider_error".
func RecordSessionGate(ctx context.Context, reason string) {
	if sessionGateCounter != nil {
		sessionGateCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}
