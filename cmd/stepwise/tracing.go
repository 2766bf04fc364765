package main

import (
	"context"
	"log/slog"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/spetersoncode/stepwise/telemetry"
)

// logExporter writes finished spans to the log at debug level.
type logExporter struct {
	logger *slog.Logger
}

func (e *logExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		e.logger.DebugContext(ctx, "span",
			"name", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"duration", s.EndTime().Sub(s.StartTime()),
			"status", s.Status().Code.String(),
		)
	}
	return nil
}

func (e *logExporter) Shutdown(context.Context) error { return nil }

// tracing owns the SDK providers backing the OTel listener.
type tracing struct {
	logger   *slog.Logger
	tracer   *sdktrace.TracerProvider
	reader   *sdkmetric.ManualReader
	meter    *sdkmetric.MeterProvider
	listener *telemetry.OTelListener
}

func newTracing(logger *slog.Logger, recordIO bool) (*tracing, error) {
	t := &tracing{
		logger: logger,
		tracer: sdktrace.NewTracerProvider(sdktrace.WithSyncer(&logExporter{logger: logger})),
		reader: sdkmetric.NewManualReader(),
	}
	t.meter = sdkmetric.NewMeterProvider(sdkmetric.WithReader(t.reader))

	opts := []telemetry.OTelOption{
		telemetry.WithTracerProvider(t.tracer),
		telemetry.WithMeterProvider(t.meter),
	}
	if recordIO {
		opts = append(opts, telemetry.WithRecordIO())
	}
	l, err := telemetry.NewOTelListener(opts...)
	if err != nil {
		return nil, err
	}
	t.listener = l
	return t, nil
}

// Shutdown logs the collected counters and stops the providers.
func (t *tracing) Shutdown(ctx context.Context) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err == nil {
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					continue
				}
				var total int64
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
				t.logger.Info("metric", "name", m.Name, "value", total)
			}
		}
	}
	t.tracer.Shutdown(ctx)
	t.meter.Shutdown(ctx)
}
