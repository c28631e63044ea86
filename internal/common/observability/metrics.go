package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Recorder counts submissions and their handling time.
type Recorder interface {
	RecordSubmission(ctx context.Context, kind, status string)
	RecordSubmissionDuration(ctx context.Context, duration time.Duration, kind string)
}

type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}
	return newWithReader(serviceName, exporter)
}

func newWithReader(serviceName string, reader metric.Reader) *Observability {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	submissionCounter, _ := meter.Int64Counter(
		"intake.submissions",
		otelmetric.WithDescription("Number of application submissions handled"),
	)

	submissionDuration, _ := meter.Float64Histogram(
		"intake.submissions.duration",
		otelmetric.WithDescription("Submission handling duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		submissionCounter:  submissionCounter,
		submissionDuration: submissionDuration,
	}
}

func (o *Observability) RecordSubmission(ctx context.Context, kind, status string) {
	if o.submissionCounter != nil {
		o.submissionCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("form_kind", kind),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordSubmissionDuration(ctx context.Context, duration time.Duration, kind string) {
	if o.submissionDuration != nil {
		o.submissionDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("form_kind", kind),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
