package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

// LookupMeter records source lookups as OTLP instruments
type LookupMeter struct {
	lookups  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewLookupMeter registers the lookup instruments on meter
func NewLookupMeter(meter metric.Meter) (*LookupMeter, error) {
	lookups, err := meter.Int64Counter("dnc.lookups",
		metric.WithDescription("DNC source lookups by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("dnc.lookup.duration",
		metric.WithDescription("DNC source lookup latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &LookupMeter{lookups: lookups, duration: duration}, nil
}

func (m *LookupMeter) ObserveLookup(source dnc.Source, outcome dnc.LookupOutcome, duration time.Duration) {
	ctx := context.Background()
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dnc.source", string(source)),
		attribute.String("dnc.outcome", string(outcome)),
	))
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("dnc.source", string(source)),
	))
}
