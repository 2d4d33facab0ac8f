package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("wcs.lib.telemetry")
var fetchCounter, _ = meter.Int64Counter(
	"fetch_total",
	metric.WithDescription("number of schedule fetches, by source and outcome"),
)
var collectionsCounter, _ = meter.Int64Counter(
	"collections_emitted",
	metric.WithDescription("number of collections returned by successful fetches"),
)

// RecordFetch records the outcome of a single source fetch.
func RecordFetch(ctx context.Context, source string, emitted int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	fetchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
	if err == nil {
		collectionsCounter.Add(ctx, int64(emitted), metric.WithAttributes(
			attribute.String("source", source),
		))
	}
}
