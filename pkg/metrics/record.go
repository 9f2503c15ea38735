package metrics

import (
	"context"
	"time"
)

// RecordEvent records a custom event. It's a no-op when ctx carries no
// application.
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	if app, ok := FromContext(ctx); ok {
		app.RecordCustomEvent(eventName, kvPairs)
	}
}

func RecordCount(ctx context.Context, metricName string, count uint64) {
	if app, ok := FromContext(ctx); ok {
		app.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records duration in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if app, ok := FromContext(ctx); ok {
		app.RecordCustomMetric(metricName, float64(duration)/float64(time.Millisecond))
	}
}
