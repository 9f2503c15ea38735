package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewContext returns a copy of ctx whose custom events and metrics are
// reported to app
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	return context.WithValue(ctx, newRelicContextKey{}, app)
}

// FromContext returns the application attached by NewContext, if any
func FromContext(ctx context.Context) (*newrelic.Application, bool) {
	app, ok := ctx.Value(newRelicContextKey{}).(*newrelic.Application)
	return app, ok && app != nil
}
