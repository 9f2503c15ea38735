package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// MethodTracer is a segment within the transaction carried by a context.
// A nil tracer is valid and does nothing, so callers never need to check
// whether tracing is enabled.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// TraceMethodCall starts a segment named "<component> <method>"
func TraceMethodCall(ctx context.Context, component, method string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(component + " " + method),
	}
}

func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

// OnError notices err on the enclosing transaction. nil errors are ignored.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}
	t.txn.NoticeError(err)
}

func (t *MethodTracer) End() {
	if t == nil {
		return
	}
	t.seg.End()
}
