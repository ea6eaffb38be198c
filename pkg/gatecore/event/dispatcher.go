package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/gatecore/pkg/gatecore/cache"
	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/droplog"
	"github.com/randalmurphal/gatecore/pkg/gatecore/observability"
)

// DispatcherConfig configures a Dispatcher. Every field is optional.
type DispatcherConfig struct {
	// Logger receives drop and listener failure logs. Nil disables logging.
	Logger *slog.Logger

	// Metrics defaults to observability.NoopMetrics.
	Metrics observability.MetricsRecorder

	// Spans defaults to observability.NoopSpanManager.
	Spans observability.SpanManager

	// Drops records events dropped for malformed data.
	Drops droplog.Store

	// OnListenerError is called after a listener failure is logged.
	OnListenerError func(err *ListenerError)

	// Now returns the receive time stamped on each event. Default: time.Now.
	Now func() time.Time
}

// Dispatcher hydrates gateway events and delivers them to listeners.
// It is safe for concurrent use by multiple shards.
type Dispatcher struct {
	registry *Registry
	finder   cache.Finder

	logger          *slog.Logger
	metrics         observability.MetricsRecorder
	spans           observability.SpanManager
	drops           droplog.Store
	onListenerError func(err *ListenerError)
	now             func() time.Time
}

// NewDispatcher creates a dispatcher resolving references through finder.
func NewDispatcher(finder cache.Finder, cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		registry:        NewRegistry(),
		finder:          finder,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		spans:           cfg.Spans,
		drops:           cfg.Drops,
		onListenerError: cfg.OnListenerError,
		now:             cfg.Now,
	}
	if d.metrics == nil {
		d.metrics = observability.NoopMetrics{}
	}
	if d.spans == nil {
		d.spans = observability.NoopSpanManager{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Registry returns the listener registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handles reports whether eventType has a typed record.
func (d *Dispatcher) Handles(eventType string) bool {
	_, ok := hydrators[eventType]
	return ok
}

// Dispatch hydrates the "d" sub-document of envelope and delivers the
// record to every listener of eventType.
//
// When nobody listens for eventType, Dispatch returns before reading the
// envelope. Unknown event types are ignored. Malformed data drops the
// event and returns a *HydrationError. Listener failures never fail the
// dispatch.
//
// Listeners run on the calling goroutine, so a slow listener stalls the
// caller's shard until it returns.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, envelope document.Source) error {
	hydrate, ok := hydrators[eventType]
	if !ok {
		return nil
	}
	if !d.registry.Has(eventType) {
		d.metrics.RecordSkip(ctx, eventType)
		return nil
	}

	start := d.now()
	meta := Meta{
		DispatchID: uuid.NewString(),
		Type:       eventType,
		ShardID:    ShardFrom(ctx),
		ReceivedAt: start,
		Raw:        RawFrom(ctx),
	}
	ctx, span := d.spans.StartDispatchSpan(ctx, eventType, meta.DispatchID)

	data, _, err := document.Nested(envelope, "d")
	var ev any
	if err == nil {
		ev, err = hydrate(d, data, meta)
	}
	if err != nil {
		herr := &HydrationError{EventType: eventType, DispatchID: meta.DispatchID, Err: err}
		d.drop(ctx, meta, data, herr)
		d.spans.EndSpanWithError(span, herr)
		return herr
	}
	if ev == nil {
		// Nothing to deliver, e.g. a delete for an uncached entity.
		d.spans.EndSpanWithError(span, nil)
		return nil
	}

	done := observability.TimedOperation()
	n := d.deliver(ctx, eventType, ev)
	elapsed := done()

	d.metrics.RecordDispatch(ctx, eventType, n, d.now().Sub(start))
	observability.LogDispatch(d.logger, eventType, meta.DispatchID, n, elapsed)
	d.spans.EndSpanWithError(span, nil)
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, eventType string, ev any) int {
	n := 0
	d.registry.ForEach(eventType, func(id ListenerID, cb Callback) bool {
		n++
		if err := invoke(ctx, cb, ev); err != nil {
			lerr := &ListenerError{EventType: eventType, ListenerID: id, Err: err}
			if p, ok := err.(*panicError); ok {
				lerr.Panicked = true
				lerr.Err = p.err
			}
			observability.LogListenerFailure(d.logger, eventType, uint64(id), lerr.Err)
			d.metrics.RecordListenerFailure(ctx, eventType)
			d.spans.AddSpanEvent(ctx, "listener_failed",
				attribute.Int64("listener_id", int64(id)),
				attribute.Bool("panicked", lerr.Panicked),
			)
			if d.onListenerError != nil {
				d.onListenerError(lerr)
			}
		}
		return true
	})
	return n
}

type panicError struct {
	err error
}

func (p *panicError) Error() string { return p.err.Error() }

// invoke calls cb, converting a panic into an error.
func invoke(ctx context.Context, cb Callback, ev any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = &panicError{err: e}
				return
			}
			err = &panicError{err: fmt.Errorf("%v", r)}
		}
	}()
	return cb(ctx, ev)
}

func (d *Dispatcher) drop(ctx context.Context, meta Meta, data document.Source, herr *HydrationError) {
	observability.LogDrop(d.logger, meta.Type, herr.Err)
	d.metrics.RecordDrop(ctx, meta.Type)
	if d.drops == nil {
		return
	}

	payload := meta.Raw
	if payload == nil {
		if obj, ok := data.(document.Object); ok {
			payload, _ = document.Marshal(obj)
		}
	}
	rec := droplog.Record{
		ID:        meta.DispatchID,
		EventType: meta.Type,
		Shard:     meta.ShardID,
		Reason:    herr.Err.Error(),
		Payload:   payload,
		DroppedAt: d.now(),
	}
	if err := d.drops.Append(rec); err != nil {
		observability.LogDropLogError(d.logger, meta.Type, err)
	}
}
