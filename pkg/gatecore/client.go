package gatecore

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/randalmurphal/gatecore/pkg/gatecore/cache"
	"github.com/randalmurphal/gatecore/pkg/gatecore/config"
	"github.com/randalmurphal/gatecore/pkg/gatecore/droplog"
	"github.com/randalmurphal/gatecore/pkg/gatecore/event"
	"github.com/randalmurphal/gatecore/pkg/gatecore/observability"
	"github.com/randalmurphal/gatecore/pkg/gatecore/shard"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	drops           droplog.Store
	metrics         observability.MetricsRecorder
	spans           observability.SpanManager
	onListenerError func(*event.ListenerError)
}

// WithLogger sets the logger. Default: a text logger on stderr at the
// configured level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDropLog sets the drop log, overriding config.Client.DropLogPath.
// The client closes it on Close.
func WithDropLog(store droplog.Store) Option {
	return func(o *options) {
		o.drops = store
	}
}

// WithMetrics sets the metrics recorder, overriding config.Client.Metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithSpans sets the span manager, overriding config.Client.Tracing.
func WithSpans(s observability.SpanManager) Option {
	return func(o *options) {
		o.spans = s
	}
}

// WithListenerErrorHook is called for every failed listener.
func WithListenerErrorHook(fn func(*event.ListenerError)) Option {
	return func(o *options) {
		o.onListenerError = fn
	}
}

// Client owns the cache, dispatcher and drop log shared by its shards.
type Client struct {
	cfg        config.Client
	logger     *slog.Logger
	cache      *cache.Memory
	maintainer *cache.Maintainer
	dispatcher *event.Dispatcher
	drops      droplog.Store

	mu     sync.Mutex
	shards map[int]*shard.Shard
	closed bool
}

// New creates a client from cfg.
func New(cfg config.Client, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	}
	if o.metrics == nil {
		o.metrics = observability.NoopMetrics{}
		if cfg.Metrics {
			o.metrics = observability.NewMetricsRecorder()
		}
	}
	if o.spans == nil {
		o.spans = observability.NoopSpanManager{}
		if cfg.Tracing {
			o.spans = observability.NewSpanManager()
		}
	}
	if o.drops == nil {
		drops, err := openDropLog(cfg)
		if err != nil {
			return nil, err
		}
		o.drops = drops
	}

	mem := cache.NewMemory()
	return &Client{
		cfg:        cfg,
		logger:     o.logger,
		cache:      mem,
		maintainer: cache.NewMaintainer(mem, o.logger),
		dispatcher: event.NewDispatcher(mem, event.DispatcherConfig{
			Logger:          o.logger,
			Metrics:         o.metrics,
			Spans:           o.spans,
			Drops:           o.drops,
			OnListenerError: o.onListenerError,
		}),
		drops:  o.drops,
		shards: make(map[int]*shard.Shard),
	}, nil
}

func openDropLog(cfg config.Client) (droplog.Store, error) {
	if cfg.DropLogPath == "" {
		return droplog.NewMemoryStore(droplog.WithMaxRecords(cfg.DropLogMaxRecords)), nil
	}
	store, err := droplog.NewSQLiteStore(cfg.DropLogPath)
	if err != nil {
		return nil, fmt.Errorf("open drop log: %w", err)
	}
	return store, nil
}

// Dispatcher returns the dispatcher listeners register with.
func (c *Client) Dispatcher() *event.Dispatcher { return c.dispatcher }

// Cache returns the entity cache.
func (c *Client) Cache() *cache.Memory { return c.cache }

// DropLog returns the drop log.
func (c *Client) DropLog() droplog.Store { return c.drops }

// Config returns the client settings.
func (c *Client) Config() config.Client { return c.cfg }

// Shard returns shard id, creating it on first use. All shards share the
// client's cache and dispatcher.
func (c *Client) Shard(id int) *shard.Shard {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.shards[id]; ok {
		return s
	}
	s := shard.New(id, c.dispatcher, c.maintainer, c.logger)
	c.shards[id] = s
	return s
}

// PruneDrops removes drop records older than the configured retention.
// It is a no-op when retention is zero.
func (c *Client) PruneDrops() (int, error) {
	if c.cfg.DropRetention <= 0 {
		return 0, nil
	}
	return c.drops.Prune(time.Now().Add(-c.cfg.DropRetention))
}

// Close releases the drop log. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.drops.Close()
}
