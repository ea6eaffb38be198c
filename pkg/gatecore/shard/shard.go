package shard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/coder/websocket"

	"github.com/randalmurphal/gatecore/pkg/gatecore/cache"
	"github.com/randalmurphal/gatecore/pkg/gatecore/event"
	"github.com/randalmurphal/gatecore/pkg/gatecore/observability"
)

// FrameReader yields raw gateway frames.
type FrameReader interface {
	ReadFrame(ctx context.Context) ([]byte, error)
}

// WebsocketReader reads frames from a websocket connection.
type WebsocketReader struct {
	conn *websocket.Conn
}

// NewWebsocketReader wraps conn.
func NewWebsocketReader(conn *websocket.Conn) *WebsocketReader {
	return &WebsocketReader{conn: conn}
}

// ReadFrame implements FrameReader.
func (r *WebsocketReader) ReadFrame(ctx context.Context) ([]byte, error) {
	typ, data, err := r.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, fmt.Errorf("unsupported websocket message type %v", typ)
	}
	return data, nil
}

// Shard processes the frames of one gateway connection.
//
// Frames are handled one at a time: listeners run on the shard's goroutine,
// so a slow listener delays every later frame of this shard (but not of
// other shards) until it returns.
type Shard struct {
	id         int
	dispatcher *event.Dispatcher
	maintainer *cache.Maintainer
	logger     *slog.Logger

	seq    atomic.Int64
	frames atomic.Int64
}

// New creates shard id. maintainer and logger may be nil.
func New(id int, dispatcher *event.Dispatcher, maintainer *cache.Maintainer, logger *slog.Logger) *Shard {
	return &Shard{
		id:         id,
		dispatcher: dispatcher,
		maintainer: maintainer,
		logger:     observability.EnrichLogger(logger, id),
	}
}

// ID returns the shard id.
func (s *Shard) ID() int { return s.id }

// Seq returns the last sequence number seen, for resuming.
func (s *Shard) Seq() int64 { return s.seq.Load() }

// Frames returns the number of frames decoded.
func (s *Shard) Frames() int64 { return s.frames.Load() }

// Process handles one frame.
//
// Cache updates for creates and updates are applied before dispatch so
// listeners can resolve the new entity. Deletes are detached from their
// parent before dispatch and removed after it, so listeners can still
// resolve the entity being removed.
func (s *Shard) Process(ctx context.Context, raw []byte) error {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	s.frames.Add(1)
	if env.Seq > 0 {
		s.seq.Store(env.Seq)
	}
	if env.Op != OpDispatch {
		return nil
	}

	ctx = event.WithRaw(event.WithShard(ctx, s.id), raw)
	maintain := s.maintainer != nil && s.maintainer.Handles(env.Type)
	before := maintain && s.maintainer.Precedes(env.Type)

	// Errors are logged by the maintainer; dispatch still runs.
	if before {
		_ = s.maintainer.Apply(ctx, env.Type, env.Data)
	} else if maintain {
		_ = s.maintainer.Detach(ctx, env.Type, env.Data)
	}
	err = s.dispatcher.Dispatch(ctx, env.Type, env.Frame())
	if maintain && !before {
		_ = s.maintainer.Apply(ctx, env.Type, env.Data)
	}
	return err
}

// Run reads and processes frames until the reader fails or ctx ends.
// Undecodable frames and dropped events are logged and skipped.
func (s *Shard) Run(ctx context.Context, r FrameReader) error {
	observability.LogShardStart(s.logger, s.id)
	for {
		if err := ctx.Err(); err != nil {
			observability.LogShardStop(s.logger, s.id, s.Frames(), nil)
			return err
		}
		raw, err := r.ReadFrame(ctx)
		if err != nil {
			observability.LogShardStop(s.logger, s.id, s.Frames(), err)
			return err
		}
		if err := s.Process(ctx, raw); err != nil {
			var herr *event.HydrationError
			if !errors.As(err, &herr) && s.logger != nil {
				s.logger.WarnContext(ctx, "frame skipped", slog.String("error", err.Error()))
			}
		}
	}
}
