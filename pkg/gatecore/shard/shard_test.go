package shard_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/gatecore/pkg/gatecore/cache"
	"github.com/randalmurphal/gatecore/pkg/gatecore/droplog"
	"github.com/randalmurphal/gatecore/pkg/gatecore/entity"
	"github.com/randalmurphal/gatecore/pkg/gatecore/event"
	"github.com/randalmurphal/gatecore/pkg/gatecore/shard"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

const (
	guildCreateFrame   = `{"op":0,"s":1,"t":"GUILD_CREATE","d":{"id":"10","name":"guild","channels":[{"id":"11","name":"general"}]}}`
	typingFrame        = `{"op":0,"s":2,"t":"TYPING_START","d":{"guild_id":"10","channel_id":"11","user_id":"12","timestamp":1700000000}}`
	channelDeleteFrame = `{"op":0,"s":3,"t":"CHANNEL_DELETE","d":{"id":"11","guild_id":"10"}}`
	heartbeatAckFrame  = `{"op":11}`
)

type harness struct {
	memory *cache.Memory
	disp   *event.Dispatcher
	shard  *shard.Shard
}

func newHarness(drops droplog.Store) *harness {
	m := cache.NewMemory()
	d := event.NewDispatcher(m, event.DispatcherConfig{Drops: drops})
	return &harness{
		memory: m,
		disp:   d,
		shard:  shard.New(2, d, cache.NewMaintainer(m, nil), nil),
	}
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := shard.DecodeEnvelope([]byte(typingFrame))
	require.NoError(t, err)
	assert.Equal(t, shard.OpDispatch, env.Op)
	assert.Equal(t, int64(2), env.Seq)
	assert.Equal(t, "TYPING_START", env.Type)
	require.NotNil(t, env.Data)
	_, ok := env.Data.Lookup("user_id")
	assert.True(t, ok)

	env, err = shard.DecodeEnvelope([]byte(`{"op":1,"d":42}`))
	require.NoError(t, err)
	assert.Equal(t, shard.OpHeartbeat, env.Op)
	assert.Nil(t, env.Data)

	_, err = shard.DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
	_, err = shard.DecodeEnvelope([]byte(`{"op":"zero"}`))
	assert.Error(t, err)
}

func TestProcess_CreateAppliedBeforeDispatch(t *testing.T) {
	h := newHarness(nil)

	var delivered, cached *entity.Guild
	event.On(h.disp, event.KindGuildCreate, func(_ context.Context, e *event.GuildCreate) error {
		delivered = e.Guild
		cached = h.memory.FindGuild(e.Guild.ID).OrNil()
		return nil
	})

	require.NoError(t, h.shard.Process(context.Background(), []byte(guildCreateFrame)))
	require.NotNil(t, cached)
	assert.Same(t, cached, delivered, "listeners get the cached guild")
	assert.True(t, h.memory.FindChannel(11).Present())
	assert.Equal(t, int64(1), h.shard.Seq())
}

func TestProcess_DeleteAppliedAfterDispatch(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()
	require.NoError(t, h.shard.Process(ctx, []byte(guildCreateFrame)))

	var deleted *event.ChannelDelete
	var listed []snowflake.ID
	event.On(h.disp, event.KindChannelDelete, func(_ context.Context, e *event.ChannelDelete) error {
		deleted = e
		if g, ok := e.Guild.Get(); ok {
			listed = g.Channels
		}
		return nil
	})

	require.NoError(t, h.shard.Process(ctx, []byte(channelDeleteFrame)))
	require.NotNil(t, deleted, "listener resolves the channel before removal")
	assert.NotNil(t, listed, "guild resolves during dispatch")
	assert.NotContains(t, listed, snowflake.ID(11), "channel is unlinked from its guild before dispatch")
	assert.Equal(t, "general", deleted.Deleted.Name)
	assert.Equal(t, 2, deleted.ShardID)
	assert.Equal(t, channelDeleteFrame, string(deleted.Raw))

	assert.False(t, h.memory.FindChannel(11).Present())
	g, ok := h.memory.FindGuild(10).Get()
	require.True(t, ok)
	assert.Empty(t, g.Channels)
}

func TestProcess_NonDispatchIgnored(t *testing.T) {
	h := newHarness(nil)
	require.NoError(t, h.shard.Process(context.Background(), []byte(heartbeatAckFrame)))
	assert.Equal(t, int64(1), h.shard.Frames())
	assert.Equal(t, int64(0), h.shard.Seq())
}

func TestProcess_MalformedReturnsHydrationError(t *testing.T) {
	drops := droplog.NewMemoryStore()
	h := newHarness(drops)
	event.On(h.disp, event.KindTypingStart, func(context.Context, *event.TypingStart) error {
		t.Error("listener must not run")
		return nil
	})

	frame := `{"op":0,"s":5,"t":"TYPING_START","d":{"channel_id":{},"user_id":"1"}}`
	err := h.shard.Process(context.Background(), []byte(frame))
	var herr *event.HydrationError
	require.ErrorAs(t, err, &herr)

	recs, err := drops.List(0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, frame, string(recs[0].Payload))
	assert.Equal(t, 2, recs[0].Shard)
}

// sliceReader returns frames in order, then io.EOF.
type sliceReader struct {
	frames []string
}

func (r *sliceReader) ReadFrame(context.Context) ([]byte, error) {
	if len(r.frames) == 0 {
		return nil, io.EOF
	}
	f := r.frames[0]
	r.frames = r.frames[1:]
	return []byte(f), nil
}

func TestRun_SkipsBadFrames(t *testing.T) {
	h := newHarness(nil)
	var users []snowflake.ID
	event.On(h.disp, event.KindTypingStart, func(_ context.Context, e *event.TypingStart) error {
		users = append(users, e.UserID)
		return nil
	})

	r := &sliceReader{frames: []string{
		guildCreateFrame,
		"garbage",
		`{"op":0,"t":"TYPING_START","d":{"user_id":false}}`,
		typingFrame,
		heartbeatAckFrame,
	}}
	err := h.shard.Run(context.Background(), r)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []snowflake.ID{12}, users)
	assert.Equal(t, int64(4), h.shard.Frames())
}

func TestRun_ContextCancelled(t *testing.T) {
	h := newHarness(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.shard.Run(ctx, &sliceReader{frames: []string{typingFrame}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Websocket(t *testing.T) {
	frames := []string{guildCreateFrame, heartbeatAckFrame, typingFrame, channelDeleteFrame}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "closed")
		for _, f := range frames {
			if err := conn.Write(r.Context(), websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	h := newHarness(nil)
	var mu sync.Mutex
	var typing []*event.TypingStart
	event.On(h.disp, event.KindTypingStart, func(_ context.Context, e *event.TypingStart) error {
		mu.Lock()
		defer mu.Unlock()
		typing = append(typing, e)
		return nil
	})

	err = h.shard.Run(ctx, shard.NewWebsocketReader(conn))
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
	assert.False(t, errors.Is(err, context.DeadlineExceeded))

	require.Len(t, typing, 1)
	assert.True(t, typing[0].Guild.Present())
	assert.True(t, typing[0].Channel.Present())
	assert.Equal(t, int64(3), h.shard.Seq())
	assert.False(t, h.memory.FindChannel(11).Present())
}
