package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/gatecore/pkg/gatecore/cache"
	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/entity"
	"github.com/randalmurphal/gatecore/pkg/gatecore/event"
	"github.com/randalmurphal/gatecore/pkg/gatecore/shard"
)

const typingFrame = `{"op":0,"s":2,"t":"TYPING_START","d":{"guild_id":"1","channel_id":"2","user_id":"3","timestamp":1700000000}}`

const guildFrame = `{"op":0,"s":1,"t":"GUILD_CREATE","d":{"id":"1","name":"bench","features":["COMMUNITY","NEWS","VERIFIED"],` +
	`"channels":[{"id":"2","name":"a"},{"id":"3","name":"b"},{"id":"4","name":"c"}],` +
	`"roles":[{"id":"5"},{"id":"6"}],"members":[{"user":{"id":"7","username":"u"}}]}}`

func newCache() *cache.Memory {
	m := cache.NewMemory()
	m.PutGuild(&entity.Guild{ID: 1, Name: "bench"})
	m.PutChannel(&entity.Channel{ID: 2, GuildID: 1, Name: "general"})
	m.PutUser(&entity.User{ID: 3, Username: "gopher"})
	return m
}

func parse(b *testing.B, raw string) document.Object {
	obj, err := document.Parse([]byte(raw))
	if err != nil {
		b.Fatal(err)
	}
	return obj
}

// BenchmarkDispatch_NoListeners measures the skip path.
func BenchmarkDispatch_NoListeners(b *testing.B) {
	d := event.NewDispatcher(newCache(), event.DispatcherConfig{})
	env := parse(b, typingFrame)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Dispatch(ctx, event.TypeTypingStart, env)
	}
}

// BenchmarkDispatch_TypingStart measures hydration, lookups and one listener.
func BenchmarkDispatch_TypingStart(b *testing.B) {
	d := event.NewDispatcher(newCache(), event.DispatcherConfig{})
	event.On(d, event.KindTypingStart, func(context.Context, *event.TypingStart) error { return nil })
	env := parse(b, typingFrame)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Dispatch(ctx, event.TypeTypingStart, env)
	}
}

// BenchmarkDispatch_Parallel measures concurrent shards sharing a dispatcher.
func BenchmarkDispatch_Parallel(b *testing.B) {
	d := event.NewDispatcher(newCache(), event.DispatcherConfig{})
	event.On(d, event.KindTypingStart, func(context.Context, *event.TypingStart) error { return nil })
	env := parse(b, typingFrame)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			_ = d.Dispatch(ctx, event.TypeTypingStart, env)
		}
	})
}

// BenchmarkGuildFromDocument measures entity hydration alone.
func BenchmarkGuildFromDocument(b *testing.B) {
	env := parse(b, guildFrame)
	data, _, err := document.Nested(env, "d")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := entity.GuildFromDocument(data); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkShard_Process measures decoding, cache maintenance and dispatch
// of a raw frame.
func BenchmarkShard_Process(b *testing.B) {
	m := newCache()
	d := event.NewDispatcher(m, event.DispatcherConfig{})
	event.On(d, event.KindGuildCreate, func(context.Context, *event.GuildCreate) error { return nil })
	s := shard.New(0, d, cache.NewMaintainer(m, nil), nil)
	raw := []byte(guildFrame)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Process(ctx, raw); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkInviteToDocument measures outbound table evaluation.
func BenchmarkInviteToDocument(b *testing.B) {
	inv := &entity.Invite{MaxUses: 5, Temporary: true, TargetUserID: 9}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = inv.ToDocument()
	}
}
