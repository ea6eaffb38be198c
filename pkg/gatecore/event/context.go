package event

import "context"

type contextKey string

const (
	shardKey contextKey = "shard_id"
	rawKey   contextKey = "raw_frame"
)

// WithShard returns a context carrying the id of the dispatching shard.
func WithShard(ctx context.Context, shardID int) context.Context {
	return context.WithValue(ctx, shardKey, shardID)
}

// ShardFrom returns the shard id stored by WithShard, or 0.
func ShardFrom(ctx context.Context) int {
	if v, ok := ctx.Value(shardKey).(int); ok {
		return v
	}
	return 0
}

// WithRaw returns a context carrying the undecoded frame.
func WithRaw(ctx context.Context, raw []byte) context.Context {
	return context.WithValue(ctx, rawKey, raw)
}

// RawFrom returns the frame stored by WithRaw.
func RawFrom(ctx context.Context) []byte {
	raw, _ := ctx.Value(rawKey).([]byte)
	return raw
}
