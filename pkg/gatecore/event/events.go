package event

import (
	"time"

	"github.com/randalmurphal/gatecore/pkg/gatecore/cache"
	"github.com/randalmurphal/gatecore/pkg/gatecore/entity"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// Meta describes one dispatch.
type Meta struct {
	DispatchID string
	Type       string
	ShardID    int
	ReceivedAt time.Time
	// Raw is the undecoded frame when the shard supplied it.
	Raw []byte
}

// TypingStart is sent when a user starts typing in a channel.
type TypingStart struct {
	Meta
	Guild     cache.Ref[entity.Guild]
	Channel   cache.Ref[entity.Channel]
	UserID    snowflake.ID
	User      cache.Ref[entity.User]
	Timestamp time.Time
}

// ChannelDelete is sent when a cached channel is deleted.
// Deleted is the cached channel as it was before removal.
type ChannelDelete struct {
	Meta
	Deleted *entity.Channel
	Guild   cache.Ref[entity.Guild]
}

// GuildCreate is sent when a guild becomes available to the client.
type GuildCreate struct {
	Meta
	Guild *entity.Guild
}

// InviteCreate is sent when an invite is created.
type InviteCreate struct {
	Meta
	Invite  *entity.Invite
	Guild   cache.Ref[entity.Guild]
	Channel cache.Ref[entity.Channel]
}

// InviteDelete is sent when an invite is deleted or expires.
type InviteDelete struct {
	Meta
	Code      string
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Guild     cache.Ref[entity.Guild]
	Channel   cache.Ref[entity.Channel]
}
