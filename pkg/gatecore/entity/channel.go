package entity

import (
	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// Channel types.
const (
	ChannelText     uint8 = 0
	ChannelDM       uint8 = 1
	ChannelVoice    uint8 = 2
	ChannelGroupDM  uint8 = 3
	ChannelCategory uint8 = 4
	ChannelNews     uint8 = 5
	ChannelStage    uint8 = 13
)

// Permission overwrite targets.
const (
	OverwriteRole   uint8 = 0
	OverwriteMember uint8 = 1
)

// PermissionOverwrite adjusts permissions in one channel for a role or a
// member.
type PermissionOverwrite struct {
	ID    snowflake.ID
	Type  uint8
	Allow uint64
	Deny  uint64
}

// Channel is a guild or direct-message channel.
type Channel struct {
	ID               snowflake.ID
	GuildID          snowflake.ID
	ParentID         snowflake.ID
	LastMessageID    snowflake.ID
	Type             uint8
	Name             string
	Topic            string
	Position         int32
	NSFW             bool
	RateLimitPerUser uint16
	Bitrate          uint32
	UserLimit        uint8

	PermissionOverwrites []PermissionOverwrite
}

var channelFields = []document.Field[Channel]{
	document.Emit("name", func(c *Channel) string { return c.Name }),
	document.Emit("type", func(c *Channel) uint8 { return c.Type }),
	document.Emit("topic", func(c *Channel) string { return c.Topic }),
	document.Emit("position", func(c *Channel) int32 { return c.Position }),
	document.Emit("parent_id", func(c *Channel) snowflake.ID { return c.ParentID }),
	document.Emit("nsfw", func(c *Channel) bool { return c.NSFW }),
	document.Emit("rate_limit_per_user", func(c *Channel) uint16 { return c.RateLimitPerUser }),
	document.Emit("bitrate", func(c *Channel) uint32 { return c.Bitrate }),
	document.Emit("user_limit", func(c *Channel) uint8 { return c.UserLimit }),
}

// ChannelFromDocument hydrates a channel.
func ChannelFromDocument(src document.Source) (*Channel, error) {
	r := newReader(src)
	c := &Channel{
		ID:               read[snowflake.ID](r, "id"),
		GuildID:          read[snowflake.ID](r, "guild_id"),
		ParentID:         read[snowflake.ID](r, "parent_id"),
		LastMessageID:    read[snowflake.ID](r, "last_message_id"),
		Type:             read[uint8](r, "type"),
		Name:             read[string](r, "name"),
		Topic:            read[string](r, "topic"),
		Position:         read[int32](r, "position"),
		NSFW:             read[bool](r, "nsfw"),
		RateLimitPerUser: read[uint16](r, "rate_limit_per_user"),
		Bitrate:          read[uint32](r, "bitrate"),
		UserLimit:        read[uint8](r, "user_limit"),
	}
	for _, od := range r.objects("permission_overwrites") {
		owr := newReader(od)
		ow := PermissionOverwrite{
			ID:    read[snowflake.ID](owr, "id"),
			Type:  read[uint8](owr, "type"),
			Allow: read[uint64](owr, "allow"),
			Deny:  read[uint64](owr, "deny"),
		}
		if owr.err != nil {
			r.err = owr.err
			break
		}
		c.PermissionOverwrites = append(c.PermissionOverwrites, ow)
	}
	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

// ToDocument returns the channel modification payload.
func (c *Channel) ToDocument() document.Object {
	return document.Build(c, channelFields)
}

func (c *Channel) overwrite(id snowflake.ID, typ uint8) (PermissionOverwrite, bool) {
	for _, ow := range c.PermissionOverwrites {
		if ow.ID == id && ow.Type == typ {
			return ow, true
		}
	}
	return PermissionOverwrite{}, false
}

// IsVoice reports whether the channel carries voice.
func (c *Channel) IsVoice() bool {
	return c.Type == ChannelVoice || c.Type == ChannelStage
}
