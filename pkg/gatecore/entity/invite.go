package entity

import (
	"time"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// Invite target types.
const (
	TargetStream              uint8 = 1
	TargetEmbeddedApplication uint8 = 2
)

// Invite is a channel invite.
type Invite struct {
	Code      string
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	InviterID snowflake.ID

	TargetUserID   snowflake.ID
	TargetUserType uint8

	// Server-computed, never sent.
	ApproximatePresenceCount int32
	ApproximateMemberCount   int32

	MaxAge    int32 // seconds, 0 means never expires
	MaxUses   int32 // 0 means unlimited
	Temporary bool
	Unique    bool
	Uses      int32

	CreatedAt time.Time
	ExpiresAt time.Time
}

var inviteFields = []document.Field[Invite]{
	document.Emit("max_age", func(i *Invite) int32 { return i.MaxAge }),
	document.Emit("max_uses", func(i *Invite) int32 { return i.MaxUses }),
	document.Emit("target_user", func(i *Invite) snowflake.ID { return i.TargetUserID }),
	document.Emit("target_user_type", func(i *Invite) uint8 { return i.TargetUserType }),
	document.Emit("temporary", func(i *Invite) bool { return i.Temporary }),
	document.Emit("unique", func(i *Invite) bool { return i.Unique }),
}

// InviteFromDocument hydrates an invite.
//
// Guild, channel, inviter and target user are read from their nested
// objects when present. Gateway invite events carry flat guild_id and
// channel_id keys instead, which are used as a fallback.
func InviteFromDocument(src document.Source) (*Invite, error) {
	r := newReader(src)
	inv := &Invite{
		Code:                     read[string](r, "code"),
		GuildID:                  r.firstRef("guild", "guild_id"),
		ChannelID:                r.firstRef("channel", "channel_id"),
		InviterID:                r.ref("inviter"),
		TargetUserID:             r.ref("target_user"),
		TargetUserType:           read[uint8](r, "target_user_type"),
		ApproximatePresenceCount: read[int32](r, "approximate_presence_count"),
		ApproximateMemberCount:   read[int32](r, "approximate_member_count"),
		MaxAge:                   read[int32](r, "max_age"),
		MaxUses:                  read[int32](r, "max_uses"),
		Temporary:                read[bool](r, "temporary"),
		Unique:                   read[bool](r, "unique"),
		Uses:                     read[int32](r, "uses"),
		CreatedAt:                read[time.Time](r, "created_at"),
		ExpiresAt:                read[time.Time](r, "expires_at"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return inv, nil
}

// ToDocument returns the invite creation payload.
func (i *Invite) ToDocument() document.Object {
	return document.Build(i, inviteFields)
}
