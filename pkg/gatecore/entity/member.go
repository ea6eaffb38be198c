package entity

import (
	"strings"
	"time"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// MemberFlags is a bitmask of guild member state.
type MemberFlags uint8

// Member flag bits.
const (
	MemberDeaf MemberFlags = 1 << iota
	MemberMute
	MemberPending
	MemberAnimatedAvatar
)

// GuildMember is a user's guild-specific profile.
type GuildMember struct {
	GuildID      snowflake.ID
	UserID       snowflake.ID
	Nickname     string
	Avatar       string
	Roles        []snowflake.ID
	JoinedAt     time.Time
	PremiumSince time.Time
	Flags        MemberFlags
}

var memberFields = []document.Field[GuildMember]{
	document.Emit("nick", func(m *GuildMember) string { return m.Nickname }),
	document.EmitList("roles", func(m *GuildMember) []snowflake.ID { return m.Roles }),
	document.Emit("mute", func(m *GuildMember) bool { return m.IsMuted() }),
	document.Emit("deaf", func(m *GuildMember) bool { return m.IsDeaf() }),
}

// GuildMemberFromDocument hydrates a member of guildID.
// The user id is taken from the nested user object.
func GuildMemberFromDocument(src document.Source, guildID snowflake.ID) (*GuildMember, error) {
	r := newReader(src)
	m := &GuildMember{
		GuildID:      guildID,
		UserID:       r.ref("user"),
		Nickname:     read[string](r, "nick"),
		Roles:        r.ids("roles"),
		JoinedAt:     read[time.Time](r, "joined_at"),
		PremiumSince: read[time.Time](r, "premium_since"),
	}
	if avatar := read[string](r, "avatar"); avatar != "" {
		if strings.HasPrefix(avatar, "a_") {
			m.Flags |= MemberAnimatedAvatar
		}
		m.Avatar = avatar
	}
	if read[bool](r, "deaf") {
		m.Flags |= MemberDeaf
	}
	if read[bool](r, "mute") {
		m.Flags |= MemberMute
	}
	if read[bool](r, "pending") {
		m.Flags |= MemberPending
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// ToDocument returns the member modification payload.
func (m *GuildMember) ToDocument() document.Object {
	return document.Build(m, memberFields)
}

// IsDeaf reports whether the member is server deafened.
func (m *GuildMember) IsDeaf() bool { return m.Flags&MemberDeaf != 0 }

// IsMuted reports whether the member is server muted.
func (m *GuildMember) IsMuted() bool { return m.Flags&MemberMute != 0 }

// IsPending reports whether the member has not passed membership screening.
func (m *GuildMember) IsPending() bool { return m.Flags&MemberPending != 0 }
