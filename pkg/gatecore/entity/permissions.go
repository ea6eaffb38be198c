package entity

import "github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"

// Permission bits used by the computation below.
const (
	PermCreateInstantInvite uint64 = 1 << 0
	PermKickMembers         uint64 = 1 << 1
	PermBanMembers          uint64 = 1 << 2
	PermAdministrator       uint64 = 1 << 3
	PermManageChannels      uint64 = 1 << 4
	PermManageGuild         uint64 = 1 << 5
	PermViewChannel         uint64 = 1 << 10
	PermSendMessages        uint64 = 1 << 11
	PermManageMessages      uint64 = 1 << 13
	PermConnect             uint64 = 1 << 20
	PermSpeak               uint64 = 1 << 21

	// PermAll is every permission, granted to owners and administrators.
	PermAll = ^uint64(0)
)

// RoleFinder resolves a role by id. It returns nil for unknown roles.
type RoleFinder func(id snowflake.ID) *Role

// BasePermissions returns the guild-wide permissions of member: the
// @everyone role combined with every role the member holds. The owner and
// administrators get PermAll. A nil member has no permissions.
func BasePermissions(g *Guild, m *GuildMember, roles RoleFinder) uint64 {
	if g == nil || m == nil {
		return 0
	}
	if g.OwnerID != 0 && g.OwnerID == m.UserID {
		return PermAll
	}
	var perms uint64
	if everyone := roles(g.ID); everyone != nil {
		perms = everyone.Permissions
	}
	for _, id := range m.Roles {
		if role := roles(id); role != nil {
			perms |= role.Permissions
		}
	}
	if perms&PermAdministrator != 0 {
		return PermAll
	}
	return perms
}

// ChannelPermissions applies the overwrites of c to base: the @everyone
// overwrite first, then the combined overwrites of the member's roles,
// then the member's own overwrite.
func ChannelPermissions(base uint64, g *Guild, m *GuildMember, c *Channel) uint64 {
	if base&PermAdministrator != 0 {
		return PermAll
	}
	if g == nil || m == nil || c == nil {
		return 0
	}

	perms := base
	if ow, ok := c.overwrite(g.ID, OverwriteRole); ok {
		perms &^= ow.Deny
		perms |= ow.Allow
	}

	var allow, deny uint64
	for _, id := range m.Roles {
		if id == g.ID {
			continue
		}
		if ow, ok := c.overwrite(id, OverwriteRole); ok {
			allow |= ow.Allow
			deny |= ow.Deny
		}
	}
	perms &^= deny
	perms |= allow

	if ow, ok := c.overwrite(m.UserID, OverwriteMember); ok {
		perms &^= ow.Deny
		perms |= ow.Allow
	}
	return perms
}
