package cache

import (
	"github.com/randalmurphal/gatecore/pkg/gatecore/entity"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// Finder is the lookup contract the dispatcher needs.
// Implementations must be safe for concurrent use and must never return
// an entity that is still being written.
type Finder interface {
	FindGuild(id snowflake.ID) Ref[entity.Guild]
	FindChannel(id snowflake.ID) Ref[entity.Channel]
	FindUser(id snowflake.ID) Ref[entity.User]
}

// MemberKey identifies a guild member.
type MemberKey struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// Stats reports entity counts.
type Stats struct {
	Guilds   int
	Channels int
	Users    int
	Roles    int
	Members  int
}

// Memory is the in-process entity cache.
type Memory struct {
	guilds   *Store[snowflake.ID, entity.Guild]
	channels *Store[snowflake.ID, entity.Channel]
	users    *Store[snowflake.ID, entity.User]
	roles    *Store[snowflake.ID, entity.Role]
	members  *Store[MemberKey, entity.GuildMember]
}

// Compile-time interface check.
var _ Finder = (*Memory)(nil)

// NewMemory creates an empty cache.
func NewMemory() *Memory {
	return &Memory{
		guilds:   NewStore[snowflake.ID, entity.Guild](),
		channels: NewStore[snowflake.ID, entity.Channel](),
		users:    NewStore[snowflake.ID, entity.User](),
		roles:    NewStore[snowflake.ID, entity.Role](),
		members:  NewStore[MemberKey, entity.GuildMember](),
	}
}

// FindGuild implements Finder.
func (m *Memory) FindGuild(id snowflake.ID) Ref[entity.Guild] {
	return m.guilds.Find(id)
}

// FindChannel implements Finder.
func (m *Memory) FindChannel(id snowflake.ID) Ref[entity.Channel] {
	return m.channels.Find(id)
}

// FindUser implements Finder.
func (m *Memory) FindUser(id snowflake.ID) Ref[entity.User] {
	return m.users.Find(id)
}

// FindRole returns a cached role.
func (m *Memory) FindRole(id snowflake.ID) Ref[entity.Role] {
	return m.roles.Find(id)
}

// FindMember returns the member userID of guildID.
func (m *Memory) FindMember(guildID, userID snowflake.ID) Ref[entity.GuildMember] {
	if guildID == 0 || userID == 0 {
		return None[entity.GuildMember]()
	}
	return m.members.Find(MemberKey{GuildID: guildID, UserID: userID})
}

// PutGuild stores g. The caller must not modify g afterwards.
func (m *Memory) PutGuild(g *entity.Guild) bool {
	if g == nil {
		return false
	}
	return m.guilds.Put(g.ID, g)
}

// PutChannel stores c. The caller must not modify c afterwards.
func (m *Memory) PutChannel(c *entity.Channel) bool {
	if c == nil {
		return false
	}
	return m.channels.Put(c.ID, c)
}

// PutUser stores u. The caller must not modify u afterwards.
func (m *Memory) PutUser(u *entity.User) bool {
	if u == nil {
		return false
	}
	return m.users.Put(u.ID, u)
}

// PutRole stores r. The caller must not modify r afterwards.
func (m *Memory) PutRole(r *entity.Role) bool {
	if r == nil {
		return false
	}
	return m.roles.Put(r.ID, r)
}

// PutMember stores gm. It reports false when either id is zero.
// The caller must not modify gm afterwards.
func (m *Memory) PutMember(gm *entity.GuildMember) bool {
	if gm == nil || gm.GuildID == 0 || gm.UserID == 0 {
		return false
	}
	return m.members.Put(MemberKey{GuildID: gm.GuildID, UserID: gm.UserID}, gm)
}

// RemoveGuild deletes a guild.
func (m *Memory) RemoveGuild(id snowflake.ID) Ref[entity.Guild] {
	return m.guilds.Remove(id)
}

// RemoveChannel deletes a channel.
func (m *Memory) RemoveChannel(id snowflake.ID) Ref[entity.Channel] {
	return m.channels.Remove(id)
}

// RemoveUser deletes a user.
func (m *Memory) RemoveUser(id snowflake.ID) Ref[entity.User] {
	return m.users.Remove(id)
}

// RemoveRole deletes a role.
func (m *Memory) RemoveRole(id snowflake.ID) Ref[entity.Role] {
	return m.roles.Remove(id)
}

// RemoveMember deletes the member userID of guildID.
func (m *Memory) RemoveMember(guildID, userID snowflake.ID) Ref[entity.GuildMember] {
	return m.members.Remove(MemberKey{GuildID: guildID, UserID: userID})
}

// removeGuildMembers drops every member of guildID.
func (m *Memory) removeGuildMembers(guildID snowflake.ID) int {
	return m.members.RemoveFunc(func(key MemberKey, _ *entity.GuildMember) bool {
		return key.GuildID == guildID
	})
}

// BasePermissions returns the guild-wide permissions of userID in guildID.
// It is zero when the guild or the member is not cached.
func (m *Memory) BasePermissions(guildID, userID snowflake.ID) uint64 {
	g := m.FindGuild(guildID).OrNil()
	gm := m.FindMember(guildID, userID).OrNil()
	return entity.BasePermissions(g, gm, m.findRole)
}

// ChannelPermissions returns the permissions of userID in channelID after
// channel overwrites. It is zero when the channel, its guild or the member
// is not cached.
func (m *Memory) ChannelPermissions(channelID, userID snowflake.ID) uint64 {
	c, ok := m.FindChannel(channelID).Get()
	if !ok {
		return 0
	}
	g := m.FindGuild(c.GuildID).OrNil()
	gm := m.FindMember(c.GuildID, userID).OrNil()
	base := entity.BasePermissions(g, gm, m.findRole)
	return entity.ChannelPermissions(base, g, gm, c)
}

func (m *Memory) findRole(id snowflake.ID) *entity.Role {
	return m.roles.Find(id).OrNil()
}

// Stats returns current entity counts.
func (m *Memory) Stats() Stats {
	return Stats{
		Guilds:   m.guilds.Len(),
		Channels: m.channels.Len(),
		Users:    m.users.Len(),
		Roles:    m.roles.Len(),
		Members:  m.members.Len(),
	}
}
