package cache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/entity"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// Gateway event types the maintainer applies.
const (
	typeGuildCreate       = "GUILD_CREATE"
	typeGuildUpdate       = "GUILD_UPDATE"
	typeGuildDelete       = "GUILD_DELETE"
	typeChannelCreate     = "CHANNEL_CREATE"
	typeChannelUpdate     = "CHANNEL_UPDATE"
	typeChannelDelete     = "CHANNEL_DELETE"
	typeGuildMemberAdd    = "GUILD_MEMBER_ADD"
	typeGuildMemberUpdate = "GUILD_MEMBER_UPDATE"
	typeGuildMemberRemove = "GUILD_MEMBER_REMOVE"
	typeGuildRoleCreate   = "GUILD_ROLE_CREATE"
	typeGuildRoleUpdate   = "GUILD_ROLE_UPDATE"
	typeGuildRoleDelete   = "GUILD_ROLE_DELETE"
)

// Maintainer keeps a Memory cache in step with gateway events.
//
// It is the only writer of the cache on the event path and runs outside
// dispatch: the shard calls Apply before dispatch for creates and updates
// and after dispatch for deletes, so delete listeners can still resolve
// the entity being removed. For deletes the shard calls Detach before
// dispatch, which unlinks the entity from its parent while leaving it
// resolvable.
type Maintainer struct {
	cache  *Memory
	logger *slog.Logger
}

// NewMaintainer creates a maintainer for c. logger may be nil.
func NewMaintainer(c *Memory, logger *slog.Logger) *Maintainer {
	return &Maintainer{cache: c, logger: logger}
}

// Handles reports whether eventType changes the cache.
func (m *Maintainer) Handles(eventType string) bool {
	switch eventType {
	case typeGuildCreate, typeGuildUpdate, typeGuildDelete,
		typeChannelCreate, typeChannelUpdate, typeChannelDelete,
		typeGuildMemberAdd, typeGuildMemberUpdate, typeGuildMemberRemove,
		typeGuildRoleCreate, typeGuildRoleUpdate, typeGuildRoleDelete:
		return true
	}
	return false
}

// Precedes reports whether eventType must be applied before dispatch.
func (m *Maintainer) Precedes(eventType string) bool {
	switch eventType {
	case typeGuildDelete, typeChannelDelete, typeGuildMemberRemove, typeGuildRoleDelete:
		return false
	}
	return true
}

// Detach runs before dispatch of a delete event. A deleted channel is
// taken out of its guild's channel list but stays resolvable by id until
// Apply removes it. Other events are left alone.
func (m *Maintainer) Detach(ctx context.Context, eventType string, data document.Source) error {
	if eventType != typeChannelDelete {
		return nil
	}
	return m.report(ctx, eventType, m.unlinkChannel(data))
}

// Apply updates the cache from the event data sub-document.
// A malformed payload leaves the cache unchanged.
func (m *Maintainer) Apply(ctx context.Context, eventType string, data document.Source) error {
	var err error
	switch eventType {
	case typeGuildCreate:
		err = m.guildCreate(data)
	case typeGuildUpdate:
		err = m.guildUpdate(data)
	case typeGuildDelete:
		err = m.guildDelete(data)
	case typeChannelCreate, typeChannelUpdate:
		err = m.channelUpsert(data)
	case typeChannelDelete:
		err = m.channelDelete(data)
	case typeGuildMemberAdd, typeGuildMemberUpdate:
		err = m.memberUpsert(data, eventType == typeGuildMemberAdd)
	case typeGuildMemberRemove:
		err = m.memberRemove(data)
	case typeGuildRoleCreate, typeGuildRoleUpdate:
		err = m.roleUpsert(data)
	case typeGuildRoleDelete:
		err = m.roleDelete(data)
	default:
		return nil
	}
	return m.report(ctx, eventType, err)
}

func (m *Maintainer) report(ctx context.Context, eventType string, err error) error {
	if err == nil {
		return nil
	}
	if m.logger != nil {
		m.logger.WarnContext(ctx, "cache update skipped",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
	return fmt.Errorf("apply %s: %w", eventType, err)
}

func (m *Maintainer) guildCreate(data document.Source) error {
	g, err := entity.GuildFromDocument(data)
	if err != nil {
		return err
	}

	// Hydrate every child before touching the cache so a malformed child
	// leaves no partial guild behind.
	channelDocs, err := document.Objects(data, "channels")
	if err != nil {
		return err
	}
	channels := make([]*entity.Channel, 0, len(channelDocs))
	for _, cd := range channelDocs {
		c, err := entity.ChannelFromDocument(cd)
		if err != nil {
			return err
		}
		c.GuildID = g.ID
		channels = append(channels, c)
	}

	roles, err := hydrateRoles(data, g.ID)
	if err != nil {
		return err
	}

	memberDocs, err := document.Objects(data, "members")
	if err != nil {
		return err
	}
	members := make([]*entity.GuildMember, 0, len(memberDocs))
	users := make([]*entity.User, 0, len(memberDocs))
	for _, md := range memberDocs {
		gm, u, err := hydrateMember(md, g.ID)
		if err != nil {
			return err
		}
		if u != nil {
			users = append(users, u)
		}
		members = append(members, gm)
	}

	for _, c := range channels {
		m.cache.PutChannel(c)
	}
	for _, r := range roles {
		m.cache.PutRole(r)
	}
	for _, u := range users {
		m.cache.PutUser(u)
	}
	for _, gm := range members {
		m.cache.PutMember(gm)
	}
	m.cache.PutGuild(g)
	return nil
}

// guildUpdate overlays a partial guild update on the cached guild, so
// fields the update omits keep their cached value.
func (m *Maintainer) guildUpdate(data document.Source) error {
	id, err := document.Get[snowflake.ID](data, "id")
	if err != nil {
		return err
	}
	var g *entity.Guild
	if prev, ok := m.cache.FindGuild(id).Get(); ok {
		g, err = prev.UpdateFromDocument(data)
	} else {
		g, err = entity.GuildFromDocument(data)
	}
	if err != nil {
		return err
	}
	roles, err := hydrateRoles(data, g.ID)
	if err != nil {
		return err
	}
	for _, r := range roles {
		m.cache.PutRole(r)
	}
	m.cache.PutGuild(g)
	return nil
}

// guildDelete marks the guild unavailable during an outage, otherwise
// removes it along with its channels, roles and members.
func (m *Maintainer) guildDelete(data document.Source) error {
	id, err := document.Get[snowflake.ID](data, "id")
	if err != nil {
		return err
	}
	unavailable, err := document.Get[bool](data, "unavailable")
	if err != nil {
		return err
	}

	prev, ok := m.cache.FindGuild(id).Get()
	if !ok {
		return nil
	}
	if unavailable {
		g := prev.Clone()
		g.Flags |= entity.GuildUnavailable
		m.cache.PutGuild(g)
		return nil
	}
	for _, cid := range prev.Channels {
		m.cache.RemoveChannel(cid)
	}
	for _, rid := range prev.Roles {
		m.cache.RemoveRole(rid)
	}
	m.cache.removeGuildMembers(id)
	m.cache.RemoveGuild(id)
	return nil
}

func (m *Maintainer) channelUpsert(data document.Source) error {
	c, err := entity.ChannelFromDocument(data)
	if err != nil {
		return err
	}
	m.cache.PutChannel(c)

	g, ok := m.cache.FindGuild(c.GuildID).Get()
	if !ok || slices.Contains(g.Channels, c.ID) {
		return nil
	}
	updated := g.Clone()
	updated.Channels = append(updated.Channels, c.ID)
	m.cache.PutGuild(updated)
	return nil
}

// unlinkChannel removes a channel id from its guild's channel list.
func (m *Maintainer) unlinkChannel(data document.Source) error {
	id, err := document.Get[snowflake.ID](data, "id")
	if err != nil {
		return err
	}
	c, ok := m.cache.FindChannel(id).Get()
	if !ok {
		return nil
	}
	g, ok := m.cache.FindGuild(c.GuildID).Get()
	if !ok || !slices.Contains(g.Channels, id) {
		return nil
	}
	updated := g.Clone()
	updated.Channels = slices.DeleteFunc(updated.Channels, func(cid snowflake.ID) bool {
		return cid == id
	})
	m.cache.PutGuild(updated)
	return nil
}

func (m *Maintainer) channelDelete(data document.Source) error {
	if err := m.unlinkChannel(data); err != nil {
		return err
	}
	id, err := document.Get[snowflake.ID](data, "id")
	if err != nil {
		return err
	}
	m.cache.RemoveChannel(id)
	return nil
}

// memberUpsert stores a member and its user. A new member bumps the
// guild's member count.
func (m *Maintainer) memberUpsert(data document.Source, added bool) error {
	guildID, err := document.Get[snowflake.ID](data, "guild_id")
	if err != nil {
		return err
	}
	gm, u, err := hydrateMember(data, guildID)
	if err != nil {
		return err
	}
	if u != nil {
		m.cache.PutUser(u)
	}
	m.cache.PutMember(gm)

	if !added {
		return nil
	}
	if g, ok := m.cache.FindGuild(guildID).Get(); ok {
		updated := g.Clone()
		updated.MemberCount++
		m.cache.PutGuild(updated)
	}
	return nil
}

func (m *Maintainer) memberRemove(data document.Source) error {
	guildID, err := document.Get[snowflake.ID](data, "guild_id")
	if err != nil {
		return err
	}
	userID, err := document.Ref(data, "user")
	if err != nil {
		return err
	}
	if !m.cache.RemoveMember(guildID, userID).Present() {
		return nil
	}
	if g, ok := m.cache.FindGuild(guildID).Get(); ok && g.MemberCount > 0 {
		updated := g.Clone()
		updated.MemberCount--
		m.cache.PutGuild(updated)
	}
	return nil
}

func (m *Maintainer) roleUpsert(data document.Source) error {
	guildID, err := document.Get[snowflake.ID](data, "guild_id")
	if err != nil {
		return err
	}
	rd, ok, err := document.Nested(data, "role")
	if err != nil || !ok {
		return err
	}
	r, err := entity.RoleFromDocument(rd, guildID)
	if err != nil {
		return err
	}
	m.cache.PutRole(r)

	g, ok := m.cache.FindGuild(guildID).Get()
	if !ok || slices.Contains(g.Roles, r.ID) {
		return nil
	}
	updated := g.Clone()
	updated.Roles = append(updated.Roles, r.ID)
	m.cache.PutGuild(updated)
	return nil
}

func (m *Maintainer) roleDelete(data document.Source) error {
	guildID, err := document.Get[snowflake.ID](data, "guild_id")
	if err != nil {
		return err
	}
	roleID, err := document.Get[snowflake.ID](data, "role_id")
	if err != nil {
		return err
	}
	m.cache.RemoveRole(roleID)

	g, ok := m.cache.FindGuild(guildID).Get()
	if !ok || !slices.Contains(g.Roles, roleID) {
		return nil
	}
	updated := g.Clone()
	updated.Roles = slices.DeleteFunc(updated.Roles, func(id snowflake.ID) bool {
		return id == roleID
	})
	m.cache.PutGuild(updated)
	return nil
}

func hydrateRoles(data document.Source, guildID snowflake.ID) ([]*entity.Role, error) {
	docs, err := document.Objects(data, "roles")
	if err != nil {
		return nil, err
	}
	roles := make([]*entity.Role, 0, len(docs))
	for _, rd := range docs {
		r, err := entity.RoleFromDocument(rd, guildID)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, nil
}

// hydrateMember reads a member and, when present, its nested user.
func hydrateMember(src document.Source, guildID snowflake.ID) (*entity.GuildMember, *entity.User, error) {
	gm, err := entity.GuildMemberFromDocument(src, guildID)
	if err != nil {
		return nil, nil, err
	}
	ud, ok, err := document.Nested(src, "user")
	if err != nil || !ok {
		return gm, nil, err
	}
	u, err := entity.UserFromDocument(ud)
	if err != nil {
		return nil, nil, err
	}
	return gm, u, nil
}
