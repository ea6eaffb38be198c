package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/gatecore/pkg/gatecore/cache"
	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/entity"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

func parse(t *testing.T, raw string) document.Object {
	t.Helper()
	obj, err := document.Parse([]byte(raw))
	require.NoError(t, err)
	return obj
}

const guildCreate = `{
	"id": "100",
	"name": "guild",
	"channels": [{"id": "101", "name": "general"}, {"id": "102", "name": "voice", "type": 2}],
	"members": [{"user": {"id": "200", "username": "alice"}}, {"nick": "no user"}]
}`

func TestMaintainer_GuildCreate(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()

	require.True(t, mt.Handles("GUILD_CREATE"))
	require.True(t, mt.Precedes("GUILD_CREATE"))
	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, guildCreate)))

	g, ok := m.FindGuild(100).Get()
	require.True(t, ok)
	assert.Equal(t, []snowflake.ID{101, 102}, g.Channels)

	c, ok := m.FindChannel(101).Get()
	require.True(t, ok)
	assert.Equal(t, snowflake.ID(100), c.GuildID, "guild id is stamped on child channels")

	u, ok := m.FindUser(200).Get()
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
}

func TestMaintainer_GuildCreateMalformedLeavesCacheUntouched(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)

	err := mt.Apply(context.Background(), "GUILD_CREATE",
		parse(t, `{"id":"100","channels":[{"id":"101"},{"id":false}]}`))
	assert.ErrorIs(t, err, document.ErrMalformedField)
	assert.Equal(t, cache.Stats{}, m.Stats())
}

func TestMaintainer_GuildUpdateKeepsChannelList(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()

	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, guildCreate)))
	before, _ := m.FindGuild(100).Get()

	require.NoError(t, mt.Apply(ctx, "GUILD_UPDATE", parse(t, `{"id":"100","name":"renamed"}`)))

	g, ok := m.FindGuild(100).Get()
	require.True(t, ok)
	assert.Equal(t, "renamed", g.Name)
	assert.Equal(t, []snowflake.ID{101, 102}, g.Channels)
	assert.NotSame(t, before, g, "updates replace the entry")
	assert.Equal(t, "guild", before.Name, "previous snapshot is not mutated")
}

func TestMaintainer_GuildDelete(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()
	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, guildCreate)))

	assert.False(t, mt.Precedes("GUILD_DELETE"))

	require.NoError(t, mt.Apply(ctx, "GUILD_DELETE", parse(t, `{"id":"100","unavailable":true}`)))
	g, ok := m.FindGuild(100).Get()
	require.True(t, ok)
	assert.True(t, g.IsUnavailable())

	require.NoError(t, mt.Apply(ctx, "GUILD_DELETE", parse(t, `{"id":"100"}`)))
	assert.False(t, m.FindGuild(100).Present())
	assert.False(t, m.FindChannel(101).Present())
	assert.False(t, m.FindChannel(102).Present())

	// Unknown guild is a no-op.
	require.NoError(t, mt.Apply(ctx, "GUILD_DELETE", parse(t, `{"id":"999"}`)))
}

func TestMaintainer_Channels(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()
	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, guildCreate)))

	require.NoError(t, mt.Apply(ctx, "CHANNEL_CREATE", parse(t, `{"id":"103","guild_id":"100","name":"new"}`)))
	g, _ := m.FindGuild(100).Get()
	assert.Equal(t, []snowflake.ID{101, 102, 103}, g.Channels)

	require.NoError(t, mt.Apply(ctx, "CHANNEL_UPDATE", parse(t, `{"id":"103","guild_id":"100","name":"renamed"}`)))
	c, _ := m.FindChannel(103).Get()
	assert.Equal(t, "renamed", c.Name)
	g, _ = m.FindGuild(100).Get()
	assert.Len(t, g.Channels, 3)

	require.NoError(t, mt.Apply(ctx, "CHANNEL_DELETE", parse(t, `{"id":"101"}`)))
	assert.False(t, m.FindChannel(101).Present())
	g, _ = m.FindGuild(100).Get()
	assert.Equal(t, []snowflake.ID{102, 103}, g.Channels)

	// Direct-message channel without a guild.
	require.NoError(t, mt.Apply(ctx, "CHANNEL_CREATE", parse(t, `{"id":"300","type":1}`)))
	assert.True(t, m.FindChannel(300).Present())
}

func TestMaintainer_IgnoresOtherEvents(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)

	assert.False(t, mt.Handles("TYPING_START"))
	require.NoError(t, mt.Apply(context.Background(), "TYPING_START", parse(t, `{"id":false}`)))
	assert.Equal(t, cache.Stats{}, m.Stats())
}

func TestMaintainer_GuildUpdateKeepsCreateOnlyFields(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()

	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, `{
		"id": "10", "name": "guild", "member_count": 5000, "large": true,
		"max_presences": 25000, "features": ["COMMUNITY"],
		"channels": [{"id": "20"}]
	}`)))
	require.NoError(t, mt.Apply(ctx, "GUILD_UPDATE", parse(t, `{"id":"10","name":"renamed","max_presences":null}`)))

	g, ok := m.FindGuild(10).Get()
	require.True(t, ok)
	assert.Equal(t, "renamed", g.Name)
	assert.Equal(t, uint32(5000), g.MemberCount)
	assert.Equal(t, uint32(25000), g.MaxPresences, "null keeps the cached value")
	assert.True(t, g.IsLarge())
	assert.True(t, g.IsCommunity(), "features absent from the update are kept")
	assert.Equal(t, []snowflake.ID{20}, g.Channels)

	// A present key does overwrite, including clearing a flag.
	require.NoError(t, mt.Apply(ctx, "GUILD_UPDATE", parse(t, `{"id":"10","features":[],"large":false}`)))
	g, _ = m.FindGuild(10).Get()
	assert.False(t, g.IsCommunity())
	assert.False(t, g.IsLarge())
	assert.Equal(t, "renamed", g.Name)
}

func TestMaintainer_GuildUpdateUncached(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)

	require.NoError(t, mt.Apply(context.Background(), "GUILD_UPDATE", parse(t, `{"id":"10","name":"fresh"}`)))
	g, ok := m.FindGuild(10).Get()
	require.True(t, ok)
	assert.Equal(t, "fresh", g.Name)
}

const permissionGuild = `{
	"id": "100",
	"owner_id": "900",
	"roles": [
		{"id": "100", "name": "@everyone", "permissions": "1024"},
		{"id": "110", "name": "talker", "permissions": "2048"},
		{"id": "120", "name": "admin", "permissions": "8"}
	],
	"channels": [{
		"id": "101",
		"name": "private",
		"permission_overwrites": [
			{"id": "100", "type": 0, "allow": "0", "deny": "1024"},
			{"id": "110", "type": 0, "allow": "1024", "deny": "0"},
			{"id": "201", "type": 1, "allow": "2048", "deny": "0"}
		]
	}],
	"members": [
		{"user": {"id": "200", "username": "alice"}, "roles": ["110"], "nick": "al"},
		{"user": {"id": "201", "username": "bob"}, "roles": []},
		{"user": {"id": "202", "username": "boss"}, "roles": ["120"]},
		{"user": {"id": "900", "username": "owner"}}
	]
}`

func TestMaintainer_GuildCreateMembersAndRoles(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	require.NoError(t, mt.Apply(context.Background(), "GUILD_CREATE", parse(t, permissionGuild)))

	stats := m.Stats()
	assert.Equal(t, 3, stats.Roles)
	assert.Equal(t, 4, stats.Members)
	assert.Equal(t, 4, stats.Users)

	gm, ok := m.FindMember(100, 200).Get()
	require.True(t, ok)
	assert.Equal(t, "al", gm.Nickname)
	assert.Equal(t, []snowflake.ID{110}, gm.Roles)
	assert.False(t, m.FindMember(100, 0).Present())
	assert.False(t, m.FindMember(999, 200).Present())

	r, ok := m.FindRole(110).Get()
	require.True(t, ok)
	assert.Equal(t, snowflake.ID(100), r.GuildID)
	assert.Equal(t, entity.PermSendMessages, r.Permissions)
}

func TestMemory_Permissions(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	require.NoError(t, mt.Apply(context.Background(), "GUILD_CREATE", parse(t, permissionGuild)))

	view, send := entity.PermViewChannel, entity.PermSendMessages
	tests := []struct {
		name    string
		user    snowflake.ID
		base    uint64
		channel uint64
	}{
		{"role overwrite restores view", 200, view | send, view | send},
		{"everyone overwrite denies view", 201, view, send},
		{"administrator", 202, entity.PermAll, entity.PermAll},
		{"owner", 900, entity.PermAll, entity.PermAll},
		{"not a member", 555, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.base, m.BasePermissions(100, tt.user))
			assert.Equal(t, tt.channel, m.ChannelPermissions(101, tt.user))
		})
	}
	assert.Zero(t, m.ChannelPermissions(999, 200), "uncached channel")
}

func TestMaintainer_MemberEvents(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()
	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, `{"id":"100","member_count":1}`)))

	require.NoError(t, mt.Apply(ctx, "GUILD_MEMBER_ADD",
		parse(t, `{"guild_id":"100","user":{"id":"200","username":"alice"},"roles":["110"]}`)))
	assert.True(t, m.FindMember(100, 200).Present())
	assert.True(t, m.FindUser(200).Present())
	g, _ := m.FindGuild(100).Get()
	assert.Equal(t, uint32(2), g.MemberCount)

	require.NoError(t, mt.Apply(ctx, "GUILD_MEMBER_UPDATE",
		parse(t, `{"guild_id":"100","user":{"id":"200","username":"alice"},"nick":"al","mute":true}`)))
	gm, _ := m.FindMember(100, 200).Get()
	assert.Equal(t, "al", gm.Nickname)
	assert.True(t, gm.IsMuted())
	g, _ = m.FindGuild(100).Get()
	assert.Equal(t, uint32(2), g.MemberCount, "updates do not count as joins")

	assert.False(t, mt.Precedes("GUILD_MEMBER_REMOVE"))
	require.NoError(t, mt.Apply(ctx, "GUILD_MEMBER_REMOVE", parse(t, `{"guild_id":"100","user":{"id":"200"}}`)))
	assert.False(t, m.FindMember(100, 200).Present())
	g, _ = m.FindGuild(100).Get()
	assert.Equal(t, uint32(1), g.MemberCount)

	// Removing an unknown member leaves the count alone.
	require.NoError(t, mt.Apply(ctx, "GUILD_MEMBER_REMOVE", parse(t, `{"guild_id":"100","user":{"id":"200"}}`)))
	g, _ = m.FindGuild(100).Get()
	assert.Equal(t, uint32(1), g.MemberCount)
}

func TestMaintainer_RoleEvents(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()
	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, `{"id":"100"}`)))

	require.NoError(t, mt.Apply(ctx, "GUILD_ROLE_CREATE",
		parse(t, `{"guild_id":"100","role":{"id":"110","name":"mods","permissions":"8192"}}`)))
	require.NoError(t, mt.Apply(ctx, "GUILD_ROLE_UPDATE",
		parse(t, `{"guild_id":"100","role":{"id":"110","name":"moderators","permissions":"8192"}}`)))
	r, ok := m.FindRole(110).Get()
	require.True(t, ok)
	assert.Equal(t, "moderators", r.Name)
	assert.Equal(t, entity.PermManageMessages, r.Permissions)
	g, _ := m.FindGuild(100).Get()
	assert.Equal(t, []snowflake.ID{110}, g.Roles)

	require.NoError(t, mt.Apply(ctx, "GUILD_ROLE_DELETE", parse(t, `{"guild_id":"100","role_id":"110"}`)))
	assert.False(t, m.FindRole(110).Present())
	g, _ = m.FindGuild(100).Get()
	assert.Empty(t, g.Roles)

	err := mt.Apply(ctx, "GUILD_ROLE_CREATE", parse(t, `{"guild_id":"100","role":{"id":"111","permissions":"all"}}`))
	assert.ErrorIs(t, err, document.ErrMalformedField)
	assert.False(t, m.FindRole(111).Present())
}

func TestMaintainer_GuildDeleteDropsRolesAndMembers(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()
	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, permissionGuild)))

	require.NoError(t, mt.Apply(ctx, "GUILD_DELETE", parse(t, `{"id":"100"}`)))
	stats := m.Stats()
	assert.Zero(t, stats.Guilds)
	assert.Zero(t, stats.Channels)
	assert.Zero(t, stats.Roles)
	assert.Zero(t, stats.Members)
	assert.Equal(t, 4, stats.Users, "users outlive the guild")
}

func TestMaintainer_DetachChannel(t *testing.T) {
	m := cache.NewMemory()
	mt := cache.NewMaintainer(m, nil)
	ctx := context.Background()
	require.NoError(t, mt.Apply(ctx, "GUILD_CREATE", parse(t, guildCreate)))
	before, _ := m.FindGuild(100).Get()

	require.NoError(t, mt.Detach(ctx, "CHANNEL_DELETE", parse(t, `{"id":"101"}`)))
	assert.True(t, m.FindChannel(101).Present(), "channel still resolves until Apply")
	g, _ := m.FindGuild(100).Get()
	assert.Equal(t, []snowflake.ID{102}, g.Channels)
	assert.Equal(t, []snowflake.ID{101, 102}, before.Channels, "previous snapshot is not mutated")

	require.NoError(t, mt.Apply(ctx, "CHANNEL_DELETE", parse(t, `{"id":"101"}`)))
	assert.False(t, m.FindChannel(101).Present())
	g, _ = m.FindGuild(100).Get()
	assert.Equal(t, []snowflake.ID{102}, g.Channels)

	// Other events are not detached.
	require.NoError(t, mt.Detach(ctx, "GUILD_DELETE", parse(t, `{"id":"100"}`)))
	assert.True(t, m.FindGuild(100).Present())
}
