package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/entity"
)

// wire sends an outbound document through encode and decode, as a peer would see it.
func wire(t *testing.T, obj document.Object) document.Object {
	t.Helper()
	data, err := document.Marshal(obj)
	require.NoError(t, err)
	out, err := document.Parse(data)
	require.NoError(t, err)
	return out
}

func TestEmptyDocumentYieldsDefaults(t *testing.T) {
	empty := document.Object{}

	inv, err := entity.InviteFromDocument(empty)
	require.NoError(t, err)
	assert.Equal(t, &entity.Invite{}, inv)

	g, err := entity.GuildFromDocument(empty)
	require.NoError(t, err)
	assert.Equal(t, &entity.Guild{}, g)

	m, err := entity.GuildMemberFromDocument(empty, 0)
	require.NoError(t, err)
	assert.Equal(t, &entity.GuildMember{}, m)

	w, err := entity.GuildWidgetFromDocument(empty)
	require.NoError(t, err)
	assert.Equal(t, &entity.GuildWidget{}, w)

	c, err := entity.ChannelFromDocument(empty)
	require.NoError(t, err)
	assert.Equal(t, &entity.Channel{}, c)

	u, err := entity.UserFromDocument(empty)
	require.NoError(t, err)
	assert.Equal(t, &entity.User{}, u)

	r, err := entity.RoleFromDocument(empty, 0)
	require.NoError(t, err)
	assert.Equal(t, &entity.Role{}, r)
}

func TestNilSourceYieldsDefaults(t *testing.T) {
	inv, err := entity.InviteFromDocument(nil)
	require.NoError(t, err)
	assert.Equal(t, &entity.Invite{}, inv)
}

func TestUnknownKeysIgnored(t *testing.T) {
	obj, err := document.Parse([]byte(`{"code":"abc","brand_new_field":{"x":[1,2]}}`))
	require.NoError(t, err)

	inv, err := entity.InviteFromDocument(obj)
	require.NoError(t, err)
	assert.Equal(t, &entity.Invite{Code: "abc"}, inv)
}

func TestMalformedFieldAbortsEntity(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		hydrate func(document.Source) error
	}{
		{
			name: "invite max_uses as string",
			raw:  `{"code":"abc","max_uses":"five"}`,
			hydrate: func(s document.Source) error {
				inv, err := entity.InviteFromDocument(s)
				assert.Nil(t, inv)
				return err
			},
		},
		{
			name: "invite nested guild id wrong type",
			raw:  `{"guild":{"id":true}}`,
			hydrate: func(s document.Source) error {
				inv, err := entity.InviteFromDocument(s)
				assert.Nil(t, inv)
				return err
			},
		},
		{
			name: "guild features not strings",
			raw:  `{"id":"1","features":[1]}`,
			hydrate: func(s document.Source) error {
				g, err := entity.GuildFromDocument(s)
				assert.Nil(t, g)
				return err
			},
		},
		{
			name: "guild channel id malformed",
			raw:  `{"id":"1","channels":[{"id":"x"}]}`,
			hydrate: func(s document.Source) error {
				g, err := entity.GuildFromDocument(s)
				assert.Nil(t, g)
				return err
			},
		},
		{
			name: "guild welcome channel malformed",
			raw:  `{"id":"1","welcome_screen":{"welcome_channels":[{"channel_id":false}]}}`,
			hydrate: func(s document.Source) error {
				g, err := entity.GuildFromDocument(s)
				assert.Nil(t, g)
				return err
			},
		},
		{
			name: "member roles malformed",
			raw:  `{"roles":[{}]}`,
			hydrate: func(s document.Source) error {
				m, err := entity.GuildMemberFromDocument(s, 1)
				assert.Nil(t, m)
				return err
			},
		},
		{
			name: "channel position as bool",
			raw:  `{"id":"1","position":true}`,
			hydrate: func(s document.Source) error {
				c, err := entity.ChannelFromDocument(s)
				assert.Nil(t, c)
				return err
			},
		},
		{
			name: "user bot as string",
			raw:  `{"id":"1","bot":"yes"}`,
			hydrate: func(s document.Source) error {
				u, err := entity.UserFromDocument(s)
				assert.Nil(t, u)
				return err
			},
		},
		{
			name: "widget enabled as number",
			raw:  `{"enabled":1}`,
			hydrate: func(s document.Source) error {
				w, err := entity.GuildWidgetFromDocument(s)
				assert.Nil(t, w)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := document.Parse([]byte(tt.raw))
			require.NoError(t, err)
			assert.ErrorIs(t, tt.hydrate(obj), document.ErrMalformedField)
		})
	}
}
