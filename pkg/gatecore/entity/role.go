package entity

import (
	"strconv"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// Role is a named permission set within a guild.
// The @everyone role shares its id with the guild.
type Role struct {
	ID          snowflake.ID
	GuildID     snowflake.ID
	Name        string
	Color       uint32
	Position    int32
	Permissions uint64
	Hoist       bool
	Managed     bool
	Mentionable bool
}

var roleFields = []document.Field[Role]{
	document.Emit("name", func(r *Role) string { return r.Name }),
	document.Emit("color", func(r *Role) uint32 { return r.Color }),
	document.Emit("permissions", func(r *Role) string {
		if r.Permissions == 0 {
			return ""
		}
		return strconv.FormatUint(r.Permissions, 10)
	}),
	document.Emit("hoist", func(r *Role) bool { return r.Hoist }),
	document.Emit("mentionable", func(r *Role) bool { return r.Mentionable }),
}

// RoleFromDocument hydrates a role of guildID.
func RoleFromDocument(src document.Source, guildID snowflake.ID) (*Role, error) {
	r := newReader(src)
	role := &Role{
		ID:          read[snowflake.ID](r, "id"),
		GuildID:     guildID,
		Name:        read[string](r, "name"),
		Color:       read[uint32](r, "color"),
		Position:    read[int32](r, "position"),
		Permissions: read[uint64](r, "permissions"),
		Hoist:       read[bool](r, "hoist"),
		Managed:     read[bool](r, "managed"),
		Mentionable: read[bool](r, "mentionable"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return role, nil
}

// ToDocument returns the role modification payload.
func (r *Role) ToDocument() document.Object {
	return document.Build(r, roleFields)
}
