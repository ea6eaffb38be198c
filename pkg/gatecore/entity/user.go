package entity

import (
	"strings"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// User is a platform account.
type User struct {
	ID            snowflake.ID
	Username      string
	Discriminator string
	Avatar        string
	Bot           bool
	System        bool
	PublicFlags   uint32
}

var userFields = []document.Field[User]{
	document.Emit("username", func(u *User) string { return u.Username }),
	document.Emit("avatar", func(u *User) string { return u.Avatar }),
}

// UserFromDocument hydrates a user.
func UserFromDocument(src document.Source) (*User, error) {
	r := newReader(src)
	u := &User{
		ID:            read[snowflake.ID](r, "id"),
		Username:      read[string](r, "username"),
		Discriminator: read[string](r, "discriminator"),
		Avatar:        read[string](r, "avatar"),
		Bot:           read[bool](r, "bot"),
		System:        read[bool](r, "system"),
		PublicFlags:   read[uint32](r, "public_flags"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return u, nil
}

// ToDocument returns the current-user modification payload.
func (u *User) ToDocument() document.Object {
	return document.Build(u, userFields)
}

// HasAnimatedAvatar reports whether the avatar hash is animated.
func (u *User) HasAnimatedAvatar() bool {
	return strings.HasPrefix(u.Avatar, "a_")
}
