package state

import (
	"github.com/small-frappuccino/discordstate/pkg/payload"
)

var userSpec = payload.Spec{Kind: "user", Required: []string{"id", "username"}}

// User is a cached account. Users are global; the per-guild view of a user
// is a Member.
type User struct {
	base
	st *State
}

func newUser(st *State, o payload.Object) (*User, error) {
	if err := userSpec.Validate(o); err != nil {
		return nil, err
	}
	return &User{base: newBase(o), st: st}, nil
}

func userKey(o payload.Object) (string, error) {
	id, ok := o.Str("id")
	if !ok || id == "" {
		return "", &payload.MalformedPayloadError{Kind: userSpec.Kind, Missing: []string{"id"}}
	}
	return id, nil
}

// Key implements Entity.
func (u *User) Key() string {
	id, _ := u.str("id")
	return id
}

// Update implements Entity.
func (u *User) Update(patch payload.Object) {
	u.merge(patch)
}

// Payload implements Entity.
func (u *User) Payload() payload.Object {
	return u.snapshot()
}

// ID returns the user's identity key.
func (u *User) ID() string { return u.Key() }

// Username returns the account name.
func (u *User) Username() string {
	name, _ := u.str("username")
	return name
}

// Discriminator returns the legacy four-digit tag. Migrated accounts carry
// "0" and have none.
func (u *User) Discriminator() string {
	d, _ := u.str("discriminator")
	return d
}

// GlobalName returns the display name, if the account has set one.
func (u *User) GlobalName() (string, bool) {
	return u.str("global_name")
}

// Bot reports whether the account is a bot.
func (u *User) Bot() bool {
	v, _ := u.boolv("bot")
	return v
}

// DisplayName returns the global display name when set, otherwise the
// username.
func (u *User) DisplayName() string {
	if n, ok := u.GlobalName(); ok && n != "" {
		return n
	}
	return u.Username()
}

// Mention returns the user mention token.
func (u *User) Mention() string {
	return "<@" + u.ID() + ">"
}

// String renders the user as username#discriminator for legacy accounts and
// as the bare username for migrated ones.
func (u *User) String() string {
	if d := u.Discriminator(); d != "" && d != "0" {
		return u.Username() + "#" + d
	}
	return u.Username()
}
