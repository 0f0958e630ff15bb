package state

import (
	"context"
	"time"

	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/rest"
)

const memberKind = "member"

// MemberKey joins a guild id and user id into the composite key members are
// cached under.
func MemberKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// Member is a cached per-guild view of a user. Its identity is the composite
// of the guild id and the embedded user's id.
type Member struct {
	base
	st *State
}

func newMember(st *State, o payload.Object) (*Member, error) {
	// Key derivation doubles as the required-field check: guild_id, user and
	// user.id must all be present.
	if _, err := memberKey(o); err != nil {
		return nil, err
	}
	return &Member{base: newBase(o), st: st}, nil
}

func memberKey(o payload.Object) (string, error) {
	gid, ok := o.Str("guild_id")
	if !ok || gid == "" {
		return "", &payload.MalformedPayloadError{Kind: memberKind, Missing: []string{"guild_id"}}
	}
	user, ok := o.Obj("user")
	if !ok {
		return "", &payload.MalformedPayloadError{Kind: memberKind, Missing: []string{"user"}}
	}
	uid, ok := user.Str("id")
	if !ok || uid == "" {
		return "", &payload.MalformedPayloadError{Kind: memberKind, Missing: []string{"user.id"}}
	}
	return MemberKey(gid, uid), nil
}

// Key implements Entity.
func (m *Member) Key() string {
	return MemberKey(m.GuildID(), m.UserID())
}

// Update implements Entity.
func (m *Member) Update(patch payload.Object) {
	m.merge(patch)
}

// Payload implements Entity.
func (m *Member) Payload() payload.Object {
	return m.snapshot()
}

// GuildID returns the guild component of the member's identity.
func (m *Member) GuildID() string {
	gid, _ := m.str("guild_id")
	return gid
}

// UserID returns the user component of the member's identity, read from the
// embedded user payload.
func (m *Member) UserID() string {
	user, ok := m.obj("user")
	if !ok {
		return ""
	}
	uid, _ := user.Str("id")
	return uid
}

// Nick returns the member's per-guild nickname, if set.
func (m *Member) Nick() (string, bool) {
	return m.str("nick")
}

// Roles returns the member's role ids.
func (m *Member) Roles() []string {
	roles, _ := m.strs("roles")
	return roles
}

// JoinedAt returns when the member joined the guild, if known.
func (m *Member) JoinedAt() (time.Time, bool) {
	return m.timev("joined_at")
}

// Mention returns the user mention token.
func (m *Member) Mention() string {
	return "<@" + m.UserID() + ">"
}

// DisplayName returns the nickname when set, then the live user's display
// name, then the username embedded in the member payload.
func (m *Member) DisplayName() string {
	if nick, ok := m.Nick(); ok && nick != "" {
		return nick
	}
	if u, ok := m.User(); ok {
		return u.DisplayName()
	}
	if user, ok := m.obj("user"); ok {
		if name, ok := user.Str("username"); ok {
			return name
		}
	}
	return ""
}

// String renders the member as its display name.
func (m *Member) String() string {
	return m.DisplayName()
}

// User resolves the member's account from the user cache.
func (m *Member) User() (*User, bool) {
	uid := m.UserID()
	if uid == "" {
		return nil, false
	}
	return m.st.User(uid)
}

// Guild resolves the member's guild from the guild cache.
func (m *Member) Guild() (*Guild, bool) {
	gid := m.GuildID()
	if gid == "" {
		return nil, false
	}
	return m.st.Guild(gid)
}

// Edit applies a partial member edit remotely and re-ingests the confirmed
// result. A rejection leaves the cached entity untouched.
func (m *Member) Edit(ctx context.Context, params rest.MemberEdit) error {
	t, err := m.st.transportOrErr()
	if err != nil {
		return err
	}
	o, err := t.EditMember(ctx, m.GuildID(), m.UserID(), params)
	if err != nil {
		return err
	}
	_, err = m.st.UpsertMember(o)
	return err
}
