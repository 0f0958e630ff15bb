package state

import (
	"context"

	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/rest"
)

var guildSpec = payload.Spec{Kind: "guild", Required: []string{"id", "name"}}

// Guild is a cached guild. Member and channel lists are not stored on the
// guild itself; they live in their own managers and are reachable through
// the derived views.
type Guild struct {
	base
	st *State
}

func newGuild(st *State, o payload.Object) (*Guild, error) {
	if err := guildSpec.Validate(o); err != nil {
		return nil, err
	}
	return &Guild{base: newBase(o), st: st}, nil
}

func guildKey(o payload.Object) (string, error) {
	id, ok := o.Str("id")
	if !ok || id == "" {
		return "", &payload.MalformedPayloadError{Kind: guildSpec.Kind, Missing: []string{"id"}}
	}
	return id, nil
}

// Key implements Entity.
func (g *Guild) Key() string {
	id, _ := g.str("id")
	return id
}

// Update implements Entity.
func (g *Guild) Update(patch payload.Object) {
	g.merge(patch)
}

// Payload implements Entity.
func (g *Guild) Payload() payload.Object {
	return g.snapshot()
}

// ID returns the guild's identity key.
func (g *Guild) ID() string { return g.Key() }

// Name returns the guild name.
func (g *Guild) Name() string {
	name, _ := g.str("name")
	return name
}

// Description returns the guild description, if set.
func (g *Guild) Description() (string, bool) {
	return g.str("description")
}

// OwnerID returns the id of the guild owner, if known.
func (g *Guild) OwnerID() (string, bool) {
	return g.str("owner_id")
}

// MemberCount returns the guild's member count as last reported.
func (g *Guild) MemberCount() int64 {
	n, _ := g.intv("member_count")
	return n
}

// Unavailable reports whether the gateway has flagged the guild unavailable
// due to an outage.
func (g *Guild) Unavailable() bool {
	v, _ := g.boolv("unavailable")
	return v
}

// String renders the guild as its name.
func (g *Guild) String() string {
	return g.Name()
}

// Owner resolves the guild owner from the user cache.
func (g *Guild) Owner() (*User, bool) {
	oid, ok := g.OwnerID()
	if !ok {
		return nil, false
	}
	return g.st.User(oid)
}

// Channels returns the guild's currently cached channels.
func (g *Guild) Channels() []*Channel {
	return g.st.GuildChannels(g.ID())
}

// Members returns the guild's currently cached members.
func (g *Guild) Members() []*Member {
	return g.st.GuildMembers(g.ID())
}

// Edit applies a partial guild edit remotely and re-ingests the confirmed
// result. A rejection leaves the cached entity untouched.
func (g *Guild) Edit(ctx context.Context, params rest.GuildEdit) error {
	t, err := g.st.transportOrErr()
	if err != nil {
		return err
	}
	o, err := t.EditGuild(ctx, g.ID(), params)
	if err != nil {
		return err
	}
	_, err = g.st.UpsertGuild(o)
	return err
}
