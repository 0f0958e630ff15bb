package state

import (
	"context"

	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/rest"
)

var channelSpec = payload.Spec{Kind: "channel", Required: []string{"id", "type"}}

// Channel is a cached guild or DM channel.
type Channel struct {
	base
	st *State
}

func newChannel(st *State, o payload.Object) (*Channel, error) {
	if err := channelSpec.Validate(o); err != nil {
		return nil, err
	}
	return &Channel{base: newBase(o), st: st}, nil
}

func channelKey(o payload.Object) (string, error) {
	id, ok := o.Str("id")
	if !ok || id == "" {
		return "", &payload.MalformedPayloadError{Kind: channelSpec.Kind, Missing: []string{"id"}}
	}
	return id, nil
}

// Key implements Entity.
func (c *Channel) Key() string {
	id, _ := c.str("id")
	return id
}

// Update implements Entity. The patch is merged in place; the pointer held
// by other entities and callers stays valid.
func (c *Channel) Update(patch payload.Object) {
	c.merge(patch)
}

// Payload implements Entity.
func (c *Channel) Payload() payload.Object {
	return c.snapshot()
}

// ID returns the channel's identity key.
func (c *Channel) ID() string { return c.Key() }

// Type returns the platform channel type code.
func (c *Channel) Type() int64 {
	t, _ := c.intv("type")
	return t
}

// GuildID returns the owning guild's id. DM channels have none.
func (c *Channel) GuildID() (string, bool) {
	return c.str("guild_id")
}

// Name returns the channel name.
func (c *Channel) Name() string {
	name, _ := c.str("name")
	return name
}

// Topic returns the channel topic, if one is set.
func (c *Channel) Topic() (string, bool) {
	return c.str("topic")
}

// NSFW reports the channel's age-restriction flag.
func (c *Channel) NSFW() bool {
	v, _ := c.boolv("nsfw")
	return v
}

// Position returns the channel's sort position within its guild.
func (c *Channel) Position() int64 {
	v, _ := c.intv("position")
	return v
}

// ParentID returns the parent category or thread parent, if any.
func (c *Channel) ParentID() (string, bool) {
	return c.str("parent_id")
}

// LastMessageID returns the id of the most recent message, if known.
func (c *Channel) LastMessageID() (string, bool) {
	return c.str("last_message_id")
}

// Mention returns the channel mention token.
func (c *Channel) Mention() string {
	return "<#" + c.ID() + ">"
}

// String renders the channel as its mention token.
func (c *Channel) String() string {
	return c.Mention()
}

// Guild resolves the owning guild from the guild cache. A DM channel and a
// guild that is not currently cached both report false.
func (c *Channel) Guild() (*Guild, bool) {
	gid, ok := c.GuildID()
	if !ok {
		return nil, false
	}
	return c.st.Guild(gid)
}

// Send sends a plain text message to the channel and ingests the created
// message into the cache.
func (c *Channel) Send(ctx context.Context, content string) (*Message, error) {
	return c.SendComplex(ctx, rest.MessageCreate{Content: content})
}

// SendComplex sends a message with full parameters (embeds, reference,
// allowed mentions) and ingests the created message into the cache.
func (c *Channel) SendComplex(ctx context.Context, params rest.MessageCreate) (*Message, error) {
	t, err := c.st.transportOrErr()
	if err != nil {
		return nil, err
	}
	o, err := t.CreateMessage(ctx, c.ID(), params)
	if err != nil {
		return nil, err
	}
	return c.st.UpsertMessage(o)
}

// Edit applies a partial channel edit remotely. The cached entity is only
// updated by re-ingesting the confirmed result; a rejection leaves it
// untouched.
func (c *Channel) Edit(ctx context.Context, params rest.ChannelEdit) error {
	t, err := c.st.transportOrErr()
	if err != nil {
		return err
	}
	o, err := t.EditChannel(ctx, c.ID(), params)
	if err != nil {
		return err
	}
	_, err = c.st.UpsertChannel(o)
	return err
}

// Delete deletes the channel remotely. The cached entity is not removed
// here; removal is driven by the gateway delete event according to the
// ingestor's removal policy, or by capacity eviction.
func (c *Channel) Delete(ctx context.Context) error {
	t, err := c.st.transportOrErr()
	if err != nil {
		return err
	}
	return t.DeleteChannel(ctx, c.ID())
}
