package state

import (
	"context"
	"time"

	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/rest"
)

var messageSpec = payload.Spec{Kind: "message", Required: []string{"id", "channel_id"}}

// Message is a cached message. It references its channel, guild and author
// by identity key only; the objects are resolved through the other managers
// on demand.
type Message struct {
	base
	st *State
}

func newMessage(st *State, o payload.Object) (*Message, error) {
	if err := messageSpec.Validate(o); err != nil {
		return nil, err
	}
	return &Message{base: newBase(o), st: st}, nil
}

func messageKey(o payload.Object) (string, error) {
	id, ok := o.Str("id")
	if !ok || id == "" {
		return "", &payload.MalformedPayloadError{Kind: messageSpec.Kind, Missing: []string{"id"}}
	}
	return id, nil
}

// Key implements Entity.
func (m *Message) Key() string {
	id, _ := m.str("id")
	return id
}

// Update implements Entity.
func (m *Message) Update(patch payload.Object) {
	m.merge(patch)
}

// Payload implements Entity.
func (m *Message) Payload() payload.Object {
	return m.snapshot()
}

// ID returns the message's identity key.
func (m *Message) ID() string { return m.Key() }

// ChannelID returns the id of the channel the message was sent in.
func (m *Message) ChannelID() string {
	id, _ := m.str("channel_id")
	return id
}

// GuildID returns the message's own guild id when the payload carried one.
// Gateway message payloads usually do; REST-fetched ones do not.
func (m *Message) GuildID() (string, bool) {
	return m.str("guild_id")
}

// Content returns the message text.
func (m *Message) Content() string {
	content, _ := m.str("content")
	return content
}

// AuthorID returns the id of the message author, read from the embedded
// author payload.
func (m *Message) AuthorID() string {
	author, ok := m.obj("author")
	if !ok {
		return ""
	}
	id, _ := author.Str("id")
	return id
}

// Timestamp returns when the message was sent, if known.
func (m *Message) Timestamp() (time.Time, bool) {
	return m.timev("timestamp")
}

// EditedTimestamp returns when the message was last edited. Unedited
// messages report false.
func (m *Message) EditedTimestamp() (time.Time, bool) {
	return m.timev("edited_timestamp")
}

// Pinned reports whether the message is pinned in its channel.
func (m *Message) Pinned() bool {
	v, _ := m.boolv("pinned")
	return v
}

// String renders the message as its text content.
func (m *Message) String() string {
	return m.Content()
}

// Channel resolves the message's channel from the channel cache.
func (m *Message) Channel() (*Channel, bool) {
	cid := m.ChannelID()
	if cid == "" {
		return nil, false
	}
	return m.st.Channel(cid)
}

// Guild resolves the message's guild. When the message payload itself
// carries no guild id, the lookup falls back through the cached channel's
// guild id. Either link missing reports false.
func (m *Message) Guild() (*Guild, bool) {
	if gid, ok := m.GuildID(); ok {
		return m.st.Guild(gid)
	}
	ch, ok := m.Channel()
	if !ok {
		return nil, false
	}
	gid, ok := ch.GuildID()
	if !ok {
		return nil, false
	}
	return m.st.Guild(gid)
}

// Author resolves the message author from the user cache.
func (m *Message) Author() (*User, bool) {
	aid := m.AuthorID()
	if aid == "" {
		return nil, false
	}
	return m.st.User(aid)
}

// Member resolves the author's membership in the message's guild, using the
// same guild fallback chain as Guild.
func (m *Message) Member() (*Member, bool) {
	aid := m.AuthorID()
	if aid == "" {
		return nil, false
	}
	var gid string
	if g, ok := m.GuildID(); ok {
		gid = g
	} else if ch, ok := m.Channel(); ok {
		gid, _ = ch.GuildID()
	}
	if gid == "" {
		return nil, false
	}
	return m.st.Member(gid, aid)
}

// Reply sends a new message in the same channel referencing this one, and
// ingests the created message into the cache.
func (m *Message) Reply(ctx context.Context, content string) (*Message, error) {
	t, err := m.st.transportOrErr()
	if err != nil {
		return nil, err
	}
	ref := &rest.MessageReference{
		MessageID: m.ID(),
		ChannelID: m.ChannelID(),
	}
	if gid, ok := m.GuildID(); ok {
		ref.GuildID = gid
	}
	o, err := t.CreateMessage(ctx, m.ChannelID(), rest.MessageCreate{Content: content, Reference: ref})
	if err != nil {
		return nil, err
	}
	return m.st.UpsertMessage(o)
}

// Edit replaces the message content remotely. The cached entity is only
// mutated by re-ingesting the confirmed result, so a rejection leaves the
// cached content untouched.
func (m *Message) Edit(ctx context.Context, content string) error {
	t, err := m.st.transportOrErr()
	if err != nil {
		return err
	}
	o, err := t.EditMessage(ctx, m.ChannelID(), m.ID(), rest.MessageEdit{Content: &content})
	if err != nil {
		return err
	}
	_, err = m.st.UpsertMessage(o)
	return err
}

// Delete deletes the message remotely. The cached entity is not removed
// here; removal is driven by the gateway delete event according to the
// ingestor's removal policy, or by capacity eviction.
func (m *Message) Delete(ctx context.Context) error {
	t, err := m.st.transportOrErr()
	if err != nil {
		return err
	}
	return t.DeleteMessage(ctx, m.ChannelID(), m.ID())
}

// React adds a reaction from the current account.
func (m *Message) React(ctx context.Context, emoji string) error {
	t, err := m.st.transportOrErr()
	if err != nil {
		return err
	}
	return t.CreateReaction(ctx, m.ChannelID(), m.ID(), emoji)
}

// Unreact removes a reaction. An empty userID removes the current account's
// own reaction.
func (m *Message) Unreact(ctx context.Context, emoji, userID string) error {
	t, err := m.st.transportOrErr()
	if err != nil {
		return err
	}
	if userID == "" {
		userID = "@me"
	}
	return t.DeleteReaction(ctx, m.ChannelID(), m.ID(), emoji, userID)
}

// FetchReactions fetches the users who reacted with emoji, ingests them into
// the user cache, and returns the cached entities. limit <= 0 uses the
// remote default page size.
func (m *Message) FetchReactions(ctx context.Context, emoji string, limit int) ([]*User, error) {
	t, err := m.st.transportOrErr()
	if err != nil {
		return nil, err
	}
	objs, err := t.MessageReactions(ctx, m.ChannelID(), m.ID(), emoji, limit)
	if err != nil {
		return nil, err
	}
	users := make([]*User, 0, len(objs))
	for _, o := range objs {
		u, err := m.st.UpsertUser(o)
		if err != nil {
			m.st.logger.Warn("skipping malformed reaction user", "message_id", m.ID(), "error", err)
			continue
		}
		users = append(users, u)
	}
	return users, nil
}
