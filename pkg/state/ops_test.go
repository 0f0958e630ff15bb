package state

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/rest"
)

func TestChannelSendIngestsCreatedMessage(t *testing.T) {
	var sent rest.MessageCreate
	fake := &fakeTransport{
		createMessage: func(_ context.Context, channelID string, params rest.MessageCreate) (payload.Object, error) {
			sent = params
			return payload.MustParse(fmt.Sprintf(
				`{"id":"m1","channel_id":%q,"content":%q,"author":{"id":"u1","username":"bot"}}`,
				channelID, params.Content)), nil
		},
	}
	st := newFetchState(fake)

	ch, err := st.UpsertChannel(payload.MustParse(`{"id":"c1","type":0}`))
	if err != nil {
		t.Fatalf("UpsertChannel() error: %v", err)
	}

	m, err := ch.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if sent.Content != "hello" {
		t.Errorf("transport saw content %q, want hello", sent.Content)
	}
	if got := m.Content(); got != "hello" {
		t.Errorf("Content() = %q, want hello", got)
	}
	if cached, ok := st.Message("m1"); !ok || cached != m {
		t.Errorf("created message not cached as the returned pointer")
	}
	if _, ok := st.User("u1"); !ok {
		t.Errorf("author of the created message not ingested")
	}
}

func TestMessageReplySetsReference(t *testing.T) {
	var sent rest.MessageCreate
	fake := &fakeTransport{
		createMessage: func(_ context.Context, channelID string, params rest.MessageCreate) (payload.Object, error) {
			sent = params
			return payload.MustParse(fmt.Sprintf(`{"id":"m2","channel_id":%q,"content":%q}`, channelID, params.Content)), nil
		},
	}
	st := newFetchState(fake)

	m, err := st.UpsertMessage(payload.MustParse(`{"id":"m1","channel_id":"c1","guild_id":"g1"}`))
	if err != nil {
		t.Fatalf("UpsertMessage() error: %v", err)
	}

	reply, err := m.Reply(context.Background(), "pong")
	if err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	if sent.Reference == nil {
		t.Fatalf("Reply() sent no message reference")
	}
	if sent.Reference.MessageID != "m1" || sent.Reference.ChannelID != "c1" || sent.Reference.GuildID != "g1" {
		t.Errorf("reference = %+v, want m1/c1/g1", *sent.Reference)
	}
	if cached, ok := st.Message("m2"); !ok || cached != reply {
		t.Errorf("reply not cached as the returned pointer")
	}
}

func TestMessageEditMergesConfirmedResult(t *testing.T) {
	fake := &fakeTransport{
		editMessage: func(_ context.Context, channelID, messageID string, params rest.MessageEdit) (payload.Object, error) {
			if params.Content == nil {
				t.Fatalf("EditMessage called without content")
			}
			return payload.MustParse(fmt.Sprintf(
				`{"id":%q,"channel_id":%q,"content":%q,"edited_timestamp":"2024-01-15T11:00:00+00:00"}`,
				messageID, channelID, *params.Content)), nil
		},
	}
	st := newFetchState(fake)

	m, err := st.UpsertMessage(payload.MustParse(`{"id":"m1","channel_id":"c1","content":"old"}`))
	if err != nil {
		t.Fatalf("UpsertMessage() error: %v", err)
	}

	if err := m.Edit(context.Background(), "new"); err != nil {
		t.Fatalf("Edit() error: %v", err)
	}
	if got := m.Content(); got != "new" {
		t.Errorf("Content() = %q after edit, want new", got)
	}
	if _, ok := m.EditedTimestamp(); !ok {
		t.Errorf("EditedTimestamp() missing after edit")
	}
	if cached, _ := st.Message("m1"); cached != m {
		t.Errorf("edit produced a second representative")
	}
}

func TestMessageEditRejectionLeavesCache(t *testing.T) {
	fake := &fakeTransport{
		editMessage: func(_ context.Context, _, _ string, _ rest.MessageEdit) (payload.Object, error) {
			return nil, &rest.RemoteError{Method: "PATCH", Path: "/channels/c1/messages/m1", Status: 403, Code: 50005, Message: "Cannot edit a message authored by another user"}
		},
	}
	st := newFetchState(fake)

	m, err := st.UpsertMessage(payload.MustParse(`{"id":"m1","channel_id":"c1","content":"old"}`))
	if err != nil {
		t.Fatalf("UpsertMessage() error: %v", err)
	}

	err = m.Edit(context.Background(), "new")
	var remote *rest.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Edit() error type = %T, want *rest.RemoteError", err)
	}
	if got := m.Content(); got != "old" {
		t.Errorf("Content() = %q after rejected edit, want old", got)
	}
}

func TestMessageDeleteKeepsCacheEntry(t *testing.T) {
	fake := &fakeTransport{
		deleteMessage: func(_ context.Context, _, _ string) error { return nil },
	}
	st := newFetchState(fake)

	m, err := st.UpsertMessage(msgPayload("m1", "c1"))
	if err != nil {
		t.Fatalf("UpsertMessage() error: %v", err)
	}
	if err := m.Delete(context.Background()); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got := fake.callCount("DeleteMessage"); got != 1 {
		t.Errorf("DeleteMessage called %d times, want 1", got)
	}
	// Cache removal is the ingestor's job when the delete event arrives.
	if _, ok := st.Message("m1"); !ok {
		t.Errorf("Delete() removed the cached message")
	}
}

func TestReactionOps(t *testing.T) {
	var added, removed, removedBy string
	fake := &fakeTransport{
		createReaction: func(_ context.Context, _, _, emoji string) error {
			added = emoji
			return nil
		},
		deleteReaction: func(_ context.Context, _, _, emoji, userID string) error {
			removed, removedBy = emoji, userID
			return nil
		},
		messageReactions: func(_ context.Context, _, _, _ string, _ int) ([]payload.Object, error) {
			return []payload.Object{
				payload.MustParse(`{"id":"u1","username":"alice"}`),
				payload.MustParse(`{"username":"no-id"}`),
				payload.MustParse(`{"id":"u2","username":"bob"}`),
			}, nil
		},
	}
	st := newFetchState(fake)

	m, err := st.UpsertMessage(msgPayload("m1", "c1"))
	if err != nil {
		t.Fatalf("UpsertMessage() error: %v", err)
	}

	if err := m.React(context.Background(), "👍"); err != nil {
		t.Fatalf("React() error: %v", err)
	}
	if added != "👍" {
		t.Errorf("CreateReaction saw emoji %q", added)
	}

	if err := m.Unreact(context.Background(), "👍", ""); err != nil {
		t.Fatalf("Unreact() error: %v", err)
	}
	if removed != "👍" || removedBy != "@me" {
		t.Errorf("DeleteReaction saw %q by %q, want own reaction", removed, removedBy)
	}
	if err := m.Unreact(context.Background(), "👍", "u9"); err != nil {
		t.Fatalf("Unreact(u9) error: %v", err)
	}
	if removedBy != "u9" {
		t.Errorf("DeleteReaction saw user %q, want u9", removedBy)
	}

	users, err := m.FetchReactions(context.Background(), "👍", 0)
	if err != nil {
		t.Fatalf("FetchReactions() error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("FetchReactions() returned %d users, want 2 with the malformed one dropped", len(users))
	}
	if _, ok := st.User("u2"); !ok {
		t.Errorf("reacting user not ingested")
	}
}

func TestChannelEditMergesConfirmedResult(t *testing.T) {
	fake := &fakeTransport{
		editChannel: func(_ context.Context, channelID string, params rest.ChannelEdit) (payload.Object, error) {
			return payload.MustParse(fmt.Sprintf(`{"id":%q,"name":%q}`, channelID, *params.Name)), nil
		},
	}
	st := newFetchState(fake)

	ch, err := st.UpsertChannel(payload.MustParse(`{"id":"c1","type":0,"name":"general","topic":"keep me"}`))
	if err != nil {
		t.Fatalf("UpsertChannel() error: %v", err)
	}

	name := "renamed"
	if err := ch.Edit(context.Background(), rest.ChannelEdit{Name: &name}); err != nil {
		t.Fatalf("Edit() error: %v", err)
	}
	if got := ch.Name(); got != "renamed" {
		t.Errorf("Name() = %q after edit, want renamed", got)
	}
	if topic, ok := ch.Topic(); !ok || topic != "keep me" {
		t.Errorf("Topic() = %q, %v after partial edit response, want preserved", topic, ok)
	}
}

func TestGuildAndMemberEdit(t *testing.T) {
	fake := &fakeTransport{
		editGuild: func(_ context.Context, guildID string, params rest.GuildEdit) (payload.Object, error) {
			return payload.MustParse(fmt.Sprintf(`{"id":%q,"name":%q}`, guildID, *params.Name)), nil
		},
		editMember: func(_ context.Context, guildID, userID string, params rest.MemberEdit) (payload.Object, error) {
			return payload.MustParse(fmt.Sprintf(
				`{"guild_id":%q,"nick":%q,"user":{"id":%q,"username":"alice"}}`, guildID, *params.Nick, userID)), nil
		},
	}
	st := newFetchState(fake)

	g, err := st.UpsertGuild(payload.MustParse(`{"id":"g1","name":"Old Name"}`))
	if err != nil {
		t.Fatalf("UpsertGuild() error: %v", err)
	}
	name := "New Name"
	if err := g.Edit(context.Background(), rest.GuildEdit{Name: &name}); err != nil {
		t.Fatalf("Guild.Edit() error: %v", err)
	}
	if got := g.Name(); got != "New Name" {
		t.Errorf("guild Name() = %q after edit", got)
	}

	m, err := st.UpsertMember(payload.MustParse(`{"guild_id":"g1","user":{"id":"u1","username":"alice"}}`))
	if err != nil {
		t.Fatalf("UpsertMember() error: %v", err)
	}
	nick := "Al"
	if err := m.Edit(context.Background(), rest.MemberEdit{Nick: &nick}); err != nil {
		t.Fatalf("Member.Edit() error: %v", err)
	}
	if got, ok := m.Nick(); !ok || got != "Al" {
		t.Errorf("member Nick() = %q, %v after edit", got, ok)
	}
}
