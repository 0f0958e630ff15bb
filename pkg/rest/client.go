// Package rest defines the outbound transport surface the entity layer
// fetches and mutates through, and a production implementation backed by
// discordgo. Results come back as raw payload objects so the state layer can
// re-ingest them through its normal upsert path.
package rest

import (
	"context"
	"fmt"

	"github.com/small-frappuccino/discordstate/pkg/payload"
)

// Client is the set of named remote operations the entity layer needs. Every
// call takes the caller's context; implementations must not retry rejected
// requests. FetchMember results must carry the guild id even though the
// remote endpoint omits it, so the payload can key itself on ingestion.
type Client interface {
	FetchChannel(ctx context.Context, channelID string) (payload.Object, error)
	FetchGuild(ctx context.Context, guildID string) (payload.Object, error)
	FetchUser(ctx context.Context, userID string) (payload.Object, error)
	FetchMember(ctx context.Context, guildID, userID string) (payload.Object, error)
	FetchMessage(ctx context.Context, channelID, messageID string) (payload.Object, error)

	CreateMessage(ctx context.Context, channelID string, params MessageCreate) (payload.Object, error)
	EditMessage(ctx context.Context, channelID, messageID string, params MessageEdit) (payload.Object, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	CreateReaction(ctx context.Context, channelID, messageID, emoji string) error
	DeleteReaction(ctx context.Context, channelID, messageID, emoji, userID string) error
	MessageReactions(ctx context.Context, channelID, messageID, emoji string, limit int) ([]payload.Object, error)

	EditChannel(ctx context.Context, channelID string, params ChannelEdit) (payload.Object, error)
	DeleteChannel(ctx context.Context, channelID string) error
	EditGuild(ctx context.Context, guildID string, params GuildEdit) (payload.Object, error)
	EditMember(ctx context.Context, guildID, userID string, params MemberEdit) (payload.Object, error)
}

// MessageReference points a new message at the message it replies to.
type MessageReference struct {
	MessageID string
	ChannelID string
	GuildID   string
}

// MessageCreate carries the fields for sending a message. Embeds and allowed
// mentions stay opaque raw payloads; this library ships no builders for them.
type MessageCreate struct {
	Content         string
	TTS             bool
	Embeds          []payload.Object
	AllowedMentions payload.Object
	Reference       *MessageReference
}

// MessageEdit carries a partial message edit. Nil fields are left untouched
// on the remote side.
type MessageEdit struct {
	Content *string
	Embeds  []payload.Object
}

// ChannelEdit carries a partial channel edit. Nil fields are left untouched.
type ChannelEdit struct {
	Name             *string
	Topic            *string
	Position         *int
	NSFW             *bool
	RateLimitPerUser *int
}

// GuildEdit carries a partial guild edit. Nil fields are left untouched.
type GuildEdit struct {
	Name        *string
	Description *string
	AFKTimeout  *int
}

// MemberEdit carries a partial member edit. Nil fields are left untouched.
type MemberEdit struct {
	Nick      *string
	Roles     *[]string
	Mute      *bool
	Deaf      *bool
	ChannelID *string
}

// RemoteError reports a remote rejection of an outbound operation. The
// request is never retried by this library; callers decide what a rejection
// means for them.
type RemoteError struct {
	// Method and Path identify the attempted endpoint.
	Method string
	Path   string

	// Status is the HTTP status of the rejection.
	Status int

	// Code and Message are the platform's own error code and human-readable
	// description, when the response carried them.
	Code    int
	Message string

	// Body is the request body that was attempted, kept for diagnostics.
	Body []byte
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s rejected: status %d, code %d: %s", e.Method, e.Path, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s rejected: status %d", e.Method, e.Path, e.Status)
}
