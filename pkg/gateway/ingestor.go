// Package gateway feeds the entity caches from the platform's event stream.
// Events are consumed through the session's catch-all raw handler, so
// payloads reach the caches exactly as the gateway sent them, with no decode
// and re-encode round trip that would turn absent fields into zero values.
package gateway

import (
	"encoding/json"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/state"
)

// Config controls how events are applied to the caches.
type Config struct {
	// RemoveOnDelete makes remote delete events evict the cached entity.
	// When false, deleted entities keep their last known payload until
	// capacity eviction pushes them out.
	RemoveOnDelete bool

	Logger *slog.Logger
}

// DefaultConfig returns the default ingestion policy: deletes evict.
func DefaultConfig() Config {
	return Config{RemoveOnDelete: true}
}

// Ingestor applies raw gateway events to a State.
type Ingestor struct {
	st     *state.State
	cfg    Config
	logger *slog.Logger
}

// NewIngestor builds an Ingestor over st. A nil logger falls back to
// slog.Default.
func NewIngestor(st *state.State, cfg Config) *Ingestor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{st: st, cfg: cfg, logger: logger}
}

// Attach registers the ingestor on a session and returns the handler
// remover.
func (i *Ingestor) Attach(s *discordgo.Session) func() {
	return s.AddHandler(func(_ *discordgo.Session, e *discordgo.Event) {
		i.HandleEvent(e)
	})
}

// HandleEvent routes one raw dispatch event into the caches. Unknown event
// types are ignored; malformed payloads are logged and dropped without
// touching the caches.
func (i *Ingestor) HandleEvent(e *discordgo.Event) {
	if e == nil || e.Type == "" || len(e.RawData) == 0 {
		return
	}

	switch e.Type {
	case "READY":
		i.handleReady(e.RawData)
	case "GUILD_CREATE", "GUILD_UPDATE":
		i.ingest(e.Type, e.RawData, func(o payload.Object) error {
			_, err := i.st.UpsertGuild(o)
			return err
		})
	case "GUILD_DELETE":
		i.handleGuildDelete(e.RawData)
	case "CHANNEL_CREATE", "CHANNEL_UPDATE":
		i.ingest(e.Type, e.RawData, func(o payload.Object) error {
			_, err := i.st.UpsertChannel(o)
			return err
		})
	case "CHANNEL_DELETE":
		i.handleChannelDelete(e.RawData)
	case "GUILD_MEMBER_ADD", "GUILD_MEMBER_UPDATE":
		i.ingest(e.Type, e.RawData, func(o payload.Object) error {
			_, err := i.st.UpsertMember(o)
			return err
		})
	case "GUILD_MEMBER_REMOVE":
		i.handleMemberRemove(e.RawData)
	case "MESSAGE_CREATE", "MESSAGE_UPDATE":
		i.ingest(e.Type, e.RawData, func(o payload.Object) error {
			_, err := i.st.UpsertMessage(o)
			return err
		})
	case "MESSAGE_DELETE":
		i.handleMessageDelete(e.RawData)
	case "MESSAGE_DELETE_BULK":
		i.handleMessageDeleteBulk(e.RawData)
	case "USER_UPDATE":
		i.ingest(e.Type, e.RawData, func(o payload.Object) error {
			_, err := i.st.UpsertUser(o)
			return err
		})
	}
}

func (i *Ingestor) ingest(eventType string, data json.RawMessage, apply func(payload.Object) error) {
	o, err := payload.Parse(data)
	if err != nil {
		i.logger.Warn("dropping undecodable gateway event", "type", eventType, "error", err)
		return
	}
	if err := apply(o); err != nil {
		i.logger.Warn("dropping malformed gateway event", "type", eventType, "error", err)
	}
}

// handleReady ingests the session's own user and merges availability stubs
// into already-cached guilds. Stubs for guilds seen for the first time carry
// no name and cannot be constructed; their guild-create events follow.
func (i *Ingestor) handleReady(data json.RawMessage) {
	o, err := payload.Parse(data)
	if err != nil {
		i.logger.Warn("dropping undecodable ready event", "error", err)
		return
	}
	if user, ok := o.Obj("user"); ok {
		if _, err := i.st.UpsertUser(user); err != nil {
			i.logger.Warn("dropping malformed ready user", "error", err)
		}
	}
	guilds, ok := o.Objs("guilds")
	if !ok {
		return
	}
	for _, g := range guilds {
		if _, err := i.st.UpsertGuild(g); err != nil {
			i.logger.Debug("skipping ready stub for unknown guild", "error", err)
		}
	}
}

// handleGuildDelete distinguishes an outage from a removal: an unavailable
// stub is merged so the cached guild reflects the outage, a real removal
// cascades to the guild's channels and members when the policy allows it.
func (i *Ingestor) handleGuildDelete(data json.RawMessage) {
	o, err := payload.Parse(data)
	if err != nil {
		i.logger.Warn("dropping undecodable gateway event", "type", "GUILD_DELETE", "error", err)
		return
	}
	id, ok := o.Str("id")
	if !ok || id == "" {
		i.logger.Warn("dropping guild delete without id")
		return
	}
	if unavailable, _ := o.Bool("unavailable"); unavailable {
		if _, err := i.st.UpsertGuild(o); err != nil {
			i.logger.Debug("skipping unavailable stub for unknown guild", "guild_id", id)
		}
		return
	}
	if i.cfg.RemoveOnDelete {
		i.st.RemoveGuild(id)
	}
}

func (i *Ingestor) handleChannelDelete(data json.RawMessage) {
	o, err := payload.Parse(data)
	if err != nil {
		i.logger.Warn("dropping undecodable gateway event", "type", "CHANNEL_DELETE", "error", err)
		return
	}
	if id, ok := o.Str("id"); ok && i.cfg.RemoveOnDelete {
		i.st.RemoveChannel(id)
	}
}

// handleMemberRemove drops the membership but keeps the user: the user
// object on the event still describes an existing account, so it is ingested
// either way.
func (i *Ingestor) handleMemberRemove(data json.RawMessage) {
	o, err := payload.Parse(data)
	if err != nil {
		i.logger.Warn("dropping undecodable gateway event", "type", "GUILD_MEMBER_REMOVE", "error", err)
		return
	}
	user, ok := o.Obj("user")
	if !ok {
		i.logger.Warn("dropping member remove without user")
		return
	}
	if _, err := i.st.UpsertUser(user); err != nil {
		i.logger.Warn("dropping malformed member remove user", "error", err)
	}

	gid, _ := o.Str("guild_id")
	uid, _ := user.Str("id")
	if gid != "" && uid != "" && i.cfg.RemoveOnDelete {
		i.st.RemoveMember(gid, uid)
	}
}

func (i *Ingestor) handleMessageDelete(data json.RawMessage) {
	o, err := payload.Parse(data)
	if err != nil {
		i.logger.Warn("dropping undecodable gateway event", "type", "MESSAGE_DELETE", "error", err)
		return
	}
	if id, ok := o.Str("id"); ok && i.cfg.RemoveOnDelete {
		i.st.RemoveMessage(id)
	}
}

func (i *Ingestor) handleMessageDeleteBulk(data json.RawMessage) {
	o, err := payload.Parse(data)
	if err != nil {
		i.logger.Warn("dropping undecodable gateway event", "type", "MESSAGE_DELETE_BULK", "error", err)
		return
	}
	ids, ok := o.Strs("ids")
	if !ok || !i.cfg.RemoveOnDelete {
		return
	}
	for _, id := range ids {
		i.st.RemoveMessage(id)
	}
}
