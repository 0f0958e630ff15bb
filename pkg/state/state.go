// Package state holds the entity cache layer: one bounded FIFO cache per
// entity kind, fed raw payloads from the gateway and REST responses. Each
// kind keeps a single representative entity per identity key, updated in
// place by partial merges, so every holder of an entity pointer observes the
// same live view. Cross-references between kinds are stored as ids and
// resolved lazily against the caches.
package state

import (
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/small-frappuccino/discordstate/pkg/cache"
	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/rest"
	"github.com/small-frappuccino/discordstate/pkg/util"
)

// Config carries the per-kind cache limits and the optional REST transport.
// A limit of zero or below leaves that cache unbounded.
type Config struct {
	GuildCacheLimit   int
	ChannelCacheLimit int
	UserCacheLimit    int
	MemberCacheLimit  int
	MessageCacheLimit int

	// Transport backs fetch-through lookups and entity operations. Leaving
	// it nil produces a cache-only state: reads and ingestion work, fetches
	// and mutations return ErrNoTransport.
	Transport rest.Client

	Logger *slog.Logger
}

// DefaultConfig returns the default cache limits.
func DefaultConfig() Config {
	return Config{
		GuildCacheLimit:   100,
		ChannelCacheLimit: 1000,
		UserCacheLimit:    10000,
		MemberCacheLimit:  10000,
		MessageCacheLimit: 1000,
	}
}

// State owns the per-kind entity managers and the guild-to-channel index.
type State struct {
	guilds   *Manager[*Guild]
	channels *Manager[*Channel]
	users    *Manager[*User]
	members  *Manager[*Member]
	messages *Manager[*Message]

	indexMu         sync.RWMutex
	guildToChannels map[string]map[string]struct{}

	transport rest.Client
	logger    *slog.Logger

	fetchGroup singleflight.Group
}

// New builds a State from cfg. A nil logger falls back to slog.Default.
func New(cfg Config) *State {
	st := &State{
		guildToChannels: make(map[string]map[string]struct{}),
		transport:       cfg.Transport,
		logger:          cfg.Logger,
	}
	if st.logger == nil {
		st.logger = slog.Default()
	}

	st.guilds = newManager(guildSpec.Kind, cfg.GuildCacheLimit, nil, guildKey,
		func(o payload.Object) (*Guild, error) { return newGuild(st, o) })
	st.channels = newManager(channelSpec.Kind, cfg.ChannelCacheLimit,
		func(_ string, ch *Channel) { st.unindexChannelEntity(ch) },
		channelKey,
		func(o payload.Object) (*Channel, error) { return newChannel(st, o) })
	st.users = newManager(userSpec.Kind, cfg.UserCacheLimit, nil, userKey,
		func(o payload.Object) (*User, error) { return newUser(st, o) })
	st.members = newManager(memberKind, cfg.MemberCacheLimit, nil, memberKey,
		func(o payload.Object) (*Member, error) { return newMember(st, o) })
	st.messages = newManager(messageSpec.Kind, cfg.MessageCacheLimit, nil, messageKey,
		func(o payload.Object) (*Message, error) { return newMessage(st, o) })

	return st
}

// embeddedGuildKeys are the guild-create arrays that are ingested through
// their own managers instead of being stored on the guild entity.
var embeddedGuildKeys = []string{"channels", "members", "threads", "presences", "voice_states"}

// UpsertGuild ingests a guild payload. Channel and member arrays embedded in
// the payload are split out and ingested through their own managers with the
// guild id injected; the stored guild keeps only its own fields. Malformed
// embedded payloads are logged and dropped without failing the guild upsert.
func (s *State) UpsertGuild(o payload.Object) (*Guild, error) {
	stored := o
	if o != nil {
		stored = make(payload.Object, len(o))
		for k, v := range o {
			stored[k] = v
		}
		for _, k := range embeddedGuildKeys {
			delete(stored, k)
		}
	}

	g, err := s.guilds.Upsert(stored)
	if err != nil {
		return nil, err
	}

	gid := g.ID()
	if channels, ok := o.Objs("channels"); ok {
		for _, ch := range channels {
			ch.SetStr("guild_id", gid)
			if _, err := s.UpsertChannel(ch); err != nil {
				s.logger.Warn("dropping malformed embedded channel", "guild_id", gid, "error", err)
			}
		}
	}
	if members, ok := o.Objs("members"); ok {
		for _, m := range members {
			m.SetStr("guild_id", gid)
			if _, err := s.UpsertMember(m); err != nil {
				s.logger.Warn("dropping malformed embedded member", "guild_id", gid, "error", err)
			}
		}
	}
	return g, nil
}

// UpsertChannel ingests a channel payload and records it in the guild index.
func (s *State) UpsertChannel(o payload.Object) (*Channel, error) {
	ch, err := s.channels.Upsert(o)
	if err != nil {
		return nil, err
	}
	if gid, ok := ch.GuildID(); ok {
		s.indexChannel(gid, ch.ID())
	}
	return ch, nil
}

// UpsertUser ingests a user payload.
func (s *State) UpsertUser(o payload.Object) (*User, error) {
	return s.users.Upsert(o)
}

// UpsertMember ingests a member payload and its embedded user.
func (s *State) UpsertMember(o payload.Object) (*Member, error) {
	m, err := s.members.Upsert(o)
	if err != nil {
		return nil, err
	}
	if user, ok := o.Obj("user"); ok {
		if _, err := s.users.Upsert(user); err != nil {
			s.logger.Warn("dropping malformed embedded user", "member", m.Key(), "error", err)
		}
	}
	return m, nil
}

// UpsertMessage ingests a message payload together with the author and
// partial member objects embedded in it. The member payload on a message
// carries neither guild_id nor user, so both are injected before ingestion.
func (s *State) UpsertMessage(o payload.Object) (*Message, error) {
	msg, err := s.messages.Upsert(o)
	if err != nil {
		return nil, err
	}

	author, hasAuthor := o.Obj("author")
	if hasAuthor {
		if _, err := s.users.Upsert(author); err != nil {
			s.logger.Warn("dropping malformed message author", "message_id", msg.ID(), "error", err)
			hasAuthor = false
		}
	}

	if member, ok := o.Obj("member"); ok && hasAuthor {
		if gid, ok := o.Str("guild_id"); ok {
			rawAuthor, _ := o.Raw("author")
			member.SetStr("guild_id", gid)
			member.SetRaw("user", rawAuthor)
			if _, err := s.members.Upsert(member); err != nil {
				s.logger.Warn("dropping malformed message member", "message_id", msg.ID(), "error", err)
			}
		}
	}
	return msg, nil
}

// RemoveGuild drops a guild and everything cached under it: the guild's
// channels and members. Users are shared across guilds and stay cached.
func (s *State) RemoveGuild(id string) bool {
	removed := s.guilds.Remove(id)

	s.indexMu.Lock()
	ids := s.guildToChannels[id]
	delete(s.guildToChannels, id)
	s.indexMu.Unlock()
	for cid := range ids {
		s.channels.Remove(cid)
	}

	prefix := id + ":"
	for _, key := range s.members.Keys() {
		if util.HasPrefix(key, prefix) {
			s.members.Remove(key)
		}
	}
	return removed
}

// RemoveChannel drops a channel from the cache and the guild index.
func (s *State) RemoveChannel(id string) bool {
	ch, ok := s.channels.Peek(id)
	removed := s.channels.Remove(id)
	if ok {
		s.unindexChannelEntity(ch)
	}
	return removed
}

// RemoveUser drops a user from the cache.
func (s *State) RemoveUser(id string) bool {
	return s.users.Remove(id)
}

// RemoveMember drops a guild member from the cache.
func (s *State) RemoveMember(guildID, userID string) bool {
	return s.members.Remove(MemberKey(guildID, userID))
}

// RemoveMessage drops a message from the cache.
func (s *State) RemoveMessage(id string) bool {
	return s.messages.Remove(id)
}

// Guild returns the cached guild for id.
func (s *State) Guild(id string) (*Guild, bool) {
	return s.guilds.Get(id)
}

// Channel returns the cached channel for id.
func (s *State) Channel(id string) (*Channel, bool) {
	return s.channels.Get(id)
}

// User returns the cached user for id.
func (s *State) User(id string) (*User, bool) {
	return s.users.Get(id)
}

// Member returns the cached member for the guild and user pair.
func (s *State) Member(guildID, userID string) (*Member, bool) {
	return s.members.Get(MemberKey(guildID, userID))
}

// Message returns the cached message for id.
func (s *State) Message(id string) (*Message, bool) {
	return s.messages.Get(id)
}

// Guilds returns all cached guilds in insertion order.
func (s *State) Guilds() []*Guild {
	return s.guilds.Values()
}

// Channels returns all cached channels in insertion order.
func (s *State) Channels() []*Channel {
	return s.channels.Values()
}

// Users returns all cached users in insertion order.
func (s *State) Users() []*User {
	return s.users.Values()
}

// Members returns all cached members in insertion order.
func (s *State) Members() []*Member {
	return s.members.Values()
}

// Messages returns all cached messages in insertion order.
func (s *State) Messages() []*Message {
	return s.messages.Values()
}

// GuildChannels returns the cached channels of a guild, resolved through the
// guild index and sorted by channel id. Channels that fell out of the cache
// since they were indexed are skipped.
func (s *State) GuildChannels(guildID string) []*Channel {
	s.indexMu.RLock()
	ids := make([]string, 0, len(s.guildToChannels[guildID]))
	for cid := range s.guildToChannels[guildID] {
		ids = append(ids, cid)
	}
	s.indexMu.RUnlock()
	sort.Strings(ids)

	channels := make([]*Channel, 0, len(ids))
	for _, cid := range ids {
		if ch, ok := s.channels.Peek(cid); ok {
			channels = append(channels, ch)
		}
	}
	return channels
}

// GuildMembers returns the cached members of a guild in insertion order,
// found by scanning the composite member keys.
func (s *State) GuildMembers(guildID string) []*Member {
	prefix := guildID + ":"
	var members []*Member
	for _, key := range s.members.Keys() {
		if !util.HasPrefix(key, prefix) {
			continue
		}
		if m, ok := s.members.Peek(key); ok {
			members = append(members, m)
		}
	}
	return members
}

// Stats bundles per-kind cache counter snapshots.
type Stats struct {
	Guilds   cache.Stats `json:"guilds"`
	Channels cache.Stats `json:"channels"`
	Users    cache.Stats `json:"users"`
	Members  cache.Stats `json:"members"`
	Messages cache.Stats `json:"messages"`
}

// Stats returns a snapshot of every cache's counters.
func (s *State) Stats() Stats {
	return Stats{
		Guilds:   s.guilds.Stats(),
		Channels: s.channels.Stats(),
		Users:    s.users.Stats(),
		Members:  s.members.Stats(),
		Messages: s.messages.Stats(),
	}
}

func (s *State) indexChannel(guildID, channelID string) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	set, ok := s.guildToChannels[guildID]
	if !ok {
		set = make(map[string]struct{})
		s.guildToChannels[guildID] = set
	}
	set[channelID] = struct{}{}
}

func (s *State) unindexChannel(guildID, channelID string) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	set, ok := s.guildToChannels[guildID]
	if !ok {
		return
	}
	delete(set, channelID)
	if len(set) == 0 {
		delete(s.guildToChannels, guildID)
	}
}

// unindexChannelEntity removes a channel from the guild index when it leaves
// the cache, whether by explicit removal or capacity eviction.
func (s *State) unindexChannelEntity(ch *Channel) {
	if gid, ok := ch.GuildID(); ok {
		s.unindexChannel(gid, ch.ID())
	}
}
