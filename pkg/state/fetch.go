package state

import (
	"context"
	"errors"

	"github.com/small-frappuccino/discordstate/pkg/rest"
)

// ErrNoTransport is returned by fetch and mutation operations on a State
// built without a REST transport.
var ErrNoTransport = errors.New("state: no transport configured")

func (s *State) transportOrErr() (rest.Client, error) {
	if s.transport == nil {
		return nil, ErrNoTransport
	}
	return s.transport, nil
}

// fetchThrough coalesces concurrent cache-miss fetches for the same key into
// one REST request and ingests the result. A waiter stops waiting when its
// own context is done; the request itself runs under the context of the
// caller that started it. A failed fetch leaves the cache untouched.
func fetchThrough[E Entity](ctx context.Context, s *State, key string, peek func() (E, bool), fetch func(rest.Client) (E, error)) (E, error) {
	var zero E
	t, err := s.transportOrErr()
	if err != nil {
		return zero, err
	}

	ch := s.fetchGroup.DoChan(key, func() (any, error) {
		// Another caller may have completed the fetch between our cache miss
		// and this call starting.
		if e, ok := peek(); ok {
			return e, nil
		}
		return fetch(t)
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(E), nil
	}
}

// FetchChannel returns the cached channel for id, fetching and ingesting it
// on a miss.
func (s *State) FetchChannel(ctx context.Context, id string) (*Channel, error) {
	if ch, ok := s.channels.Get(id); ok {
		return ch, nil
	}
	return fetchThrough(ctx, s, "channel:"+id,
		func() (*Channel, bool) { return s.channels.Peek(id) },
		func(t rest.Client) (*Channel, error) {
			o, err := t.FetchChannel(ctx, id)
			if err != nil {
				return nil, err
			}
			return s.UpsertChannel(o)
		})
}

// FetchGuild returns the cached guild for id, fetching and ingesting it on a
// miss.
func (s *State) FetchGuild(ctx context.Context, id string) (*Guild, error) {
	if g, ok := s.guilds.Get(id); ok {
		return g, nil
	}
	return fetchThrough(ctx, s, "guild:"+id,
		func() (*Guild, bool) { return s.guilds.Peek(id) },
		func(t rest.Client) (*Guild, error) {
			o, err := t.FetchGuild(ctx, id)
			if err != nil {
				return nil, err
			}
			return s.UpsertGuild(o)
		})
}

// FetchUser returns the cached user for id, fetching and ingesting it on a
// miss.
func (s *State) FetchUser(ctx context.Context, id string) (*User, error) {
	if u, ok := s.users.Get(id); ok {
		return u, nil
	}
	return fetchThrough(ctx, s, "user:"+id,
		func() (*User, bool) { return s.users.Peek(id) },
		func(t rest.Client) (*User, error) {
			o, err := t.FetchUser(ctx, id)
			if err != nil {
				return nil, err
			}
			return s.UpsertUser(o)
		})
}

// FetchMember returns the cached member for the guild and user pair,
// fetching and ingesting it on a miss.
func (s *State) FetchMember(ctx context.Context, guildID, userID string) (*Member, error) {
	key := MemberKey(guildID, userID)
	if m, ok := s.members.Get(key); ok {
		return m, nil
	}
	return fetchThrough(ctx, s, "member:"+key,
		func() (*Member, bool) { return s.members.Peek(key) },
		func(t rest.Client) (*Member, error) {
			o, err := t.FetchMember(ctx, guildID, userID)
			if err != nil {
				return nil, err
			}
			return s.UpsertMember(o)
		})
}

// FetchMessage returns the cached message for messageID, fetching and
// ingesting it on a miss.
func (s *State) FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	if m, ok := s.messages.Get(messageID); ok {
		return m, nil
	}
	return fetchThrough(ctx, s, "message:"+messageID,
		func() (*Message, bool) { return s.messages.Peek(messageID) },
		func(t rest.Client) (*Message, error) {
			o, err := t.FetchMessage(ctx, channelID, messageID)
			if err != nil {
				return nil, err
			}
			return s.UpsertMessage(o)
		})
}
