package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/rest"
)

// fakeTransport implements rest.Client with per-operation hooks. Operations
// without a hook fail, so tests notice unexpected remote calls.
type fakeTransport struct {
	mu    sync.Mutex
	calls map[string]int

	fetchChannel     func(ctx context.Context, channelID string) (payload.Object, error)
	fetchGuild       func(ctx context.Context, guildID string) (payload.Object, error)
	fetchUser        func(ctx context.Context, userID string) (payload.Object, error)
	fetchMember      func(ctx context.Context, guildID, userID string) (payload.Object, error)
	fetchMessage     func(ctx context.Context, channelID, messageID string) (payload.Object, error)
	createMessage    func(ctx context.Context, channelID string, params rest.MessageCreate) (payload.Object, error)
	editMessage      func(ctx context.Context, channelID, messageID string, params rest.MessageEdit) (payload.Object, error)
	deleteMessage    func(ctx context.Context, channelID, messageID string) error
	createReaction   func(ctx context.Context, channelID, messageID, emoji string) error
	deleteReaction   func(ctx context.Context, channelID, messageID, emoji, userID string) error
	messageReactions func(ctx context.Context, channelID, messageID, emoji string, limit int) ([]payload.Object, error)
	editChannel      func(ctx context.Context, channelID string, params rest.ChannelEdit) (payload.Object, error)
	deleteChannel    func(ctx context.Context, channelID string) error
	editGuild        func(ctx context.Context, guildID string, params rest.GuildEdit) (payload.Object, error)
	editMember       func(ctx context.Context, guildID, userID string, params rest.MemberEdit) (payload.Object, error)
}

func (f *fakeTransport) count(op string) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeTransport) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeTransport) FetchChannel(ctx context.Context, channelID string) (payload.Object, error) {
	f.count("FetchChannel")
	if f.fetchChannel == nil {
		return nil, fmt.Errorf("unexpected FetchChannel call")
	}
	return f.fetchChannel(ctx, channelID)
}

func (f *fakeTransport) FetchGuild(ctx context.Context, guildID string) (payload.Object, error) {
	f.count("FetchGuild")
	if f.fetchGuild == nil {
		return nil, fmt.Errorf("unexpected FetchGuild call")
	}
	return f.fetchGuild(ctx, guildID)
}

func (f *fakeTransport) FetchUser(ctx context.Context, userID string) (payload.Object, error) {
	f.count("FetchUser")
	if f.fetchUser == nil {
		return nil, fmt.Errorf("unexpected FetchUser call")
	}
	return f.fetchUser(ctx, userID)
}

func (f *fakeTransport) FetchMember(ctx context.Context, guildID, userID string) (payload.Object, error) {
	f.count("FetchMember")
	if f.fetchMember == nil {
		return nil, fmt.Errorf("unexpected FetchMember call")
	}
	return f.fetchMember(ctx, guildID, userID)
}

func (f *fakeTransport) FetchMessage(ctx context.Context, channelID, messageID string) (payload.Object, error) {
	f.count("FetchMessage")
	if f.fetchMessage == nil {
		return nil, fmt.Errorf("unexpected FetchMessage call")
	}
	return f.fetchMessage(ctx, channelID, messageID)
}

func (f *fakeTransport) CreateMessage(ctx context.Context, channelID string, params rest.MessageCreate) (payload.Object, error) {
	f.count("CreateMessage")
	if f.createMessage == nil {
		return nil, fmt.Errorf("unexpected CreateMessage call")
	}
	return f.createMessage(ctx, channelID, params)
}

func (f *fakeTransport) EditMessage(ctx context.Context, channelID, messageID string, params rest.MessageEdit) (payload.Object, error) {
	f.count("EditMessage")
	if f.editMessage == nil {
		return nil, fmt.Errorf("unexpected EditMessage call")
	}
	return f.editMessage(ctx, channelID, messageID, params)
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.count("DeleteMessage")
	if f.deleteMessage == nil {
		return fmt.Errorf("unexpected DeleteMessage call")
	}
	return f.deleteMessage(ctx, channelID, messageID)
}

func (f *fakeTransport) CreateReaction(ctx context.Context, channelID, messageID, emoji string) error {
	f.count("CreateReaction")
	if f.createReaction == nil {
		return fmt.Errorf("unexpected CreateReaction call")
	}
	return f.createReaction(ctx, channelID, messageID, emoji)
}

func (f *fakeTransport) DeleteReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	f.count("DeleteReaction")
	if f.deleteReaction == nil {
		return fmt.Errorf("unexpected DeleteReaction call")
	}
	return f.deleteReaction(ctx, channelID, messageID, emoji, userID)
}

func (f *fakeTransport) MessageReactions(ctx context.Context, channelID, messageID, emoji string, limit int) ([]payload.Object, error) {
	f.count("MessageReactions")
	if f.messageReactions == nil {
		return nil, fmt.Errorf("unexpected MessageReactions call")
	}
	return f.messageReactions(ctx, channelID, messageID, emoji, limit)
}

func (f *fakeTransport) EditChannel(ctx context.Context, channelID string, params rest.ChannelEdit) (payload.Object, error) {
	f.count("EditChannel")
	if f.editChannel == nil {
		return nil, fmt.Errorf("unexpected EditChannel call")
	}
	return f.editChannel(ctx, channelID, params)
}

func (f *fakeTransport) DeleteChannel(ctx context.Context, channelID string) error {
	f.count("DeleteChannel")
	if f.deleteChannel == nil {
		return fmt.Errorf("unexpected DeleteChannel call")
	}
	return f.deleteChannel(ctx, channelID)
}

func (f *fakeTransport) EditGuild(ctx context.Context, guildID string, params rest.GuildEdit) (payload.Object, error) {
	f.count("EditGuild")
	if f.editGuild == nil {
		return nil, fmt.Errorf("unexpected EditGuild call")
	}
	return f.editGuild(ctx, guildID, params)
}

func (f *fakeTransport) EditMember(ctx context.Context, guildID, userID string, params rest.MemberEdit) (payload.Object, error) {
	f.count("EditMember")
	if f.editMember == nil {
		return nil, fmt.Errorf("unexpected EditMember call")
	}
	return f.editMember(ctx, guildID, userID, params)
}
