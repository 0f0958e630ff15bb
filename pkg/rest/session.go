package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/small-frappuccino/discordstate/pkg/payload"
)

// Session implements Client over a discordgo session. The same underlying
// session typically also feeds the gateway ingestor, so constructing one here
// performs no I/O of its own.
type Session struct {
	dg *discordgo.Session
}

// NewSession wraps a discordgo session.
func NewSession(dg *discordgo.Session) *Session {
	return &Session{dg: dg}
}

func (s *Session) FetchChannel(ctx context.Context, channelID string) (payload.Object, error) {
	ch, err := s.dg.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("GET", "/channels/"+channelID, nil, err)
	}
	return toObject(ch)
}

func (s *Session) FetchGuild(ctx context.Context, guildID string) (payload.Object, error) {
	g, err := s.dg.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("GET", "/guilds/"+guildID, nil, err)
	}
	return toObject(g)
}

func (s *Session) FetchUser(ctx context.Context, userID string) (payload.Object, error) {
	u, err := s.dg.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("GET", "/users/"+userID, nil, err)
	}
	return toObject(u)
}

func (s *Session) FetchMember(ctx context.Context, guildID, userID string) (payload.Object, error) {
	m, err := s.dg.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("GET", "/guilds/"+guildID+"/members/"+userID, nil, err)
	}
	o, err := toObject(m)
	if err != nil {
		return nil, err
	}
	// The members endpoint does not echo the guild id; inject the one we
	// asked for so the payload can key itself.
	setStr(o, "guild_id", guildID)
	return o, nil
}

func (s *Session) FetchMessage(ctx context.Context, channelID, messageID string) (payload.Object, error) {
	m, err := s.dg.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("GET", "/channels/"+channelID+"/messages/"+messageID, nil, err)
	}
	return toObject(m)
}

func (s *Session) CreateMessage(ctx context.Context, channelID string, params MessageCreate) (payload.Object, error) {
	send, err := params.toDiscord()
	if err != nil {
		return nil, err
	}
	path := "/channels/" + channelID + "/messages"
	m, err := s.dg.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("POST", path, encodeBody(send), err)
	}
	return toObject(m)
}

func (s *Session) EditMessage(ctx context.Context, channelID, messageID string, params MessageEdit) (payload.Object, error) {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	edit.Content = params.Content
	if params.Embeds != nil {
		embeds, err := embedsToDiscord(params.Embeds)
		if err != nil {
			return nil, err
		}
		edit.Embeds = &embeds
	}
	path := "/channels/" + channelID + "/messages/" + messageID
	m, err := s.dg.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("PATCH", path, encodeBody(edit), err)
	}
	return toObject(m)
}

func (s *Session) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := "/channels/" + channelID + "/messages/" + messageID
	if err := s.dg.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return wrapErr("DELETE", path, nil, err)
	}
	return nil
}

func (s *Session) CreateReaction(ctx context.Context, channelID, messageID, emoji string) error {
	path := "/channels/" + channelID + "/messages/" + messageID + "/reactions/" + emoji + "/@me"
	if err := s.dg.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return wrapErr("PUT", path, nil, err)
	}
	return nil
}

func (s *Session) DeleteReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	path := "/channels/" + channelID + "/messages/" + messageID + "/reactions/" + emoji + "/" + userID
	if err := s.dg.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx)); err != nil {
		return wrapErr("DELETE", path, nil, err)
	}
	return nil
}

func (s *Session) MessageReactions(ctx context.Context, channelID, messageID, emoji string, limit int) ([]payload.Object, error) {
	path := "/channels/" + channelID + "/messages/" + messageID + "/reactions/" + emoji
	users, err := s.dg.MessageReactions(channelID, messageID, emoji, limit, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("GET", path, nil, err)
	}
	out := make([]payload.Object, 0, len(users))
	for _, u := range users {
		o, err := toObject(u)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Session) EditChannel(ctx context.Context, channelID string, params ChannelEdit) (payload.Object, error) {
	edit := &discordgo.ChannelEdit{
		NSFW:             params.NSFW,
		Position:         params.Position,
		RateLimitPerUser: params.RateLimitPerUser,
	}
	if params.Name != nil {
		edit.Name = *params.Name
	}
	if params.Topic != nil {
		edit.Topic = *params.Topic
	}
	path := "/channels/" + channelID
	ch, err := s.dg.ChannelEditComplex(channelID, edit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("PATCH", path, encodeBody(edit), err)
	}
	return toObject(ch)
}

func (s *Session) DeleteChannel(ctx context.Context, channelID string) error {
	path := "/channels/" + channelID
	if _, err := s.dg.ChannelDelete(channelID, discordgo.WithContext(ctx)); err != nil {
		return wrapErr("DELETE", path, nil, err)
	}
	return nil
}

func (s *Session) EditGuild(ctx context.Context, guildID string, params GuildEdit) (payload.Object, error) {
	gp := &discordgo.GuildParams{}
	if params.Name != nil {
		gp.Name = *params.Name
	}
	if params.Description != nil {
		gp.Description = *params.Description
	}
	if params.AFKTimeout != nil {
		gp.AfkTimeout = *params.AFKTimeout
	}
	path := "/guilds/" + guildID
	g, err := s.dg.GuildEdit(guildID, gp, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("PATCH", path, encodeBody(gp), err)
	}
	return toObject(g)
}

func (s *Session) EditMember(ctx context.Context, guildID, userID string, params MemberEdit) (payload.Object, error) {
	mp := &discordgo.GuildMemberParams{
		Roles:     params.Roles,
		Mute:      params.Mute,
		Deaf:      params.Deaf,
		ChannelID: params.ChannelID,
	}
	if params.Nick != nil {
		mp.Nick = *params.Nick
	}
	path := "/guilds/" + guildID + "/members/" + userID
	m, err := s.dg.GuildMemberEdit(guildID, userID, mp, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("PATCH", path, encodeBody(mp), err)
	}
	o, err := toObject(m)
	if err != nil {
		return nil, err
	}
	setStr(o, "guild_id", guildID)
	return o, nil
}

func (p MessageCreate) toDiscord() (*discordgo.MessageSend, error) {
	send := &discordgo.MessageSend{
		Content: p.Content,
		TTS:     p.TTS,
	}
	embeds, err := embedsToDiscord(p.Embeds)
	if err != nil {
		return nil, err
	}
	send.Embeds = embeds
	if p.AllowedMentions != nil {
		var am discordgo.MessageAllowedMentions
		if err := decodeObject(p.AllowedMentions, &am); err != nil {
			return nil, fmt.Errorf("decode allowed mentions: %w", err)
		}
		send.AllowedMentions = &am
	}
	if p.Reference != nil {
		send.Reference = &discordgo.MessageReference{
			MessageID: p.Reference.MessageID,
			ChannelID: p.Reference.ChannelID,
			GuildID:   p.Reference.GuildID,
		}
	}
	return send, nil
}

func embedsToDiscord(objs []payload.Object) ([]*discordgo.MessageEmbed, error) {
	if len(objs) == 0 {
		return nil, nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(objs))
	for _, o := range objs {
		var e discordgo.MessageEmbed
		if err := decodeObject(o, &e); err != nil {
			return nil, fmt.Errorf("decode embed: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}

func decodeObject(o payload.Object, dst any) error {
	data, err := o.Encode()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// toObject re-encodes a discordgo model to a raw payload. Because discordgo's
// response models marshal every field, a REST result is a complete object;
// the one exception handled here is guild_id, which several endpoints never
// return and discordgo zero-fills. An empty guild_id would corrupt a cached
// one on merge, so it is dropped instead.
func toObject(v any) (payload.Object, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode transport result: %w", err)
	}
	o, err := payload.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decode transport result: %w", err)
	}
	pruneEmptyStr(o, "guild_id")
	return o, nil
}

func pruneEmptyStr(o payload.Object, key string) {
	if s, ok := o.Str(key); ok && s == "" {
		delete(o, key)
	}
}

func setStr(o payload.Object, key, value string) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	o[key] = raw
}

// wrapErr maps a discordgo failure to a *RemoteError when the platform
// rejected the request, and otherwise wraps it with the attempted endpoint.
// Context cancellation surfaces unchanged through the wrapping.
func wrapErr(method, path string, body []byte, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		re := &RemoteError{Method: method, Path: path, Body: body}
		if restErr.Response != nil {
			re.Status = restErr.Response.StatusCode
		}
		if restErr.Message != nil {
			re.Code = restErr.Message.Code
			re.Message = restErr.Message.Message
		} else if len(restErr.ResponseBody) > 0 {
			re.Message = string(restErr.ResponseBody)
		}
		return re
	}
	return fmt.Errorf("%s %s: %w", method, path, err)
}

func encodeBody(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
