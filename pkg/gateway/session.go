package gateway

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/small-frappuccino/discordstate/pkg/errutil"
	"github.com/small-frappuccino/discordstate/pkg/util"
)

// NewSession creates a configured but unconnected gateway session. The token
// may be passed bare or already carrying its "Bot " or "Bearer " auth scheme.
// The session's built-in state tracking is disabled; the caches own that job.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("gateway token is empty")
	}
	if !util.HasAnyPrefix(token, "Bot ", "Bearer ") {
		token = "Bot " + token
	}

	var s *discordgo.Session
	if err := errutil.HandleTransportError("create_session", func() error {
		var sessionErr error
		s, sessionErr = discordgo.New(token)
		return sessionErr
	}); err != nil {
		return nil, fmt.Errorf("failed to create gateway session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	s.StateEnabled = false

	return s, nil
}
