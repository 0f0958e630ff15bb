package client

import (
	"time"

	"github.com/small-frappuccino/discordstate/pkg/state"
	"github.com/small-frappuccino/discordstate/pkg/util"
)

// Config assembles everything a Client needs. Zero values mean "use the
// default"; build one with DefaultConfig or FromEnv and adjust fields.
type Config struct {
	// AppName affects config, cache, and log paths.
	AppName string

	// Token authenticates the gateway and REST sessions. A client built
	// without a token works offline: caches, ingestion, and persistence are
	// usable, Open fails.
	Token string

	GuildCacheLimit   int
	ChannelCacheLimit int
	UserCacheLimit    int
	MemberCacheLimit  int
	MessageCacheLimit int

	// RemoveOnDelete makes remote delete events evict cached entities.
	RemoveOnDelete bool

	// DBPath overrides the platform snapshot database location.
	DBPath string

	// PersistInterval is how often caches are snapshotted to the database
	// while connected. Zero or below disables the periodic snapshots; a
	// final snapshot still runs on Close.
	PersistInterval time.Duration

	LogLevel  string
	LogFormat string
	LogToFile bool
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	sc := state.DefaultConfig()
	return Config{
		AppName:           "discordstate",
		GuildCacheLimit:   sc.GuildCacheLimit,
		ChannelCacheLimit: sc.ChannelCacheLimit,
		UserCacheLimit:    sc.UserCacheLimit,
		MemberCacheLimit:  sc.MemberCacheLimit,
		MessageCacheLimit: sc.MessageCacheLimit,
		RemoveOnDelete:    true,
		PersistInterval:   time.Hour,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// FromEnv returns DefaultConfig with DISCORDSTATE_* environment overrides
// applied. The token is intentionally not read here; Run resolves it through
// the env fallback file.
func FromEnv() Config {
	return DefaultConfig().withEnv()
}

// LoadConfig resolves the effective configuration in precedence order:
// defaults, then the on-disk settings file, then environment variables. A
// missing settings file is normal; an unreadable one is reported alongside
// the config built from the remaining layers.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	settings, err := LoadSettings(util.GetSettingsFilePath())
	if err == nil {
		cfg = cfg.withSettings(settings)
	}
	return cfg.withEnv(), err
}

func (cfg Config) withEnv() Config {
	cfg.AppName = util.EnvString("DISCORDSTATE_APP_NAME", cfg.AppName)
	cfg.GuildCacheLimit = util.EnvInt("DISCORDSTATE_GUILD_CACHE_LIMIT", cfg.GuildCacheLimit)
	cfg.ChannelCacheLimit = util.EnvInt("DISCORDSTATE_CHANNEL_CACHE_LIMIT", cfg.ChannelCacheLimit)
	cfg.UserCacheLimit = util.EnvInt("DISCORDSTATE_USER_CACHE_LIMIT", cfg.UserCacheLimit)
	cfg.MemberCacheLimit = util.EnvInt("DISCORDSTATE_MEMBER_CACHE_LIMIT", cfg.MemberCacheLimit)
	cfg.MessageCacheLimit = util.EnvInt("DISCORDSTATE_MESSAGE_CACHE_LIMIT", cfg.MessageCacheLimit)
	if util.EnvBool("DISCORDSTATE_KEEP_DELETED") {
		cfg.RemoveOnDelete = false
	}
	cfg.DBPath = util.EnvString("DISCORDSTATE_DB_PATH", cfg.DBPath)
	cfg.PersistInterval = util.EnvDuration("DISCORDSTATE_PERSIST_INTERVAL", cfg.PersistInterval)
	cfg.LogLevel = util.EnvString("DISCORDSTATE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = util.EnvString("DISCORDSTATE_LOG_FORMAT", cfg.LogFormat)
	if util.EnvBool("DISCORDSTATE_LOG_TO_FILE") {
		cfg.LogToFile = true
	}
	return cfg
}
