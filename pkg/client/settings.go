package client

import (
	"fmt"
	"time"

	"github.com/small-frappuccino/discordstate/pkg/util"
)

// Settings is the on-disk companion of Config, stored as JSON under the
// application's config directory (util.GetSettingsFilePath). Every field is a
// pointer so an absent key leaves the corresponding Config value alone, the
// same overlay rule the caches apply to payloads. Environment variables still
// override anything set here.
type Settings struct {
	GuildCacheLimit   *int    `json:"guild_cache_limit,omitempty"`
	ChannelCacheLimit *int    `json:"channel_cache_limit,omitempty"`
	UserCacheLimit    *int    `json:"user_cache_limit,omitempty"`
	MemberCacheLimit  *int    `json:"member_cache_limit,omitempty"`
	MessageCacheLimit *int    `json:"message_cache_limit,omitempty"`

	RemoveOnDelete *bool `json:"remove_on_delete,omitempty"`

	DBPath *string `json:"db_path,omitempty"`

	// PersistInterval is a time.ParseDuration string such as "30m".
	PersistInterval *string `json:"persist_interval,omitempty"`

	LogLevel  *string `json:"log_level,omitempty"`
	LogFormat *string `json:"log_format,omitempty"`
	LogToFile *bool   `json:"log_to_file,omitempty"`
}

// LoadSettings reads the settings file at path. A missing file yields empty
// settings and no error.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if err := util.NewJSONManager(path).Load(&s); err != nil {
		return Settings{}, fmt.Errorf("load settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes the settings file at path, creating directories as
// needed. The write is atomic, so a crash never leaves a truncated file.
func SaveSettings(path string, s Settings) error {
	if err := util.NewJSONManager(path).Save(s); err != nil {
		return fmt.Errorf("save settings %s: %w", path, err)
	}
	return nil
}

// withSettings overlays the fields present in s onto cfg.
func (cfg Config) withSettings(s Settings) Config {
	if s.GuildCacheLimit != nil {
		cfg.GuildCacheLimit = *s.GuildCacheLimit
	}
	if s.ChannelCacheLimit != nil {
		cfg.ChannelCacheLimit = *s.ChannelCacheLimit
	}
	if s.UserCacheLimit != nil {
		cfg.UserCacheLimit = *s.UserCacheLimit
	}
	if s.MemberCacheLimit != nil {
		cfg.MemberCacheLimit = *s.MemberCacheLimit
	}
	if s.MessageCacheLimit != nil {
		cfg.MessageCacheLimit = *s.MessageCacheLimit
	}
	if s.RemoveOnDelete != nil {
		cfg.RemoveOnDelete = *s.RemoveOnDelete
	}
	if s.DBPath != nil {
		cfg.DBPath = *s.DBPath
	}
	if s.PersistInterval != nil {
		if d, err := time.ParseDuration(*s.PersistInterval); err == nil {
			cfg.PersistInterval = d
		}
	}
	if s.LogLevel != nil {
		cfg.LogLevel = *s.LogLevel
	}
	if s.LogFormat != nil {
		cfg.LogFormat = *s.LogFormat
	}
	if s.LogToFile != nil {
		cfg.LogToFile = *s.LogToFile
	}
	return cfg
}
