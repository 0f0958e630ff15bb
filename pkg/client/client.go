// Package client wires the entity caches, gateway ingestor, REST transport,
// and snapshot persistence into one connectable unit.
package client

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/small-frappuccino/discordstate/pkg/errutil"
	"github.com/small-frappuccino/discordstate/pkg/gateway"
	"github.com/small-frappuccino/discordstate/pkg/log"
	"github.com/small-frappuccino/discordstate/pkg/rest"
	"github.com/small-frappuccino/discordstate/pkg/state"
	"github.com/small-frappuccino/discordstate/pkg/storage"
	"github.com/small-frappuccino/discordstate/pkg/util"
)

// Client owns one gateway connection and the caches fed by it.
type Client struct {
	cfg      Config
	logger   *slog.Logger
	st       *state.State
	store    *storage.Store
	dbPath   string
	session  *discordgo.Session
	ingestor *gateway.Ingestor

	mu          sync.Mutex
	opened      bool
	detach      func()
	persistStop chan struct{}
	persistDone chan struct{}
}

// New builds a client from cfg without connecting anywhere. The caches and,
// when a token is configured, the REST transport are usable immediately;
// Open starts the event stream and persistence.
func New(cfg Config) (*Client, error) {
	util.SetAppName(cfg.AppName)

	logCfg := log.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	if cfg.LogToFile {
		logCfg.FilePath = util.GetLogFilePath()
	}
	logger, err := log.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("configure logger: %w", err)
	}

	var (
		session   *discordgo.Session
		transport rest.Client
	)
	if cfg.Token != "" {
		session, err = gateway.NewSession(cfg.Token)
		if err != nil {
			return nil, err
		}
		transport = rest.NewSession(session)
	}

	st := state.New(state.Config{
		GuildCacheLimit:   cfg.GuildCacheLimit,
		ChannelCacheLimit: cfg.ChannelCacheLimit,
		UserCacheLimit:    cfg.UserCacheLimit,
		MemberCacheLimit:  cfg.MemberCacheLimit,
		MessageCacheLimit: cfg.MessageCacheLimit,
		Transport:         transport,
		Logger:            logger,
	})

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = util.GetSnapshotDBPath()
	}

	return &Client{
		cfg:      cfg,
		logger:   logger,
		st:       st,
		store:    storage.NewStore(dbPath),
		dbPath:   dbPath,
		session:  session,
		ingestor: gateway.NewIngestor(st, gateway.Config{RemoveOnDelete: cfg.RemoveOnDelete, Logger: logger}),
	}, nil
}

// State exposes the entity caches.
func (c *Client) State() *state.State {
	return c.st
}

// Session exposes the underlying gateway session, nil when the client was
// built without a token.
func (c *Client) Session() *discordgo.Session {
	return c.session
}

// Stats returns a snapshot of every cache's counters.
func (c *Client) Stats() state.Stats {
	return c.st.Stats()
}

// Open initializes the snapshot store, warms the caches from it, connects to
// the gateway, and starts periodic persistence. Opening an already open
// client is a no-op.
func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opened {
		return nil
	}
	if c.session == nil {
		return fmt.Errorf("no token configured")
	}

	if err := util.EnsureCacheDirs(); err != nil {
		return fmt.Errorf("create cache directories: %w", err)
	}
	if err := errutil.HandleStorageError("init_store", c.dbPath, c.store.Init); err != nil {
		return err
	}

	if err := c.st.Warmup(c.store); err != nil {
		c.logger.Warn("cache warmup failed; continuing with cold caches", "error", err)
	} else {
		stats := c.st.Stats()
		c.logger.Info("caches warmed from snapshots",
			"guilds", stats.Guilds.Size,
			"channels", stats.Channels.Size,
			"users", stats.Users.Size,
			"members", stats.Members.Size,
			"messages", stats.Messages.Size,
		)
	}

	c.detach = c.ingestor.Attach(c.session)
	if err := errutil.HandleTransportError("open_gateway", c.session.Open); err != nil {
		c.detach()
		c.detach = nil
		return fmt.Errorf("connect gateway: %w", err)
	}

	if c.cfg.PersistInterval > 0 {
		c.persistStop = make(chan struct{})
		c.persistDone = make(chan struct{})
		go c.persistLoop(c.cfg.PersistInterval, c.persistStop, c.persistDone)
	}

	c.opened = true
	c.logger.Info("gateway connected", "app", c.cfg.AppName)
	return nil
}

// Close stops persistence, takes a final snapshot, and closes the gateway
// connection and the snapshot store. Closing a client that was never opened
// is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.opened {
		return nil
	}
	c.opened = false

	if c.detach != nil {
		c.detach()
		c.detach = nil
	}
	if c.persistStop != nil {
		close(c.persistStop)
		<-c.persistDone
		c.persistStop = nil
		c.persistDone = nil
	}

	persistErr := errutil.HandleStorageError("final_persist", c.dbPath, func() error {
		return c.st.Persist(c.store)
	})
	sessionErr := c.session.Close()
	storeErr := c.store.Close()
	return errors.Join(persistErr, sessionErr, storeErr)
}

func (c *Client) persistLoop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			err := errutil.HandleStorageError("persist_snapshots", c.dbPath, func() error {
				return c.st.Persist(c.store)
			})
			if err == nil {
				c.logger.Debug("persisted cache snapshots")
			}
		}
	}
}

// Run bootstraps a client from the settings file and environment and blocks
// until an interrupt. appName affects config, cache, and log paths; tokenEnv
// names the environment variable holding the token, resolved with the
// $HOME/.local/bin/.env fallback file.
func Run(appName, tokenEnv string) error {
	started := time.Now()

	// The settings file lives under the app's config directory; the name
	// must be pinned before LoadConfig resolves paths.
	name := appName
	if name == "" {
		name = util.EnvString("DISCORDSTATE_APP_NAME", "")
	}
	util.SetAppName(name)

	token, loadErr := util.LoadEnvWithLocalBinFallback(tokenEnv)

	cfg, settingsErr := LoadConfig()
	if appName != "" {
		cfg.AppName = appName
	}
	cfg.Token = token

	c, err := New(cfg)
	if err != nil {
		return err
	}
	if loadErr != nil {
		c.logger.Warn("environment fallback load", "error", loadErr)
	}
	if settingsErr != nil {
		c.logger.Warn("settings file load", "error", settingsErr)
	}
	if token == "" {
		return fmt.Errorf("%s not set in environment or .env file", tokenEnv)
	}

	if err := c.Open(); err != nil {
		return err
	}
	c.logger.Info("client initialized", "app", cfg.AppName, "startup", time.Since(started).Round(time.Millisecond))
	c.logger.Info("running; press Ctrl+C to stop")

	util.WaitForInterrupt()
	c.logger.Info("shutting down", "app", cfg.AppName)
	return c.Close()
}
