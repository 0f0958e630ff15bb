package example

// Example usage of the snapshot store for offline cache inspection:
//
//	import (
//		"fmt"
//		"log"
//
//		"github.com/small-frappuccino/discordstate/pkg/client"
//		"github.com/small-frappuccino/discordstate/pkg/storage"
//		"github.com/small-frappuccino/discordstate/pkg/util"
//	)
//
//	// A client built without a token never talks to Discord; its caches,
//	// ingestion, and persistence still work.
//	cfg := client.DefaultConfig()
//	cfg.AppName = "my-bot"
//	c, err := client.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load whatever the last connected run left on disk.
//	store := storage.NewStore(util.GetSnapshotDBPath())
//	if err := store.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := c.State().Warmup(store); err != nil {
//		log.Fatal(err)
//	}
//
//	for _, g := range c.State().Guilds() {
//		fmt.Printf("%s: %d cached channels\n", g.Name(), len(g.Channels()))
//	}
//
// This allows tooling (reports, migrations, debugging) to work against the
// cached object graph without ever opening a gateway connection.

// Example of feeding the caches by hand, e.g. from recorded payloads:
//
//	import "github.com/small-frappuccino/discordstate/pkg/payload"
//
//	st := c.State()
//	st.UpsertGuild(payload.MustParse(`{"id":"90001","name":"archive"}`))
//	st.UpsertChannel(payload.MustParse(`{"id":"90002","guild_id":"90001","name":"general","type":0}`))
//
//	// Updates merge field by field: absent fields keep their cached value,
//	// JSON null clears a field.
//	st.UpsertChannel(payload.MustParse(`{"id":"90002","topic":"hello"}`))
//	st.UpsertChannel(payload.MustParse(`{"id":"90002","topic":null}`))
//
//	// Write the result back out as a snapshot.
//	if err := st.Persist(store); err != nil {
//		log.Fatal(err)
//	}

// Example of attaching the ingestor to a discordgo session you manage
// yourself, instead of going through client.Open:
//
//	import (
//		"github.com/small-frappuccino/discordstate/pkg/gateway"
//		"github.com/small-frappuccino/discordstate/pkg/state"
//	)
//
//	st := state.New(state.DefaultConfig())
//	session, err := gateway.NewSession("YOUR_BOT_TOKEN")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ing := gateway.NewIngestor(st, gateway.DefaultConfig())
//	detach := ing.Attach(session)
//	defer detach()
//
//	if err := session.Open(); err != nil {
//		log.Fatal(err)
//	}
//	defer session.Close()
//
//	// st now tracks every guild, channel, user, member, and message the
//	// gateway delivers; your own discordgo handlers keep working untouched.
