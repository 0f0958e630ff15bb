package state

import (
	"fmt"

	"github.com/small-frappuccino/discordstate/pkg/payload"
	"github.com/small-frappuccino/discordstate/pkg/storage"
)

// Persist writes a full snapshot of every cache to store, replacing the
// previous snapshot of each kind. Each kind is swapped atomically; the set of
// kinds together is a best-effort point-in-time view of a live cache.
func (s *State) Persist(store *storage.Store) error {
	if err := replaceKind(store, guildSpec.Kind, s.guilds.Values()); err != nil {
		return err
	}
	if err := replaceKind(store, userSpec.Kind, s.users.Values()); err != nil {
		return err
	}
	if err := replaceKind(store, channelSpec.Kind, s.channels.Values()); err != nil {
		return err
	}
	if err := replaceKind(store, memberKind, s.members.Values()); err != nil {
		return err
	}
	if err := replaceKind(store, messageSpec.Kind, s.messages.Values()); err != nil {
		return err
	}
	return nil
}

func replaceKind[E Entity](store *storage.Store, kind string, entities []E) error {
	records := make([]storage.SnapshotRecord, 0, len(entities))
	for _, e := range entities {
		data, err := e.Payload().Encode()
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", kind, e.Key(), err)
		}
		records = append(records, storage.SnapshotRecord{Kind: kind, Key: e.Key(), Payload: data})
	}
	if err := store.ReplaceKind(kind, records); err != nil {
		return fmt.Errorf("persist %s: %w", kind, err)
	}
	return nil
}

// Warmup rebuilds the caches from the snapshots in store. Kinds load parents
// first so cross-references resolve as soon as their targets are cached.
// Corrupt or invalid rows are logged and skipped; they will be dropped from
// the database by the next Persist.
func (s *State) Warmup(store *storage.Store) error {
	loaders := []struct {
		kind   string
		ingest func(payload.Object) error
	}{
		{guildSpec.Kind, func(o payload.Object) error { _, err := s.UpsertGuild(o); return err }},
		{userSpec.Kind, func(o payload.Object) error { _, err := s.UpsertUser(o); return err }},
		{channelSpec.Kind, func(o payload.Object) error { _, err := s.UpsertChannel(o); return err }},
		{memberKind, func(o payload.Object) error { _, err := s.UpsertMember(o); return err }},
		{messageSpec.Kind, func(o payload.Object) error { _, err := s.UpsertMessage(o); return err }},
	}

	for _, l := range loaders {
		records, err := store.SnapshotsByKind(l.kind)
		if err != nil {
			return fmt.Errorf("load %s snapshots: %w", l.kind, err)
		}
		for _, rec := range records {
			o, err := payload.Parse(rec.Payload)
			if err != nil {
				s.logger.Warn("skipping corrupt snapshot", "kind", l.kind, "key", rec.Key, "error", err)
				continue
			}
			if err := l.ingest(o); err != nil {
				s.logger.Warn("skipping invalid snapshot", "kind", l.kind, "key", rec.Key, "error", err)
			}
		}
	}
	return nil
}
