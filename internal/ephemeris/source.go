// Package ephemeris fetches, extracts, and retains the tracked object's
// two-line element set. The current set lives in a Store and is replaced
// wholesale on each successful refresh; failures leave the last good set in
// place.
package ephemeris

import (
	"context"
	"log/slog"
	"time"
)

// Source ties the fetcher, store, and disk cache into the refresh operation
// the engine drives on its element-refresh timer.
type Source struct {
	fetcher *Fetcher
	store   *Store
	cache   *Cache
	logger  *slog.Logger
}

// NewSource creates a Source. cache may be nil to disable persistence.
func NewSource(fetcher *Fetcher, store *Store, cache *Cache, logger *slog.Logger) *Source {
	return &Source{
		fetcher: fetcher,
		store:   store,
		cache:   cache,
		logger:  logger,
	}
}

// Store returns the element store readers should use.
func (s *Source) Store() *Store {
	return s.store
}

// Refresh fetches the feed, extracts the element lines, and replaces the
// current set. On any failure the previous set is untouched and the error is
// returned for the caller to surface; a prediction already running against
// the old set keeps its own pointer and is never disrupted.
func (s *Source) Refresh(ctx context.Context) (*ElementSet, error) {
	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	es, err := Extract(string(raw))
	if err != nil {
		return nil, err
	}

	es.Source = s.fetcher.SourceURL()
	es.FetchedAt = time.Now().UTC()
	s.store.Set(es)

	if s.cache != nil {
		if err := s.cache.Write(raw, es.FetchedAt); err != nil {
			s.logger.Warn("failed to cache element data", "error", err)
		}
	}

	s.logger.Info("element set refreshed",
		"norad_id", es.NORADID,
		"name", es.Name,
		"epoch", es.Epoch.Format(time.RFC3339),
	)
	return es, nil
}

// LoadCached seeds the store from the newest disk cache file, if any.
// Returns true if a cached set was loaded.
func (s *Source) LoadCached() bool {
	if s.cache == nil {
		return false
	}

	data, ts, err := s.cache.LoadLatest()
	if err != nil {
		s.logger.Info("no element cache found, starting without elements", "error", err)
		return false
	}

	es, err := Extract(string(data))
	if err != nil {
		s.logger.Warn("failed to parse cached element data", "error", err)
		return false
	}

	es.Source = "cache"
	es.FetchedAt = ts
	s.store.Set(es)
	s.logger.Info("loaded element set from cache",
		"norad_id", es.NORADID,
		"cached_at", ts.Format(time.RFC3339),
	)
	return true
}
