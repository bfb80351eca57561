package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/llehouerou/wavecast/internal/metrics"
)

// Registry persists the ordered list of known feeds.
type Registry interface {
	AddKnown(address, title string) error
	ListKnown() ([]Known, error)
	RemoveKnown(address string) error
}

// StoreOptions configures a Store. Fetcher and Parser are required.
type StoreOptions struct {
	Fetcher  Fetcher
	Parser   Parser
	Registry Registry
	Metrics  metrics.Recorder
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Store fetches, parses and caches feeds keyed by normalized address.
// Concurrent fetches of the same address share one underlying request.
type Store struct {
	fetcher  Fetcher
	parser   Parser
	registry Registry
	metrics  metrics.Recorder
	log      zerolog.Logger
	now      func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewStore creates a Store. A nil Registry keeps known feeds in memory.
func NewStore(opts StoreOptions) *Store {
	s := &Store{
		fetcher:  opts.Fetcher,
		parser:   opts.Parser,
		registry: opts.Registry,
		metrics:  opts.Metrics,
		log:      opts.Logger.With().Str("component", "feed.store").Logger(),
		now:      opts.Now,
		entries:  make(map[string]*Entry),
	}
	if s.registry == nil {
		s.registry = NewMemoryRegistry()
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Fetch always goes to the network, replacing the cached entry on success.
// It returns nil on any failure, leaving the previous entry untouched, and
// nil when ctx is done before the fetch resolves.
func (s *Store) Fetch(ctx context.Context, address string) *Entry {
	key, err := NormalizeAddress(address)
	if err != nil {
		s.log.Warn().Err(err).Str("address", address).Msg("ignoring invalid feed address")
		s.metrics.RecordFetchFailure(reason(err))
		return nil
	}

	// The fetch outlives a cancelled caller so that joined callers still
	// receive its result.
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.load(detached, key)
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		if res.Shared {
			s.metrics.RecordSharedFetch()
		}
		if res.Err != nil {
			return nil
		}
		entry, _ := res.Val.(*Entry)
		return entry
	}
}

// Get returns the cached entry for address, fetching it when absent.
func (s *Store) Get(ctx context.Context, address string) *Entry {
	if entry := s.Cached(address); entry != nil {
		return entry
	}
	return s.Fetch(ctx, address)
}

// Cached returns the cached entry for address without fetching.
func (s *Store) Cached(address string) *Entry {
	key, err := NormalizeAddress(address)
	if err != nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key]
}

// ListKnown returns the known feeds in insertion order.
func (s *Store) ListKnown() []Known {
	known, err := s.registry.ListKnown()
	if err != nil {
		s.log.Error().Err(err).Msg("listing known feeds")
		return nil
	}
	return known
}

// Remove evicts the cache entry and the known-feeds record of address.
// Entries already handed out stay valid.
func (s *Store) Remove(address string) {
	key, err := NormalizeAddress(address)
	if err != nil {
		s.log.Warn().Err(err).Str("address", address).Msg("ignoring invalid feed address")
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	if err := s.registry.RemoveKnown(key); err != nil {
		s.log.Error().Err(err).Str("address", key).Msg("removing known feed")
	}
}

func (s *Store) load(ctx context.Context, key string) (*Entry, error) {
	start := time.Now()
	raw, err := s.fetcher.Fetch(ctx, key)
	s.metrics.RecordFetchLatency(time.Since(start))
	if err != nil {
		s.log.Warn().Err(err).Str("address", key).Msg("feed fetch failed")
		s.metrics.RecordFetchFailure(reason(err))
		return nil, err
	}

	parsed, err := s.parser.Parse(raw, key)
	if err != nil {
		s.log.Warn().Err(err).Str("address", key).Msg("feed parse failed")
		s.metrics.RecordParseFailure()
		return nil, err
	}

	entry := &Entry{
		Address:   key,
		Podcast:   parsed.Podcast,
		Episodes:  parsed.Episodes,
		FetchedAt: s.now(),
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()

	if err := s.registry.AddKnown(key, entry.Podcast.Title); err != nil {
		s.log.Error().Err(err).Str("address", key).Msg("recording known feed")
	}
	s.metrics.RecordFetchSuccess()

	s.log.Debug().
		Str("address", key).
		Int("episodes", len(entry.Episodes)).
		Msg("feed fetched")
	return entry, nil
}

// MemoryRegistry is an in-memory Registry.
type MemoryRegistry struct {
	mu    sync.Mutex
	known []Known
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{}
}

// AddKnown appends address unless it is already known, in which case only
// its title is refreshed.
func (r *MemoryRegistry) AddKnown(address, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, k := range r.known {
		if k.Address == address {
			if title != "" {
				r.known[i].Title = title
			}
			return nil
		}
	}
	r.known = append(r.known, Known{Address: address, Title: title})
	return nil
}

// ListKnown returns a copy of the known feeds.
func (r *MemoryRegistry) ListKnown() ([]Known, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Known, len(r.known))
	copy(out, r.known)
	return out, nil
}

// RemoveKnown deletes address, keeping the order of the rest.
func (r *MemoryRegistry) RemoveKnown(address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, k := range r.known {
		if k.Address == address {
			r.known = append(r.known[:i], r.known[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ Registry = (*MemoryRegistry)(nil)
