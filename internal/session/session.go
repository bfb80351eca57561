// Package session runs one podcast listening session: the active feed, its
// ordered episodes, the selection and everything that follows the selection
// (audio sink, media controls, shareable address).
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/location"
	"github.com/llehouerou/wavecast/internal/mpris"
	"github.com/llehouerou/wavecast/internal/playback"
	"github.com/llehouerou/wavecast/internal/playlist"
)

// ErrFeedUnavailable is returned when a feed could not be fetched or parsed.
// The cause is logged by the feed store.
var ErrFeedUnavailable = errors.New("feed unavailable")

// Importer adds several feeds at once.
type Importer interface {
	Import(ctx context.Context, addresses []string) []feed.ImportResult
}

// Options configures a Controller. Store, Playback and Locator are required.
type Options struct {
	Store    *feed.Store
	Importer Importer // nil imports through Store without pacing
	Playback *playback.Bridge
	Media    *mpris.Bridge // nil disables media controls
	Locator  location.Locator
	Base     string // permalink base, "/" when empty
	Order    playlist.Order
	Logger   zerolog.Logger
}

// Opened describes what OpenLocation did.
type Opened struct {
	Kind     location.Kind
	Imported []feed.ImportResult // for location.KindImport
}

// Controller is the session. Every mutation runs under one mutex; fetches
// run outside it and are committed only if no newer feed switch happened in
// the meantime.
type Controller struct {
	store    *feed.Store
	importer Importer
	playback *playback.Bridge
	media    *mpris.Bridge
	locator  location.Locator
	base     string
	log      zerolog.Logger

	mu        sync.Mutex
	gen       uint64
	address   string
	entry     *feed.Entry
	loading   bool
	cancel    context.CancelFunc
	order     playlist.Order
	cursor    *playlist.Cursor
	publisher *location.Publisher
	closed    bool

	unsubscribe func()
	release     func()

	updates chan struct{}
}

// New creates a Controller and subscribes the bridges to its cursor.
func New(opts Options) *Controller {
	base := opts.Base
	if base == "" {
		base = "/"
	}
	c := &Controller{
		store:    opts.Store,
		importer: opts.Importer,
		playback: opts.Playback,
		media:    opts.Media,
		locator:  opts.Locator,
		base:     base,
		log:      opts.Logger.With().Str("component", "session").Logger(),
		order:    opts.Order,
		cursor:   playlist.NewCursor(),
		updates:  make(chan struct{}, 1),
	}
	if c.importer == nil {
		c.importer = feed.NewImporter(opts.Store, 0, 0, opts.Logger)
	}
	c.publisher = location.NewPublisher(c.locator, base, "")
	c.unsubscribe = c.cursor.OnChange(c.changed)
	c.release = c.playback.Attach(c)
	return c
}

// Updates delivers a signal after every state change. Signals coalesce.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// Start restores the session from the locator's current address. A missing
// or invalid address starts an empty session.
func (c *Controller) Start(ctx context.Context) {
	address, err := c.locator.Read()
	if err != nil {
		c.log.Warn().Err(err).Msg("reading session location")
		return
	}

	c.mu.Lock()
	c.publisher = location.NewPublisher(c.locator, c.base, address)
	c.mu.Unlock()

	if _, err := c.OpenLocation(ctx, address); err != nil {
		c.log.Warn().Err(err).Str("location", address).Msg("ignoring session location")
	}
}

// OpenLocation opens the session an address points to, or imports the
// feeds it lists. It returns location.ErrInvalidAddress for malformed input
// and ErrFeedUnavailable when the feed cannot be loaded.
func (c *Controller) OpenLocation(ctx context.Context, address string) (Opened, error) {
	decoded, err := location.Decode(address)
	if err != nil {
		return Opened{}, err
	}

	switch decoded.Kind {
	case location.KindSession:
		s := decoded.Session
		return Opened{Kind: location.KindSession}, c.OpenFeed(ctx, s.Feed, s.EpisodeID)
	case location.KindImport:
		c.mu.Lock()
		if _, err := c.publisher.PublishImport(decoded.Import); err != nil {
			c.log.Warn().Err(err).Msg("publishing import link")
		}
		c.mu.Unlock()

		results := c.importer.Import(ctx, decoded.Import)
		c.notify()
		return Opened{Kind: location.KindImport, Imported: results}, nil
	case location.KindEmpty:
	}
	return Opened{Kind: location.KindEmpty}, nil
}

// OpenFeed makes address the active feed and selects episodeID in it (none
// when empty). Switching to another feed clears the selection; the feed is
// served from the cache when possible.
func (c *Controller) OpenFeed(ctx context.Context, address, episodeID string) error {
	key, err := feed.NormalizeAddress(address)
	if err != nil {
		return fmt.Errorf("%w: %w", location.ErrInvalidAddress, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	switching := key != c.address
	if switching {
		c.switchLocked(key, episodeID)
	} else if episodeID != "" {
		if c.entry != nil && !hasEpisode(c.cursor.Episodes(), episodeID) {
			// Unknown episode ids fall back to no selection.
			c.cursor.Clear()
		} else {
			c.cursor.Select(episodeID)
		}
	}
	if !switching && (c.entry != nil || c.loading) {
		c.settleLocked()
		c.mu.Unlock()
		c.notify()
		return nil
	}
	gen, fctx := c.beginLocked(ctx)
	c.mu.Unlock()
	c.notify()

	return c.commit(ctx, gen, key, c.store.Get(fctx, key))
}

// Refresh re-fetches the active feed, keeping the selection by id.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.address == "" || c.closed {
		c.mu.Unlock()
		return nil
	}
	key := c.address
	gen, fctx := c.beginLocked(ctx)
	c.mu.Unlock()
	c.notify()

	return c.commit(ctx, gen, key, c.store.Fetch(fctx, key))
}

// switchLocked drops the current feed and selection in favour of key,
// selecting episodeID in it when not empty.
func (c *Controller) switchLocked(key, episodeID string) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.address = key
	c.entry = nil
	c.loading = false
	c.cursor.SetEpisodes(nil)
	c.playback.SetFeed(key)
	cleared := c.cursor.Clear()
	if episodeID != "" {
		c.cursor.Select(episodeID)
		return
	}
	if !cleared {
		c.updateMediaLocked()
		c.settleLocked()
	}
}

// beginLocked starts a fetch for the active feed and returns its generation.
func (c *Controller) beginLocked(ctx context.Context) (uint64, context.Context) {
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	c.loading = true
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	return c.gen, fctx
}

// commit applies a fetch result unless a newer fetch or switch superseded it.
func (c *Controller) commit(ctx context.Context, gen uint64, key string, entry *feed.Entry) error {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		c.log.Debug().Str("address", key).Msg("discarding superseded fetch")
		return nil
	}
	c.loading = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if entry == nil {
		c.mu.Unlock()
		c.notify()
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrFeedUnavailable, key)
	}

	before := c.cursor.Current()
	podcastChanged := c.entry == nil || c.entry.Podcast != entry.Podcast
	c.entry = entry
	c.cursor.SetEpisodes(playlist.Apply(entry.Episodes, c.order))

	after := c.cursor.Current()
	_, selected := c.cursor.Selected()
	switch {
	case selected && after == nil:
		// Unknown episode ids fall back to no selection.
		c.cursor.Clear()
	case !sameEpisode(before, after):
		c.changed(playlist.Change{Previous: before, Current: after, Index: c.cursor.Index()})
	case podcastChanged:
		c.updateMediaLocked()
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// changed fans a cursor transition out to the playback bridge, the media
// surface and the address, in that order. It runs with c.mu held.
func (c *Controller) changed(ch playlist.Change) {
	c.playback.TrackChanged(ch.Current)
	c.updateMediaLocked()
	c.settleLocked()
}

func (c *Controller) updateMediaLocked() {
	if c.media == nil {
		return
	}
	ep := c.cursor.Current()
	if c.entry == nil || ep == nil {
		c.media.Update(nil, nil, nil)
		return
	}
	podcast := c.entry.Podcast
	c.media.Update(&podcast, ep, c)
}

// settleLocked publishes the address of the current (feed, episode) pair.
func (c *Controller) settleLocked() {
	s := location.Session{Feed: c.address}
	s.EpisodeID, s.HasEpisode = c.cursor.Selected()
	if _, err := c.publisher.Publish(s); err != nil {
		c.log.Warn().Err(err).Msg("publishing session location")
	}
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

func hasEpisode(episodes []feed.Episode, id string) bool {
	for i := range episodes {
		if episodes[i].ID == id {
			return true
		}
	}
	return false
}

func sameEpisode(a, b *feed.Episode) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
