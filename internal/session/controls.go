package session

import (
	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/location"
	"github.com/llehouerou/wavecast/internal/playlist"
)

// Snapshot is a copy of the session state.
type Snapshot struct {
	Address  string // normalized feed address, empty without a feed
	Podcast  *feed.Podcast
	Episodes []feed.Episode // in the active order
	Order    playlist.Order
	Loading  bool

	SelectedID string
	Selected   *feed.Episode // nil when nothing is selected or the id is unknown
	Index      int           // -1 without a resolved selection
	NextUp     *feed.Episode // where Next would go
	PrevUp     *feed.Episode // where Prev would go

	Rate     float64
	Location string
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Address:  c.address,
		Episodes: append([]feed.Episode(nil), c.cursor.Episodes()...),
		Order:    c.order,
		Loading:  c.loading,
		Selected: c.cursor.Current(),
		Index:    c.cursor.Index(),
		NextUp:   c.cursor.PeekNext(),
		PrevUp:   c.cursor.PeekPrev(),
		Rate:     c.playback.Rate(),
	}
	s.SelectedID, _ = c.cursor.Selected()
	if c.entry != nil {
		podcast := c.entry.Podcast
		s.Podcast = &podcast
	}
	ls := location.Session{Feed: c.address}
	ls.EpisodeID, ls.HasEpisode = c.cursor.Selected()
	s.Location = location.Encode(c.base, ls)
	return s
}

// Next moves the selection toward the start of the list.
func (c *Controller) Next() bool {
	return c.mutate(c.cursor.Next)
}

// Prev moves the selection toward the end of the list.
func (c *Controller) Prev() bool {
	return c.mutate(c.cursor.Prev)
}

// Select selects the episode with the given id in the active feed.
func (c *Controller) Select(id string) bool {
	return c.mutate(func() bool { return c.cursor.Select(id) })
}

// Clear drops the selection and unbinds the audio sink.
func (c *Controller) Clear() bool {
	return c.mutate(c.cursor.Clear)
}

// SetOrder reorders the episodes. The selection is kept.
func (c *Controller) SetOrder(order playlist.Order) {
	c.mu.Lock()
	c.order = order
	if c.entry != nil {
		c.cursor.SetEpisodes(playlist.Apply(c.entry.Episodes, order))
	}
	c.mu.Unlock()
	c.notify()
}

// TogglePlay pauses or resumes the audio sink.
func (c *Controller) TogglePlay() {
	c.playback.TogglePlay()
	c.notify()
}

// SetRate changes the playback rate of the active feed.
func (c *Controller) SetRate(rate float64) {
	c.playback.SetRate(rate)
	c.notify()
}

// KnownFeeds lists the registered feeds in insertion order.
func (c *Controller) KnownFeeds() []feed.Known {
	return c.store.ListKnown()
}

// RemoveFeed forgets address and evicts its cached entry. A session showing
// that feed keeps its podcast, selection and sink.
func (c *Controller) RemoveFeed(address string) {
	key, err := feed.NormalizeAddress(address)
	if err != nil {
		c.log.Warn().Err(err).Str("address", address).Msg("ignoring invalid feed address")
		return
	}
	c.store.Remove(key)
	c.notify()
}

// Close ends the session: pending fetches are dropped and the sink, media
// surface and cursor subscriptions are released. It is safe to call more
// than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.unsubscribe()
	c.mu.Unlock()

	c.release()
	if c.media != nil {
		c.media.Close()
	}
}

func (c *Controller) mutate(fn func() bool) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	moved := fn()
	c.mu.Unlock()
	if moved {
		c.notify()
	}
	return moved
}
