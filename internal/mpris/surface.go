// Package mpris projects the session onto the system media controls.
package mpris

import (
	"sync"
	"time"
)

// Metadata is what the media surface displays.
type Metadata struct {
	TrackID    string
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	Length     time.Duration
}

// Handlers are the transport actions of a media surface. A nil field is an
// unsupported action; the zero value clears every handler.
type Handlers struct {
	PreviousTrack func()
	NextTrack     func()
	SeekTo        func(position time.Duration)
	Play          func()
	Pause         func()
}

// Empty reports whether no handler is set.
func (h Handlers) Empty() bool {
	return h.PreviousTrack == nil && h.NextTrack == nil && h.SeekTo == nil &&
		h.Play == nil && h.Pause == nil
}

// Surface is a system media-control surface.
type Surface interface {
	SetMetadata(m Metadata)
	// SetActionHandlers replaces every handler at once.
	SetActionHandlers(h Handlers)
}

// Memory is an in-process Surface that records registrations. It is used
// when no system surface is available and by tests.
type Memory struct {
	mu        sync.Mutex
	meta      Metadata
	handlers  Handlers
	registers int
	clears    int
	overlaps  int
	closes    int
}

// NewMemory creates an empty Memory surface.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SetMetadata(meta Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = meta
}

func (m *Memory) SetActionHandlers(h Handlers) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.Empty() {
		m.clears++
	} else {
		if !m.handlers.Empty() {
			m.overlaps++
		}
		m.registers++
	}
	m.handlers = h
}

// Metadata returns the displayed metadata.
func (m *Memory) Metadata() Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta
}

// Handlers returns the registered handlers.
func (m *Memory) Handlers() Handlers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handlers
}

// Registrations returns how many non-empty handler sets were registered.
func (m *Memory) Registrations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registers
}

// Clears returns how many times the handlers were cleared.
func (m *Memory) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// Overlaps returns how many registrations replaced a set that had not been
// cleared first.
func (m *Memory) Overlaps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlaps
}

// Close records that the surface was released.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

// Closes returns how many times Close was called.
func (m *Memory) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

var _ Surface = (*Memory)(nil)
