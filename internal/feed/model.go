package feed

import (
	"time"

	"github.com/rs/zerolog"
)

// Podcast is the channel-level data of a fetched feed.
type Podcast struct {
	SelfURL    string // canonical feed address
	Title      string
	Author     string
	ImageURL   string
	OwnerEmail string // empty when the feed declares no owner
}

// Episode is a single playable item of a feed.
// IDs are unique within their feed.
type Episode struct {
	ID          string
	Title       string
	AudioURL    string
	ImageURL    string
	PublishedAt time.Time
}

// MarshalZerologObject lets episodes be logged with zerolog's Object().
func (e Episode) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("id", e.ID).Str("title", e.Title)
}

// Entry is a cached fetch result. Entries are never mutated after creation;
// a refresh stores a new Entry under the same address.
type Entry struct {
	Address   string
	Podcast   Podcast
	Episodes  []Episode // feed order
	FetchedAt time.Time
}

// Known is a registered feed, as listed by the known-feeds registry.
type Known struct {
	Address string
	Title   string
}

// Parsed is the result of the parsing collaborator.
type Parsed struct {
	Podcast  Podcast
	Episodes []Episode
}
