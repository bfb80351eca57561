package feed

import (
	"bytes"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// Parser converts a raw feed body into a typed podcast.
type Parser interface {
	Parse(raw []byte, address string) (*Parsed, error)
}

// GofeedParser parses RSS and Atom bodies with gofeed.
type GofeedParser struct {
	strict *bluemonday.Policy
}

// NewParser creates a gofeed-backed Parser.
func NewParser() *GofeedParser {
	return &GofeedParser{strict: bluemonday.StrictPolicy()}
}

var errNoEpisodes = errors.New("feed has no title and no playable episodes")

// Parse implements Parser. Items without an enclosure are not playable and
// are skipped; a repeated id keeps its first occurrence.
func (p *GofeedParser) Parse(raw []byte, address string) (*Parsed, error) {
	f, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, parseError(address, err)
	}

	podcast := Podcast{
		SelfURL:  selfURL(f, address),
		Title:    p.text(f.Title),
		Author:   p.text(feedAuthor(f)),
		ImageURL: feedImage(f),
	}
	if f.ITunesExt != nil && f.ITunesExt.Owner != nil {
		podcast.OwnerEmail = strings.TrimSpace(f.ITunesExt.Owner.Email)
	}

	seen := make(map[string]bool, len(f.Items))
	episodes := make([]Episode, 0, len(f.Items))
	for _, item := range f.Items {
		audio := audioURL(item)
		if audio == "" {
			continue
		}
		id := strings.TrimSpace(item.GUID)
		if id == "" {
			id = fallbackID(address, item, audio)
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		ep := Episode{
			ID:          id,
			Title:       p.text(item.Title),
			AudioURL:    audio,
			ImageURL:    itemImage(item),
			PublishedAt: published(item),
		}
		if ep.ImageURL == "" {
			ep.ImageURL = podcast.ImageURL
		}
		episodes = append(episodes, ep)
	}

	if podcast.Title == "" && len(episodes) == 0 {
		return nil, parseError(address, errNoEpisodes)
	}

	return &Parsed{Podcast: podcast, Episodes: episodes}, nil
}

// text strips markup and entities from feed text fields.
func (p *GofeedParser) text(s string) string {
	return strings.TrimSpace(html.UnescapeString(p.strict.Sanitize(s)))
}

func selfURL(f *gofeed.Feed, address string) string {
	if link, err := NormalizeAddress(f.FeedLink); err == nil {
		return link
	}
	return address
}

func feedAuthor(f *gofeed.Feed) string {
	if f.ITunesExt != nil && f.ITunesExt.Author != "" {
		return f.ITunesExt.Author
	}
	for _, a := range f.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

func feedImage(f *gofeed.Feed) string {
	if f.Image != nil && f.Image.URL != "" {
		return f.Image.URL
	}
	if f.ITunesExt != nil {
		return f.ITunesExt.Image
	}
	return ""
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	if item.ITunesExt != nil {
		return item.ITunesExt.Image
	}
	return ""
}

// audioURL returns the first audio enclosure, or the first enclosure when
// none declares an audio type.
func audioURL(item *gofeed.Item) string {
	first := ""
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enc.Type), "audio/") {
			return enc.URL
		}
		if first == "" {
			first = enc.URL
		}
	}
	return first
}

func published(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// fallbackID derives a stable id for items that carry no guid.
func fallbackID(address string, item *gofeed.Item, audio string) string {
	key := audio
	if item.Link != "" {
		key = item.Link + "\n" + audio
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(address+"\n"+key)).String()
}
