// Package location maps session state to and from a shareable address.
//
// An address carries the active feed in the "channel" query parameter and
// the selected episode in "item". Several comma-separated feeds in "channel",
// or any value in "channels", form an import request instead of a session.
package location

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/llehouerou/wavecast/internal/feed"
)

// Reserved query parameters.
const (
	ParamChannel  = "channel"
	ParamItem     = "item"
	ParamChannels = "channels"
)

// ErrInvalidAddress is returned for malformed locator input.
var ErrInvalidAddress = errors.New("invalid location")

// Kind tells what a decoded address asks for.
type Kind int

const (
	// KindEmpty means no feed: the session starts empty.
	KindEmpty Kind = iota
	// KindSession carries one feed and an optional episode.
	KindSession
	// KindImport carries several feeds to import.
	KindImport
)

// Session is the (feed, episode) pair an address points to.
type Session struct {
	Feed       string
	EpisodeID  string
	HasEpisode bool
}

// Decoded is the result of Decode.
type Decoded struct {
	Kind    Kind
	Session Session  // set for KindSession
	Import  []string // set for KindImport, in input order
}

// Decode parses an address. It accepts absolute URLs, paths and bare query
// strings.
func Decode(address string) (Decoded, error) {
	raw := strings.TrimSpace(address)
	if raw == "" {
		return Decoded{}, nil
	}
	if !strings.Contains(raw, "?") && strings.Contains(raw, "=") {
		raw = "?" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	var channel, channels []string
	var item string
	var hasItem bool
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return Decoded{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		switch key {
		case ParamChannel:
			channel, err = splitAddresses(rawValue)
		case ParamChannels:
			channels, err = splitAddresses(rawValue)
		case ParamItem:
			item, err = url.QueryUnescape(rawValue)
			hasItem = err == nil && item != ""
		}
		if err != nil {
			return Decoded{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
	}

	switch {
	case len(channels) > 0:
		return Decoded{Kind: KindImport, Import: channels}, nil
	case len(channel) > 1:
		return Decoded{Kind: KindImport, Import: channel}, nil
	case len(channel) == 1:
		if _, err := feed.NormalizeAddress(channel[0]); err != nil {
			return Decoded{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		return Decoded{
			Kind: KindSession,
			Session: Session{
				Feed:       channel[0],
				EpisodeID:  item,
				HasEpisode: hasItem,
			},
		}, nil
	}
	return Decoded{}, nil
}

// splitAddresses splits a raw parameter value on literal commas before
// unescaping, so encoded commas stay inside an address.
func splitAddresses(rawValue string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(rawValue, ",") {
		v, err := url.QueryUnescape(part)
		if err != nil {
			return nil, err
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// Encode returns the address of s under base. A session without a feed
// encodes to base itself.
func Encode(base string, s Session) string {
	if s.Feed == "" {
		return base
	}
	q := ParamChannel + "=" + url.QueryEscape(s.Feed)
	if s.HasEpisode {
		q += "&" + ParamItem + "=" + url.QueryEscape(s.EpisodeID)
	}
	return join(base, q)
}

// ImportLink returns the address that asks to import addresses.
func ImportLink(base string, addresses []string) string {
	escaped := make([]string, len(addresses))
	for i, a := range addresses {
		escaped[i] = url.QueryEscape(a)
	}
	return join(base, ParamChannels+"="+strings.Join(escaped, ","))
}

func join(base, query string) string {
	if strings.Contains(base, "?") {
		return base + "&" + query
	}
	return base + "?" + query
}
