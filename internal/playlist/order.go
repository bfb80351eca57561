package playlist

import (
	"fmt"
	"slices"
	"strings"

	"github.com/llehouerou/wavecast/internal/feed"
)

// Order is an episode ordering policy.
type Order int

const (
	// Listed keeps feed order.
	Listed Order = iota
	// DateAscending puts the oldest episode first.
	DateAscending
	// DateDescending puts the newest episode first.
	DateDescending
)

// String returns the short name used in configuration and on the wire.
func (o Order) String() string {
	switch o {
	case Listed:
		return "listed"
	case DateAscending:
		return "date_asc"
	case DateDescending:
		return "date_desc"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Label returns a human-readable name.
func (o Order) Label() string {
	switch o {
	case DateAscending:
		return "oldest first"
	case DateDescending:
		return "newest first"
	default:
		return "as listed"
	}
}

// Next cycles through the policies.
func (o Order) Next() Order {
	return (o + 1) % 3
}

// ParseOrder parses a policy name. The empty string is Listed.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "listed":
		return Listed, nil
	case "date_asc", "date_ascending", "asc":
		return DateAscending, nil
	case "date_desc", "date_descending", "desc":
		return DateDescending, nil
	}
	return Listed, fmt.Errorf("unknown episode order %q", s)
}

// Apply returns episodes ordered by o. The input is never modified and ties
// on the publication date keep their feed order.
func Apply(episodes []feed.Episode, o Order) []feed.Episode {
	out := slices.Clone(episodes)
	switch o {
	case DateAscending:
		slices.SortStableFunc(out, func(a, b feed.Episode) int {
			return a.PublishedAt.Compare(b.PublishedAt)
		})
	case DateDescending:
		slices.SortStableFunc(out, func(a, b feed.Episode) int {
			return b.PublishedAt.Compare(a.PublishedAt)
		})
	}
	return out
}
