package playlist

import (
	"sync"

	"github.com/llehouerou/wavecast/internal/feed"
)

// Change describes a selection transition.
type Change struct {
	Previous *feed.Episode
	Current  *feed.Episode // nil when the selection is cleared or unresolved
	Index    int           // index of Current, -1 if none
}

// Cursor tracks the selected episode of an ordered episode list.
//
// The selection is held by id, so reordering the list never changes it; the
// index is derived from the current order. An id that is not in the list
// resolves to index -1, in which case Next and Prev are no-ops.
//
// "Next" moves toward index 0 and "Prev" toward the end of the list.
//
// Cursor is not safe for concurrent use. Observers run synchronously and
// must not mutate the cursor.
type Cursor struct {
	episodes   []feed.Episode
	selectedID string
	selected   bool

	observers []observer
	nextObsID int
	notifying bool
}

type observer struct {
	id int
	fn func(Change)
}

// NewCursor creates a cursor with no episodes and no selection.
func NewCursor() *Cursor {
	return &Cursor{}
}

// SetEpisodes replaces the ordered list. The selection is kept by id and
// observers are not notified.
func (c *Cursor) SetEpisodes(episodes []feed.Episode) {
	c.guard()
	c.episodes = episodes
}

// Episodes returns the ordered list. Callers must not modify it.
func (c *Cursor) Episodes() []feed.Episode {
	return c.episodes
}

// Len returns the number of episodes.
func (c *Cursor) Len() int {
	return len(c.episodes)
}

// Selected returns the selected id and whether there is a selection.
func (c *Cursor) Selected() (string, bool) {
	return c.selectedID, c.selected
}

// Index returns the index of the selected episode, or -1.
func (c *Cursor) Index() int {
	if !c.selected {
		return -1
	}
	for i := range c.episodes {
		if c.episodes[i].ID == c.selectedID {
			return i
		}
	}
	return -1
}

// Current returns the selected episode, or nil if none is resolved.
func (c *Cursor) Current() *feed.Episode {
	return c.at(c.Index())
}

// PeekNext returns the episode Next would move to, or nil.
func (c *Cursor) PeekNext() *feed.Episode {
	i := c.Index()
	if i <= 0 {
		return nil
	}
	return c.at(i - 1)
}

// PeekPrev returns the episode Prev would move to, or nil.
func (c *Cursor) PeekPrev() *feed.Episode {
	i := c.Index()
	if i < 0 || i >= len(c.episodes)-1 {
		return nil
	}
	return c.at(i + 1)
}

// Select selects id even if it is not in the list yet. Selecting the
// current id is a no-op and returns false.
func (c *Cursor) Select(id string) bool {
	c.guard()
	if c.selected && c.selectedID == id {
		return false
	}
	c.move(id, true)
	return true
}

// Next moves one step toward index 0. It returns false at index 0 or with no
// resolved selection.
func (c *Cursor) Next() bool {
	c.guard()
	i := c.Index()
	if i <= 0 {
		return false
	}
	c.move(c.episodes[i-1].ID, true)
	return true
}

// Prev moves one step toward the end of the list. It returns false at the
// last index or with no resolved selection.
func (c *Cursor) Prev() bool {
	c.guard()
	i := c.Index()
	if i < 0 || i >= len(c.episodes)-1 {
		return false
	}
	c.move(c.episodes[i+1].ID, true)
	return true
}

// Clear drops the selection. It returns false if nothing was selected.
func (c *Cursor) Clear() bool {
	c.guard()
	if !c.selected {
		return false
	}
	c.move("", false)
	return true
}

// OnChange registers fn to be called after every transition. The returned
// function unregisters it and is safe to call more than once.
func (c *Cursor) OnChange(fn func(Change)) (unsubscribe func()) {
	id := c.nextObsID
	c.nextObsID++
	c.observers = append(c.observers, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			for i, o := range c.observers {
				if o.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Cursor) move(id string, selected bool) {
	prev := c.Current()
	c.selectedID = id
	c.selected = selected

	change := Change{Previous: prev, Current: c.Current(), Index: c.Index()}
	c.notifying = true
	defer func() { c.notifying = false }()
	for _, o := range c.observers {
		o.fn(change)
	}
}

func (c *Cursor) guard() {
	if c.notifying {
		panic("playlist: cursor mutated from a change observer")
	}
}

func (c *Cursor) at(i int) *feed.Episode {
	if i < 0 || i >= len(c.episodes) {
		return nil
	}
	ep := c.episodes[i]
	return &ep
}
