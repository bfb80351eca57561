package mpris

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/player"
)

type fakeNav struct {
	next, prev int
}

func (n *fakeNav) Next() bool { n.next++; return true }
func (n *fakeNav) Prev() bool { n.prev++; return true }

var (
	testPodcast = &feed.Podcast{
		SelfURL:  "https://example.com/feed.xml",
		Title:    "The Show",
		Author:   "Host",
		ImageURL: "https://example.com/cover.jpg",
	}
	testEpisode = &feed.Episode{ID: "ep-1", Title: "Pilot", AudioURL: "https://cdn.example.com/1.mp3"}
)

func newTestBridge() (*Bridge, *Memory, *player.Mock) {
	surface := NewMemory()
	sink := player.NewMock()
	return NewBridge(surface, sink, 0, zerolog.Nop()), surface, sink
}

func TestBridge_PublishesMetadata(t *testing.T) {
	b, surface, _ := newTestBridge()

	b.Update(testPodcast, testEpisode, &fakeNav{})

	want := Metadata{
		TrackID:    "ep-1",
		Title:      "Pilot",
		Artist:     "Host",
		Album:      "The Show",
		ArtworkURL: "https://example.com/cover.jpg",
	}
	if got := surface.Metadata(); got != want {
		t.Errorf("Metadata() = %+v, want %+v", got, want)
	}
}

func TestBridge_NilClearsSurface(t *testing.T) {
	b, surface, _ := newTestBridge()
	b.Update(testPodcast, testEpisode, &fakeNav{})

	b.Update(testPodcast, nil, &fakeNav{})

	if !surface.Handlers().Empty() {
		t.Error("handlers still registered without an episode")
	}
	if surface.Metadata() != (Metadata{}) {
		t.Errorf("Metadata() = %+v, want empty", surface.Metadata())
	}
}

func TestBridge_ClearsBeforeEveryRegistration(t *testing.T) {
	b, surface, _ := newTestBridge()
	nav := &fakeNav{}

	other := &feed.Episode{ID: "ep-2", Title: "Second"}
	b.Update(testPodcast, testEpisode, nav)
	b.Update(testPodcast, other, nav)
	b.Update(testPodcast, testEpisode, &fakeNav{})

	if surface.Overlaps() != 0 {
		t.Errorf("Overlaps() = %d, want 0", surface.Overlaps())
	}
	if surface.Registrations() != 3 {
		t.Errorf("Registrations() = %d, want 3", surface.Registrations())
	}
	if surface.Clears() != 3 {
		t.Errorf("Clears() = %d, want 3", surface.Clears())
	}
}

func TestBridge_StaleHandlersAreInert(t *testing.T) {
	b, surface, sink := newTestBridge()
	oldNav := &fakeNav{}
	b.Update(testPodcast, testEpisode, oldNav)
	stale := surface.Handlers()

	newNav := &fakeNav{}
	b.Update(testPodcast, &feed.Episode{ID: "ep-2"}, newNav)

	stale.NextTrack()
	stale.PreviousTrack()
	stale.SeekTo(time.Minute)

	if oldNav.next != 0 || oldNav.prev != 0 {
		t.Errorf("stale handlers drove the old navigator: %+v", oldNav)
	}
	if newNav.next != 0 || newNav.prev != 0 {
		t.Errorf("stale handlers drove the new navigator: %+v", newNav)
	}
	if len(sink.SeekCalls()) != 0 {
		t.Errorf("stale seek reached the sink: %v", sink.SeekCalls())
	}
}

func TestBridge_PreviousThreshold(t *testing.T) {
	tests := []struct {
		name     string
		position time.Duration
		wantPrev int
		wantSeek []time.Duration
	}{
		{"early goes to previous episode", 2 * time.Second, 1, nil},
		{"late restarts the track", 10 * time.Second, 0, []time.Duration{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, surface, sink := newTestBridge()
			nav := &fakeNav{}
			b.Update(testPodcast, testEpisode, nav)

			sink.SetPosition(tt.position)
			before := len(sink.SeekCalls())
			surface.Handlers().PreviousTrack()

			if nav.prev != tt.wantPrev {
				t.Errorf("Prev() calls = %d, want %d", nav.prev, tt.wantPrev)
			}
			seeks := sink.SeekCalls()[before:]
			if len(seeks) != len(tt.wantSeek) {
				t.Errorf("seeks = %v, want %v", seeks, tt.wantSeek)
			}
		})
	}
}

func TestBridge_TransportHandlers(t *testing.T) {
	b, surface, sink := newTestBridge()
	nav := &fakeNav{}
	sink.SetSource(testEpisode.AudioURL)
	b.Update(testPodcast, testEpisode, nav)
	h := surface.Handlers()

	h.NextTrack()
	if nav.next != 1 {
		t.Errorf("Next() calls = %d, want 1", nav.next)
	}

	h.SeekTo(42 * time.Second)
	if sink.Position() != 42*time.Second {
		t.Errorf("Position() = %v, want 42s", sink.Position())
	}

	h.Play()
	if sink.State() != player.Playing {
		t.Errorf("State() = %v, want Playing", sink.State())
	}
	h.Pause()
	if sink.State() != player.Paused {
		t.Errorf("State() = %v, want Paused", sink.State())
	}
}

func TestBridge_Close(t *testing.T) {
	b, surface, _ := newTestBridge()
	nav := &fakeNav{}
	b.Update(testPodcast, testEpisode, nav)
	h := surface.Handlers()

	b.Close()

	if !surface.Handlers().Empty() {
		t.Error("handlers registered after Close")
	}
	h.NextTrack()
	if nav.next != 0 {
		t.Error("handler from before Close still active")
	}
}

func TestBridge_CloseReleasesSurfaceOnce(t *testing.T) {
	b, surface, _ := newTestBridge()
	b.Update(testPodcast, testEpisode, &fakeNav{})

	b.Close()
	b.Close()
	b.Update(testPodcast, testEpisode, &fakeNav{})

	if got := surface.Closes(); got != 1 {
		t.Errorf("Closes() = %d, want 1", got)
	}
	if !surface.Handlers().Empty() {
		t.Error("Update after Close registered handlers")
	}
	if got := surface.Metadata(); got != (Metadata{}) {
		t.Errorf("Metadata() = %+v, want empty", got)
	}
}
