package playerbar

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/player"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{83 * time.Second, "1:23"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{1500 * time.Millisecond, "0:02"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "1×"},
		{1.25, "1.25×"},
		{0.5, "0.5×"},
		{0, "1×"},
	}

	for _, tt := range tests {
		if got := formatRate(tt.rate); got != tt.want {
			t.Errorf("formatRate(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	t.Run("half way", func(t *testing.T) {
		got := RenderProgressBar(time.Minute, 2*time.Minute, 31, playSymbol)
		if !strings.HasPrefix(got, "▶  1:00  ") || !strings.HasSuffix(got, "  2:00") {
			t.Errorf("bar = %q", got)
		}
		if filled, empty := strings.Count(got, filledBlock), strings.Count(got, emptyBlock); filled != empty {
			t.Errorf("filled = %d, empty = %d, want equal", filled, empty)
		}
		if w := lipgloss.Width(got); w != 31 {
			t.Errorf("width = %d, want 31", w)
		}
	})

	t.Run("unknown duration", func(t *testing.T) {
		got := RenderProgressBar(5*time.Second, 0, 30, pauseSymbol)
		if got != "⏸  0:05" {
			t.Errorf("bar = %q", got)
		}
	})

	t.Run("too narrow", func(t *testing.T) {
		got := RenderProgressBar(time.Second, time.Minute, 8, playSymbol)
		if got != "▶  0:01 / 1:00" {
			t.Errorf("bar = %q", got)
		}
	})
}

func TestNewState(t *testing.T) {
	sink := player.NewMock()
	sink.SetSource("https://example.com/ep1.mp3")
	_ = sink.Play()

	if s := NewState(sink, nil, nil, 1); s.Visible() {
		t.Errorf("state without episode should be hidden: %+v", s)
	}

	s := NewState(sink, &feed.Podcast{Title: "Show"}, &feed.Episode{Title: "Pilot"}, 1.5)
	if !s.Visible() {
		t.Fatal("state should be visible")
	}
	if s.Status != player.Playing || s.Podcast != "Show" || s.Title != "Pilot" || s.Rate != 1.5 {
		t.Errorf("state = %+v", s)
	}
}

func TestRender(t *testing.T) {
	if got := Render(State{}, 80); got != "" {
		t.Errorf("hidden bar rendered %q", got)
	}

	got := Render(State{
		Status:   player.Playing,
		Podcast:  "The Show",
		Title:    "A rather long episode title that will need to be cut somewhere",
		Position: 30 * time.Second,
		Duration: time.Hour,
		Rate:     1.25,
	}, 80)

	lines := strings.Split(got, "\n")
	if len(lines) != Height {
		t.Fatalf("bar has %d lines, want %d", len(lines), Height)
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 80 {
			t.Errorf("line %d width = %d, want 80", i, w)
		}
	}
	if !strings.Contains(got, "1.25×") {
		t.Errorf("bar misses rate: %q", got)
	}
}
