// Package playerbar renders the one-line player shown under the lists.
package playerbar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/player"
	"github.com/llehouerou/wavecast/internal/ui/render"
	"github.com/llehouerou/wavecast/internal/ui/styles"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
)

// Height is the number of lines the bar takes, borders included.
const Height = 3

// State holds everything needed to render the player bar.
type State struct {
	Status   player.State
	Podcast  string
	Title    string
	Position time.Duration
	Duration time.Duration
	Rate     float64
}

// NewState reads the sink for the selected episode. It returns the zero
// State when nothing is selected.
func NewState(p player.Interface, podcast *feed.Podcast, ep *feed.Episode, rate float64) State {
	if ep == nil {
		return State{}
	}
	s := State{
		Title: ep.Title,
		Rate:  rate,
	}
	if podcast != nil {
		s.Podcast = podcast.Title
	}
	if p != nil {
		s.Status = p.State()
		s.Position = p.Position()
		s.Duration = p.Duration()
	}
	return s
}

// Visible reports whether the bar has anything to show.
func (s State) Visible() bool {
	return s.Title != "" || s.Podcast != ""
}

// Render returns the bordered player bar for the given outer width, or ""
// when the bar is not visible.
func Render(s State, width int) string {
	if !s.Visible() {
		return ""
	}
	inner := max(width-styles.PanelFrame-2, 0)
	box := styles.PanelStyle(false).Padding(0, 1).Width(width - styles.PanelFrame)
	return box.Render(renderLine(s, inner))
}

func renderLine(s State, width int) string {
	st := styles.T().S()

	title := s.Title
	if title == "" {
		title = "Untitled episode"
	}
	right := formatRate(s.Rate) + "  " + RenderProgressBar(s.Position, s.Duration, min(width/2, 40), statusSymbol(s.Status))

	avail := width - lipgloss.Width(right) - 3
	left := st.Title.Render(render.Truncate(title, avail))
	if s.Podcast != "" {
		rest := avail - lipgloss.Width(render.Truncate(title, avail)) - 3
		if rest > 3 {
			left += st.Muted.Render(" · " + render.Truncate(s.Podcast, rest))
		}
	}
	return render.Row(left, right, width)
}

func statusSymbol(s player.State) string {
	switch s {
	case player.Playing:
		return playSymbol
	case player.Loading:
		return loadingSymbol
	default:
		return pauseSymbol
	}
}

// formatRate renders a rate as "1×", "1.25×" or "0.5×".
func formatRate(rate float64) string {
	if rate <= 0 {
		rate = 1
	}
	return strconv.FormatFloat(rate, 'f', -1, 64) + "×"
}

// formatDuration renders m:ss, or h:mm:ss for long episodes.
func formatDuration(d time.Duration) string {
	d = max(d, 0).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
