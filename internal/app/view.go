package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/ui/playerbar"
	"github.com/llehouerou/wavecast/internal/ui/render"
	"github.com/llehouerou/wavecast/internal/ui/styles"
)

const (
	selectedMarker = "▶ "
	activeMarker   = "● "
	noMarker       = "  "
)

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bar := playerbar.Render(playerbar.NewState(m.sink, m.snap.Podcast, m.snap.Selected, m.snap.Rate), m.width)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bar != "" {
		bodyHeight -= lipgloss.Height(bar)
	}
	body := m.renderBody(max(bodyHeight, styles.PanelFrame+1))

	parts := []string{header, body}
	if bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	st := styles.T().S()

	left := st.Muted.Render("wavecast")
	if p := m.snap.Podcast; p != nil {
		left = st.Podcast.Render(render.Truncate(p.Title, m.width/2))
		if p.Author != "" {
			left += st.Muted.Render(" · " + render.Truncate(p.Author, m.width/4))
		}
	} else if m.snap.Address != "" {
		left = st.Muted.Render(render.Truncate(m.snap.Address, m.width/2))
	}

	right := st.Subtle.Render(m.snap.Order.Label())
	if m.snap.Loading {
		right = st.Warning.Render("loading… ") + right
	}
	return render.Row(left, right, m.width)
}

func (m Model) renderBody(height int) string {
	feedsWidth := max(m.width/3, 20)
	episodesWidth := max(m.width-feedsWidth, 20)
	inner := height - styles.PanelFrame

	feeds := styles.PanelStyle(m.focus == FocusFeeds).
		Width(feedsWidth - styles.PanelFrame).
		Height(inner).
		Render(m.renderFeeds(feedsWidth-styles.PanelFrame, inner))
	episodes := styles.PanelStyle(m.focus == FocusEpisodes).
		Width(episodesWidth - styles.PanelFrame).
		Height(inner).
		Render(m.renderEpisodes(episodesWidth-styles.PanelFrame, inner))

	return lipgloss.JoinHorizontal(lipgloss.Top, feeds, episodes)
}

func (m Model) renderFeeds(width, height int) string {
	st := styles.T().S()
	if len(m.feeds) == 0 {
		return st.Subtle.Render(render.Truncate("No feeds yet. Press o to open one.", width))
	}

	lines := make([]string, 0, height)
	start := scrollOffset(m.feedCursor, len(m.feeds), height)
	for i := start; i < len(m.feeds) && len(lines) < height; i++ {
		k := m.feeds[i]
		marker := noMarker
		if k.Address == m.snap.Address {
			marker = activeMarker
		}
		line := render.TruncateAndPad(marker+displayName(k.Title, k.Address), width)
		switch {
		case i == m.feedCursor && m.focus == FocusFeeds:
			line = st.Cursor.Render(line)
		case k.Address == m.snap.Address:
			line = st.Selected.Render(line)
		default:
			line = st.Base.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEpisodes(width, height int) string {
	st := styles.T().S()
	switch {
	case len(m.snap.Episodes) > 0:
	case m.snap.Loading:
		return st.Subtle.Render("Loading…")
	case m.snap.Address == "":
		return st.Subtle.Render(render.Truncate("No feed open", width))
	default:
		return st.Subtle.Render(render.Truncate("No episodes", width))
	}

	lines := make([]string, 0, height)
	start := scrollOffset(m.epCursor, len(m.snap.Episodes), height)
	for i := start; i < len(m.snap.Episodes) && len(lines) < height; i++ {
		lines = append(lines, m.renderEpisode(m.snap.Episodes[i], i, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEpisode(ep feed.Episode, i, width int) string {
	st := styles.T().S()

	marker := noMarker
	if ep.ID == m.snap.SelectedID {
		marker = selectedMarker
	}
	var date string
	if !ep.PublishedAt.IsZero() {
		date = humanize.Time(ep.PublishedAt)
	}
	titleWidth := max(width-lipgloss.Width(marker)-lipgloss.Width(date)-1, 1)
	line := render.Row(marker+render.Truncate(ep.Title, titleWidth), date, width)

	switch {
	case i == m.epCursor && m.focus == FocusEpisodes:
		return st.Cursor.Render(line)
	case ep.ID == m.snap.SelectedID:
		return st.Selected.Render(line)
	}
	return st.Base.Render(line)
}

func (m Model) renderFooter() string {
	st := styles.T().S()
	if m.inputOpen {
		return m.input.View()
	}
	help := m.help.View(helpKeys{focus: m.focus})
	if m.status == "" {
		return help
	}
	status := render.Truncate(m.status, m.width)
	if m.statusErr {
		status = st.Error.Render(status)
	} else {
		status = st.Muted.Render(status)
	}
	if m.help.ShowAll {
		return lipgloss.JoinVertical(lipgloss.Left, status, help)
	}
	return status
}

// scrollOffset returns the first visible row keeping cursor on screen.
func scrollOffset(cursor, n, height int) int {
	if height <= 0 || n <= height {
		return 0
	}
	return min(max(cursor-height+1, 0), n-height)
}

func displayName(title, address string) string {
	if title != "" {
		return title
	}
	return address
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
