package app

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavecast/internal/errmsg"
	"github.com/llehouerou/wavecast/internal/keymap"
	"github.com/llehouerou/wavecast/internal/location"
	"github.com/llehouerou/wavecast/internal/player"
)

const rateStep = 0.25

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 10)
		return m, nil

	case TickMsg:
		return m, TickCmd()

	case SessionUpdatedMsg:
		m.refresh()
		return m, WatchSession(m.session)

	case TrackChangedMsg:
		if msg.Episode != nil && !msg.Started {
			m.setStatus("Ready: " + msg.Episode.Title)
		}
		return m, WatchPlaybackEvents(m.events)

	case RateChangedMsg:
		m.setStatus(fmt.Sprintf("Speed %s× saved for this feed", formatRate(msg.Rate)))
		return m, WatchPlaybackEvents(m.events)

	case PlaybackErrorMsg:
		m.setError(errmsg.FormatWith(playbackOp(msg.Operation), msg.Source, msg.Err))
		m.log.Warn().Err(msg.Err).Str("op", msg.Operation).Str("source", msg.Source).Msg("playback error")
		return m, WatchPlaybackEvents(m.events)

	case StderrMsg:
		m.setError(string(msg))
		return m, WatchStderr(m.stderr)

	case OpenedMsg:
		m.handleOpened(msg)
		return m, nil

	case RefreshedMsg:
		if msg.Err != nil {
			m.setError(errmsg.FormatWith(errmsg.OpFeedFetch, m.snap.Address, msg.Err))
		} else {
			m.setStatus("Feed refreshed")
		}
		return m, nil

	case tea.KeyMsg:
		if m.inputOpen {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}

	if m.inputOpen {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m.closeInput()
		if value == "" {
			return m, nil
		}
		m.setStatus("Opening " + value)
		m.focus = FocusEpisodes
		return m, openCmd(m.ctx, m.session, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.inputOpen = false
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.Resolve(msg.String())
	switch action {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	case keymap.ActionSwitchFocus:
		if m.focus == FocusFeeds {
			m.focus = FocusEpisodes
		} else {
			m.focus = FocusFeeds
		}
	case keymap.ActionOpenAddress:
		m.inputOpen = true
		return m, m.input.Focus()

	case keymap.ActionPlayPause:
		m.session.TogglePlay()
	case keymap.ActionNext:
		m.session.Next()
	case keymap.ActionPrev:
		m.session.Prev()
	case keymap.ActionClear:
		m.session.Clear()
	case keymap.ActionRateUp:
		m.session.SetRate(stepRate(m.snap.Rate, rateStep))
	case keymap.ActionRateDown:
		m.session.SetRate(stepRate(m.snap.Rate, -rateStep))
	case keymap.ActionRateReset:
		m.session.SetRate(1)

	case keymap.ActionMoveUp:
		m.moveCursor(-1)
	case keymap.ActionMoveDown:
		m.moveCursor(1)
	case keymap.ActionFirst:
		m.setCursor(0)
	case keymap.ActionLast:
		m.setCursor(m.listLen() - 1)
	case keymap.ActionConfirm:
		return m.confirm()

	case keymap.ActionCycleOrder:
		next := m.snap.Order.Next()
		m.session.SetOrder(next)
		m.setStatus("Order: " + next.Label())
	case keymap.ActionRefresh:
		if m.snap.Address != "" {
			m.setStatus("Refreshing…")
			return m, refreshCmd(m.ctx, m.session)
		}
	case keymap.ActionRemoveFeed:
		if m.focus == FocusFeeds && len(m.feeds) > 0 {
			known := m.feeds[m.feedCursor]
			m.session.RemoveFeed(known.Address)
			m.setStatus("Removed " + displayName(known.Title, known.Address))
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if m.focus == FocusFeeds {
		m.setCursor(m.feedCursor + delta)
		return
	}
	m.setCursor(m.epCursor + delta)
}

func (m *Model) setCursor(i int) {
	if m.focus == FocusFeeds {
		m.feedCursor = clampCursor(i, len(m.feeds))
		return
	}
	m.epCursor = clampCursor(i, len(m.snap.Episodes))
}

func (m Model) listLen() int {
	if m.focus == FocusFeeds {
		return len(m.feeds)
	}
	return len(m.snap.Episodes)
}

// confirm opens the highlighted feed, or selects the highlighted episode.
// Confirming the selected episode toggles playback.
func (m Model) confirm() (tea.Model, tea.Cmd) {
	if m.focus == FocusFeeds {
		if len(m.feeds) == 0 {
			return m, nil
		}
		address := m.feeds[m.feedCursor].Address
		m.focus = FocusEpisodes
		return m, openCmd(m.ctx, m.session, address)
	}

	if len(m.snap.Episodes) == 0 {
		return m, nil
	}
	ep := m.snap.Episodes[m.epCursor]
	if ep.ID == m.snap.SelectedID {
		m.session.TogglePlay()
		return m, nil
	}
	m.session.Select(ep.ID)
	return m, nil
}

func (m *Model) handleOpened(msg OpenedMsg) {
	if msg.Err != nil {
		m.setError(errmsg.FormatWith(errmsg.OpFeedFetch, msg.Address, msg.Err))
		return
	}
	if msg.Opened.Kind != location.KindImport {
		m.setStatus("")
		return
	}

	var failed int
	for _, r := range msg.Opened.Imported {
		if r.Entry == nil {
			failed++
		}
	}
	total := len(msg.Opened.Imported)
	if failed > 0 {
		m.setError(errmsg.Format(errmsg.OpFeedsImport, fmt.Errorf("%d of %d feeds could not be loaded", failed, total)))
	} else {
		m.setStatus(fmt.Sprintf("Imported %d feeds", total))
	}
	m.focus = FocusFeeds
	m.refresh()
}

// stepRate moves rate by delta on a quarter grid, within the sink bounds.
func stepRate(rate, delta float64) float64 {
	if rate <= 0 {
		rate = 1
	}
	stepped := math.Round((rate+delta)/rateStep) * rateStep
	return player.ClampRate(max(stepped, player.MinRate))
}

func playbackOp(operation string) errmsg.Op {
	if operation == "save rate" {
		return errmsg.OpRateSave
	}
	return errmsg.OpPlaybackStart
}
