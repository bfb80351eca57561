package app

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavecast/internal/location"
	"github.com/llehouerou/wavecast/internal/playback"
	"github.com/llehouerou/wavecast/internal/session"
)

// TickCmd returns a command that sends TickMsg after 1 second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// WatchSession waits for the next session change.
func WatchSession(s Session) tea.Cmd {
	return func() tea.Msg {
		<-s.Updates()
		return SessionUpdatedMsg{}
	}
}

// WatchPlaybackEvents waits for the next playback bridge event. It returns
// nil once the subscription is closed.
func WatchPlaybackEvents(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.TrackChanged:
			return TrackChangedMsg(e)
		case e := <-sub.RateChanged:
			return RateChangedMsg(e)
		case e := <-sub.Error:
			return PlaybackErrorMsg(e)
		case <-sub.Done:
			return nil
		}
	}
}

// WatchStderr waits for the next captured stderr line.
func WatchStderr(lines <-chan string) tea.Cmd {
	if lines == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return StderrMsg(line)
	}
}

// openCmd opens what the user typed: a shareable address when it carries
// session parameters, a feed address otherwise.
func openCmd(ctx context.Context, s Session, input string) tea.Cmd {
	return func() tea.Msg {
		if isLocation(input) {
			opened, err := s.OpenLocation(ctx, input)
			return OpenedMsg{Address: input, Opened: opened, Err: err}
		}
		err := s.OpenFeed(ctx, input, "")
		return OpenedMsg{
			Address: input,
			Opened:  session.Opened{Kind: location.KindSession},
			Err:     err,
		}
	}
}

func refreshCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		return RefreshedMsg{Err: s.Refresh(ctx)}
	}
}

func isLocation(input string) bool {
	for _, p := range []string{location.ParamChannel, location.ParamChannels} {
		if strings.HasPrefix(input, p+"=") ||
			strings.Contains(input, "?"+p+"=") ||
			strings.Contains(input, "&"+p+"=") {
			return true
		}
	}
	return false
}
