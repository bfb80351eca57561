package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/llehouerou/wavecast/internal/keymap"
)

// helpKeys adapts the keymap to the bubbles help component.
type helpKeys struct {
	focus Focus
}

func (h helpKeys) ShortHelp() []key.Binding {
	var short []key.Binding
	for _, a := range []keymap.Action{
		keymap.ActionPlayPause,
		keymap.ActionNext,
		keymap.ActionPrev,
		keymap.ActionOpenAddress,
		keymap.ActionSwitchFocus,
		keymap.ActionHelp,
		keymap.ActionQuit,
	} {
		for _, b := range keymap.All {
			if b.Action == a {
				short = append(short, b.Key())
				break
			}
		}
	}
	return short
}

func (h helpKeys) FullHelp() [][]key.Binding {
	listContext := keymap.ContextEpisodes
	if h.focus == FocusFeeds {
		listContext = keymap.ContextFeeds
	}
	return [][]key.Binding{
		keymap.HelpKeys(keymap.ContextGlobal),
		keymap.HelpKeys(keymap.ContextPlayback),
		keymap.HelpKeys(keymap.ContextList),
		keymap.HelpKeys(listContext),
	}
}
