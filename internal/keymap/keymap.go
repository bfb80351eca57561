package keymap

import "github.com/charmbracelet/bubbles/key"

// Contexts a binding applies in.
const (
	ContextGlobal   = "global"
	ContextPlayback = "playback"
	ContextList     = "list"
	ContextEpisodes = "episodes"
	ContextFeeds    = "feeds"
)

// Binding ties keys to an action within a context.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string
}

// Key converts the binding for use with the bubbles help component.
func (b Binding) Key() key.Binding {
	return key.NewBinding(
		key.WithKeys(b.Keys...),
		key.WithHelp(displayKey(b.Keys[0]), b.Description),
	)
}

// All contains every key binding.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", ContextGlobal},
	{ActionHelp, []string{"?"}, "Toggle help", ContextGlobal},
	{ActionSwitchFocus, []string{"tab"}, "Switch list", ContextGlobal},
	{ActionOpenAddress, []string{"o"}, "Open feed or link", ContextGlobal},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", ContextPlayback},
	{ActionNext, []string{"n", "pgdown"}, "Next episode", ContextPlayback},
	{ActionPrev, []string{"p", "pgup"}, "Previous episode", ContextPlayback},
	{ActionClear, []string{"x"}, "Stop listening", ContextPlayback},
	{ActionRateUp, []string{"+", "="}, "Faster", ContextPlayback},
	{ActionRateDown, []string{"-"}, "Slower", ContextPlayback},
	{ActionRateReset, []string{"0"}, "Normal speed", ContextPlayback},

	// Lists
	{ActionMoveUp, []string{"k", "up"}, "Move up", ContextList},
	{ActionMoveDown, []string{"j", "down"}, "Move down", ContextList},
	{ActionFirst, []string{"g", "home"}, "First item", ContextList},
	{ActionLast, []string{"G", "end"}, "Last item", ContextList},
	{ActionConfirm, []string{"enter"}, "Open", ContextList},

	// Episodes
	{ActionCycleOrder, []string{"s"}, "Cycle order", ContextEpisodes},
	{ActionRefresh, []string{"r"}, "Refresh feed", ContextEpisodes},

	// Feeds
	{ActionRemoveFeed, []string{"d", "delete"}, "Remove feed", ContextFeeds},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// HelpKeys returns the bubbles bindings of the given contexts, in order.
func HelpKeys(contexts ...string) []key.Binding {
	var result []key.Binding
	for _, c := range contexts {
		for _, b := range ByContext(c) {
			result = append(result, b.Key())
		}
	}
	return result
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
