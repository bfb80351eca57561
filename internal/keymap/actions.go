// Package keymap defines key bindings and action dispatch for the player.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit        Action = "quit"
	ActionHelp        Action = "help"
	ActionSwitchFocus Action = "switch_focus"
	ActionOpenAddress Action = "open_address"

	// Playback actions
	ActionPlayPause Action = "play_pause"
	ActionNext      Action = "next"
	ActionPrev      Action = "prev"
	ActionClear     Action = "clear"
	ActionRateUp    Action = "rate_up"
	ActionRateDown  Action = "rate_down"
	ActionRateReset Action = "rate_reset"

	// List actions
	ActionMoveUp   Action = "move_up"
	ActionMoveDown Action = "move_down"
	ActionFirst    Action = "first"
	ActionLast     Action = "last"
	ActionConfirm  Action = "confirm"

	// Episode list actions
	ActionCycleOrder Action = "cycle_order"
	ActionRefresh    Action = "refresh"

	// Feed list actions
	ActionRemoveFeed Action = "remove_feed"
)
