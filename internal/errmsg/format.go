// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"context"
	"errors"
	"fmt"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Feed operations
	OpFeedFetch   Op = "fetch feed"
	OpFeedsImport Op = "import feeds"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpRateSave      Op = "save playback rate"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message. Nil and cancelled
// operations produce no message.
func Format(op Op, err error) string {
	if silent(err) {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message naming the subject of the operation.
func FormatWith(op Op, subject string, err error) string {
	if silent(err) {
		return ""
	}
	if subject == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, subject, err)
}

// silent reports errors that are not worth showing: a cancelled operation
// was superseded by a newer request or stopped on purpose.
func silent(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
