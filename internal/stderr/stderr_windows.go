//go:build windows

// Package stderr is a pass-through on Windows, where the audio backend does
// not write to the console.
package stderr

import "os"

// Capture is a no-op capture.
type Capture struct{}

// Start returns a no-op capture.
func Start() (*Capture, error) {
	return &Capture{}, nil
}

// Lines returns nil: nothing is ever captured.
func (c *Capture) Lines() <-chan string {
	return nil
}

// WriteOriginal writes to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop does nothing.
func (c *Capture) Stop() {}
