//go:build !windows

// Package stderr captures output that C audio libraries (ALSA through oto)
// write straight to file descriptor 2, which would otherwise scribble over
// the TUI.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"
)

const bufferedLines = 100

// Capture is an active redirection of fd 2.
type Capture struct {
	orig  int
	read  *os.File
	write *os.File
	lines chan string
}

// Start redirects fd 2 into a pipe. Call it before the audio backend is
// initialized. On error, output keeps going to the terminal.
func Start() (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{
		orig:  orig,
		read:  r,
		write: w,
		lines: make(chan string, bufferedLines),
	}
	go c.pump()
	return c, nil
}

func (c *Capture) pump() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.read)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case c.lines <- line:
		default:
			// nobody is reading fast enough; drop
		}
	}
}

// Lines delivers captured lines until Stop.
func (c *Capture) Lines() <-chan string {
	return c.lines
}

// WriteOriginal writes to the terminal's stderr, bypassing the capture.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Stop restores fd 2.
func (c *Capture) Stop() {
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.write.Close()
	c.read.Close()
}
