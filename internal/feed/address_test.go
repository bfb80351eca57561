package feed

import (
	"errors"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "https://example.com/feed.xml", "https://example.com/feed.xml"},
		{"http", "http://example.com/rss", "http://example.com/rss"},
		{"surrounding whitespace", "  https://example.com/feed.xml\n", "https://example.com/feed.xml"},
		{"percent-encoded", "https%3A%2F%2Fexample.com%2Ffeed.xml", "https://example.com/feed.xml"},
		{"percent-encoded with whitespace", " https%3A%2F%2Fexample.com%2Ffeed.xml ", "https://example.com/feed.xml"},
		{"query kept", "https://example.com/feed?format=rss", "https://example.com/feed?format=rss"},
		{"uppercase scheme", "HTTPS://example.com/feed.xml", "HTTPS://example.com/feed.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.raw)
			if err != nil {
				t.Fatalf("NormalizeAddress(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeAddress_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", " \t\n"},
		{"encoded whitespace only", "%20%20"},
		{"ftp scheme", "ftp://example.com/feed.xml"},
		{"file scheme", "file:///etc/podcasts.xml"},
		{"mailto", "mailto:host@example.com"},
		{"relative", "feed.xml"},
		{"missing host", "https://"},
		{"bad escape", "https://example.com/%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.raw)
			if !errors.Is(err, ErrInvalidAddress) {
				t.Fatalf("NormalizeAddress(%q) error = %v, want ErrInvalidAddress", tt.raw, err)
			}
			if got != "" {
				t.Errorf("NormalizeAddress(%q) = %q, want empty", tt.raw, got)
			}
			var fe *Error
			if errors.As(err, &fe) && fe.Address != tt.raw {
				t.Errorf("Error.Address = %q, want the raw input %q", fe.Address, tt.raw)
			}
		})
	}
}
