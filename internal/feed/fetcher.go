package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

const (
	defaultUserAgent   = "wavecast/1.0 podcast player"
	defaultMaxBodySize = 32 << 20
	acceptHeader       = "application/rss+xml, application/atom+xml, application/xml, text/xml, text/html;q=0.5, */*;q=0.1"
)

// Fetcher retrieves the raw body of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, address string) ([]byte, error)
}

// StatusError is returned when a feed responds with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// HTTPFetcher fetches feeds over HTTP. When an address serves an HTML page,
// the first RSS/Atom alternate link of that page is followed once.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// FetcherOptions configures an HTTPFetcher.
type FetcherOptions struct {
	UserAgent   string
	MaxBodySize int64
	// AllowPrivateNetworks disables the SSRF guard (loopback, RFC 1918, ...).
	AllowPrivateNetworks bool
}

// NewHTTPFetcher creates a fetcher. Unless private networks are allowed, the
// client blocks private, loopback and link-local destinations.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	var client *http.Client
	if opts.AllowPrivateNetworks {
		client = &http.Client{}
	} else {
		client = NewSafeClient(0)
	}
	return NewHTTPFetcherWithClient(client, opts)
}

// NewHTTPFetcherWithClient creates a fetcher using the given client as is.
func NewHTTPFetcherWithClient(client *http.Client, opts FetcherOptions) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      client,
		userAgent:   opts.UserAgent,
		maxBodySize: opts.MaxBodySize,
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	if f.maxBodySize <= 0 {
		f.maxBodySize = defaultMaxBodySize
	}
	return f
}

// NewSafeClient returns an HTTP client that refuses non-public destinations,
// including after DNS resolution. A zero timeout means no timeout.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		Build()
	return safeurl.Client(config).Client
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	body, contentType, err := f.get(ctx, address)
	if err != nil {
		return nil, err
	}
	if IsDirectFeed(contentType, body) || !isHTML(contentType) {
		return body, nil
	}

	links := ParseFeedLinks(body, address)
	if len(links) == 0 {
		return body, nil
	}
	body, _, err = f.get(ctx, links[0])
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, address string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, "", fetchError(address, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fetchError(address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fetchError(address, &StatusError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, "", fetchError(address, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
