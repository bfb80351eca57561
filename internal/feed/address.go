package feed

import (
	"net/url"
	"strings"
)

// NormalizeAddress turns user or locator input into the cache key of a feed.
// It trims whitespace, decodes percent-encoding and requires an absolute
// http(s) URL.
func NormalizeAddress(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if decoded, err := url.PathUnescape(addr); err == nil {
		addr = strings.TrimSpace(decoded)
	}
	if addr == "" {
		return "", &Error{Kind: KindInvalidAddress, Address: raw}
	}

	u, err := url.Parse(addr)
	if err != nil {
		return "", &Error{Kind: KindInvalidAddress, Address: raw, Err: err}
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return "", &Error{Kind: KindInvalidAddress, Address: raw}
	}
	return addr, nil
}
