package feed

import (
	"bytes"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var feedContentTypes = []string{
	"application/rss+xml",
	"application/atom+xml",
}

var xmlContentTypes = []string{
	"text/xml",
	"application/xml",
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	return strings.ToLower(mt)
}

func isHTML(contentType string) bool {
	mt := mediaType(contentType)
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// IsDirectFeed reports whether a response with the given content type and
// body is an RSS or Atom document.
func IsDirectFeed(contentType string, body []byte) bool {
	mt := mediaType(contentType)
	for _, ct := range feedContentTypes {
		if mt == ct {
			return true
		}
	}

	isXML := false
	for _, ct := range xmlContentTypes {
		if mt == ct {
			isXML = true
			break
		}
	}
	if !isXML || len(body) == 0 {
		return false
	}

	prefix := strings.ToLower(string(body[:min(len(body), 4096)]))
	if strings.Contains(prefix, "<rss") || strings.Contains(prefix, "<rdf:rdf") {
		return true
	}
	return strings.Contains(prefix, "<feed") && strings.Contains(prefix, "http://www.w3.org/2005/atom")
}

// ParseFeedLinks returns the RSS/Atom alternate links declared in the head of
// an HTML page, resolved against baseURL, in document order.
func ParseFeedLinks(htmlBody []byte, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []string
	z := html.NewTokenizer(bytes.NewReader(htmlBody))
	inHead := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "head":
				inHead = true
				continue
			case "body":
				return links
			case "link":
			default:
				continue
			}
			if !inHead || !hasAttr {
				continue
			}

			var rel, typ, href string
			for {
				key, val, more := z.TagAttr()
				switch strings.ToLower(string(key)) {
				case "rel":
					rel = strings.ToLower(string(val))
				case "type":
					typ = strings.ToLower(string(val))
				case "href":
					href = string(val)
				}
				if !more {
					break
				}
			}
			if rel != "alternate" || href == "" {
				continue
			}
			if typ != "application/rss+xml" && typ != "application/atom+xml" {
				continue
			}
			ref, err := url.Parse(href)
			if err != nil {
				continue
			}
			links = append(links, base.ResolveReference(ref).String())
		}
	}
}
