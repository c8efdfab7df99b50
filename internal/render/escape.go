package render

import (
	"bytes"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// escHTML escapes text content.
func escHTML(s string) string {
	return html.EscapeString(s)
}

// escAttr escapes a value placed inside a double-quoted attribute.
func escAttr(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// escURL returns an attribute-safe URL, or "" for schemes other than http,
// https, mailto and relative references.
func escURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https", "mailto":
	default:
		return ""
	}
	return html.EscapeString(trimmed)
}

// richText sanitizes author-supplied inline HTML.
func richText(s string) string {
	return sanitizer.Sanitize(s)
}

// markdownHTML converts markdown and sanitizes the result.
func markdownHTML(src string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(src), &buf); err != nil {
		return "<p>" + escHTML(src) + "</p>"
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes()))
}
