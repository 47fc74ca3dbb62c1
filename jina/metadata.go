package jina

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// maxDescriptionLen caps extracted descriptions.
const maxDescriptionLen = 200

var (
	authorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^Author:\s*(.+?)\s*$`),
		regexp.MustCompile(`(?im)^By\s+(.+?)\s*$`),
	}

	publishedLineRe = regexp.MustCompile(`(?im)^Published(?: Time)?:\s*(.+?)\s*$`)

	openGraphPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^article:published_time:\s*(.+?)\s*$`),
		regexp.MustCompile(`(?im)^og:published_time:\s*(.+?)\s*$`),
	}

	jsonLDRe = regexp.MustCompile(`(?is)<script[^>]*type="application/ld\+json"[^>]*>(.*?)</script>`)

	metaDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<meta\s+name="date"\s+content="([^"]+)"`),
		regexp.MustCompile(`(?i)<meta\s+content="([^"]+)"\s+name="date"`),
	}

	urlDateRe = regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})/`)

	metadataLineRe = regexp.MustCompile(`(?i)^(title|url source|markdown content|author|published(?: time)?|article:published_time|og:published_time):|^by\s+`)
)

// dateLayouts are the accepted input formats for published dates, tried
// in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05",
}

// ParseTitle extracts a title from a reader response. The reader opens
// Markdown responses with a metadata block ("Title: …") before the first
// blank line; the first h1 heading serves as a fallback.
func ParseTitle(markdown string) string {
	lines := strings.Split(markdown, "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Title:"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}

	for _, line := range lines {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}

	return ""
}

// ParseAuthors extracts the author list from "Author: …" or "By …" lines.
// Comma-separated values split into multiple authors.
func ParseAuthors(markdown string) []string {
	for _, re := range authorPatterns {
		m := re.FindStringSubmatch(markdown)
		if m == nil {
			continue
		}
		var authors []string
		for _, a := range strings.Split(m[1], ",") {
			if a = strings.TrimSpace(a); a != "" {
				authors = append(authors, a)
			}
		}
		if len(authors) > 0 {
			return authors
		}
	}
	return nil
}

// ExtractPublished extracts a published date (YYYY-MM-DD) using a fixed
// priority of strategies: the reader's Published line, Open Graph
// properties, Schema.org JSON-LD, an HTML meta date tag, and finally a
// /YYYY/MM/DD/ segment in the source URL. Returns "" when every strategy
// fails.
func ExtractPublished(markdown, sourceURL string) string {
	if d := publishedFromLine(markdown); d != "" {
		return d
	}
	if d := publishedFromOpenGraph(markdown); d != "" {
		return d
	}
	if d := publishedFromJSONLD(markdown); d != "" {
		return d
	}
	if d := publishedFromMetaTag(markdown); d != "" {
		return d
	}
	return DateFromURL(sourceURL)
}

func publishedFromLine(markdown string) string {
	if m := publishedLineRe.FindStringSubmatch(markdown); m != nil {
		return parseDate(m[1])
	}
	return ""
}

func publishedFromOpenGraph(markdown string) string {
	for _, re := range openGraphPatterns {
		if m := re.FindStringSubmatch(markdown); m != nil {
			if d := parseDate(m[1]); d != "" {
				return d
			}
		}
	}
	return ""
}

func publishedFromJSONLD(markdown string) string {
	for _, m := range jsonLDRe.FindAllStringSubmatch(markdown, -1) {
		var data any
		if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
			continue
		}
		if raw := findDatePublished(data); raw != "" {
			if d := parseDate(raw); d != "" {
				return d
			}
		}
	}
	return ""
}

// findDatePublished walks arbitrarily nested JSON-LD looking for a
// datePublished value.
func findDatePublished(data any) string {
	switch v := data.(type) {
	case map[string]any:
		if s, ok := v["datePublished"].(string); ok {
			return s
		}
		for _, val := range v {
			if s := findDatePublished(val); s != "" {
				return s
			}
		}
	case []any:
		for _, item := range v {
			if s := findDatePublished(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func publishedFromMetaTag(markdown string) string {
	for _, re := range metaDatePatterns {
		if m := re.FindStringSubmatch(markdown); m != nil {
			if d := parseDate(m[1]); d != "" {
				return d
			}
		}
	}
	return ""
}

// DateFromURL extracts a date from a /YYYY/MM/DD/ path segment.
func DateFromURL(rawURL string) string {
	m := urlDateRe.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return parseDate(m[1] + "-" + m[2] + "-" + m[3])
}

// parseDate normalizes any accepted date format to YYYY-MM-DD.
func parseDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// ParseDescription extracts the first body paragraph, skipping headings
// and metadata lines, capped at 200 runes.
func ParseDescription(markdown string) string {
	lines := strings.Split(markdown, "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") || metadataLineRe.MatchString(line) {
			i++
			continue
		}
		break
	}

	var para []string
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") || metadataLineRe.MatchString(line) {
			break
		}
		para = append(para, line)
	}

	desc := strings.Join(para, " ")
	if r := []rune(desc); len(r) > maxDescriptionLen {
		desc = string(r[:maxDescriptionLen]) + "..."
	}
	return desc
}

// TitleFromURL derives a fallback title from the last URL path segment:
// separators become spaces and each word is capitalized.
func TitleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		last = last[:dot]
	}

	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(last))
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
