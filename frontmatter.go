package pkmclip

import (
	"strings"
	"time"
)

// DefaultTitle is used when neither the request, the fetched content, nor
// the source URL yields a usable title.
const DefaultTitle = "Untitled Clipping"

// Frontmatter is the structured metadata header of a clipped document.
// Field order here determines the serialized key order.
type Frontmatter struct {
	Title       string   `yaml:"title"`
	Source      string   `yaml:"source"`
	Author      []string `yaml:"author,omitempty"`
	Published   string   `yaml:"published,omitempty"`
	Created     string   `yaml:"created"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// BuildFrontmatter merges fetched metadata with request overrides.
// Request values win, fetched metadata fills the gaps, and optional fields
// that remain empty are omitted on serialization. Created is stamped from
// now rather than from the content.
func BuildFrontmatter(fetched *FetchedContent, req *ClipRequest, defaultTags []string, now time.Time) *Frontmatter {
	fm := &Frontmatter{
		Source:  req.URL,
		Created: now.Format("2006-01-02"),
		Tags:    MergeTags(defaultTags, req.Tags),
	}

	fm.Title = req.Title
	if fm.Title == "" {
		fm.Title = fetched.Title
	}
	if fm.Title == "" {
		fm.Title = DefaultTitle
	}

	if req.Author != "" {
		fm.Author = SplitAuthors(req.Author)
	} else {
		fm.Author = fetched.Author
	}

	fm.Published = req.Published
	if fm.Published == "" {
		fm.Published = fetched.Published
	}

	fm.Description = req.Description
	if fm.Description == "" {
		fm.Description = fetched.Description
	}

	return fm
}

// MergeTags unions default and user tags, defaults first, keeping the
// first occurrence of each tag.
func MergeTags(defaults, user []string) []string {
	seen := make(map[string]struct{}, len(defaults)+len(user))
	var out []string
	for _, t := range append(append([]string(nil), defaults...), user...) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitAuthors splits a comma-separated author string into a list.
func SplitAuthors(s string) []string {
	var authors []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}
