// Package fs persists clipped documents as Markdown files with YAML
// frontmatter, allocating collision-safe filenames.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/pkmclip"
	"gopkg.in/yaml.v3"
)

// DefaultName is used when normalization leaves nothing usable.
const DefaultName = "untitled"

// maxNameLength caps generated filenames to stay within filesystem limits.
const maxNameLength = 200

// invalidChars are replaced with underscores during normalization.
const invalidChars = `/\:*?"<>|`

// Normalize makes name safe for use as a filename: forbidden characters
// become underscores, underscore runs collapse, surrounding whitespace
// and underscores are trimmed, and overly long names are truncated.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(invalidChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}

	s := b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_ \t")

	if r := []rune(s); len(r) > maxNameLength {
		s = strings.Trim(string(r[:maxNameLength]), "_ \t")
	}

	if s == "" {
		return DefaultName
	}
	return s
}

// FormatDocument renders a document as a YAML frontmatter block followed
// by the body. Empty optional frontmatter fields are omitted.
func FormatDocument(doc *pkmclip.Document) (string, error) {
	fm, err := yaml.Marshal(doc.Frontmatter)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(doc.Body)
	if !strings.HasSuffix(doc.Body, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Ensure Store implements pkmclip.DocumentStore at compile time.
var _ pkmclip.DocumentStore = (*Store)(nil)

// Store writes clipped documents to the local filesystem.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Allocate resolves a collision-safe destination path for name under dir.
// With force the base path is returned unconditionally; otherwise numbered
// variants ("name 1.md", "name 2.md", …) are probed in increasing order
// until a free one is found. Probing is read-only.
func (s *Store) Allocate(dir, name string, force bool) (string, error) {
	name = Normalize(name)

	path := filepath.Join(dir, name+".md")
	if force {
		return path, nil
	}

	for n := 1; ; n++ {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, nil
		}
		if err != nil {
			return "", pkmclip.Errorf(pkmclip.EINTERNAL, "probe %s: %v", path, err)
		}
		path = filepath.Join(dir, fmt.Sprintf("%s %d.md", name, n))
	}
}

// Write persists doc at path. The content lands via a temporary file and
// rename in the target directory, so a failed write never leaves a
// partial document behind.
func (s *Store) Write(ctx context.Context, path string, doc *pkmclip.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	content, err := FormatDocument(doc)
	if err != nil {
		return pkmclip.Errorf(pkmclip.EINTERNAL, "format document: %v", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pkmclip.Errorf(pkmclip.EINTERNAL, "create output directory: %v", err)
	}

	tmp, err := os.CreateTemp(dir, ".pkmclip-*")
	if err != nil {
		return pkmclip.Errorf(pkmclip.EINTERNAL, "create temporary file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return pkmclip.Errorf(pkmclip.EINTERNAL, "write document: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return pkmclip.Errorf(pkmclip.EINTERNAL, "write document: %v", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return pkmclip.Errorf(pkmclip.EINTERNAL, "write document: %v", err)
	}
	return nil
}
