package pkmclip

import "context"

// Document is a clipped page ready for persistence.
type Document struct {
	Frontmatter *Frontmatter
	Body        string
}

// Validate returns an error if the document cannot be persisted.
func (d *Document) Validate() error {
	if d.Frontmatter == nil {
		return Errorf(EINVALID, "document frontmatter required")
	}
	if d.Frontmatter.Title == "" {
		return Errorf(EINVALID, "document title required")
	}
	if d.Frontmatter.Source == "" {
		return Errorf(EINVALID, "document source URL required")
	}
	return nil
}

// DocumentStore allocates destination paths and persists documents.
type DocumentStore interface {
	// Allocate resolves a collision-safe destination path for name under
	// dir. With force the base path is returned even if it exists;
	// otherwise numbered variants are probed until a free one is found.
	// Allocate is read-only over directory state.
	Allocate(dir, name string, force bool) (string, error)

	// Write persists doc at path. A failed write must not leave a
	// partial document behind.
	Write(ctx context.Context, path string, doc *Document) error
}
