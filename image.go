package pkmclip

import "context"

// ResolveOptions control how image references are handled during a resolve.
type ResolveOptions struct {
	// Download enables fetching referenced images. When false the input
	// Markdown passes through unchanged.
	Download bool

	// DryRun downloads and hashes images so failures and the rewritten
	// body are real, but writes nothing to the image directory.
	DryRun bool
}

// ImageResolver rewrites remote image references in Markdown into local
// vault embeds, downloading each referenced image at most once per
// distinct content hash.
type ImageResolver interface {
	// Resolve returns the rewritten Markdown and the list of images that
	// could not be downloaded. Per-image failures are recoverable and do
	// not produce an error; the error return is reserved for fatal
	// conditions such as context cancellation.
	Resolve(ctx context.Context, markdown string, opts ResolveOptions) (string, []ImageFailure, error)
}
