package pkmclip

import "time"

// ClipRequest describes a single clip operation. It is constructed once by
// the caller and never mutated by the pipeline.
type ClipRequest struct {
	// URL is the web page to clip.
	URL string

	// Metadata overrides. When set they take priority over metadata
	// extracted from the fetched content.
	Title       string
	Author      string // comma-separated list
	Published   string // YYYY-MM-DD
	Description string
	Tags        []string

	// Filename overrides the title-derived destination filename.
	Filename string

	// OutputDir is the directory the final document is written to.
	OutputDir string

	// DownloadImages enables rewriting remote image references into
	// locally downloaded vault embeds.
	DownloadImages bool

	// Force overwrites an existing destination file instead of probing
	// for a free numbered variant.
	Force bool

	// DryRun executes the full pipeline but writes no files.
	DryRun bool
}

// Validate returns an error if the request contains invalid fields.
func (r *ClipRequest) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "clip URL required")
	}
	if r.OutputDir == "" {
		return Errorf(EINVALID, "output directory required")
	}
	if r.Published != "" {
		if _, err := time.Parse("2006-01-02", r.Published); err != nil {
			return Errorf(EINVALID, "published date must be YYYY-MM-DD, got %q", r.Published)
		}
	}
	return nil
}

// ImageFailure records a single image download that could not be completed.
// Failed references keep their original remote URL in the output document.
type ImageFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ClipResult is the terminal artifact of a clip operation.
type ClipResult struct {
	// Path is the resolved destination, also reported for dry runs.
	Path string `json:"path"`

	// Written reports whether the document was persisted.
	Written bool `json:"written"`

	// ImageFailures lists images that could not be downloaded. These are
	// recoverable: the clip as a whole still succeeds.
	ImageFailures []ImageFailure `json:"imageFailures,omitempty"`
}
