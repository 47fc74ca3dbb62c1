package pkmclip

import "context"

// FetchedContent holds the reader service's extraction of a web page:
// the page body as Markdown plus whatever metadata could be recovered.
// Optional fields are empty when the source page does not expose them.
type FetchedContent struct {
	Markdown    string
	Title       string
	Author      []string
	Published   string // YYYY-MM-DD
	Description string
}

// ContentFetcher retrieves extracted page content from the remote reader
// service. Implementations own metadata extraction from the raw response.
type ContentFetcher interface {
	// Fetch converts the page at url into Markdown plus metadata.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*FetchedContent, error)
}
