package mock

import (
	"context"

	"github.com/fwojciec/pkmclip"
)

var _ pkmclip.ContentFetcher = (*ContentFetcher)(nil)

// ContentFetcher is a mock implementation of pkmclip.ContentFetcher.
type ContentFetcher struct {
	FetchFn func(ctx context.Context, url string) (*pkmclip.FetchedContent, error)
}

func (f *ContentFetcher) Fetch(ctx context.Context, url string) (*pkmclip.FetchedContent, error) {
	return f.FetchFn(ctx, url)
}
