package mock

import (
	"context"

	"github.com/fwojciec/pkmclip"
)

var _ pkmclip.ImageResolver = (*ImageResolver)(nil)

// ImageResolver is a mock implementation of pkmclip.ImageResolver.
type ImageResolver struct {
	ResolveFn func(ctx context.Context, markdown string, opts pkmclip.ResolveOptions) (string, []pkmclip.ImageFailure, error)
}

func (r *ImageResolver) Resolve(ctx context.Context, markdown string, opts pkmclip.ResolveOptions) (string, []pkmclip.ImageFailure, error) {
	return r.ResolveFn(ctx, markdown, opts)
}
