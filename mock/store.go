package mock

import (
	"context"

	"github.com/fwojciec/pkmclip"
)

var _ pkmclip.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of pkmclip.DocumentStore.
type DocumentStore struct {
	AllocateFn func(dir, name string, force bool) (string, error)
	WriteFn    func(ctx context.Context, path string, doc *pkmclip.Document) error
}

func (s *DocumentStore) Allocate(dir, name string, force bool) (string, error) {
	return s.AllocateFn(dir, name, force)
}

func (s *DocumentStore) Write(ctx context.Context, path string, doc *pkmclip.Document) error {
	return s.WriteFn(ctx, path, doc)
}
