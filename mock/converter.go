package mock

import "github.com/fwojciec/pkmclip"

var _ pkmclip.Converter = (*Converter)(nil)

// Converter is a mock implementation of pkmclip.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
