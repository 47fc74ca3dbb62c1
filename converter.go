package pkmclip

// Converter converts HTML to Markdown. The clip pipeline uses it when
// the reader service is configured to respond with HTML instead of
// Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}
