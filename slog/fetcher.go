// Package slog provides logging decorators for pkmclip services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pkmclip"
)

// Ensure LoggingFetcher implements pkmclip.ContentFetcher.
var _ pkmclip.ContentFetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a ContentFetcher with request logging.
type LoggingFetcher struct {
	next   pkmclip.ContentFetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next pkmclip.ContentFetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (*pkmclip.FetchedContent, error) {
	begin := time.Now()
	content, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.Error("fetch",
			"url", url,
			"err", err,
			"duration", time.Since(begin),
		)
		return nil, err
	}
	f.logger.Info("fetch",
		"url", url,
		"bytes", len(content.Markdown),
		"title", content.Title,
		"duration", time.Since(begin),
	)
	return content, nil
}
