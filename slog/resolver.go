package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pkmclip"
)

// Ensure LoggingResolver implements pkmclip.ImageResolver.
var _ pkmclip.ImageResolver = (*LoggingResolver)(nil)

// LoggingResolver wraps an ImageResolver with per-resolve logging.
type LoggingResolver struct {
	next   pkmclip.ImageResolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next pkmclip.ImageResolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve delegates to the wrapped resolver and logs the outcome,
// including one warning per failed image.
func (r *LoggingResolver) Resolve(ctx context.Context, markdown string, opts pkmclip.ResolveOptions) (string, []pkmclip.ImageFailure, error) {
	begin := time.Now()
	rewritten, failures, err := r.next.Resolve(ctx, markdown, opts)
	if err != nil {
		r.logger.Error("resolve images", "err", err, "duration", time.Since(begin))
		return "", nil, err
	}
	for _, f := range failures {
		r.logger.Warn("image skipped", "url", f.URL, "reason", f.Reason)
	}
	r.logger.Info("resolve images",
		"download", opts.Download,
		"dry_run", opts.DryRun,
		"failed", len(failures),
		"duration", time.Since(begin),
	)
	return rewritten, failures, nil
}
