// Package clip orchestrates the clipping pipeline: fetching extracted
// content, resolving images, building frontmatter, allocating a
// destination filename, and persisting the document.
package clip

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/pkmclip"
	"github.com/google/uuid"
)

// Clipper runs clip operations. Fetcher, Images, and Store must be set;
// Logger and Now are optional.
type Clipper struct {
	Fetcher     pkmclip.ContentFetcher
	Images      pkmclip.ImageResolver
	Store       pkmclip.DocumentStore
	DefaultTags []string

	// Logger receives pipeline progress. Discarded when nil.
	Logger *slog.Logger

	// Now supplies the clip timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Clip processes a single request to completion. Stages run strictly in
// sequence; a fetch or write failure aborts with no file written, while
// per-image failures accumulate into a successful result. With DryRun
// set, every stage up to and including filename allocation runs (so the
// reported path matches what a real run would produce) but nothing is
// written.
func (c *Clipper) Clip(ctx context.Context, req *pkmclip.ClipRequest) (*pkmclip.ClipResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := c.logger().With("clip_id", shortID())
	begin := time.Now()

	logger.Info("clip started", "url", req.URL, "dry_run", req.DryRun)

	fetched, err := c.Fetcher.Fetch(ctx, req.URL)
	if err != nil {
		logger.Error("fetch failed", "err", err)
		return nil, fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	logger.Debug("content fetched", "bytes", len(fetched.Markdown), "title", fetched.Title)

	body, failures, err := c.Images.Resolve(ctx, fetched.Markdown, pkmclip.ResolveOptions{
		Download: req.DownloadImages,
		DryRun:   req.DryRun,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve images: %w", err)
	}

	fm := pkmclip.BuildFrontmatter(fetched, req, c.DefaultTags, c.now())

	name := req.Filename
	if name == "" {
		name = fm.Title
	}

	path, err := c.Store.Allocate(req.OutputDir, name, req.Force)
	if err != nil {
		logger.Error("allocate failed", "name", name, "err", err)
		return nil, fmt.Errorf("allocate filename: %w", err)
	}

	result := &pkmclip.ClipResult{
		Path:          path,
		ImageFailures: failures,
	}

	if req.DryRun {
		logger.Info("dry run, skipping write", "path", path, "duration", time.Since(begin))
		return result, nil
	}

	doc := &pkmclip.Document{Frontmatter: fm, Body: body}
	if err := c.Store.Write(ctx, path, doc); err != nil {
		logger.Error("write failed", "path", path, "err", err)
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	result.Written = true
	logger.Info("clip finished",
		"path", path,
		"images_failed", len(failures),
		"duration", time.Since(begin),
	)
	return result, nil
}

func (c *Clipper) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (c *Clipper) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// shortID returns an eight character id for log correlation.
func shortID() string {
	return uuid.NewString()[:8]
}
