package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pkmclip/clip"
	"github.com/fwojciec/pkmclip/fs"
	"github.com/fwojciec/pkmclip/htmltomarkdown"
	"github.com/fwojciec/pkmclip/images"
	"github.com/fwojciec/pkmclip/jina"
	clipslog "github.com/fwojciec/pkmclip/slog"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// ConfigPath is the config file location. Set before calling Run().
	ConfigPath string

	// Clipper is exposed for end-to-end testing.
	Clipper *clip.Clipper
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: defaultConfigPath(),
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pkmclip"),
		kong.Description("Clip web pages to Obsidian-compatible Markdown notes."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no URL specified. Run 'pkmclip --help' for usage")
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.Config != "" {
		m.ConfigPath = cli.Config
	}
	settings, err := LoadSettings(m.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set PKMCLIP_CONFIG to use a different config path\n")
		return err
	}
	deps.Settings = settings

	logger := newLogger(stderr, cli.Verbose)

	fetcher := jina.NewClient(
		jina.WithBaseURL(settings.Reader.BaseURL),
		jina.WithAPIKey(cli.APIKey),
		jina.WithTimeout(time.Duration(settings.Reader.Timeout)*time.Second),
		jina.WithHeaders(jina.Headers{
			NoCache:        settings.Reader.NoCache,
			CacheTolerance: settings.Reader.CacheTolerance,
			RespondWith:    settings.Reader.RespondWith,
			Timeout:        settings.Reader.Timeout,
			GeneratedAlt:   settings.Reader.WithGeneratedAlt,
		}),
		jina.WithConverter(htmltomarkdown.NewConverter()),
	)

	resolver := images.NewResolver(settings.ImagePath)

	m.Clipper = &clip.Clipper{
		Fetcher:     clipslog.NewLoggingFetcher(fetcher, logger),
		Images:      clipslog.NewLoggingResolver(resolver, logger),
		Store:       fs.NewStore(),
		DefaultTags: settings.DefaultTags,
		Logger:      logger,
	}
	deps.Clipper = m.Clipper

	return kongCtx.Run(deps)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
