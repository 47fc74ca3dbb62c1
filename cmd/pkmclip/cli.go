package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/pkmclip"
	"github.com/fwojciec/pkmclip/clip"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Settings *Settings
	Clipper  *clip.Clipper
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Clip ClipCmd `cmd:"" default:"withargs" help:"Clip a web page to Markdown"`

	Config  string `help:"Path to config file" placeholder:"PATH"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
	APIKey  string `env:"JINA_API_KEY" help:"Reader service API key"`
}

// ClipCmd is the "clip" subcommand.
type ClipCmd struct {
	URL string `arg:"" help:"URL of the page to clip"`

	Output      string   `short:"o" help:"Output directory (overrides config)" placeholder:"DIR"`
	Filename    string   `short:"n" help:"Filename without extension (defaults to the page title)"`
	Title       string   `help:"Override the extracted title"`
	Author      string   `help:"Override the extracted author (comma separated)"`
	Published   string   `help:"Override the publication date (YYYY-MM-DD)" placeholder:"DATE"`
	Description string   `help:"Override the extracted description"`
	Tags        []string `short:"t" name:"tag" help:"Additional frontmatter tag (repeatable)"`
	NoImages    bool     `help:"Leave remote image references untouched"`
	Force       bool     `short:"f" help:"Overwrite an existing note instead of renaming"`
	DryRun      bool     `help:"Run the pipeline without writing any files"`
	JSON        bool     `help:"Print the result as JSON"`
}

// Run executes the clip command.
func (c *ClipCmd) Run(deps *Dependencies) error {
	outputDir := c.Output
	if outputDir == "" {
		outputDir = deps.Settings.OutputPath
	}

	req := &pkmclip.ClipRequest{
		URL:            c.URL,
		Title:          c.Title,
		Author:         c.Author,
		Published:      c.Published,
		Description:    c.Description,
		Tags:           c.Tags,
		Filename:       c.Filename,
		OutputDir:      outputDir,
		DownloadImages: !c.NoImages,
		Force:          c.Force,
		DryRun:         c.DryRun,
	}

	result, err := deps.Clipper.Clip(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkmclip.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	for _, f := range result.ImageFailures {
		fmt.Fprintf(deps.Stderr, "  skip image %s: %s\n", f.URL, f.Reason)
	}
	if result.Written {
		fmt.Fprintf(deps.Stdout, "Clipped to %s\n", result.Path)
	} else {
		fmt.Fprintf(deps.Stdout, "Dry run: would write %s\n", result.Path)
	}
	return nil
}
