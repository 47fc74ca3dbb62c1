// Package pkmclip clips web pages into Obsidian-compatible Markdown notes.
// It fetches extracted content through a remote reader service, rewrites
// embedded images into locally downloaded vault embeds, and persists the
// result with structured YAML frontmatter.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or the service they wrap (e.g., jina/,
// images/, fs/).
package pkmclip
