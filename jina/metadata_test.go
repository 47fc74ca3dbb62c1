package jina_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/pkmclip/jina"
	"github.com/stretchr/testify/assert"
)

func TestParseTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "reader metadata block",
			markdown: "Title: Stop Drooling Over User Stories\nURL Source: https://example.com\n\nMarkdown Content:\n# Something Else",
			want:     "Stop Drooling Over User Stories",
		},
		{
			name:     "h1 fallback",
			markdown: "Some intro text.\n\n# Test Article\n\nBody.",
			want:     "Test Article",
		},
		{
			name:     "title line only considered before first blank line",
			markdown: "# Real Title\n\nTitle: not a header\n",
			want:     "Real Title",
		},
		{
			name:     "no title",
			markdown: "Just a paragraph with no heading.",
			want:     "",
		},
		{
			name:     "empty input",
			markdown: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, jina.ParseTitle(tt.markdown))
		})
	}
}

func TestParseAuthors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		want     []string
	}{
		{
			name:     "author line",
			markdown: "# Post\n\nAuthor: Jane Doe\n\nBody.",
			want:     []string{"Jane Doe"},
		},
		{
			name:     "comma separated authors",
			markdown: "Author: Alice, Bob\n",
			want:     []string{"Alice", "Bob"},
		},
		{
			name:     "by line",
			markdown: "# Post\n\nBy John Smith\n\nBody.",
			want:     []string{"John Smith"},
		},
		{
			name:     "no author",
			markdown: "# Post\n\nBody only.",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, jina.ParseAuthors(tt.markdown))
		})
	}
}

func TestExtractPublished(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		url      string
		want     string
	}{
		{
			name:     "reader published line",
			markdown: "Title: Post\nPublished Time: 2024-09-24T14:30:00Z\n\nBody.",
			want:     "2024-09-24",
		},
		{
			name:     "plain published line",
			markdown: "Published: 2024-09-24\n\nBody.",
			want:     "2024-09-24",
		},
		{
			name:     "open graph",
			markdown: "article:published_time: 2024-03-02T08:00:00+09:00\n\nBody.",
			want:     "2024-03-02",
		},
		{
			name:     "json-ld",
			markdown: `<script type="application/ld+json">{"@type": "Article", "author": {"name": "x"}, "datePublished": "2024-05-17"}</script>`,
			want:     "2024-05-17",
		},
		{
			name:     "json-ld nested in list",
			markdown: `<script type="application/ld+json">[{"item": {"datePublished": "2023-11-30T10:00:00Z"}}]</script>`,
			want:     "2023-11-30",
		},
		{
			name:     "meta tag",
			markdown: `<meta name="date" content="2022-01-15" />`,
			want:     "2022-01-15",
		},
		{
			name: "url path fallback",
			url:  "https://example.com/2024/09/24/some-post",
			want: "2024-09-24",
		},
		{
			name:     "reader line wins over url",
			markdown: "Published: 2020-01-01\n",
			url:      "https://example.com/2024/09/24/some-post",
			want:     "2020-01-01",
		},
		{
			name:     "nothing found",
			markdown: "# Post\n\nBody.",
			url:      "https://example.com/post",
			want:     "",
		},
		{
			name:     "unparseable date ignored",
			markdown: "Published: soon\n",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, jina.ExtractPublished(tt.markdown, tt.url))
		})
	}
}

func TestParseDescription(t *testing.T) {
	t.Parallel()

	t.Run("first paragraph after headings and metadata", func(t *testing.T) {
		t.Parallel()

		markdown := "Title: Post\nAuthor: Jane\n\n# Heading\n\nFirst paragraph line one\nline two.\n\nSecond paragraph."

		got := jina.ParseDescription(markdown)

		assert.Equal(t, "First paragraph line one line two.", got)
	})

	t.Run("caps long descriptions", func(t *testing.T) {
		t.Parallel()

		markdown := strings.Repeat("word ", 100)

		got := jina.ParseDescription(markdown)

		assert.Len(t, []rune(got), 203)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("empty when only headings", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, jina.ParseDescription("# One\n## Two\n"))
	})
}

func TestTitleFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "hyphenated slug",
			url:  "https://example.com/2024/09/24/stop-drooling-over-user-stories",
			want: "Stop Drooling Over User Stories",
		},
		{
			name: "underscores and extension",
			url:  "https://example.com/posts/my_great_post.html",
			want: "My Great Post",
		},
		{
			name: "root path",
			url:  "https://example.com/",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, jina.TitleFromURL(tt.url))
		})
	}
}

func TestDateFromURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-09-24", jina.DateFromURL("https://example.com/2024/09/24/post"))
	assert.Empty(t, jina.DateFromURL("https://example.com/post"))
}
