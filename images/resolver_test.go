package images_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fwojciec/pkmclip"
	"github.com/fwojciec/pkmclip/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast disables per-host rate limiting in tests.
var fast = images.WithRPS(0)

// storedName matches the image filename convention.
var storedName = regexp.MustCompile(`^\d{8}_\d{6}_[0-9a-f]{16}\.[a-z0-9]+$`)

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// imageServer serves fixed bodies by path.
func imageServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("passes markdown through when downloads are disabled", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		resolver := images.NewResolver(dir, fast)
		markdown := "![a](https://example.com/a.png)"

		got, failures, err := resolver.Resolve(context.Background(), markdown, pkmclip.ResolveOptions{Download: false})

		require.NoError(t, err)
		assert.Equal(t, markdown, got)
		assert.Empty(t, failures)
		assert.Empty(t, listFiles(t, dir))
	})

	t.Run("rewrites markdown and HTML references", func(t *testing.T) {
		t.Parallel()

		server := imageServer(t, map[string]string{
			"/a.png": "png-bytes-a",
			"/b.png": "png-bytes-b",
		})

		dir := t.TempDir()
		resolver := images.NewResolver(dir, fast)
		markdown := fmt.Sprintf("![one](%s/a.png)\n\n<img src=\"%s/b.png\" alt=\"two\">\n", server.URL, server.URL)

		got, failures, err := resolver.Resolve(context.Background(), markdown, pkmclip.ResolveOptions{Download: true})

		require.NoError(t, err)
		assert.Empty(t, failures)
		assert.NotContains(t, got, server.URL)
		assert.Equal(t, 2, strings.Count(got, "![["))

		files := listFiles(t, dir)
		require.Len(t, files, 2)
		for _, name := range files {
			assert.Regexp(t, storedName, name)
			assert.Contains(t, got, "![["+name+"]]")
		}
	})

	t.Run("identical bytes from distinct URLs collapse to one file", func(t *testing.T) {
		t.Parallel()

		server := imageServer(t, map[string]string{
			"/first.png":  "same-bytes",
			"/second.png": "same-bytes",
		})

		dir := t.TempDir()
		resolver := images.NewResolver(dir, fast)
		markdown := fmt.Sprintf("![1](%s/first.png)\n![2](%s/second.png)\n", server.URL, server.URL)

		got, failures, err := resolver.Resolve(context.Background(), markdown, pkmclip.ResolveOptions{Download: true})

		require.NoError(t, err)
		assert.Empty(t, failures)

		files := listFiles(t, dir)
		require.Len(t, files, 1)
		assert.Equal(t, 2, strings.Count(got, "![["+files[0]+"]]"))
	})

	t.Run("reuses files left by a previous run", func(t *testing.T) {
		t.Parallel()

		server := imageServer(t, map[string]string{"/a.png": "stable-bytes"})

		dir := t.TempDir()
		markdown := fmt.Sprintf("![a](%s/a.png)", server.URL)

		first, _, err := images.NewResolver(dir, fast).Resolve(context.Background(), markdown, pkmclip.ResolveOptions{Download: true})
		require.NoError(t, err)

		files := listFiles(t, dir)
		require.Len(t, files, 1)

		// A fresh resolver gets a fresh capture timestamp, but the stored
		// file must win on content hash.
		second, _, err := images.NewResolver(dir, fast).Resolve(context.Background(), markdown, pkmclip.ResolveOptions{Download: true})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, files, listFiles(t, dir))
	})

	t.Run("oversize image keeps its URL and fails once", func(t *testing.T) {
		t.Parallel()

		server := imageServer(t, map[string]string{
			"/big.png":   strings.Repeat("x", 64),
			"/small.png": "ok",
		})

		dir := t.TempDir()
		resolver := images.NewResolver(dir, fast, images.WithMaxSize(16))
		markdown := fmt.Sprintf("![big](%s/big.png)\n![small](%s/small.png)\n", server.URL, server.URL)

		got, failures, err := resolver.Resolve(context.Background(), markdown, pkmclip.ResolveOptions{Download: true})

		require.NoError(t, err)
		require.Len(t, failures, 1)
		assert.Equal(t, server.URL+"/big.png", failures[0].URL)
		assert.Contains(t, failures[0].Reason, "byte limit")

		assert.Contains(t, got, fmt.Sprintf("![big](%s/big.png)", server.URL))
		assert.NotContains(t, got, server.URL+"/small.png")
		assert.Len(t, listFiles(t, dir), 1)
	})

	t.Run("download failures are not fatal", func(t *testing.T) {
		t.Parallel()

		server := imageServer(t, map[string]string{"/good.png": "good"})

		dir := t.TempDir()
		resolver := images.NewResolver(dir, fast)
		markdown := fmt.Sprintf("![bad](%s/missing.png)\n![good](%s/good.png)\n", server.URL, server.URL)

		got, failures, err := resolver.Resolve(context.Background(), markdown, pkmclip.ResolveOptions{Download: true})

		require.NoError(t, err)
		require.Len(t, failures, 1)
		assert.Equal(t, server.URL+"/missing.png", failures[0].URL)
		assert.Contains(t, got, server.URL+"/missing.png")
		assert.Len(t, listFiles(t, dir), 1)
	})

	t.Run("dry run writes nothing but reports real outcomes", func(t *testing.T) {
		t.Parallel()

		server := imageServer(t, map[string]string{"/a.png": "dry-bytes"})

		dir := filepath.Join(t.TempDir(), "attachments")
		resolver := images.NewResolver(dir, fast)
		markdown := fmt.Sprintf("![a](%s/a.png)\n![bad](%s/missing.png)\n", server.URL, server.URL)

		got, failures, err := resolver.Resolve(context.Background(), markdown, pkmclip.ResolveOptions{Download: true, DryRun: true})

		require.NoError(t, err)
		assert.Contains(t, got, "![[")
		require.Len(t, failures, 1)

		_, err = os.Stat(dir)
		assert.True(t, os.IsNotExist(err), "dry run must not create the image directory")
	})
}

func TestExtractImageURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		want     []string
	}{
		{
			name:     "orders by first appearance across both shapes",
			markdown: `<img src="https://a.test/1.png"> then ![x](https://a.test/2.png)`,
			want:     []string{"https://a.test/1.png", "https://a.test/2.png"},
		},
		{
			name:     "duplicates collapse",
			markdown: "![a](https://a.test/1.png)\n![b](https://a.test/1.png)",
			want:     []string{"https://a.test/1.png"},
		},
		{
			name:     "ignores relative and non-http references",
			markdown: "![a](./local.png) ![b](data:image/png;base64,xyz)",
			want:     nil,
		},
		{
			name:     "single-quoted img src",
			markdown: `<img class="hero" src='https://a.test/q.png' width="100">`,
			want:     []string{"https://a.test/q.png"},
		},
		{
			name:     "no images",
			markdown: "plain text",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, images.ExtractImageURLs(tt.markdown))
		})
	}
}

func TestRewriteReferences(t *testing.T) {
	t.Parallel()

	t.Run("rewrites every occurrence of a mapped URL", func(t *testing.T) {
		t.Parallel()

		markdown := "![a](https://a.test/1.png)\n<img src=\"https://a.test/1.png\">\n![keep](https://a.test/2.png)"

		got := images.RewriteReferences(markdown, map[string]string{
			"https://a.test/1.png": "20240924_120000_abcdef0123456789.png",
		})

		assert.Equal(t, 2, strings.Count(got, "![[20240924_120000_abcdef0123456789.png]]"))
		assert.Contains(t, got, "![keep](https://a.test/2.png)")
	})

	t.Run("empty mapping is a no-op", func(t *testing.T) {
		t.Parallel()

		markdown := "![a](https://a.test/1.png)"
		assert.Equal(t, markdown, images.RewriteReferences(markdown, nil))
	})
}

// Compile-time verification that Resolver implements pkmclip.ImageResolver.
var _ pkmclip.ImageResolver = (*images.Resolver)(nil)
