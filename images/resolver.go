// Package images resolves remote image references in clipped Markdown
// into locally stored Obsidian embeds, deduplicated by content hash.
package images

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pkmclip"
	"golang.org/x/sync/errgroup"
)

// MaxImageSize is the download ceiling for a single image.
const MaxImageSize = 10 << 20 // 10 MB

// DefaultConcurrency bounds parallel image downloads.
const DefaultConcurrency = 4

// DefaultTimeout is the per-image download timeout.
const DefaultTimeout = 30 * time.Second

// DefaultRPS limits download requests per host.
const DefaultRPS = 8.0

var (
	// Image reference shapes recognized in clipped Markdown. The reader
	// emits standard Markdown images; pages occasionally leak inline
	// HTML img tags through as well.
	markdownImageRe = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^\s)]+)\)`)
	htmlImageRe     = regexp.MustCompile(`<img[^>]+src=["'](https?://[^"']+)["'][^>]*/?>`)

	// storedNameRe matches the YYYYMMDD_HHMMSS_<hash>.<ext> convention of
	// files in the image directory; group 1 is the content hash.
	storedNameRe = regexp.MustCompile(`^\d{8}_\d{6}_([0-9a-f]{16})\.[A-Za-z0-9]+$`)
)

// Ensure Resolver implements pkmclip.ImageResolver at compile time.
var _ pkmclip.ImageResolver = (*Resolver)(nil)

// Resolver downloads referenced images into a directory and rewrites the
// Markdown references to point at the local copies.
type Resolver struct {
	client      *http.Client
	dir         string
	maxSize     int64
	concurrency int
	limiter     *HostLimiter
	timeout     time.Duration
	now         func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout sets the per-download timeout.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithMaxSize overrides the download size ceiling.
func WithMaxSize(n int64) Option {
	return func(r *Resolver) {
		r.maxSize = n
	}
}

// WithConcurrency bounds the number of parallel downloads.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		r.concurrency = n
	}
}

// WithRPS sets the per-host request rate. A non-positive value disables
// rate limiting.
func WithRPS(rps float64) Option {
	return func(r *Resolver) {
		if rps <= 0 {
			r.limiter = nil
			return
		}
		r.limiter = NewHostLimiter(rps)
	}
}

// NewResolver creates a Resolver that stores images under dir.
func NewResolver(dir string, opts ...Option) *Resolver {
	r := &Resolver{
		dir:         dir,
		maxSize:     MaxImageSize,
		concurrency: DefaultConcurrency,
		limiter:     NewHostLimiter(DefaultRPS),
		timeout:     DefaultTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.client = &http.Client{
		Timeout: r.timeout,
	}

	return r
}

// Resolve downloads the images referenced in markdown and rewrites their
// references to local ![[filename]] embeds. Images are deduplicated by
// content hash: identical bytes resolve to one file, including files left
// in the image directory by earlier runs. Per-image failures are
// accumulated, not fatal; failed references keep their original URL.
func (r *Resolver) Resolve(ctx context.Context, markdown string, opts pkmclip.ResolveOptions) (string, []pkmclip.ImageFailure, error) {
	if !opts.Download {
		return markdown, nil, nil
	}

	urls := ExtractImageURLs(markdown)
	if len(urls) == 0 {
		return markdown, nil, nil
	}

	if !opts.DryRun {
		if err := os.MkdirAll(r.dir, 0755); err != nil {
			return "", nil, pkmclip.Errorf(pkmclip.EINTERNAL, "create image directory: %v", err)
		}
	}

	existing, err := r.indexExisting()
	if err != nil {
		return "", nil, err
	}

	// One capture timestamp per resolve, so identical bytes seen through
	// different URLs map to the same name within this run.
	stamp := r.now().Format("20060102_150405")

	type outcome struct {
		url      string
		filename string
		err      error
	}
	results := make([]outcome, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	// mu makes the dedup check and the file write atomic per hash.
	var mu sync.Mutex

	for i, u := range urls {
		g.Go(func() error {
			data, ext, err := r.download(gctx, u)
			if err != nil {
				results[i] = outcome{url: u, err: err}
				return nil
			}

			hash := fmt.Sprintf("%016x", xxhash.Sum64(data))

			mu.Lock()
			defer mu.Unlock()

			name, ok := existing[hash]
			if !ok {
				name = stamp + "_" + hash + "." + ext
				if !opts.DryRun {
					if err := os.WriteFile(filepath.Join(r.dir, name), data, 0644); err != nil {
						results[i] = outcome{url: u, err: pkmclip.Errorf(pkmclip.EINTERNAL, "write image: %v", err)}
						return nil
					}
				}
				existing[hash] = name
			}

			results[i] = outcome{url: u, filename: name}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	filenames := make(map[string]string)
	var failures []pkmclip.ImageFailure
	for _, res := range results {
		if res.err != nil {
			failures = append(failures, pkmclip.ImageFailure{URL: res.url, Reason: pkmclip.ErrorMessage(res.err)})
			continue
		}
		filenames[res.url] = res.filename
	}

	return RewriteReferences(markdown, filenames), failures, nil
}

// indexExisting maps content hashes to filenames already present in the
// image directory. This is what makes resolution idempotent across runs:
// a re-clip reuses the stored file even though its timestamp differs.
func (r *Resolver) indexExisting() (map[string]string, error) {
	existing := make(map[string]string)

	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return existing, nil
	}
	if err != nil {
		return nil, pkmclip.Errorf(pkmclip.EINTERNAL, "read image directory: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if m := storedNameRe.FindStringSubmatch(entry.Name()); m != nil {
			existing[m[1]] = entry.Name()
		}
	}

	return existing, nil
}

// download fetches a single image, enforcing the size ceiling, and
// returns its bytes plus a derived file extension.
func (r *Resolver) download(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", pkmclip.Errorf(pkmclip.EINVALID, "invalid image URL: %v", err)
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, u.Host); err != nil {
			return nil, "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", pkmclip.Errorf(pkmclip.EUNAVAILABLE, "download failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", pkmclip.Errorf(pkmclip.EUNAVAILABLE, "download failed: HTTP %d", resp.StatusCode)
	}
	if resp.ContentLength > r.maxSize {
		return nil, "", pkmclip.Errorf(pkmclip.ETOOLARGE, "image exceeds %d byte limit", r.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, "", pkmclip.Errorf(pkmclip.EUNAVAILABLE, "download failed: %v", err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, "", pkmclip.Errorf(pkmclip.ETOOLARGE, "image exceeds %d byte limit", r.maxSize)
	}

	return data, extension(resp.Header.Get("Content-Type"), u.Path), nil
}

// extension derives a file extension from the response content type,
// falling back to the URL path suffix, then to "png".
func extension(contentType, urlPath string) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			switch mt {
			case "image/jpeg":
				return "jpg"
			case "image/png":
				return "png"
			case "image/gif":
				return "gif"
			case "image/webp":
				return "webp"
			case "image/svg+xml":
				return "svg"
			case "image/avif":
				return "avif"
			}
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(urlPath)), ".")
	if ext == "" || len(ext) > 5 {
		return "png"
	}
	return ext
}

// ExtractImageURLs returns the unique remote image URLs referenced in
// markdown, in order of first appearance. Both ![alt](url) and inline
// <img src="url"> references are recognized.
func ExtractImageURLs(markdown string) []string {
	type ref struct {
		pos int
		url string
	}

	var refs []ref
	for _, re := range []*regexp.Regexp{markdownImageRe, htmlImageRe} {
		for _, m := range re.FindAllStringSubmatchIndex(markdown, -1) {
			refs = append(refs, ref{pos: m[0], url: markdown[m[2]:m[3]]})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].pos < refs[j].pos })

	seen := make(map[string]struct{}, len(refs))
	var urls []string
	for _, r := range refs {
		if _, ok := seen[r.url]; ok {
			continue
		}
		seen[r.url] = struct{}{}
		urls = append(urls, r.url)
	}
	return urls
}

// RewriteReferences replaces every Markdown-image and HTML-image
// occurrence of the mapped URLs with an Obsidian ![[filename]] embed.
// Unmapped references are left untouched.
func RewriteReferences(markdown string, filenames map[string]string) string {
	if len(filenames) == 0 {
		return markdown
	}

	replace := func(re *regexp.Regexp, s string) string {
		return re.ReplaceAllStringFunc(s, func(ref string) string {
			m := re.FindStringSubmatch(ref)
			if name, ok := filenames[m[1]]; ok {
				return "![[" + name + "]]"
			}
			return ref
		})
	}

	markdown = replace(markdownImageRe, markdown)
	return replace(htmlImageRe, markdown)
}
