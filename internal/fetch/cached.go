// Package fetch - cached.go provides document-store-backed caching of
// fetched admissions pages.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/amckenna/college-planner/internal/docstore"
)

// PageCacheCollection is the collection holding cached page documents.
const PageCacheCollection = "page-cache"

// DefaultPageCacheTTL is how long a cached admissions page stays fresh.
// Deadline pages change at most a few times a year.
const DefaultPageCacheTTL = 7 * 24 * time.Hour

// CachedFetcher wraps URL fetching with document-store-backed caching.
type CachedFetcher struct {
	store     docstore.Store
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// NewCachedFetcher creates a new cached fetcher. A nil store disables caching.
func NewCachedFetcher(store docstore.Store, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = &CachedFetcherConfig{}
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultPageCacheTTL
	}
	return &CachedFetcher{
		store:     store,
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
}

func cacheKey(urlStr string) string {
	sum := sha256.Sum256([]byte(urlStr))
	return hex.EncodeToString(sum[:16])
}

// Fetch retrieves a URL, returning cached content when it is within the TTL,
// otherwise fetching fresh content and caching it.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	key := cacheKey(urlStr)

	if !f.skipCache && f.store != nil {
		doc, err := f.store.Get(ctx, PageCacheCollection, key)
		if err == nil {
			if fetchedAt, ok := doc["fetchedAt"].(string); ok {
				if t, perr := time.Parse(time.RFC3339, fetchedAt); perr == nil && time.Since(t) < f.cacheTTL {
					html, _ := doc["html"].(string)
					text, _ := doc["text"].(string)
					status, _ := doc["statusCode"].(float64)
					return &CachedResult{
						Result: &Result{
							URL:        urlStr,
							HTML:       html,
							Text:       text,
							StatusCode: int(status),
						},
						FromCache: true,
					}, nil
				}
			}
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	text, _ := ExtractMainText(result.HTML, AdmissionsPageSelectors())
	result.Text = text

	// Client-rendered pages come back as near-empty shells; render those in a
	// headless browser when enabled.
	if f.options.UseBrowser && ShouldUseBrowser(result.Text) {
		f.renderWithBrowser(ctx, urlStr, result)
	}

	if f.store != nil {
		page := docstore.Document{
			"url":        urlStr,
			"html":       result.HTML,
			"text":       result.Text,
			"statusCode": result.StatusCode,
			"fetchedAt":  time.Now().UTC().Format(time.RFC3339),
		}
		// A cache write failure never fails the fetch itself.
		if serr := f.store.Set(ctx, PageCacheCollection, key, page); serr != nil {
			log.Printf("[FETCH] failed to cache page %s: %v", urlStr, serr)
		}
	}

	return &CachedResult{Result: result}, nil
}

// renderWithBrowser replaces the result content with a headless-browser
// rendering of the page. A rendering failure keeps the plain GET content.
func (f *CachedFetcher) renderWithBrowser(ctx context.Context, urlStr string, result *Result) {
	var html string
	var err error
	if f.options.BrowserTimeout > 0 {
		html, err = WithBrowser(ctx, urlStr, f.options.BrowserTimeout, false)
	} else {
		html, err = BrowserSimple(ctx, urlStr, false)
	}
	if err != nil {
		log.Printf("[FETCH] browser rendering failed for %s: %v", urlStr, err)
		return
	}

	result.HTML = html
	if text, terr := ExtractMainText(html, AdmissionsPageSelectors()); terr == nil {
		result.Text = text
	}
}
