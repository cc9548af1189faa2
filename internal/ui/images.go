package ui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/metget/met-browser/internal/runner"
)

// ImageCache keeps fetched image resources in memory for the life of the
// process so grid cells and the detail view never re-download a URL.
//
// Two paths feed it: Preload, the controller's pre-publish warm-up pass,
// and RequestVisible, the lazy path driven by grid cells scrolling into
// view. The lazy path goes through a deduplicating queue so overlapping
// scroll events cannot fetch the same URL twice concurrently.
type ImageCache struct {
	client *http.Client
	queue  *runner.Queue[string, fyne.Resource]

	mu        sync.RWMutex
	resources map[string]fyne.Resource

	onLoaded func(url string)
}

// NewImageCache creates an image cache whose lazy-load queue obeys the
// given fetch limits.
func NewImageCache(cfg runner.Config) *ImageCache {
	ic := &ImageCache{
		client:    &http.Client{Timeout: ImageFetchTimeout},
		resources: make(map[string]fyne.Resource),
	}
	ic.queue = runner.NewQueue(cfg, ic.fetch, ic.lazyDone)
	return ic
}

// SetLoadedCallback sets the callback invoked when a lazily requested
// image becomes available. Invoked from worker goroutines.
func (ic *ImageCache) SetLoadedCallback(fn func(url string)) {
	ic.onLoaded = fn
}

// Get returns the cached resource for the URL, or false on miss.
func (ic *ImageCache) Get(url string) (fyne.Resource, bool) {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	res, ok := ic.resources[url]
	return res, ok
}

// RequestVisible schedules a fetch for a URL whose placeholder just
// became visible. Already-cached and already-queued URLs are ignored.
func (ic *ImageCache) RequestVisible(url string) {
	if url == "" {
		return
	}
	if _, ok := ic.Get(url); ok {
		return
	}
	ic.queue.Enqueue(url)
}

// Preload fetches a URL into the cache and never reports failure: a bad
// image must not fail the batch it belongs to. Safe to call from
// concurrent preload workers.
func (ic *ImageCache) Preload(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if _, ok := ic.Get(url); ok {
		return
	}
	_, _ = ic.fetch(ctx, url)
}

// Close stops the lazy-load queue.
func (ic *ImageCache) Close() {
	ic.queue.Close()
}

// fetch downloads the URL and stores the bytes as a static resource.
func (ic *ImageCache) fetch(ctx context.Context, url string) (fyne.Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating image request: %w", err)
	}
	resp, err := ic.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image %s returned HTTP %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}

	res := fyne.NewStaticResource(path.Base(url), data)
	ic.mu.Lock()
	ic.resources[url] = res
	ic.mu.Unlock()
	return res, nil
}

func (ic *ImageCache) lazyDone(url string, _ fyne.Resource, err error) {
	if err != nil {
		return
	}
	if ic.onLoaded != nil {
		ic.onLoaded(url)
	}
}
