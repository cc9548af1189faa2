package gallery

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/metget/met-browser/internal/catalog"
	"github.com/metget/met-browser/internal/model"
	"github.com/metget/met-browser/internal/runner"
)

// User-facing error messages. Transport detail never reaches the UI.
const (
	MsgSearchFailed     = "Search failed. Please try again."
	MsgAllFetchesFailed = "All artwork requests failed. Please try again."
)

// Default orchestration limits. All three are overridable through Config.
const (
	DefaultPageSize      = 100
	DefaultMaxConcurrent = 4
	DefaultMinDelayMS    = 100
)

// ImagePreloader warms the rendering layer's image cache for one URL.
// Preloading never fails: implementations swallow load and decode errors
// so a bad image can never fail a batch.
type ImagePreloader func(ctx context.Context, url string)

// Config carries the orchestration limits for one controller.
type Config struct {
	// PageSize caps how many candidate IDs one search resolves.
	PageSize int

	// Fetch bounds the per-object fetch fan-out and is reused for the
	// preload pass.
	Fetch runner.Config
}

func (c Config) normalized() Config {
	if c.PageSize < 1 {
		c.PageSize = DefaultPageSize
	}
	return c
}

// State is the observable snapshot the presentation layer renders from.
// Results are shared read-only artwork records.
type State struct {
	Query        string
	Status       model.SessionStatus
	Searching    bool
	Results      []*model.Artwork
	ErrorMessage string

	// LoadedCount advances as object fetches complete, ahead of Results
	// being published, so the UI can show progress.
	LoadedCount int

	// Selected is the item whose details the user opened; Details is its
	// fully resolved record once available.
	Selected *model.Artwork
	Details  *model.Artwork
}

// Controller owns the lifecycle of search sessions. Exactly one session
// is current at a time; submitting a new query supersedes the previous
// session, whose in-flight work is cancelled and whose continuations stop
// mutating shared state after a token check.
type Controller struct {
	catalog *catalog.Client
	cache   *Cache
	cfg     Config

	preload  ImagePreloader
	onUpdate func(State)

	mu     sync.Mutex
	token  uint64 // identity of the current session
	selGen uint64 // identity of the current selection
	cancel context.CancelFunc
	state  State
}

// NewController creates a controller over the given API client and cache.
func NewController(client *catalog.Client, cache *Cache, cfg Config) *Controller {
	if cache == nil {
		cache = NewCache()
	}
	return &Controller{
		catalog: client,
		cache:   cache,
		cfg:     cfg.normalized(),
		state:   State{Status: model.StatusIdle},
	}
}

// SetUpdateCallback sets the callback invoked with a state snapshot after
// every observable change. The callback may be invoked from worker
// goroutines; UI implementations marshal onto the main thread themselves.
func (c *Controller) SetUpdateCallback(fn func(State)) {
	c.onUpdate = fn
}

// SetPreloader installs the image preload step run before results are
// published. Without one the preload pass is skipped.
func (c *Controller) SetPreloader(p ImagePreloader) {
	c.preload = p
}

// State returns a snapshot of the current observable state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cache exposes the shared artwork cache.
func (c *Controller) Cache() *Cache {
	return c.cache
}

// Search starts a new session for the query, superseding any session
// still in flight. Blank queries are ignored. The fetch pipeline runs on
// its own goroutine; progress and the terminal state arrive through the
// update callback.
func (c *Controller) Search(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	c.mu.Lock()
	c.token++
	c.selGen++ // a new search also clears selection, so stale detail fetches must not land
	token := c.token
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = State{
		Query:     query,
		Status:    model.StatusSearching,
		Searching: true,
	}
	c.mu.Unlock()
	c.notify()

	go c.runSearch(ctx, token, query)
}

// Reset cancels any in-flight session and clears query, results,
// selection, and error state.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.token++
	c.selGen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = State{Status: model.StatusIdle}
	c.mu.Unlock()
	c.notify()
}

// runSearch executes one session: candidate IDs, per-object resolution
// through the cache, failure accounting, optional preload, publish. The
// session token is re-checked after every await point; a stale session
// stops silently without touching shared state.
func (c *Controller) runSearch(ctx context.Context, token uint64, query string) {
	ids, err := c.catalog.SearchIDs(ctx, query)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("search %q: %v", query, err)
		c.publish(token, func(s *State) {
			s.Status = model.StatusFailed
			s.ErrorMessage = MsgSearchFailed
		})
		return
	}
	if !c.current(token) {
		return
	}

	if len(ids) > c.cfg.PageSize {
		ids = ids[:c.cfg.PageSize]
	}
	if len(ids) == 0 {
		c.publish(token, func(s *State) {
			s.Status = model.StatusEmpty
		})
		return
	}

	outcomes := runner.Run(ctx, c.cfg.Fetch, ids, c.resolveObject,
		func(o runner.Outcome[*model.Artwork]) {
			if o.Err != nil || !o.Value.HasImage() {
				return
			}
			// Progress for the UI; published results come later.
			if c.mutate(token, func(s *State) { s.LoadedCount++ }) {
				c.notify()
			}
		})
	if !c.current(token) {
		return
	}

	var viewable []*model.Artwork
	failures := 0
	for _, o := range outcomes {
		switch {
		case o.Failed():
			failures++
		case o.Err != nil:
			// Aborted fetch, not a failure.
		case o.Value.HasImage():
			viewable = append(viewable, o.Value)
		}
	}

	if len(viewable) == 0 && failures > 0 {
		c.publish(token, func(s *State) {
			s.Status = model.StatusAllFailed
			s.ErrorMessage = MsgAllFetchesFailed
		})
		return
	}

	if c.preload != nil && len(viewable) > 0 {
		runner.Run(ctx, c.cfg.Fetch, viewable,
			func(ctx context.Context, a *model.Artwork) (struct{}, error) {
				c.preload(ctx, a.BestImageURL())
				return struct{}{}, nil
			}, nil)
		if !c.current(token) {
			return
		}
	}

	c.publish(token, func(s *State) {
		s.Results = viewable
		if len(viewable) == 0 {
			s.Status = model.StatusEmpty
		} else {
			s.Status = model.StatusResultsReady
		}
	})
}

// resolveObject consults the cache before fetching a record, and stores
// fresh records for every later session.
func (c *Controller) resolveObject(ctx context.Context, id int) (*model.Artwork, error) {
	if a, ok := c.cache.Get(id); ok {
		return a, nil
	}
	a, err := c.catalog.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Put(a)
	return a, nil
}

// SelectItem marks the item as selected for immediate display and
// resolves its full details from the cache or, on a miss, with a direct
// fetch. The fetch is deliberately independent of the session's
// cancellation signal: the user may be inspecting an item from a
// superseded session. A failed fetch degrades to the summary item.
func (c *Controller) SelectItem(item *model.Artwork) {
	if item == nil {
		return
	}

	c.mu.Lock()
	c.selGen++
	gen := c.selGen
	c.state.Selected = item
	c.state.Details = nil
	c.mu.Unlock()
	c.notify()

	if cached, ok := c.cache.Get(item.ObjectID); ok {
		c.resolveDetails(gen, cached)
		return
	}

	go func() {
		a, err := c.catalog.GetObject(context.Background(), item.ObjectID)
		if err != nil {
			log.Printf("details for object %d: %v", item.ObjectID, err)
			c.resolveDetails(gen, item)
			return
		}
		c.cache.Put(a)
		c.resolveDetails(gen, a)
	}()
}

// CloseDetails clears the selection and its resolved details.
func (c *Controller) CloseDetails() {
	c.mu.Lock()
	c.selGen++
	c.state.Selected = nil
	c.state.Details = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) resolveDetails(gen uint64, a *model.Artwork) {
	c.mu.Lock()
	if gen != c.selGen {
		c.mu.Unlock()
		return
	}
	c.state.Details = a
	c.mu.Unlock()
	c.notify()
}

// current reports whether the token still identifies the live session.
func (c *Controller) current(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return token == c.token
}

// mutate applies fn to the state if the session is still current, and
// reports whether it was applied.
func (c *Controller) mutate(token uint64, fn func(*State)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		return false
	}
	fn(&c.state)
	return true
}

// publish is the terminal mutate: it also drops the searching flag.
func (c *Controller) publish(token uint64, fn func(*State)) {
	if c.mutate(token, func(s *State) {
		s.Searching = false
		fn(s)
	}) {
		c.notify()
	}
}

func (c *Controller) notify() {
	if c.onUpdate == nil {
		return
	}
	c.onUpdate(c.State())
}
