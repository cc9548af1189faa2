package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/metget/met-browser/internal/catalog"
	"github.com/metget/met-browser/internal/model"
	"github.com/metget/met-browser/internal/runner"
)

// fakeAPI serves a minimal version of the collection API for tests.
type fakeAPI struct {
	mu           sync.Mutex
	idsByQuery   map[string][]int
	objects      map[int]*model.Artwork
	failObjects  map[int]bool
	searchStatus int
	objectCalls  map[int]int
	searchCalls  int

	// blockObjects makes /objects handlers for these IDs wait until the
	// channel closes or the request is cancelled.
	blockObjects map[int]chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		idsByQuery:   make(map[string][]int),
		objects:      make(map[int]*model.Artwork),
		failObjects:  make(map[int]bool),
		objectCalls:  make(map[int]int),
		blockObjects: make(map[int]chan struct{}),
	}
}

func (f *fakeAPI) addViewable(id int, title string) {
	f.objects[id] = &model.Artwork{
		ObjectID:          id,
		Title:             title,
		PrimaryImageSmall: fmt.Sprintf("https://images.example/%d-small.jpg", id),
		PrimaryImage:      fmt.Sprintf("https://images.example/%d.jpg", id),
	}
}

func (f *fakeAPI) objectCallCount(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objectCalls[id]
}

func (f *fakeAPI) searchCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/search":
		f.mu.Lock()
		f.searchCalls++
		status := f.searchStatus
		ids := f.idsByQuery[r.URL.Query().Get("q")]
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"total": len(ids), "objectIDs": ids})

	case strings.HasPrefix(r.URL.Path, "/objects/"):
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/objects/"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.objectCalls[id]++
		block := f.blockObjects[id]
		fail := f.failObjects[id]
		obj := f.objects[id]
		f.mu.Unlock()

		if block != nil {
			select {
			case <-block:
			case <-r.Context().Done():
				return
			}
		}
		if fail || obj == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(obj)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestController(t *testing.T, f *fakeAPI, cfg Config) (*Controller, <-chan State) {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	client := catalog.NewClient()
	client.BaseURL = server.URL

	if cfg.PageSize == 0 {
		cfg.PageSize = 50
	}
	if cfg.Fetch.MaxConcurrent == 0 {
		cfg.Fetch = runner.Config{MaxConcurrent: 4}
	}

	ctrl := NewController(client, NewCache(), cfg)
	states := make(chan State, 256)
	ctrl.SetUpdateCallback(func(s State) { states <- s })
	return ctrl, states
}

func waitTerminal(t *testing.T, states <-chan State) State {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-states:
			if s.Status.IsTerminal() {
				return s
			}
		case <-deadline:
			t.Fatal("Timed out waiting for a terminal session state")
		}
	}
}

func waitFor(t *testing.T, states <-chan State, pred func(State) bool) State {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-states:
			if pred(s) {
				return s
			}
		case <-deadline:
			t.Fatal("Timed out waiting for expected state")
		}
	}
}

func TestSearchPartialFailureKeepsSuccesses(t *testing.T) {
	f := newFakeAPI()
	f.idsByQuery["cats"] = []int{1, 2, 3}
	f.addViewable(1, "Cat One")
	f.addViewable(2, "Cat Two")
	f.failObjects[3] = true

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("cats")

	s := waitTerminal(t, states)
	if s.Status != model.StatusResultsReady {
		t.Fatalf("Expected ResultsReady, got %s", s.Status)
	}
	if len(s.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(s.Results))
	}
	// Batch results preserve input order exactly.
	if s.Results[0].ObjectID != 1 || s.Results[1].ObjectID != 2 {
		t.Errorf("Expected results [1 2] in input order, got [%d %d]",
			s.Results[0].ObjectID, s.Results[1].ObjectID)
	}
	if s.ErrorMessage != "" {
		t.Errorf("Partial failure must not surface an error, got %q", s.ErrorMessage)
	}
	if s.LoadedCount != 2 {
		t.Errorf("Expected loaded count 2, got %d", s.LoadedCount)
	}
	if s.Searching {
		t.Error("Expected searching flag cleared in terminal state")
	}
}

func TestSearchNoCandidatesIsEmpty(t *testing.T) {
	f := newFakeAPI()
	// "xyz123" has no entry, so the search endpoint returns no IDs.

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("xyz123")

	s := waitTerminal(t, states)
	if s.Status != model.StatusEmpty {
		t.Fatalf("Expected Empty, got %s", s.Status)
	}
	if s.ErrorMessage != "" {
		t.Errorf("Expected no error for empty result, got %q", s.ErrorMessage)
	}
	if s.LoadedCount != 0 {
		t.Errorf("Expected loaded count 0, got %d", s.LoadedCount)
	}
}

func TestSearchAllFetchesFailed(t *testing.T) {
	f := newFakeAPI()
	f.idsByQuery["doom"] = []int{1, 2, 3}
	f.failObjects[1] = true
	f.failObjects[2] = true
	f.failObjects[3] = true

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("doom")

	s := waitTerminal(t, states)
	if s.Status != model.StatusAllFailed {
		t.Fatalf("Expected AllFailed, got %s", s.Status)
	}
	if s.ErrorMessage != MsgAllFetchesFailed {
		t.Errorf("Expected %q, got %q", MsgAllFetchesFailed, s.ErrorMessage)
	}
	if len(s.Results) != 0 {
		t.Errorf("Expected no results, got %d", len(s.Results))
	}
}

func TestSearchEndpointFailure(t *testing.T) {
	f := newFakeAPI()
	f.searchStatus = http.StatusServiceUnavailable

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("anything")

	s := waitTerminal(t, states)
	if s.Status != model.StatusFailed {
		t.Fatalf("Expected Failed, got %s", s.Status)
	}
	if s.ErrorMessage != MsgSearchFailed {
		t.Errorf("Expected generic search failure message, got %q", s.ErrorMessage)
	}
}

func TestSearchCapsCandidatesAtPageSize(t *testing.T) {
	f := newFakeAPI()
	ids := make([]int, 10)
	for i := range ids {
		ids[i] = i + 1
		f.addViewable(i+1, fmt.Sprintf("Work %d", i+1))
	}
	f.idsByQuery["many"] = ids

	ctrl, states := newTestController(t, f, Config{PageSize: 4})
	ctrl.Search("many")

	s := waitTerminal(t, states)
	if len(s.Results) != 4 {
		t.Fatalf("Expected page size cap of 4, got %d results", len(s.Results))
	}
	for id := 5; id <= 10; id++ {
		if n := f.objectCallCount(id); n != 0 {
			t.Errorf("Expected object %d beyond the page cap to never be fetched, got %d calls", id, n)
		}
	}
}

func TestSearchExcludesRecordsWithoutImages(t *testing.T) {
	f := newFakeAPI()
	f.idsByQuery["mixed"] = []int{1, 2}
	f.addViewable(1, "Viewable")
	f.objects[2] = &model.Artwork{ObjectID: 2, Title: "No Image"}

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("mixed")

	s := waitTerminal(t, states)
	if s.Status != model.StatusResultsReady {
		t.Fatalf("Expected ResultsReady, got %s", s.Status)
	}
	if len(s.Results) != 1 || s.Results[0].ObjectID != 1 {
		t.Errorf("Expected only the viewable record, got %d results", len(s.Results))
	}
}

func TestSearchAllNonViewableIsEmptyNotFailed(t *testing.T) {
	f := newFakeAPI()
	f.idsByQuery["plain"] = []int{1}
	f.objects[1] = &model.Artwork{ObjectID: 1, Title: "No Image"}

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("plain")

	s := waitTerminal(t, states)
	if s.Status != model.StatusEmpty {
		t.Fatalf("Expected Empty when every record is non-viewable, got %s", s.Status)
	}
	if s.ErrorMessage != "" {
		t.Errorf("Expected no error, got %q", s.ErrorMessage)
	}
}

func TestSecondSearchSupersedesFirst(t *testing.T) {
	f := newFakeAPI()
	f.idsByQuery["first"] = []int{1}
	f.idsByQuery["second"] = []int{2}
	f.addViewable(1, "First Work")
	f.addViewable(2, "Second Work")

	block := make(chan struct{})
	f.blockObjects[1] = block

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("first")

	// Let the first session reach its blocked object fetch.
	waitFor(t, states, func(s State) bool { return s.Query == "first" && s.Searching })
	for f.objectCallCount(1) == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	ctrl.Search("second")
	s := waitTerminal(t, states)
	if s.Query != "second" {
		t.Fatalf("Expected terminal state from second session, got query %q", s.Query)
	}
	if len(s.Results) != 1 || s.Results[0].ObjectID != 2 {
		t.Fatalf("Expected second session's results, got %+v", s.Results)
	}

	// Release the superseded session; it must not touch shared state.
	close(block)
	time.Sleep(100 * time.Millisecond)
	final := ctrl.State()
	if final.Query != "second" || len(final.Results) != 1 || final.Results[0].ObjectID != 2 {
		t.Errorf("Superseded session mutated shared state: %+v", final)
	}
}

func TestResetDuringSearchClearsState(t *testing.T) {
	f := newFakeAPI()
	f.idsByQuery["slow"] = []int{1}
	f.addViewable(1, "Slow Work")

	block := make(chan struct{})
	f.blockObjects[1] = block
	defer close(block)

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("slow")
	waitFor(t, states, func(s State) bool { return s.Searching })

	ctrl.Reset()
	s := waitFor(t, states, func(s State) bool { return s.Status == model.StatusIdle })
	if s.Searching {
		t.Error("Expected searching flag cleared after reset")
	}
	if len(s.Results) != 0 {
		t.Errorf("Expected no results after reset, got %d", len(s.Results))
	}
	if s.ErrorMessage != "" {
		t.Errorf("Expected no error after reset, got %q", s.ErrorMessage)
	}
	if s.Query != "" {
		t.Errorf("Expected cleared query after reset, got %q", s.Query)
	}
}

func TestCacheAvoidsRefetchAcrossSessions(t *testing.T) {
	f := newFakeAPI()
	f.idsByQuery["cats"] = []int{1, 2}
	f.addViewable(1, "Cat One")
	f.addViewable(2, "Cat Two")

	ctrl, states := newTestController(t, f, Config{})
	ctrl.Search("cats")
	waitTerminal(t, states)

	ctrl.Search("cats")
	s := waitTerminal(t, states)
	if len(s.Results) != 2 {
		t.Fatalf("Expected 2 results from cached session, got %d", len(s.Results))
	}

	for _, id := range []int{1, 2} {
		if n := f.objectCallCount(id); n != 1 {
			t.Errorf("Expected exactly 1 fetch for object %d across sessions, got %d", id, n)
		}
	}
}

func TestSelectItemUsesCacheWithoutNetworkCall(t *testing.T) {
	f := newFakeAPI()
	f.addViewable(42, "Water Lilies")

	ctrl, states := newTestController(t, f, Config{})
	cached := f.objects[42]
	ctrl.Cache().Put(cached)

	ctrl.SelectItem(cached)
	s := waitFor(t, states, func(s State) bool { return s.Details != nil })
	if s.Details.ObjectID != 42 {
		t.Errorf("Expected details for object 42, got %d", s.Details.ObjectID)
	}
	if n := f.objectCallCount(42); n != 0 {
		t.Errorf("Expected no network call for cached selection, got %d", n)
	}
}

func TestSelectItemFetchesOnCacheMiss(t *testing.T) {
	f := newFakeAPI()
	f.addViewable(7, "The Harvesters")

	ctrl, states := newTestController(t, f, Config{})
	summary := &model.Artwork{ObjectID: 7, Title: "The Harvesters"}

	ctrl.SelectItem(summary)
	s := waitFor(t, states, func(s State) bool { return s.Details != nil })
	if !s.Details.HasImage() {
		t.Error("Expected fully resolved details from fetch")
	}
	if _, ok := ctrl.Cache().Get(7); !ok {
		t.Error("Expected fetched details to be cached")
	}
}

func TestSelectItemFallsBackToSummaryOnFetchFailure(t *testing.T) {
	f := newFakeAPI()
	f.failObjects[9] = true

	ctrl, states := newTestController(t, f, Config{})
	summary := &model.Artwork{ObjectID: 9, Title: "Known Summary"}

	ctrl.SelectItem(summary)
	s := waitFor(t, states, func(s State) bool { return s.Details != nil })
	if s.Details != summary {
		t.Error("Expected detail-fetch failure to degrade to the summary item")
	}
	if s.ErrorMessage != "" {
		t.Errorf("Detail failure must not surface an error, got %q", s.ErrorMessage)
	}
}

func TestCloseDetailsClearsSelection(t *testing.T) {
	f := newFakeAPI()
	ctrl, states := newTestController(t, f, Config{})

	item := &model.Artwork{ObjectID: 3, Title: "Selected"}
	ctrl.Cache().Put(item)
	ctrl.SelectItem(item)
	waitFor(t, states, func(s State) bool { return s.Details != nil })

	ctrl.CloseDetails()
	s := waitFor(t, states, func(s State) bool { return s.Selected == nil })
	if s.Details != nil {
		t.Error("Expected resolved details cleared with selection")
	}
}

func TestPreloadWarmsEveryViewableResult(t *testing.T) {
	f := newFakeAPI()
	f.idsByQuery["monet"] = []int{1, 2}
	f.addViewable(1, "One")
	f.addViewable(2, "Two")

	ctrl, states := newTestController(t, f, Config{})

	var mu sync.Mutex
	preloaded := make(map[string]bool)
	ctrl.SetPreloader(func(_ context.Context, url string) {
		mu.Lock()
		preloaded[url] = true
		mu.Unlock()
	})

	ctrl.Search("monet")
	s := waitTerminal(t, states)
	if s.Status != model.StatusResultsReady {
		t.Fatalf("Expected ResultsReady, got %s", s.Status)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, a := range s.Results {
		if !preloaded[a.BestImageURL()] {
			t.Errorf("Expected %s preloaded before results were published", a.BestImageURL())
		}
	}
}

func TestBlankQueryIgnored(t *testing.T) {
	f := newFakeAPI()
	ctrl, _ := newTestController(t, f, Config{})

	ctrl.Search("   ")
	time.Sleep(50 * time.Millisecond)

	if ctrl.State().Status != model.StatusIdle {
		t.Errorf("Expected blank query to be ignored, got %s", ctrl.State().Status)
	}
	if n := f.searchCallCount(); n != 0 {
		t.Errorf("Expected no search call for blank query, got %d", n)
	}
}
