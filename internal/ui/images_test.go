package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/metget/met-browser/internal/runner"
)

func TestImageCachePreloadStoresResource(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte("image bytes"))
	}))
	defer server.Close()

	ic := NewImageCache(runner.Config{MaxConcurrent: 2})
	defer ic.Close()

	url := server.URL + "/art.jpg"
	ic.Preload(context.Background(), url)

	res, ok := ic.Get(url)
	if !ok {
		t.Fatal("Expected resource cached after preload")
	}
	if string(res.Content()) != "image bytes" {
		t.Errorf("Expected image bytes cached, got %q", res.Content())
	}

	// A second preload of the same URL is served from memory.
	ic.Preload(context.Background(), url)
	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Errorf("Expected 1 network hit, got %d", n)
	}
}

func TestImageCachePreloadNeverFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ic := NewImageCache(runner.Config{MaxConcurrent: 2})
	defer ic.Close()

	// Must return normally; the failure is swallowed.
	ic.Preload(context.Background(), server.URL+"/broken.jpg")
	ic.Preload(context.Background(), "")

	if _, ok := ic.Get(server.URL + "/broken.jpg"); ok {
		t.Error("Expected failed preload to cache nothing")
	}
}

func TestImageCacheRequestVisible(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("lazy bytes"))
	}))
	defer server.Close()

	ic := NewImageCache(runner.Config{MaxConcurrent: 2})
	defer ic.Close()

	loaded := make(chan string, 4)
	ic.SetLoadedCallback(func(url string) { loaded <- url })

	url := server.URL + "/lazy.jpg"
	ic.RequestVisible(url)

	select {
	case got := <-loaded:
		if got != url {
			t.Errorf("Expected callback for %q, got %q", url, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for lazy load")
	}

	if _, ok := ic.Get(url); !ok {
		t.Error("Expected lazily requested resource cached")
	}
}
