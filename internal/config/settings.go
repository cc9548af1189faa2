package config

import (
	"time"

	"fyne.io/fyne/v2"

	"github.com/metget/met-browser/internal/gallery"
	"github.com/metget/met-browser/internal/platform"
	"github.com/metget/met-browser/internal/runner"
)

// Settings keys for Fyne preferences
const (
	KeyPageSize         = "page_size"
	KeyMaxConcurrent    = "max_concurrent_fetches"
	KeyMinLaunchDelayMS = "min_launch_delay_ms"
	KeyPreloadImages    = "preload_images"
	KeySaveDirectory    = "save_directory"
)

// Default values. Page size, concurrency, and launch delay are the
// canonical orchestration limits; all are user-overridable.
const (
	DefaultPageSize         = gallery.DefaultPageSize
	DefaultMaxConcurrent    = gallery.DefaultMaxConcurrent
	DefaultMinLaunchDelayMS = gallery.DefaultMinDelayMS
	DefaultPreloadImages    = true
)

// Clamping bounds for user-entered values
const (
	MinPageSize      = 1
	MaxPageSize      = 200
	MinConcurrent    = 1
	MaxConcurrent    = 10
	MaxLaunchDelayMS = 5000
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetPageSize returns how many search candidates one session resolves
func (s *Settings) GetPageSize() int {
	value := s.app.Preferences().Int(KeyPageSize)
	if value <= 0 {
		s.SetPageSize(DefaultPageSize)
		return DefaultPageSize
	}
	return value
}

// SetPageSize sets the per-search candidate cap
func (s *Settings) SetPageSize(size int) {
	if size < MinPageSize {
		size = MinPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	s.app.Preferences().SetInt(KeyPageSize, size)
}

// GetMaxConcurrentFetches returns the fetch fan-out limit
func (s *Settings) GetMaxConcurrentFetches() int {
	value := s.app.Preferences().Int(KeyMaxConcurrent)
	if value <= 0 {
		s.SetMaxConcurrentFetches(DefaultMaxConcurrent)
		return DefaultMaxConcurrent
	}
	return value
}

// SetMaxConcurrentFetches sets the fetch fan-out limit
func (s *Settings) SetMaxConcurrentFetches(count int) {
	if count < MinConcurrent {
		count = MinConcurrent
	}
	if count > MaxConcurrent {
		count = MaxConcurrent
	}
	s.app.Preferences().SetInt(KeyMaxConcurrent, count)
}

// GetMinLaunchDelayMS returns the minimum spacing between fetch launches
// in milliseconds
func (s *Settings) GetMinLaunchDelayMS() int {
	value := s.app.Preferences().IntWithFallback(KeyMinLaunchDelayMS, -1)
	if value < 0 {
		s.SetMinLaunchDelayMS(DefaultMinLaunchDelayMS)
		return DefaultMinLaunchDelayMS
	}
	return value
}

// SetMinLaunchDelayMS sets the minimum spacing between fetch launches
func (s *Settings) SetMinLaunchDelayMS(ms int) {
	if ms < 0 {
		ms = 0
	}
	if ms > MaxLaunchDelayMS {
		ms = MaxLaunchDelayMS
	}
	s.app.Preferences().SetInt(KeyMinLaunchDelayMS, ms)
}

// GetPreloadImages returns whether full images are preloaded before the
// result grid is shown
func (s *Settings) GetPreloadImages() bool {
	return s.app.Preferences().BoolWithFallback(KeyPreloadImages, DefaultPreloadImages)
}

// SetPreloadImages sets whether full images are preloaded before display
func (s *Settings) SetPreloadImages(preload bool) {
	s.app.Preferences().SetBool(KeyPreloadImages, preload)
}

// GetSaveDirectory returns the directory save dialogs start in
func (s *Settings) GetSaveDirectory() string {
	dir := s.app.Preferences().String(KeySaveDirectory)
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp"
		}
		s.SetSaveDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetSaveDirectory sets the directory save dialogs start in
func (s *Settings) SetSaveDirectory(dir string) {
	s.app.Preferences().SetString(KeySaveDirectory, dir)
}

// GalleryConfig assembles the controller configuration from the stored
// preferences.
func (s *Settings) GalleryConfig() gallery.Config {
	return gallery.Config{
		PageSize: s.GetPageSize(),
		Fetch: runner.Config{
			MaxConcurrent: s.GetMaxConcurrentFetches(),
			MinInterval:   time.Duration(s.GetMinLaunchDelayMS()) * time.Millisecond,
		},
	}
}
