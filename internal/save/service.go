// Package save implements the image persistence bridge: prompt for a
// destination, download the image fully into memory, and write it
// atomically to disk.
package save

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/metget/met-browser/internal/platform"
)

const downloadTimeout = 60 * time.Second

// Request asks for one image to be persisted. DefaultName seeds the save
// dialog; when empty the last URL path segment is offered instead.
type Request struct {
	URL         string
	DefaultName string
}

// Result reports the outcome. A user-dismissed dialog sets Canceled with
// no error; any download or write problem lands in Error as a short
// user-facing message.
type Result struct {
	Canceled bool
	FilePath string
	Error    string
}

// Prompter chooses a destination path for a download, typically via the
// platform save dialog. ok is false when the user dismissed the prompt.
type Prompter interface {
	ChoosePath(defaultName string) (path string, ok bool, err error)
}

// Service downloads images and writes them to user-chosen locations.
type Service struct {
	client   *http.Client
	prompter Prompter
}

// NewService creates a save service using the given prompter.
func NewService(prompter Prompter) *Service {
	return &Service{
		client:   &http.Client{Timeout: downloadTimeout},
		prompter: prompter,
	}
}

// Save runs the full prompt-download-write sequence. It blocks until the
// user answers the prompt and the file is on disk, so callers run it off
// the UI thread.
func (s *Service) Save(ctx context.Context, req Request) Result {
	if req.URL == "" {
		return Result{Error: "No image available to save."}
	}

	path, ok, err := s.prompter.ChoosePath(req.DefaultName)
	if err != nil {
		return Result{Error: fmt.Sprintf("Could not open save dialog: %v", err)}
	}
	if !ok {
		return Result{Canceled: true}
	}

	data, err := s.download(ctx, req.URL)
	if err != nil {
		return Result{Error: "Download failed. Please try again."}
	}

	if err := platform.WriteFileAtomic(path, data); err != nil {
		return Result{Error: "Could not write the file. Please try again."}
	}
	return Result{FilePath: path}
}

// download fetches the resource fully into memory.
func (s *Service) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading download body: %w", err)
	}
	return data, nil
}
