package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config bounds how wide and how fast a run may fan out.
type Config struct {
	// MaxConcurrent is the number of workers allowed in flight at once.
	// Values below 1 are treated as 1.
	MaxConcurrent int

	// MinInterval is the minimum spacing between consecutive worker
	// launches. Negative values are treated as 0.
	MinInterval time.Duration
}

func (c Config) normalized() Config {
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}
	if c.MinInterval < 0 {
		c.MinInterval = 0
	}
	return c
}

// Outcome is the terminal result of one work item.
type Outcome[O any] struct {
	Index int
	Value O
	Err   error
}

// Failed reports whether the item genuinely failed. Items abandoned or
// aborted by cancellation are not failures.
func (o Outcome[O]) Failed() bool {
	return o.Err != nil && !errors.Is(o.Err, context.Canceled)
}

// Run executes work once per item, keeping at most cfg.MaxConcurrent
// workers in flight and spacing consecutive launches by at least
// cfg.MinInterval. The interval throttles launch rate, not throughput:
// it is measured between worker start times, so a slow worker does not
// hold the launch cursor back once a concurrency slot frees up.
//
// One item's failure never aborts its siblings. Every item reaches a
// terminal Outcome, positioned by input index, and Run returns only when
// no worker remains active. When sink is non-nil it is invoked once per
// completed item in completion order, serialized, so callers can render
// progressively.
//
// Cancelling ctx stops pending launches; their outcomes carry the
// context error. In-flight workers receive the same ctx and are expected
// to abort their own I/O.
func Run[I, O any](ctx context.Context, cfg Config, items []I, work func(context.Context, I) (O, error), sink func(Outcome[O])) []Outcome[O] {
	cfg = cfg.normalized()
	outcomes := make([]Outcome[O], len(items))

	sem := make(chan struct{}, cfg.MaxConcurrent)
	var wg sync.WaitGroup
	var sinkMu sync.Mutex

	nextLaunch := time.Now()
	launched := 0

launch:
	for i := range items {
		// Take a concurrency slot before pacing, so waiting on a full
		// pool cannot let two launches collapse onto the same instant.
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break launch
		}

		if wait := time.Until(nextLaunch); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				<-sem
				break launch
			}
		}
		nextLaunch = time.Now().Add(cfg.MinInterval)

		launched++
		wg.Add(1)
		go func(i int, item I) {
			defer wg.Done()
			defer func() { <-sem }()

			v, err := work(ctx, item)
			o := Outcome[O]{Index: i, Value: v, Err: err}
			outcomes[i] = o
			if sink != nil {
				sinkMu.Lock()
				sink(o)
				sinkMu.Unlock()
			}
		}(i, items[i])
	}

	wg.Wait()

	if launched < len(items) {
		err := context.Cause(ctx)
		if err == nil {
			err = context.Canceled
		}
		for i := launched; i < len(items); i++ {
			outcomes[i] = Outcome[O]{Index: i, Err: err}
		}
		log.Printf("run %s: abandoned %d of %d items after cancellation",
			newRunID(), len(items)-launched, len(items))
	}
	return outcomes
}

// newRunID generates a correlation ID for log lines using UUID v7, which
// sorts chronologically. Falls back to a timestamp if generation fails.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return id.String()
}
