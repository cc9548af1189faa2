package runner

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Queue is a deduplicating work queue for visibility-triggered loading:
// the presentation layer enqueues an identifier when its placeholder
// scrolls into view, and the queue runs it at most once while it is
// pending or in flight. Launch pacing and the concurrency cap follow the
// same rules as Run.
type Queue[K comparable, O any] struct {
	cfg  Config
	work func(context.Context, K) (O, error)
	sink func(K, O, error)

	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	sinkMu  sync.Mutex
	seen    map[K]struct{} // pending or in-flight keys
	backlog []K
	wake    chan struct{}
}

// NewQueue creates a queue and starts its dispatcher goroutine. The sink
// is invoked once per completed key, serialized, including worker errors
// so the caller can decide whether a key is worth re-enqueueing.
func NewQueue[K comparable, O any](cfg Config, work func(context.Context, K) (O, error), sink func(K, O, error)) *Queue[K, O] {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue[K, O]{
		cfg:    cfg.normalized(),
		work:   work,
		sink:   sink,
		id:     newRunID(),
		ctx:    ctx,
		cancel: cancel,
		seen:   make(map[K]struct{}),
		wake:   make(chan struct{}, 1),
	}
	go q.dispatch()
	return q
}

// Enqueue schedules a key unless an identical key is already pending or
// in flight. It reports whether the key was accepted.
func (q *Queue[K, O]) Enqueue(key K) bool {
	q.mu.Lock()
	if _, dup := q.seen[key]; dup {
		q.mu.Unlock()
		return false
	}
	q.seen[key] = struct{}{}
	q.backlog = append(q.backlog, key)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending returns how many keys are pending or in flight.
func (q *Queue[K, O]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.seen)
}

// Close stops the dispatcher and abandons the backlog. In-flight workers
// observe the cancelled context.
func (q *Queue[K, O]) Close() {
	q.cancel()
}

func (q *Queue[K, O]) dispatch() {
	sem := make(chan struct{}, q.cfg.MaxConcurrent)
	nextLaunch := time.Now()

	for {
		key, ok := q.next()
		if !ok {
			select {
			case <-q.wake:
				continue
			case <-q.ctx.Done():
				return
			}
		}

		select {
		case sem <- struct{}{}:
		case <-q.ctx.Done():
			return
		}

		if wait := time.Until(nextLaunch); wait > 0 {
			select {
			case <-time.After(wait):
			case <-q.ctx.Done():
				return
			}
		}
		nextLaunch = time.Now().Add(q.cfg.MinInterval)

		go q.runOne(sem, key)
	}
}

func (q *Queue[K, O]) runOne(sem chan struct{}, key K) {
	defer func() { <-sem }()

	v, err := q.work(q.ctx, key)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("queue %s: work for %v failed: %v", q.id, key, err)
	}

	// Completed keys leave the dedup set so a later trigger may retry
	// a failed fetch.
	q.mu.Lock()
	delete(q.seen, key)
	q.mu.Unlock()

	if q.sink != nil {
		q.sinkMu.Lock()
		q.sink(key, v, err)
		q.sinkMu.Unlock()
	}
}

func (q *Queue[K, O]) next() (K, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.backlog) == 0 {
		var zero K
		return zero, false
	}
	key := q.backlog[0]
	q.backlog = q.backlog[1:]
	return key, true
}
