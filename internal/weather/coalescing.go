package weather

import (
	"context"
	"sync"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

// inFlightLookup is one geocoding call that concurrent callers for the same city share.
type inFlightLookup struct {
	done   chan struct{}
	result models.Coordinates
	err    error
}

// lookupCoalescer collapses concurrent cache misses for the same city into one upstream call.
type lookupCoalescer struct {
	mu       sync.Mutex
	inFlight map[string]*inFlightLookup
	timeout  time.Duration
}

func newLookupCoalescer(timeout time.Duration) *lookupCoalescer {
	return &lookupCoalescer{
		inFlight: make(map[string]*inFlightLookup),
		timeout:  timeout,
	}
}

// Do runs fn for key unless a call for key is already running, in which case it waits for
// that call's result. Waiting is bounded by ctx and the coalescer timeout.
func (lc *lookupCoalescer) Do(ctx context.Context, key string, fn func() (models.Coordinates, error)) (models.Coordinates, error) {
	lc.mu.Lock()
	call, exists := lc.inFlight[key]
	if !exists {
		call = &inFlightLookup{done: make(chan struct{})}
		lc.inFlight[key] = call
		go func() {
			call.result, call.err = fn()
			lc.mu.Lock()
			delete(lc.inFlight, key)
			lc.mu.Unlock()
			close(call.done)
		}()
	}
	lc.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, lc.timeout)
	defer cancel()
	select {
	case <-call.done:
		return call.result, call.err
	case <-waitCtx.Done():
		return models.Coordinates{}, waitCtx.Err()
	}
}
