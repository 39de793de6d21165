package client

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RefreshFunc exchanges the refresh token for a new access token
type RefreshFunc func(ctx context.Context) error

// Refresher coordinates access-token refreshes across concurrent requests.
//
// Callers record Epoch before sending a request. When that request comes back
// 401 they call Refresh with the recorded epoch. At most one refresh runs at a
// time; callers arriving while it runs wait for its outcome, and callers whose
// epoch is already stale return immediately so they can retry with the
// credentials a completed refresh (or a fresh login) installed.
//
// A failed refresh is sticky: onExpired runs before any waiter is released,
// and later calls fail without touching the network until Reset.
type Refresher struct {
	refresh   RefreshFunc
	onExpired func(error)
	timeout   time.Duration

	mu       sync.Mutex
	epoch    uint64
	inflight *refreshFlight
	expired  error
}

type refreshFlight struct {
	done chan struct{}
	err  error
}

// NewRefresher returns a Refresher that calls refresh to renew the session and
// onExpired once a refresh has failed.
func NewRefresher(refresh RefreshFunc, onExpired func(error), timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Refresher{
		refresh:   refresh,
		onExpired: onExpired,
		timeout:   timeout,
	}
}

// Epoch returns the current credential generation
func (r *Refresher) Epoch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

// Refresh renews the session on behalf of a request sent during seen.
func (r *Refresher) Refresh(ctx context.Context, seen uint64) error {
	r.mu.Lock()
	if r.epoch != seen {
		r.mu.Unlock()
		return nil
	}
	if r.expired != nil {
		err := r.expired
		r.mu.Unlock()
		return err
	}
	flight := r.inflight
	if flight == nil {
		flight = &refreshFlight{done: make(chan struct{})}
		r.inflight = flight
		go r.run(flight)
	}
	r.mu.Unlock()

	select {
	case <-flight.done:
		return flight.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run performs the refresh on a detached context so that one waiter giving up
// does not fail the others.
func (r *Refresher) run(flight *refreshFlight) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err := r.refresh(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSessionExpired, err)
		if r.onExpired != nil {
			r.onExpired(err)
		}
	}

	r.mu.Lock()
	r.inflight = nil
	if err == nil {
		r.epoch++
	} else {
		r.expired = err
	}
	flight.err = err
	r.mu.Unlock()

	close(flight.done)
}

// Reset installs a new credential generation after an explicit sign-in and
// clears a previous expiry.
func (r *Refresher) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.expired = nil
}
