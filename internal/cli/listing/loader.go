// Package listing keeps paginated API results in sync with changing
// parameters.
//
// A Loader owns one result set. Every Load cancels the fetch before it, and
// only the newest fetch is allowed to write state: a superseded fetch never
// clears Loading, sets data or reports an error.
package listing

import (
	"context"
	"sync"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
)

// FetchFunc loads one page for params
type FetchFunc[P, T any] func(ctx context.Context, params P) (*client.Page[T], error)

// State is a snapshot of a Loader
type State[P, T any] struct {
	Params     P
	Data       *client.Page[T]
	Loading    bool
	Err        error
	Generation uint64
}

// ErrMessage returns the error text, or "" when the last fetch succeeded
func (s State[P, T]) ErrMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Items returns the loaded content, never nil
func (s State[P, T]) Items() []T {
	if s.Data == nil {
		return []T{}
	}
	return s.Data.Content
}

// Option configures a Loader
type Option[P, T any] func(*Loader[P, T])

// WithOnChange registers fn to receive the current state after every change.
// Calls are serialized.
func WithOnChange[P, T any](fn func(State[P, T])) Option[P, T] {
	return func(l *Loader[P, T]) {
		l.onChange = fn
	}
}

// WithEnabled sets whether the loader starts enabled (default true)
func WithEnabled[P, T any](enabled bool) Option[P, T] {
	return func(l *Loader[P, T]) {
		l.enabled = enabled
	}
}

// Loader fetches pages of T for parameters P
type Loader[P, T any] struct {
	fetch    FetchFunc[P, T]
	onChange func(State[P, T])

	mu      sync.Mutex
	state   State[P, T]
	enabled bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	notifyMu sync.Mutex
}

// New returns a loader holding params. Nothing is fetched until Load,
// Refresh or SetEnabled(true).
func New[P, T any](fetch FetchFunc[P, T], params P, opts ...Option[P, T]) *Loader[P, T] {
	l := &Loader[P, T]{
		fetch:   fetch,
		enabled: true,
	}
	l.state.Params = params
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current snapshot
func (l *Loader[P, T]) State() State[P, T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load replaces the parameters and fetches them, cancelling any fetch in
// flight. A disabled loader only records the parameters.
func (l *Loader[P, T]) Load(params P) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.state.Params = params
	if !l.enabled {
		l.mu.Unlock()
		l.notify()
		return
	}
	l.startLocked()
	l.mu.Unlock()
	l.notify()
}

// Refresh fetches the current parameters again
func (l *Loader[P, T]) Refresh() {
	l.mu.Lock()
	if l.closed || !l.enabled {
		l.mu.Unlock()
		return
	}
	l.startLocked()
	l.mu.Unlock()
	l.notify()
}

// SetEnabled suspends or resumes loading. Enabling fetches the current
// parameters; disabling cancels the fetch in flight.
func (l *Loader[P, T]) SetEnabled(enabled bool) {
	l.mu.Lock()
	if l.closed || l.enabled == enabled {
		l.mu.Unlock()
		return
	}
	l.enabled = enabled
	if enabled {
		l.startLocked()
	} else {
		l.stopLocked()
		l.state.Loading = false
	}
	l.mu.Unlock()
	l.notify()
}

// Enabled reports whether the loader fetches on Load
func (l *Loader[P, T]) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Wait blocks until the newest fetch has settled or ctx is done
func (l *Loader[P, T]) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		done := l.done
		generation := l.state.Generation
		l.mu.Unlock()

		if done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		l.mu.Lock()
		settled := l.state.Generation == generation
		l.mu.Unlock()
		if settled {
			return nil
		}
	}
}

// Close cancels the fetch in flight and stops the loader
func (l *Loader[P, T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.stopLocked()
}

func (l *Loader[P, T]) stopLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	// Bump the generation so the cancelled fetch cannot write.
	l.state.Generation++
}

func (l *Loader[P, T]) startLocked() {
	l.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	generation := l.state.Generation
	done := make(chan struct{})
	params := l.state.Params

	l.cancel = cancel
	l.done = done
	l.state.Loading = true
	l.state.Err = nil

	go l.run(ctx, cancel, generation, params, done)
}

func (l *Loader[P, T]) run(ctx context.Context, cancel context.CancelFunc, generation uint64, params P, done chan struct{}) {
	defer close(done)
	defer cancel()

	page, err := l.fetch(ctx, params)

	l.mu.Lock()
	if l.state.Generation != generation || ctx.Err() != nil {
		l.mu.Unlock()
		return
	}
	if err != nil {
		l.state.Err = err
	} else {
		if page == nil {
			page = &client.Page[T]{Content: []T{}}
		}
		l.state.Data = page
	}
	l.state.Loading = false
	l.cancel = nil
	l.mu.Unlock()

	l.notify()
}

// notify hands the latest state, not the one that triggered the call, to
// onChange.
func (l *Loader[P, T]) notify() {
	if l.onChange == nil {
		return
	}
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()
	l.onChange(l.State())
}
