package view

import (
	"context"
	"sync"
)

// State is the display state of a Board.
type State int

// Board states.
const (
	StateLoading State = iota
	StateError
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Fetcher loads a leaderboard snapshot.
type Fetcher interface {
	FetchBoard(ctx context.Context) (Snapshot, error)
}

// Board holds the latest leaderboard and its display state. Only the most
// recent Refresh may publish; starting a refresh cancels the one in flight.
type Board struct {
	fetcher Fetcher

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	state   State
	last    Snapshot
	hasData bool
	err     error
}

// NewBoard returns a board in the loading state.
func NewBoard(f Fetcher) *Board {
	return &Board{fetcher: f, state: StateLoading}
}

// Refresh fetches a new snapshot. It returns ErrSuperseded when a newer
// refresh started before this one finished.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	b.gen++
	gen := b.gen
	b.cancel = cancel
	b.state = StateLoading
	b.mu.Unlock()

	snap, err := b.fetcher.FetchBoard(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return ErrSuperseded
	}
	b.cancel = nil
	if err != nil {
		b.state = StateError
		b.err = err
		return err
	}
	b.state = StateReady
	b.last = snap
	b.hasData = true
	b.err = nil
	return nil
}

// State returns the current display state.
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns the last successful snapshot, if any.
func (b *Board) Snapshot() (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.hasData
}

// Err returns the error of the last failed refresh while in the error state.
func (b *Board) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateError {
		return nil
	}
	return b.err
}
