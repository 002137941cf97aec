// Package bridge exposes pending breakpoints over HTTP so a human can
// resolve reviews out-of-band: the process blocks inside ctx.Breakpoint
// while a reviewer lists and resolves the pause from another terminal.
package bridge

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"praxis/internal/process"
)

// Pending is one breakpoint waiting for resolution.
type Pending struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id"`
	Title     string         `json:"title"`
	Question  string         `json:"question"`
	Context   map[string]any `json:"context,omitempty"`
	CreatedAt time.Time      `json:"created_at"`

	resolve chan error
}

// Queue holds breakpoints awaiting review. It implements the host's
// Approver contract: Approve blocks until a reviewer resolves the entry or
// the run's context ends.
type Queue struct {
	mu      sync.Mutex
	pending map[string]*Pending
	clock   func() time.Time
}

// QueueOption customizes the queue.
type QueueOption func(*Queue)

// WithClock overrides the queue clock.
func WithClock(clock func() time.Time) QueueOption {
	return func(q *Queue) {
		if clock != nil {
			q.clock = clock
		}
	}
}

// NewQueue returns an empty review queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		pending: map[string]*Pending{},
		clock:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q
}

// Approve implements the breakpoint approver contract.
func (q *Queue) Approve(ctx context.Context, runID string, bp process.Breakpoint) error {
	entry := &Pending{
		ID:        uuid.NewString(),
		RunID:     runID,
		Title:     bp.Title,
		Question:  bp.Question,
		Context:   bp.Context,
		CreatedAt: q.clock(),
		resolve:   make(chan error, 1),
	}
	q.mu.Lock()
	q.pending[entry.ID] = entry
	q.mu.Unlock()

	select {
	case err := <-entry.resolve:
		return err
	case <-ctx.Done():
		q.remove(entry.ID)
		return ctx.Err()
	}
}

// List returns pending breakpoints, oldest first.
func (q *Queue) List() []Pending {
	q.mu.Lock()
	defer q.mu.Unlock()
	entries := make([]Pending, 0, len(q.pending))
	for _, entry := range q.pending {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

// Resolve answers one pending breakpoint. Approve releases the run; decline
// rejects it with the optional reason.
func (q *Queue) Resolve(id string, approve bool, reason string) error {
	q.mu.Lock()
	entry, ok := q.pending[id]
	if ok {
		delete(q.pending, id)
	}
	q.mu.Unlock()
	if !ok {
		return fmt.Errorf("bridge: no pending breakpoint %s", id)
	}
	if approve {
		entry.resolve <- nil
		return nil
	}
	if reason != "" {
		entry.resolve <- fmt.Errorf("%w: %s", process.ErrRejected, reason)
	} else {
		entry.resolve <- process.ErrRejected
	}
	return nil
}

func (q *Queue) remove(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
