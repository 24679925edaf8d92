package unread

import (
	"context"
	"log"
)

// MaxBadge is the largest badge number ever shown to a device. The stored
// counter is never clamped; only displayed values are.
const MaxBadge = 99

// ClampBadge caps a counter value for display.
func ClampBadge(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxBadge {
		return MaxBadge
	}
	return n
}

// Store is the counter persistence the engine drives. Satisfied by
// repositories.UserRepository.
type Store interface {
	IncrementUnread(ctx context.Context, userIDs []int) (int, error)
	ResetUnread(ctx context.Context, userID int) error
	UnreadCount(ctx context.Context, userID int) (int, error)
}

// Engine maintains the per-user unread counter. The counter moves through
// exactly one cycle: incremented once per message-target event, then zeroed
// when the owning user lists their messages. A reset racing a concurrent
// increment is last-write-wins; the periodic client poll self-corrects.
type Engine struct {
	store Store
}

// NewEngine constructs an Engine.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Increment adds one to every listed user's counter. An empty set is a
// no-op. Returns how many counters changed.
func (e *Engine) Increment(ctx context.Context, userIDs []int) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	count, err := e.store.IncrementUnread(ctx, userIDs)
	if err != nil {
		return 0, err
	}
	log.Printf("unread: incremented %d counters", count)
	return count, nil
}

// Reset zeroes a single user's counter. Called once per successful message
// list, for the viewing user only.
func (e *Engine) Reset(ctx context.Context, userID int) error {
	return e.store.ResetUnread(ctx, userID)
}

// Current reads a user's stored counter. Callers clamp for display.
func (e *Engine) Current(ctx context.Context, userID int) (int, error) {
	return e.store.UnreadCount(ctx, userID)
}
