package unread

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeStub struct {
	incremented [][]int
	resets      []int
	count       int
	err         error
}

func (s *storeStub) IncrementUnread(ctx context.Context, userIDs []int) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.incremented = append(s.incremented, userIDs)
	return len(userIDs), nil
}

func (s *storeStub) ResetUnread(ctx context.Context, userID int) error {
	if s.err != nil {
		return s.err
	}
	s.resets = append(s.resets, userID)
	return nil
}

func (s *storeStub) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.count, s.err
}

func TestClampBadge(t *testing.T) {
	assert.Equal(t, 0, ClampBadge(-3))
	assert.Equal(t, 0, ClampBadge(0))
	assert.Equal(t, 42, ClampBadge(42))
	assert.Equal(t, 99, ClampBadge(99))
	assert.Equal(t, 99, ClampBadge(100))
	assert.Equal(t, 99, ClampBadge(100000))
}

func TestIncrementEmptySetIsNoop(t *testing.T) {
	store := &storeStub{}
	engine := NewEngine(store)

	affected, err := engine.Increment(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Empty(t, store.incremented)
}

func TestIncrementDelegates(t *testing.T) {
	store := &storeStub{}
	engine := NewEngine(store)

	affected, err := engine.Increment(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, affected)
	require.Len(t, store.incremented, 1)
	assert.Equal(t, []int{1, 2, 3}, store.incremented[0])
}

func TestResetDelegates(t *testing.T) {
	store := &storeStub{}
	engine := NewEngine(store)

	require.NoError(t, engine.Reset(context.Background(), 7))
	assert.Equal(t, []int{7}, store.resets)
}

func TestCurrentReturnsStoredValue(t *testing.T) {
	// Stored counters are never clamped; only display values are.
	store := &storeStub{count: 250}
	engine := NewEngine(store)

	count, err := engine.Current(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 250, count)
	assert.Equal(t, 99, ClampBadge(count))
}

func TestErrorsPropagate(t *testing.T) {
	store := &storeStub{err: assert.AnError}
	engine := NewEngine(store)

	_, err := engine.Increment(context.Background(), []int{1})
	assert.Error(t, err)
	assert.Error(t, engine.Reset(context.Background(), 1))
	_, err = engine.Current(context.Background(), 1)
	assert.Error(t, err)
}
