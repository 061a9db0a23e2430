package infra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphore_AcquireAndRelease(t *testing.T) {
	s := NewSemaphore(2)
	assert.Equal(t, 2, s.Capacity())

	r1, ok := s.Acquire(context.Background())
	require.True(t, ok)
	r2, ok := s.Acquire(context.Background())
	require.True(t, ok)
	assert.Equal(t, 2, s.InUse())

	r1()
	r1()
	assert.Equal(t, 1, s.InUse(), "release must be idempotent")
	r2()
	assert.Equal(t, 0, s.InUse())
}

func TestSemaphore_FullPoolWaitsForContext(t *testing.T) {
	s := NewSemaphore(1)
	release, ok := s.Acquire(context.Background())
	require.True(t, ok)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok = s.Acquire(ctx)
	assert.False(t, ok)
}

func TestSemaphore_MinimumCapacity(t *testing.T) {
	assert.Equal(t, 1, NewSemaphore(0).Capacity())
}
