package infra

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vault-gateway/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestTable(t *testing.T, maxRPM uint32) (*BucketTable, *ManualClock) {
	t.Helper()
	clock := NewManualClock(epoch)
	table := NewBucketTable(maxRPM, WithClock(clock))
	t.Cleanup(table.Close)
	return table, clock
}

func TestBucketTable_FirstRequestConsumesOneUnit(t *testing.T) {
	table, clock := newTestTable(t, 5)

	dec := table.TryConsume("abc")
	require.True(t, dec.Allowed)
	assert.Equal(t, uint32(5), dec.Limit)
	assert.Equal(t, uint32(4), dec.Remaining)

	b, ok := table.Peek("abc")
	require.True(t, ok)
	assert.Equal(t, uint32(4), b.Remaining)
	assert.Equal(t, clock.Now(), b.AllocatedAt)
	assert.Equal(t, 1, table.PendingExpiries())
}

func TestBucketTable_AdmitsExactlyMaxRPM(t *testing.T) {
	const n = 3
	table, _ := newTestTable(t, n)

	for i := 0; i < n; i++ {
		dec := table.TryConsume("abc")
		require.True(t, dec.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, uint32(n-i-1), dec.Remaining)
	}

	dec := table.TryConsume("abc")
	assert.False(t, dec.Allowed)
	assert.Equal(t, uint32(0), dec.Remaining)
	assert.LessOrEqual(t, dec.RetryAfterSeconds(), 60)
	assert.GreaterOrEqual(t, dec.RetryAfterSeconds(), 0)
}

func TestBucketTable_IdentitiesAreIndependent(t *testing.T) {
	table, _ := newTestTable(t, 1)

	assert.True(t, table.TryConsume("abc").Allowed)
	assert.False(t, table.TryConsume("abc").Allowed)
	assert.True(t, table.TryConsume("def").Allowed)
}

func TestBucketTable_RetryAfterDecreasesWithinWindow(t *testing.T) {
	table, clock := newTestTable(t, 1)
	require.True(t, table.TryConsume("abc").Allowed)

	prev := 61
	for i := 0; i < 59; i++ {
		dec := table.TryConsume("abc")
		require.False(t, dec.Allowed)
		got := dec.RetryAfterSeconds()
		assert.Less(t, got, prev, "retry-after must strictly decrease (step %d)", i)
		assert.GreaterOrEqual(t, got, 0)
		prev = got
		clock.Advance(time.Second)
	}
}

func TestBucketTable_ActiveExpiryRemovesBucket(t *testing.T) {
	table, clock := newTestTable(t, 2)

	table.TryConsume("abc")
	table.TryConsume("abc")
	require.False(t, table.TryConsume("abc").Allowed)

	clock.Advance(59 * time.Second)
	assert.Equal(t, 1, table.Len(), "bucket must survive until the TTL")

	clock.Advance(time.Second)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.PendingExpiries())

	dec := table.TryConsume("abc")
	require.True(t, dec.Allowed)
	assert.Equal(t, uint32(1), dec.Remaining)
}

func TestBucketTable_LazyResetWhenTimerIsLate(t *testing.T) {
	table, clock := newTestTable(t, 2)

	table.TryConsume("abc")
	table.TryConsume("abc")
	require.False(t, table.TryConsume("abc").Allowed)

	// passa da janela sem deixar o timer rodar
	clock.Drift(61 * time.Second)
	require.Equal(t, 1, table.Len())

	dec := table.TryConsume("abc")
	require.True(t, dec.Allowed)
	assert.Equal(t, uint32(1), dec.Remaining)

	b, _ := table.Peek("abc")
	assert.Equal(t, clock.Now(), b.AllocatedAt)
}

func TestBucketTable_StaleTimerDoesNotRemoveReallocatedBucket(t *testing.T) {
	table, _ := newTestTable(t, 2)

	table.TryConsume("abc")
	first, _ := table.Peek("abc")

	// simula o timer da primeira alocação chegando depois de um reset
	assert.True(t, table.Expire("abc", first.Generation))
	table.TryConsume("abc")
	second, _ := table.Peek("abc")
	require.NotEqual(t, first.Generation, second.Generation)

	assert.False(t, table.Expire("abc", first.Generation), "stale timer must be a no-op")
	assert.Equal(t, 1, table.Len())
	assert.False(t, table.Expire("missing", 1))
}

func TestBucketTable_LazyResetReschedulesExpiry(t *testing.T) {
	table, clock := newTestTable(t, 1)

	table.TryConsume("abc")
	clock.Drift(60 * time.Second)
	table.TryConsume("abc") // reset preguiçoso, nova geração

	// só o timer da nova geração deve continuar pendente
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(59 * time.Second)
	assert.Equal(t, 1, table.Len())
	clock.Advance(time.Second)
	assert.Equal(t, 0, table.Len())
}

func TestBucketTable_WindowBudgetInvariant(t *testing.T) {
	const n = 4
	table, clock := newTestTable(t, n)

	// requests a cada 7s por 5 minutos, drift para misturar expiração ativa e preguiçosa
	admitted := map[time.Time]int{}
	var current time.Time
	for i := 0; i < 45; i++ {
		dec := table.TryConsume("abc")
		b, _ := table.Peek("abc")
		if b.AllocatedAt != current {
			current = b.AllocatedAt
		}
		if dec.Allowed {
			admitted[current]++
		}
		if i%2 == 0 {
			clock.Advance(7 * time.Second)
		} else {
			clock.Drift(7 * time.Second)
		}
	}

	require.NotEmpty(t, admitted)
	for window, count := range admitted {
		assert.LessOrEqual(t, count, n, "window starting at %s admitted too many", window)
	}
}

func TestBucketTable_ZeroBudgetDeniesEverything(t *testing.T) {
	table, _ := newTestTable(t, 0)

	dec := table.TryConsume("abc")
	assert.False(t, dec.Allowed)
	assert.Equal(t, 60, dec.RetryAfterSeconds())
	assert.False(t, table.TryConsume("abc").Allowed)
}

func TestBucketTable_ConcurrentConsumeNeverOverAdmits(t *testing.T) {
	const n = 50
	table := NewBucketTable(n)
	defer table.Close()

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if table.TryConsume("abc").Allowed {
					admitted.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(n), admitted.Load())
}

func TestBucketTable_CloseAbandonsTimers(t *testing.T) {
	table, clock := newTestTable(t, 3)
	table.TryConsume("abc")
	table.TryConsume("def")
	require.Equal(t, 2, table.PendingExpiries())

	table.Close()
	assert.Equal(t, 0, table.PendingExpiries())
	assert.Equal(t, 0, clock.Pending())

	// sem timers, a tabela segue correta pelo reset preguiçoso
	clock.Advance(2 * time.Minute)
	dec := table.TryConsume("abc")
	assert.True(t, dec.Allowed)
	assert.Equal(t, uint32(2), dec.Remaining)
}

func TestBucketTable_RealClockExpiry(t *testing.T) {
	table := NewBucketTable(1, WithTTL(20*time.Millisecond))
	defer table.Close()

	require.True(t, table.TryConsume("abc").Allowed)
	require.False(t, table.TryConsume("abc").Allowed)

	assert.Eventually(t, func() bool { return table.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, table.TryConsume("abc").Allowed)
}

func TestNewBucketTable_Defaults(t *testing.T) {
	table := NewBucketTable(10, WithTTL(0))
	defer table.Close()

	assert.Equal(t, uint32(10), table.MaxRPM())
	assert.Equal(t, DefaultTTL, table.TTL())
	var _ domain.BucketTable = table
}
