package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    time.Duration
	}{
		{name: "just allocated", elapsed: 0, want: 60 * time.Second},
		{name: "half a second in rounds up", elapsed: 500 * time.Millisecond, want: 60 * time.Second},
		{name: "one second in", elapsed: time.Second, want: 59 * time.Second},
		{name: "last instant", elapsed: 59*time.Second + 999*time.Millisecond, want: time.Second},
		{name: "window elapsed", elapsed: 60 * time.Second, want: 0},
		{name: "window long gone saturates", elapsed: 10 * time.Minute, want: 0},
		{name: "negative elapsed caps at ttl", elapsed: -time.Second, want: 61 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RetryAfter(60*time.Second, tt.elapsed))
		})
	}
}

func TestDecision_RetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, Decision{}.RetryAfterSeconds())
	assert.Equal(t, 0, Decision{RetryAfter: -time.Second}.RetryAfterSeconds())
	assert.Equal(t, 42, Decision{RetryAfter: 42 * time.Second}.RetryAfterSeconds())
}

func TestStatsEvent_RouteLabel(t *testing.T) {
	assert.Equal(t, "POST /vault", StatsEvent{Route: "POST /vault", Method: "GET", Path: "/x"}.RouteLabel())
	assert.Equal(t, "GET /x", StatsEvent{Method: "GET", Path: "/x"}.RouteLabel())
}
