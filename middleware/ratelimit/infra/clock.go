package infra

import (
	"time"

	"vault-gateway/middleware/ratelimit/domain"
)

type systemClock struct{}

// SystemClock é o relógio real (time.Now / time.AfterFunc).
func SystemClock() domain.Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) domain.Timer {
	return time.AfterFunc(d, f)
}
