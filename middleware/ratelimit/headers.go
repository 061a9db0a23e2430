package ratelimit

import (
	"net/http"
	"strconv"

	"vault-gateway/middleware/ratelimit/domain"
)

const (
	HeaderRetryAfter = "Retry-After"
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
)

func setLimitHeaders(h http.Header, dec domain.Decision) {
	h.Set(HeaderLimit, strconv.FormatUint(uint64(dec.Limit), 10))
	h.Set(HeaderRemaining, strconv.FormatUint(uint64(dec.Remaining), 10))
}

// setRetryAfter grava segundos inteiros, nunca negativos.
func setRetryAfter(h http.Header, seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	h.Set(HeaderRetryAfter, strconv.Itoa(seconds))
}
