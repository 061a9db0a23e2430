package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	authdomain "vault-gateway/middleware/auth/domain"
	"vault-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

const (
	BucketMinute = "minute"
	BucketNone   = "none"
)

// RedisStatsStore grava contadores de decisão no Redis.
//
// É só telemetria: a decisão de admitir nunca lê daqui, o estado do rate limit
// continua local ao processo.
//
// Layout (hashes com campos allowed/denied):
//
//	<prefix>:total
//	<prefix>:route                 campos "<rota>:allowed", "<rota>:denied"
//	<prefix>:minute:<YYYYMMDDhhmm> expira em ttl
//	<prefix>:identity:<fingerprint> expira em ttl, só com trackIdentities
type RedisStatsStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	bucket string

	trackIdentities bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsBucket escolhe a série temporal: BucketMinute (padrão) ou BucketNone.
func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

// WithStatsTrackIdentities grava contadores por identidade. A chave Redis usa o
// fingerprint da identidade, nunca o token cru.
func WithStatsTrackIdentities(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackIdentities = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "vaultgw:ratelimit:stats",
		ttl:    24 * time.Hour,
		bucket: BucketMinute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type statsIncr struct {
	key     string
	field   string
	expires bool
}

func (s *RedisStatsStore) plan(ev domain.StatsEvent) []statsIncr {
	decision := "denied"
	if ev.Allowed {
		decision = "allowed"
	}

	out := []statsIncr{{key: s.prefix + ":total", field: decision}}

	if route := strings.TrimSpace(ev.RouteLabel()); route != "" {
		out = append(out, statsIncr{key: s.prefix + ":route", field: route + ":" + decision})
	}

	if s.bucket == BucketMinute {
		at := ev.At
		if at.IsZero() {
			at = time.Now()
		}
		out = append(out, statsIncr{
			key:     s.prefix + ":minute:" + at.UTC().Format("200601021504"),
			field:   decision,
			expires: true,
		})
	}

	if s.trackIdentities && ev.Key != "" {
		fp := authdomain.Identity(ev.Key).Fingerprint()
		out = append(out, statsIncr{key: s.prefix + ":identity:" + fp, field: decision, expires: true})
	}
	return out
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, inc := range s.plan(ev) {
			pipe.HIncrBy(ctx, inc.key, inc.field, 1)
			if inc.expires && s.ttl > 0 {
				pipe.Expire(ctx, inc.key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis stats: %w", err)
	}
	return nil
}
