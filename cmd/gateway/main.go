package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vault-gateway/config"
	"vault-gateway/gateway"
	"vault-gateway/logging"
	"vault-gateway/middleware/auth"
	authinfra "vault-gateway/middleware/auth/infra"
	"vault-gateway/middleware/ratelimit"
	"vault-gateway/middleware/ratelimit/domain"
	"vault-gateway/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const metricsNamespace = "vaultgw"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.UpstreamURL == "" {
		logger.Fatal("UPSTREAM_URL is required")
	}
	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		logger.Fatal("invalid UPSTREAM_URL", zap.Error(err))
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("proxy error", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	promStats, err := infra.NewPrometheusStatsStore(reg, metricsNamespace)
	if err != nil {
		logger.Fatal("metrics registration failed", zap.Error(err))
	}
	stats := infra.MultiStats{promStats}

	if cfg.Stats.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Stats.RedisAddr,
			Password: cfg.Stats.RedisPassword,
			DB:       cfg.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Fatal("redis stats ping error", zap.Error(err))
		}

		stats = append(stats, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackIdentities(cfg.Stats.TrackKeys),
		))
	}

	rejections := auth.NewRejectionsCounter(metricsNamespace)
	reg.MustRegister(rejections)

	identities := authinfra.NewStaticSet(cfg.Identities())

	gw, err := gateway.New(gateway.Options{
		Routes:              cfg.Routes,
		Identities:          identities,
		Upstream:            proxy,
		Stats:               domain.StatsStore(stats),
		AddRateLimitHeaders: cfg.AddHeaders,
		AuthRejections:      rejections,
		Logger:              logger,
	})
	if err != nil {
		logger.Fatal("gateway setup failed", zap.Error(err))
	}
	// não espera timers de expiração: só os abandona
	defer gw.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go reloadOnHangup(ctx, cfg, identities, logger)

	h := http.Handler(gw)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.ConcurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.ConcurrencyTimeout,
		Logger:         logger,
	})(h)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
	}()

	logger.Info("gateway listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("upstream", target.String()),
		zap.Int("identities", identities.Len()),
		zap.Int("routes", len(cfg.Routes)),
	)
	for _, rt := range cfg.Routes {
		logger.Info("route", zap.String("route", rt.String()), zap.Uint32("max_rpm", rt.MaxRPM))
	}
	logger.Info("rate-stats",
		zap.Bool("redis", cfg.Stats.Enabled),
		zap.String("redisAddr", cfg.Stats.RedisAddr),
		zap.String("bucket", cfg.Stats.Bucket),
		zap.Duration("ttl", cfg.Stats.TTL),
		zap.Bool("trackKeys", cfg.Stats.TrackKeys),
	)
	logger.Info("concurrency", zap.Int("max", cfg.ConcurrencyMax), zap.Duration("acquireTimeout", cfg.ConcurrencyTimeout))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// reloadOnHangup relê as identidades do CONFIG_FILE a cada SIGHUP.
func reloadOnHangup(ctx context.Context, cfg config.Config, set *authinfra.StaticSet, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			ids, err := config.ReloadIdentities(cfg)
			if err != nil {
				logger.Error("identity reload failed; keeping current set", zap.Error(err))
				continue
			}
			set.Replace(ids)
			logger.Info("identities reloaded", zap.Int("identities", set.Len()))
		}
	}
}
