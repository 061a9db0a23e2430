// Package config centraliza o carregamento de configurações dos binários.
//
// A fonte principal são variáveis de ambiente (com suporte a .env). Um arquivo
// YAML opcional (CONFIG_FILE) pode listar identidades e rotas.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"vault-gateway/gateway"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr  string
	UpstreamURL string
	MetricsAddr string

	// Tokens vêm de API_TOKENS; FileIdentities do CONFIG_FILE.
	Tokens         []string
	FileIdentities []string
	ConfigFile     string

	Routes     []gateway.Route
	AddHeaders bool

	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration

	LogLevel  string
	LogFormat string

	Stats StatsConfig
}

type StatsConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
	Bucket        string
	TrackKeys     bool
}

// Identities devolve API_TOKENS + identidades do arquivo, sem duplicatas.
func (c Config) Identities() []string {
	return mergeTokens(c.Tokens, c.FileIdentities)
}

// Load carrega os arquivos .env informados (ou ".env") e depois lê o ambiente.
// Arquivos .env ausentes são ignorados.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{}
	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.UpstreamURL = strings.TrimSpace(os.Getenv("UPSTREAM_URL"))
	cfg.MetricsAddr = strings.TrimSpace(os.Getenv("METRICS_ADDR"))
	cfg.Tokens = splitTokens(os.Getenv("API_TOKENS"))
	cfg.ConfigFile = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	cfg.AddHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)
	cfg.ConcurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.ConcurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	cfg.Stats.Enabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.Stats.RedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.Stats.RedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.Stats.RedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.Stats.Prefix = getenvDefault("RATE_STATS_PREFIX", "vaultgw:ratelimit:stats")
	cfg.Stats.TTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.Stats.Bucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.Stats.TrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	var file File
	if cfg.ConfigFile != "" {
		var err error
		file, err = LoadFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, err
		}
		cfg.FileIdentities = file.Identities
	}

	// ROUTES tem precedência sobre o arquivo, que tem precedência sobre o padrão
	switch raw := os.Getenv("ROUTES"); {
	case strings.TrimSpace(raw) != "":
		routes, err := gateway.ParseRoutes(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ROUTES: %w", err)
		}
		cfg.Routes = routes
	case len(file.Routes) > 0:
		cfg.Routes = file.Routes
	default:
		cfg.Routes = gateway.DefaultRoutes()
	}

	if len(cfg.Identities()) == 0 {
		return Config{}, errors.New("no identities configured: set API_TOKENS or identities in CONFIG_FILE")
	}
	if cfg.Stats.Enabled && strings.TrimSpace(cfg.Stats.RedisAddr) == "" {
		return Config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if cfg.ConcurrencyMax < 0 {
		return Config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

// ReloadIdentities relê o CONFIG_FILE e devolve a nova lista de identidades.
func ReloadIdentities(cfg Config) ([]string, error) {
	if cfg.ConfigFile == "" {
		return cfg.Identities(), nil
	}
	file, err := LoadFile(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	ids := mergeTokens(cfg.Tokens, file.Identities)
	if len(ids) == 0 {
		return nil, fmt.Errorf("reload %s: no identities", cfg.ConfigFile)
	}
	return ids, nil
}

func splitTokens(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func mergeTokens(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, tok := range list {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
