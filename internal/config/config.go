package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPAddr     string
	MaxBodyBytes int64

	ShopifySecret string

	Backend     string
	SupabaseURL string
	SupabaseKey string
	PostgresDSN string

	KafkaBrokers string
	KafkaTopic   string
}

var dotEnvPath = ".env"

func Load() (Config, error) {
	if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotEnvPath, err)
	}

	var cfg Config

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", 5<<20))

	cfg.ShopifySecret = getEnv("SHOPIFY_SECRET", "")
	if cfg.ShopifySecret == "" {
		return Config{}, errors.New("set SHOPIFY_SECRET")
	}

	cfg.Backend = strings.ToLower(getEnv("STORE_BACKEND", BackendSupabase))
	switch cfg.Backend {
	case BackendSupabase:
		cfg.SupabaseURL = strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
		cfg.SupabaseKey = getEnv("SUPABASE_SERVICE_ROLE_KEY", "")
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return Config{}, errors.New("set SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
	case BackendPostgres:
		cfg.PostgresDSN = getEnv("POSTGRES_DSN", "")
		if cfg.PostgresDSN == "" {
			return Config{}, errors.New("set POSTGRES_DSN")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}

	cfg.KafkaBrokers = getEnv("KAFKA_BROKERS", "")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "orders.stored")

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
