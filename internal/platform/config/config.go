package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	stringutil "lockpass/pkg/platform/strings"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean; dev defaults keep `go run` working
// without any setup.
type Config struct {
	Addr string

	// DatabaseURL enables the postgres stores when set; otherwise the
	// in-memory stores are used.
	DatabaseURL string

	// RedisURL enables the redis rate-limit store when set.
	Redis RedisConfig

	// KafkaBrokers enables the kafka audit sink when non-empty.
	KafkaBrokers    []string
	KafkaAuditTopic string

	// Lock oracle connection.
	RPCEndpoint     string
	ChainID         uint64
	LockContract    string
	OracleTimeout   time.Duration
	AdminSigningKey string

	// Write-endpoint throttle, per client IP.
	RateLimit       int
	RateLimitWindow time.Duration
}

// RedisConfig holds go-redis client tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            getenv("LOCKPASS_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		KafkaAuditTopic: getenv("KAFKA_AUDIT_TOPIC", "lockpass.audit"),
		RPCEndpoint:     getenv("EVM_RPC_ENDPOINT", "http://localhost:8545"),
		LockContract:    getenv("LOCK_CONTRACT_ADDRESS", "0x0000000000000000000000000000000000000000"),
		ChainID:         getenvUint("CHAIN_ID", 1),
		OracleTimeout:   getenvDuration("ORACLE_TIMEOUT", 5*time.Second),
		// Default for development - must be overridden in production.
		AdminSigningKey: getenv("ADMIN_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		RateLimit:       int(getenvUint("RATE_LIMIT", 30)),
		RateLimitWindow: getenvDuration("RATE_LIMIT_WINDOW", time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     int(getenvUint("REDIS_POOL_SIZE", 10)),
			MinIdleConns: int(getenvUint("REDIS_MIN_IDLE_CONNS", 2)),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = stringutil.DedupeAndTrim(strings.Split(brokers, ","))
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
