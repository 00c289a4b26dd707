// Package config provides runtime configuration for the store server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the knobs for the TCP store server, the admin HTTP
// surface, persistence, and the payment simulator.
type Config struct {
	ListenAddr      string
	AdminAddr       string
	ProductsPath    string
	PersistDSN      string
	ShutdownTimeout time.Duration

	PaymentWorkers     int
	PaymentQueueDepth  int
	PaymentMinDelay    time.Duration
	PaymentMaxDelay    time.Duration
	PaymentSuccessRate float64

	ConnLimit       int
	ConnLimitWindow int

	MetricsToken  string
	AdminUser     string
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults. The
// payment defaults mirror the simulated gateway: a 2-4 s delay and a
// 90% success rate.
func Load() Config {
	return Config{
		ListenAddr:      getenv("LISTEN_ADDR", ":5000"),
		AdminAddr:       getenv("ADMIN_ADDR", ":8080"),
		ProductsPath:    getenv("PRODUCTS_PATH", "data/products.txt"),
		PersistDSN:      getenv("PERSIST_DSN", ""),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 10),

		PaymentWorkers:     atoienv("PAYMENT_WORKERS", 4),
		PaymentQueueDepth:  atoienv("PAYMENT_QUEUE_DEPTH", 64),
		PaymentMinDelay:    durenvms("PAYMENT_MIN_DELAY_MS", 2000),
		PaymentMaxDelay:    durenvms("PAYMENT_MAX_DELAY_MS", 4000),
		PaymentSuccessRate: floatenv("PAYMENT_SUCCESS_RATE", 0.90),

		ConnLimit:       atoienv("CONN_LIMIT", 30),
		ConnLimitWindow: atoienv("CONN_LIMIT_WINDOW_SECONDS", 10),

		MetricsToken:  getenv("METRICS_TOKEN", ""),
		AdminUser:     getenv("ADMIN_USER", "admin"),
		AdminPassword: getenv("ADMIN_PASSWORD", ""),
		JWTSecret:     getenv("JWT_SECRET", ""),
		TokenTTL:      durenvs("TOKEN_TTL_SECONDS", 3600),
	}
}
