package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort        string
	LogLevel        string
	JWTSecret       string
	ResetTokenTTL   time.Duration
	BcryptCost      int
	CORSOrigins     string
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = Load()
	})
	return cfg
}

// Load reads a fresh Config from the environment.
func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ResetTokenTTL:   getDurationEnv("RESET_TOKEN_TTL", 15*time.Minute),
		BcryptCost:      getCostEnv("BCRYPT_COST", bcrypt.DefaultCost),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		KafkaBrokers:    getSliceEnv("KAFKA_BROKERS"),
		KafkaTopic:      getEnv("KAFKA_ACTIVITY_TOPIC", "todo-activity"),
		KafkaPartitions: getIntEnv("KAFKA_PARTITIONS", 4),
	}
}

// KafkaEnabled reports whether activity events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

// getCostEnv falls back to the default when the value is outside bcrypt's range.
func getCostEnv(key string, defaultVal int) int {
	n := getIntEnv(key, defaultVal)
	if n < bcrypt.MinCost || n > bcrypt.MaxCost {
		return defaultVal
	}
	return n
}

func getSliceEnv(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
