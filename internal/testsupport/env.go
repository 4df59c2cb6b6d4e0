package testsupport

import (
	"fmt"
	"os"
	"testing"

	"studiodesk/internal/adapters/config"
)

// MongoConfigFromEnv returns the Mongo section for integration tests.
// The test is skipped unless TEST_MONGODB_URL is set.
func MongoConfigFromEnv(t *testing.T) config.MongoConfig {
	t.Helper()
	requireEnv(t, "TEST_MONGODB_URL")

	return config.MongoConfig{
		URL:            os.Getenv("TEST_MONGODB_URL"),
		Database:       valueWithDefault("TEST_MONGODB_DATABASE", "studiodesk_test"),
		MemoryDatabase: valueWithDefault("TEST_MONGODB_MEMORY_DATABASE", "studiodesk_memory_test"),
		Timeout:        defaultTimeout,
		MaxPoolSize:    10,
	}
}

// PostgresConfigFromEnv returns the Postgres section for integration tests
func PostgresConfigFromEnv(t *testing.T) config.PostgresConfig {
	t.Helper()
	requireEnv(t, "POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB")

	return config.PostgresConfig{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     intValue("POSTGRES_PORT", 5432),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Database: os.Getenv("POSTGRES_DB"),
		SSLMode:  valueWithDefault("POSTGRES_SSL_MODE", "disable"),
		MaxConns: 5,
	}
}

// RedisConfigFromEnv returns the Redis section for integration tests
func RedisConfigFromEnv(t *testing.T) config.RedisConfig {
	t.Helper()
	requireEnv(t, "REDIS_HOST")

	return config.RedisConfig{
		Enabled:  true,
		Host:     os.Getenv("REDIS_HOST"),
		Port:     intValue("REDIS_PORT", 6379),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intValue("REDIS_DB", 15),
	}
}

// requireEnv skips the test when any key is unset
func requireEnv(t *testing.T, keys ...string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	missing := make([]string, 0)
	for _, key := range keys {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		t.Skipf("integration environment missing, set %v to run", missing)
	}
}

func valueWithDefault(key string, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func intValue(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		_, err := fmt.Sscanf(val, "%d", &parsed)
		if err == nil {
			return parsed
		}
	}

	return fallback
}
