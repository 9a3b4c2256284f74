// Package config loads application configuration from the environment.
package config

import (
	"os"
	"time"
)

// Config holds the application configuration. It is read once at startup
// and treated as immutable.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string of the remote store.
	// Empty selects the in-memory remote, which is only useful for
	// development.
	DatabaseURL string
	// ReplicaPath is the SQLite file holding the local replicas.
	ReplicaPath string
	// Addr is the HTTP listen address.
	Addr string
	// SyncInterval is how often the background syncer drains queues.
	SyncInterval time.Duration
	// SyncBackoffInitial and SyncBackoffMax bound the per-user retry
	// backoff after failed drains.
	SyncBackoffInitial time.Duration
	SyncBackoffMax     time.Duration
}

// Load reads the configuration from environment variables, applying
// defaults for everything that is unset.
func Load() *Config {
	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ReplicaPath:        getEnvString("REPLICA_PATH", "cycletrack.db"),
		Addr:               getEnvString("ADDR", ":8080"),
		SyncInterval:       getEnvDuration("SYNC_INTERVAL", time.Minute),
		SyncBackoffInitial: getEnvDuration("SYNC_BACKOFF_INITIAL", 30*time.Second),
		SyncBackoffMax:     getEnvDuration("SYNC_BACKOFF_MAX", 10*time.Minute),
	}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
