package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Graph store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	ServiceName string
	// GraphStore selects the graph backend: postgres, sqlite or memory.
	GraphStore       string
	GraphDatabaseURL string
	SQLitePath       string
	// EnforceUniqueIndexes installs the storage-level unique indexes on
	// RouteTarget.rt, VRF.rd and VRF(namespace, name).
	EnforceUniqueIndexes bool
	HTTPListenAddr       string
	LogLevel             string

	HTTPTLSCert     string
	HTTPTLSKey      string
	HTTPTLSClientCA string
}

func Load() (*Config, error) {
	enforce, err := strconv.ParseBool(getEnv("ENFORCE_UNIQUE_INDEXES", "true"))
	if err != nil {
		return nil, fmt.Errorf("parse ENFORCE_UNIQUE_INDEXES: %w", err)
	}

	cfg := &Config{
		ServiceName:          getEnv("SERVICE_NAME", "route-api"),
		GraphStore:           getEnv("GRAPH_STORE", StorePostgres),
		GraphDatabaseURL:     getEnv("GRAPH_DATABASE_URL", ""),
		SQLitePath:           getEnv("SQLITE_PATH", "data/routemanager.db"),
		EnforceUniqueIndexes: enforce,
		HTTPListenAddr:       getEnv("HTTP_LISTEN_ADDR", ":8000"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		HTTPTLSCert:          getEnv("HTTP_TLS_CERT", ""),
		HTTPTLSKey:           getEnv("HTTP_TLS_KEY", ""),
		HTTPTLSClientCA:      getEnv("HTTP_TLS_CLIENT_CA", ""),
	}

	return cfg, nil
}

// Validate checks that the settings needed by the given binary are present.
func (c *Config) Validate(role string) error {
	var missing []string

	switch role {
	case "route-api":
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
		switch c.GraphStore {
		case StorePostgres:
			if c.GraphDatabaseURL == "" {
				missing = append(missing, "GRAPH_DATABASE_URL")
			}
		case StoreSQLite:
			if c.SQLitePath == "" {
				missing = append(missing, "SQLITE_PATH")
			}
		case StoreMemory:
		default:
			return fmt.Errorf("unknown GRAPH_STORE %q (want %s, %s or %s)", c.GraphStore, StorePostgres, StoreSQLite, StoreMemory)
		}
	case "migrate":
		if c.GraphDatabaseURL == "" {
			missing = append(missing, "GRAPH_DATABASE_URL")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if (c.HTTPTLSCert == "") != (c.HTTPTLSKey == "") {
		return fmt.Errorf("HTTP_TLS_CERT and HTTP_TLS_KEY must both be set")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
