package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver Driver
	// URL is the Postgres connection string.
	URL string
	// SQLitePath defaults to DefaultSQLitePath().
	SQLitePath string
	// MaxConns caps the Postgres pool size.
	MaxConns int
}

type connector func(ctx context.Context, cfg Config) (Connection, error)

var connectors = map[Driver]connector{}

// RegisterDriver makes a backend available to NewConnection. Driver
// packages call it from init so callers only pay for what they import.
func RegisterDriver(d Driver, fn func(ctx context.Context, cfg Config) (Connection, error)) {
	connectors[d] = fn
}

// NewConnection opens a connection for the configured backend.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" && cfg.URL != "" {
		cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
	}

	open, ok := connectors[driver]
	if !ok {
		return nil, fmt.Errorf("database driver %q is not registered", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath is where the CLI keeps its local ledger.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".clinicq", "clinicq.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
