// Package migrations applies the embedded schema for the active backend.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
)

//go:embed postgres/*.up.sql sqlite/*.up.sql
var files embed.FS

// Run executes every up migration for conn's driver in filename order.
// Statements are written to be idempotent, so Run is safe on every start.
func Run(ctx context.Context, conn database.Connection) error {
	dir := "postgres"
	if conn.Driver() == database.DriverSQLite {
		dir = "sqlite"
	}

	names, err := upFiles(dir)
	if err != nil {
		return err
	}

	for _, name := range names {
		body, err := files.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := conn.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func upFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
