package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ligoview/ligoview/internal/backend"
	"github.com/ligoview/ligoview/internal/logging"
	"github.com/ligoview/ligoview/internal/store"
)

const (
	defaultMaxInFlight = 8
	defaultTimeout     = 30 * time.Second

	serverURLSetting = "server_url"
)

// withStore opens the database, executes the function, and handles cleanup.
func withStore(fn func(*store.SQLiteStore) error) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { logging.CheckError(s.Close()) }()

	return fn(s)
}

// newClient returns a metrics API client for the --backend flag.
func newClient(maxInFlight int, timeout time.Duration) *backend.Client {
	return backend.NewClient(backendURL, maxInFlight, timeout)
}

// getTokenFilePath returns the path to the token file
func getTokenFilePath() string {
	// Store token file alongside the database
	dir := filepath.Dir(dbPath)
	return filepath.Join(dir, ".ligoview-token")
}

// dashboardHost returns the address the last 'ligoview serve' recorded.
func dashboardHost() string {
	host := "http://localhost:8080"
	_ = withStore(func(s *store.SQLiteStore) error {
		if url, err := s.GetSetting(context.Background(), serverURLSetting); err == nil && url != "" {
			host = url
		}
		return nil
	})
	return host
}
