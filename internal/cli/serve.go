package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ligoview/ligoview/internal/logging"
	"github.com/ligoview/ligoview/internal/server"
	"github.com/ligoview/ligoview/internal/store"
	"github.com/spf13/cobra"
)

var (
	port        int
	maxInFlight int
	timeout     time.Duration
	quiet       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the ligoview HTTP server.

The server provides:
  - Dashboard with table, chart and compare views
  - Saved views under /v/<name>
  - Health check endpoint

Example:
  ligoview serve --port 8080 --backend http://metrics.internal:3000`,
	RunE: runServe,
}

func init() {
	defaultPort := 8080
	if p := os.Getenv("LV_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			defaultPort = parsed
		}
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port to listen on")
	serveCmd.Flags().IntVar(&maxInFlight, "max-inflight", defaultMaxInFlight, "maximum concurrent requests to the metrics API")
	serveCmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "metrics API request timeout")
	serveCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the startup banner (use 'ligoview otp' for the token)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if maxInFlight < 1 {
		return fmt.Errorf("--max-inflight must be at least 1")
	}

	// Open database
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	// Remember where the dashboard lives for 'ligoview otp'
	serverURL := fmt.Sprintf("http://localhost:%d", port)
	if err := s.SetSetting(context.Background(), serverURLSetting, serverURL); err != nil {
		logging.Logger.Warnw("failed to record server url", "error", err)
	}

	// Create and start server
	srv := server.New(s, newClient(maxInFlight, timeout), port, getTokenFilePath())
	defer srv.Close()
	if quiet {
		return srv.StartQuiet()
	}
	return srv.Start()
}
