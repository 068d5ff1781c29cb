package cli

import (
	"os"

	"github.com/ligoview/ligoview/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var (
	dbPath     string
	backendURL string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "ligoview",
	Short: "ligoview - dashboard for pipeline metrics",
	Long: `ligoview browses the metrics a sequencing pipeline stores behind its
REST API: report tables, metric charts and side-by-side comparisons of
two runs. Every view has a shareable URL.

Running without a subcommand starts the server (same as 'ligoview serve').`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zapcore.InfoLevel
		if debug {
			level = zapcore.DebugLevel
		}
		logging.InitLogger(level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runServe, // Default action is to start server
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", getEnvOrDefault("LV_DB_PATH", "./ligoview.db"), "database path")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", getEnvOrDefault("LV_BACKEND_URL", "http://localhost:3000"), "metrics API base URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
