package main

import (
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"fileapi/internal/config"
	"fileapi/internal/logging"
)

var (
	cfg    *config.AppConfig
	logger *slog.Logger
)

// @title File API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var rootCmd = &cobra.Command{
	Use:   "fileapi",
	Short: "Authenticated file storage over an S3-compatible object store",
	Long: `fileapi serves an HTTP API where users register, log in and upload files.
Objects live in an S3-compatible store under a per-user prefix; metadata lives in PostgreSQL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration from environment variables (.env auto-loaded if present)
		cfg = config.Load()
		logger = logging.New(cfg)
		return nil
	},
	RunE: runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
