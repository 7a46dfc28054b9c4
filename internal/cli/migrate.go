package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/lib/pq" // pq driver for goose CLI runs
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/loadline/dispatch/internal/core/config"
)

var migrateDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status]",
	Short: "Run database migrations",
	Args:  cobra.ExactArgs(1),
	Run:   runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "migrations", "migrations directory")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("No database URL configured")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		slog.Error("Failed to set dialect", "error", err)
		os.Exit(1)
	}

	switch args[0] {
	case "up":
		err = goose.Up(db, migrateDir)
	case "down":
		err = goose.Down(db, migrateDir)
	case "status":
		err = goose.Status(db, migrateDir)
	default:
		err = fmt.Errorf("unknown migrate command: %s", args[0])
	}
	if err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}
