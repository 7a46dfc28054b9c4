package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loadline/dispatch/internal/core/config"
	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
	"github.com/loadline/dispatch/internal/infra/storage/postgres"
)

var statusOrgID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show all active loads for an organization",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusOrgID, "org", "", "organization id (required)")
	_ = statusCmd.MarkFlagRequired("org")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	loads, err := postgres.NewLoadRepo(db).List(ctx, storage.LoadFilter{
		OrganizationID: statusOrgID,
		StatusIn:       domain.InProgressStatuses,
	})
	if err != nil {
		slog.Error("Failed to list loads", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "REFERENCE\tSTATUS\tDRIVER\tVEHICLE\tUPDATED")

	for _, l := range loads {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			l.Reference, l.Status, l.DriverID, l.VehicleID,
			l.UpdatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}
