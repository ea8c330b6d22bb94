package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Kedareswar13/Privacy-Protector/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or list database migrations.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, logger := loadRuntime()
			defer logger.Sync() //nolint:errcheck // best-effort flush

			ctx := cmd.Context()
			st, err := store.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			switch action {
			case "up":
				if err := st.Migrate(ctx); err != nil {
					return err
				}
				logger.Info("migrations applied", zap.String("dialect", string(st.Dialect())))
			case "down":
				if err := st.MigrateDown(ctx); err != nil {
					return err
				}
				logger.Info("rolled back one migration", zap.String("dialect", string(st.Dialect())))
			case "status":
				statuses, err := st.MigrationStatuses(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tAPPLIED\tSOURCE")
				for _, s := range statuses {
					fmt.Fprintf(tw, "%d\t%t\t%s\n", s.Version, s.Applied, s.Source)
				}
				return tw.Flush()
			}
			return nil
		},
	}
}
