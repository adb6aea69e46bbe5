package main

import (
	"github.com/spf13/cobra"

	"github.com/airiscab/ridefare/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			a, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := a.Migrate(ctx); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.Store.Driver).Msg("schema up to date")
			return nil
		},
	}
}
