// @title        ridefare API
// @version      1.0
// @description  Ride price comparison and price-drop alerts.
// @BasePath     /
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "github.com/airiscab/ridefare/docs"
	"github.com/airiscab/ridefare/internal/infrastructure/config"
	"github.com/airiscab/ridefare/pkg/logger"
)

const serviceName = "ridefare"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Compare ride prices and alert riders when a route gets cheaper",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; the environment wins over the file.
			_ = godotenv.Load(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")

	serve := newServeCmd()
	root.AddCommand(serve, newMigrateCmd(), newQuoteCmd())
	// Running the binary without a subcommand serves the API.
	root.RunE = serve.RunE

	return root
}

// loadConfig reads the configuration and initialises the shared logger.
func loadConfig(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
	})
	return cfg, log, nil
}
