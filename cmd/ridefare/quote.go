package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/airiscab/ridefare/internal/app"
	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/core/pricing"
	"github.com/airiscab/ridefare/internal/core/service"
)

func newQuoteCmd() *cobra.Command {
	var (
		pickup     string
		dropoff    string
		passengers int
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print fare estimates for a route without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			distance, err := app.NewDistanceProvider(cfg, log)
			if err != nil {
				return err
			}
			estimates, err := service.NewComparisonService(distance, log).Compare(ctx, ports.CompareInput{
				Pickup:         pickup,
				Dropoff:        dropoff,
				PassengerCount: passengers,
			})
			if err != nil {
				return err
			}
			return printEstimates(cmd.OutOrStdout(), estimates)
		},
	}

	cmd.Flags().StringVar(&pickup, "from", "", "pickup address")
	cmd.Flags().StringVar(&dropoff, "to", "", "dropoff address")
	cmd.Flags().IntVarP(&passengers, "passengers", "p", 1, "number of passengers")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func printEstimates(out io.Writer, estimates []domain.RideEstimate) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tPRICE\tMINUTES\tMILES\tCAPACITY\t")
	for _, e := range estimates {
		mark := ""
		if e.Recommended {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%d\t%.1f\t%s\t\n",
			e.Service, mark, pricing.FormatUSD(e.Price), e.DurationSeconds/60, e.DistanceMiles, e.Service.CapacityLabel())
	}
	return tw.Flush()
}
