// Command reconcile runs the Glop to Holded stock pipeline from a terminal.
package main

import (
	"context"
	"os"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/app"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/config"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Apply Glop POS sales exports to Holded stock",
	Long: `reconcile reads a Glop sales export and adjusts Holded stock per warehouse.

Examples:
  reconcile update --uri gs://bucket/ventas.csv            # simulate a run
  reconcile update --file ventas.csv --dry-run=false       # apply a local file
  reconcile validate --file ventas.csv                     # compare totals with Holded
  reconcile stock --xlsx stock.xlsx                        # export stock by warehouse`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if v, _ := cmd.Flags().GetCount("verbose"); v > 0 {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Show pipeline logs")
	rootCmd.AddCommand(updateCmd, validateCmd, stockCmd)
}

// cargarApp builds the same dependency graph the server uses.
func cargarApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
