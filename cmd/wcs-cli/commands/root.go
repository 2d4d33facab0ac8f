package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"wcs-backend/lib/restyutil"
	"wcs-backend/lib/scrapers/lbbd"
	"wcs-backend/lib/scrapers/woollahra"
	"wcs-backend/lib/serviceutil"
	"wcs-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

var debug *bool
var restyDumpDir *string
var tel telemetry.Telemetry

// replaced in tests
var setupTelemetry = telemetry.SetupFromEnv

var rootCmd = &cobra.Command{
	Use:           "wcs-cli",
	Short:         "wcs-cli fetches waste collection schedules from council websites.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*debug)

		var err error
		tel, err = setupTelemetry(cmd.Context(), "wcs-cli")
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no telemetry.json5 found, telemetry is disabled")
		} else if err != nil {
			return err
		}

		if *debug {
			out, err := restyutil.NewFilesystemOutput(*restyDumpDir)
			if err != nil {
				return err
			}
			lbbd.SetRestyInstrumentOutput(out)
			woollahra.SetRestyInstrumentOutput(out)
		}
		return nil
	},
}

func init() {
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logs and dump every http exchange.")
	restyDumpDir = rootCmd.PersistentFlags().String("dump-dir", ".dev/resty", "Where http exchanges are written with --debug.")
}

// execute runs the command and flushes telemetry whether or not it failed,
// failed runs carry the spans worth looking at.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)

	shutdownErr := tel.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}
	tel = telemetry.Telemetry{}
	return err
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx); err != nil {
		serviceutil.Fatal("command failed", err)
	}
}
