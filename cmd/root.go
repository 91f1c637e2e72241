package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fsreport/internal/config"
	"fsreport/internal/logger"
)

var version = "dev"

// Process exit codes.
const (
	ExitFiled         = 0
	ExitError         = 1
	ExitNothingToFile = 2
)

// errNothingToFile ends a run for a period without documents.
var errNothingToFile = errors.New("nothing to file for the period")

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fsreport",
	Short: "Czech VAT return and control statement generator",
	Long: `fsreport pulls issued invoices and received expenses for one month from
Fakturoid, checks every counterparty against the configured VAT allow-lists
and writes the VAT return (DPHDP3) and the VAT control statement (DPHKH1)
ready for upload to the tax portal, together with a QR Platba payment code.

Configuration is read from a JSON file (--config). Any key can be
overridden from the environment with the FSREPORT_ prefix, e.g.
FSREPORT_FAKTUROID_CLIENT_SECRET. A .env file in the working directory is
loaded first.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	log := logger.WithComponent("cmd")

	err := rootCmd.Execute()
	switch {
	case err == nil:
		return ExitFiled
	case errors.Is(err, errNothingToFile):
		return ExitNothingToFile
	default:
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.json", "Configuration file")
	rootCmd.PersistentFlags().StringP("period", "p", "", "Filing period as YYYY-MM (default: period from config)")
}

// loadConfig reads the configuration, applies the --period override and
// reconfigures logging before any command runs.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == versionCmd.Name() {
		return nil
	}

	period, _ := cmd.Flags().GetString("period")
	c, err := config.Load(cfgFile, period)
	if err != nil {
		return err
	}

	if err := logger.Setup(c.GetLoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg = c
	return nil
}
