package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"fsreport/internal/logger"
	"fsreport/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "List every unknown counterparty of a period",
	Long: `Fetch and normalize the period's documents like the report command, then
check all of them against the VAT allow-lists and print every violation
instead of stopping at the first one. Nothing is written.`,
	Example: `  fsreport validate --period 2023-06`,
	Args:    cobra.NoArgs,
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("expense-cache", false, "Merge expenses from the local cache file")
	validateCmd.Flags().Duration("timeout", 2*time.Minute, "Overall run timeout")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("validate")

	expenseCache, _ := cmd.Flags().GetBool("expense-cache")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := createRunContext(cmd.Context(), timeout, log)
	defer cancel()

	builder, err := newPipeline(ctx, cfg, false, false)
	if err != nil {
		return err
	}

	req := newRequest(cfg, cfg.UseExpenseCache || expenseCache, false)
	invoices, expenses, err := builder.Load(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	err = report.CollectViolations(invoices, expenses, req.Clients, req.Suppliers)
	if err == nil {
		fmt.Fprintf(out, "%s: %d invoices and %d expenses, all counterparties known\n",
			cfg.Period, len(invoices), len(expenses))
		return nil
	}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, v := range merr.Errors {
			fmt.Fprintf(out, "  %v\n", v)
		}
		log.Warn().Int("violations", merr.Len()).Msg("Unknown counterparties found")
		return fmt.Errorf("%d unknown counterparties in %s", merr.Len(), cfg.Period)
	}
	return err
}
