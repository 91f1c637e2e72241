package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fsreport/internal/logger"
	"fsreport/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the VAT return and control statement for a period",
	Long: `Fetch all invoices and expenses from Fakturoid, keep those whose taxable
fulfillment date falls into the period and write the filing documents to
<output>/<year>_<month>/.

The run stops at the first counterparty missing from the VAT allow-lists and
writes nothing in that case. A period without documents writes nothing and
exits with status 2.`,
	Example: `  # Report the period from config.json
  fsreport report

  # Report June 2023 without the payment code
  fsreport report --period 2023-06 --no-qr

  # Merge expenses from <output>/<year>_<month>/expenses.json
  fsreport report --expense-cache`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("no-qr", false, "Do not generate the payment QR code")
	reportCmd.Flags().Bool("expense-cache", false, "Merge expenses from the local cache file")
	reportCmd.Flags().Duration("timeout", 2*time.Minute, "Overall run timeout")
}

func runReport(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("report")

	noQR, _ := cmd.Flags().GetBool("no-qr")
	expenseCache, _ := cmd.Flags().GetBool("expense-cache")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	paymentCode := cfg.Payment.Enabled && !noQR
	useCache := cfg.UseExpenseCache || expenseCache

	ctx, cancel := createRunContext(cmd.Context(), timeout, log)
	defer cancel()

	builder, err := newPipeline(ctx, cfg, paymentCode, true)
	if err != nil {
		return err
	}

	result, err := builder.Build(ctx, newRequest(cfg, useCache, paymentCode))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.NothingToFile {
		fmt.Fprintf(out, "No invoices nor expenses for %s, nothing to file.\n", cfg.Period)
		return errNothingToFile
	}

	t := result.Totals
	fmt.Fprintf(out, "Report for %s\n", cfg.Period)
	fmt.Fprintf(out, "  Invoices: %d (%d + %d)\n", t.Total, t.Subtotal, t.Tax)
	fmt.Fprintf(out, "  Expenses: %d (%d + %d)\n", t.SupplierTotal, t.SupplierSubtotal, t.SupplierTax)
	fmt.Fprintf(out, "  Diff: %d\n", t.TotalDiff)
	fmt.Fprintf(out, "  Tax diff: %d\n", t.TaxDiff)
	for _, f := range result.Files {
		fmt.Fprintf(out, "  Wrote %s\n", f)
	}
	fmt.Fprintf(out, "Deadline %s. Upload via %s\n",
		cfg.Period.FilingDeadline().Format(report.SigningDateLayout), report.SubmissionURL)

	return nil
}
