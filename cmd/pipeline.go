package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fsreport/internal/config"
	"fsreport/internal/fakturoid"
	"fsreport/internal/output"
	"fsreport/internal/qrpayment"
	"fsreport/internal/render"
	"fsreport/internal/report"
	"fsreport/internal/sheets"
	"fsreport/internal/summary"
)

// createRunContext returns a context canceled on timeout or interrupt
func createRunContext(parent context.Context, timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling run")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// newPipeline wires the report builder from configuration. Without exports
// the review workbook and ledger export stay disabled.
func newPipeline(ctx context.Context, c *config.Config, paymentCode, exports bool) (*report.Builder, error) {
	source := fakturoid.NewClient(fakturoid.Config{
		Slug:         c.Fakturoid.Slug,
		ClientID:     c.Fakturoid.ClientID,
		ClientSecret: c.Fakturoid.ClientSecret,
		Email:        c.Fakturoid.Email,
	})

	renderer, err := render.New(c.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	opts := []report.Option{}
	if paymentCode {
		opts = append(opts, report.WithPaymentCodeEncoder(qrpayment.NewEncoder()))
	}
	if exports && c.Summary {
		opts = append(opts, report.WithSummaryWriter(summary.NewWriter()))
	}
	if exports && c.Sheets.URL != "" {
		ledger, err := sheets.NewSheetsService(ctx, c.Sheets.URL, c.Sheets.Worksheet)
		if err != nil {
			return nil, fmt.Errorf("failed to create ledger export: %w", err)
		}
		opts = append(opts, report.WithLedgerExporter(ledger))
	}

	return report.NewBuilder(source, renderer, output.NewStore(c.Output), opts...), nil
}

// newRequest builds the report request from configuration
func newRequest(c *config.Config, useExpenseCache, paymentCode bool) report.Request {
	return report.Request{
		Period:          c.Period,
		User:            c.User,
		Account:         c.Account,
		Clients:         c.ClientAllowList(),
		Suppliers:       c.SupplierAllowList(),
		UseExpenseCache: useExpenseCache,
		PaymentCode:     paymentCode,
		PaymentMessage:  c.Payment.Message,
	}
}
