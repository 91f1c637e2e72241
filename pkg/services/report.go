package services

import (
	"context"
	"time"

	"fsreport/pkg/models"
)

// DocumentSource lists raw accounting documents for the configured account.
// Implementations return every record they know about; period filtering is
// done by the caller.
type DocumentSource interface {
	// ListInvoices returns all issued invoices.
	ListInvoices(ctx context.Context) ([]models.InvoiceRecord, error)

	// ListExpenses returns all received expense documents.
	ListExpenses(ctx context.Context) ([]models.ExpenseRecord, error)

	// ListExpensesFromCache reads expense records from a local cache file.
	ListExpensesFromCache(ctx context.Context, path string) ([]models.CachedExpenseRecord, error)
}

// DocumentRenderer renders a named filing template with the report context.
type DocumentRenderer interface {
	Render(name string, data models.ReportContext) ([]byte, error)
}

// PaymentCodeEncoder encodes a payment instruction into a scannable image.
type PaymentCodeEncoder interface {
	Encode(instruction models.PaymentInstruction) ([]byte, error)
}

// SummaryWriter builds a review workbook for a finished report.
type SummaryWriter interface {
	Write(data models.ReportContext) ([]byte, error)
}

// LedgerExporter records the period totals in an external ledger.
type LedgerExporter interface {
	AppendTotals(ctx context.Context, period models.Period, totals models.Totals, filedAt time.Time) error
}
