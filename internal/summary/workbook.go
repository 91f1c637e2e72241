package summary

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"fsreport/internal/logger"
	"fsreport/pkg/models"
)

// Sheet names of the review workbook.
const (
	SheetInvoices = "Invoices"
	SheetExpenses = "Expenses"
	SheetTotals   = "Totals"
)

var (
	invoiceHeader = []interface{}{"ID", "Number", "Fulfillment date", "Client VAT number", "Subtotal", "Tax", "Total", "URL"}
	expenseHeader = []interface{}{"ID", "Original number", "Fulfillment date", "Supplier VAT number", "Subtotal", "Tax", "Total", "URL"}
)

// Writer builds the review workbook for a report.
type Writer struct {
	log zerolog.Logger
}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{log: logger.WithComponent("summary")}
}

// Write returns an XLSX workbook listing the period's documents and totals.
func (w *Writer) Write(data models.ReportContext) ([]byte, error) {
	const op = "Write"

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			w.log.Warn().Err(err).Msg("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetInvoices); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, name := range []string{SheetExpenses, SheetTotals} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("%s: failed to add sheet %s: %w", op, name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	invoiceRows := make([][]interface{}, 0, len(data.Invoices))
	for _, inv := range data.Invoices {
		invoiceRows = append(invoiceRows, []interface{}{
			inv.ID, inv.Number, inv.TaxableFulfillmentDue.Format(models.DateLayout), inv.ClientVatNumber,
			inv.Subtotal, inv.Tax, inv.Total, inv.HTMLURL,
		})
	}
	if err := writeTable(f, SheetInvoices, invoiceHeader, invoiceRows, bold); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expenseRows := make([][]interface{}, 0, len(data.Expenses))
	for _, exp := range data.Expenses {
		expenseRows = append(expenseRows, []interface{}{
			exp.ID, exp.OriginalNumber, exp.TaxableFulfillmentDue.Format(models.DateLayout), exp.SupplierVatNumber,
			exp.Subtotal, exp.Tax, exp.Total, exp.HTMLURL,
		})
	}
	if err := writeTable(f, SheetExpenses, expenseHeader, expenseRows, bold); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t := data.Totals
	totalRows := [][]interface{}{
		{"Period", data.Period.String()},
		{"Signed on", data.SigningDate},
		{"Invoices subtotal", t.Subtotal},
		{"Invoices tax", t.Tax},
		{"Invoices total", t.Total},
		{"Expenses subtotal", t.SupplierSubtotal},
		{"Expenses tax", t.SupplierTax},
		{"Expenses total", t.SupplierTotal},
		{"Total difference", t.TotalDiff},
		{"Tax difference", t.TaxDiff},
	}
	if err := writeTable(f, SheetTotals, []interface{}{"Item", "Value"}, totalRows, bold); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to serialize workbook: %w", op, err)
	}

	w.log.Debug().
		Int("invoices", len(data.Invoices)).
		Int("expenses", len(data.Expenses)).
		Msg("Built review workbook")

	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	return nil
}
