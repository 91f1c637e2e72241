package report

import "fsreport/pkg/models"

// Aggregate sums the period's documents. Differences are signed; a positive
// TaxDiff is tax to pay.
func Aggregate(invoices models.Invoices, expenses models.Expenses) models.Totals {
	t := models.Totals{
		Total:            invoices.Total(),
		Subtotal:         invoices.Subtotal(),
		Tax:              invoices.Tax(),
		SupplierTotal:    expenses.Total(),
		SupplierSubtotal: expenses.Subtotal(),
		SupplierTax:      expenses.Tax(),
	}
	t.TotalDiff = t.Total - t.SupplierTotal
	t.TaxDiff = t.Tax - t.SupplierTax
	return t
}
