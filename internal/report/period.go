package report

import (
	"strconv"
	"time"

	"fsreport/pkg/models"
)

// parseDate parses a calendar date in strict YYYY-MM-DD form.
func parseDate(kind, id, field, value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, NewMalformedRecordError(kind, id, field, value, err)
	}
	return t, nil
}

// FilterInvoices keeps the invoices whose taxable fulfillment date falls into the period.
func FilterInvoices(records []models.InvoiceRecord, period models.Period) ([]models.InvoiceRecord, error) {
	out := make([]models.InvoiceRecord, 0, len(records))
	for _, r := range records {
		d, err := parseDate("invoice", strconv.FormatInt(r.ID, 10), "taxable_fulfillment_due", r.TaxableFulfillmentDue)
		if err != nil {
			return nil, err
		}
		if period.Contains(d) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FilterExpenses keeps the expenses whose taxable fulfillment date falls into the period.
func FilterExpenses(records []models.ExpenseRecord, period models.Period) ([]models.ExpenseRecord, error) {
	out := make([]models.ExpenseRecord, 0, len(records))
	for _, r := range records {
		d, err := parseDate("expense", strconv.FormatInt(r.ID, 10), "taxable_fulfillment_due", r.TaxableFulfillmentDue)
		if err != nil {
			return nil, err
		}
		if period.Contains(d) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FilterCachedExpenses keeps the cached expenses whose taxable fulfillment date falls into the period.
func FilterCachedExpenses(records []models.CachedExpenseRecord, period models.Period) ([]models.CachedExpenseRecord, error) {
	out := make([]models.CachedExpenseRecord, 0, len(records))
	for _, r := range records {
		d, err := parseDate("expense", cachedID(r), "taxable_fulfillment_due", r.TaxableFulfillmentDue)
		if err != nil {
			return nil, err
		}
		if period.Contains(d) {
			out = append(out, r)
		}
	}
	return out, nil
}
