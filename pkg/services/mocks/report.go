package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fsreport/pkg/models"
)

type DocumentSource struct {
	mock.Mock
}

func (m *DocumentSource) ListInvoices(ctx context.Context) ([]models.InvoiceRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]models.InvoiceRecord)
	return records, args.Error(1)
}

func (m *DocumentSource) ListExpenses(ctx context.Context) ([]models.ExpenseRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]models.ExpenseRecord)
	return records, args.Error(1)
}

func (m *DocumentSource) ListExpensesFromCache(ctx context.Context, path string) ([]models.CachedExpenseRecord, error) {
	args := m.Called(ctx, path)
	records, _ := args.Get(0).([]models.CachedExpenseRecord)
	return records, args.Error(1)
}

type DocumentRenderer struct {
	mock.Mock
}

func (m *DocumentRenderer) Render(name string, data models.ReportContext) ([]byte, error) {
	args := m.Called(name, data)
	content, _ := args.Get(0).([]byte)
	return content, args.Error(1)
}

type PaymentCodeEncoder struct {
	mock.Mock
}

func (m *PaymentCodeEncoder) Encode(instruction models.PaymentInstruction) ([]byte, error) {
	args := m.Called(instruction)
	content, _ := args.Get(0).([]byte)
	return content, args.Error(1)
}

type SummaryWriter struct {
	mock.Mock
}

func (m *SummaryWriter) Write(data models.ReportContext) ([]byte, error) {
	args := m.Called(data)
	content, _ := args.Get(0).([]byte)
	return content, args.Error(1)
}

type LedgerExporter struct {
	mock.Mock
}

func (m *LedgerExporter) AppendTotals(ctx context.Context, period models.Period, totals models.Totals, filedAt time.Time) error {
	args := m.Called(ctx, period, totals, filedAt)
	return args.Error(0)
}
