package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fsreport/internal/output"
	"fsreport/internal/render"
	"fsreport/pkg/models"
	"fsreport/pkg/services/mocks"
)

var june = models.Period{Year: 2023, Month: 6}

type builderFixture struct {
	fs      afero.Fs
	store   *output.Store
	source  *mocks.DocumentSource
	encoder *mocks.PaymentCodeEncoder
	clock   time.Time
}

func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	return &builderFixture{
		fs:      fs,
		store:   output.NewStoreWithFs(fs, "/out"),
		source:  new(mocks.DocumentSource),
		encoder: new(mocks.PaymentCodeEncoder),
		clock:   time.Date(2023, 7, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (f *builderFixture) builder(t *testing.T, opts ...Option) *Builder {
	t.Helper()
	renderer, err := render.New("")
	require.NoError(t, err)

	opts = append([]Option{
		WithClock(func() time.Time { return f.clock }),
		WithPaymentCodeEncoder(f.encoder),
	}, opts...)
	return NewBuilder(f.source, renderer, f.store, opts...)
}

func (f *builderFixture) withDocuments(invoices []models.InvoiceRecord, expenses []models.ExpenseRecord) {
	f.source.On("ListInvoices", mock.Anything).Return(invoices, nil)
	f.source.On("ListExpenses", mock.Anything).Return(expenses, nil)
}

func testRequest() Request {
	return Request{
		Period: june,
		User: models.User{
			FirstName: "Jan",
			LastName:  "Novák",
			Email:     "jan@example.com",
			Address: models.Address{
				City:         "Praha",
				StreetName:   "Dlouhá",
				StreetNumber: 12,
				ZipCode:      11000,
				Country:      "Česká republika",
			},
		},
		Account: models.Account{
			VatNumber:    8001011234,
			UfoCode:      451,
			PracUfo:      2001,
			FsTaxAccount: "705-77628031/0710",
		},
		Clients:        clients,
		Suppliers:      suppliers,
		PaymentCode:    true,
		PaymentMessage: "DPH",
	}
}

func TestBuilder_Build_Scenario(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments(
		[]models.InvoiceRecord{
			invoiceRecord(1, "2023-06-15", "100.4", "121.0"),
			invoiceRecord(2, "2023-07-01", "5000", "6050"),
		},
		nil,
	)
	f.encoder.On("Encode", mock.Anything).Return([]byte("<svg/>"), nil)

	result, err := f.builder(t).Build(context.Background(), testRequest())
	require.NoError(t, err)

	assert.False(t, result.NothingToFile)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, models.Totals{
		Total: 121, Subtotal: 101, Tax: 20,
		TotalDiff: 121, TaxDiff: 20,
	}, result.Totals)

	assert.Equal(t, []string{
		"/out/2023_6/dphdp3_2023_6m.xml",
		"/out/2023_6/dphkh1_2023_6m.xml",
		"/out/2023_6/qr_code_2023_6.svg",
	}, result.Files)

	for _, path := range result.Files {
		ok, err := afero.Exists(f.fs, path)
		require.NoError(t, err)
		assert.True(t, ok, path)
	}

	vatReturn, err := afero.ReadFile(f.fs, "/out/2023_6/dphdp3_2023_6m.xml")
	require.NoError(t, err)
	assert.Contains(t, string(vatReturn), `d_poddp="10.07.2023"`)
	assert.Contains(t, string(vatReturn), `obrat23="101" dan23="20"`)
	assert.Contains(t, string(vatReturn), `dano_da="20"`)

	f.encoder.AssertCalled(t, "Encode", models.PaymentInstruction{
		Account:        "705-77628031/0710",
		Amount:         20,
		VariableSymbol: "8001011234",
		Message:        "DPH",
		DueDate:        time.Date(2023, 7, 25, 0, 0, 0, 0, time.UTC),
	})
	f.source.AssertNotCalled(t, "ListExpensesFromCache", mock.Anything, mock.Anything)
}

func TestBuilder_Build_ValidationFailureWritesNothing(t *testing.T) {
	f := newBuilderFixture(t)
	rec := invoiceRecord(1, "2023-06-15", "100", "121")
	rec.ClientVatNo = "CZ99999999"
	f.withDocuments([]models.InvoiceRecord{rec}, nil)

	result, err := f.builder(t).Build(context.Background(), testRequest())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrUnknownCounterparty))

	exists, err := afero.DirExists(f.fs, "/out/2023_6")
	require.NoError(t, err)
	assert.False(t, exists)
	f.encoder.AssertNotCalled(t, "Encode", mock.Anything)
}

func TestBuilder_Build_EmptyPeriod(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments(
		[]models.InvoiceRecord{invoiceRecord(1, "2023-05-15", "100", "121")},
		[]models.ExpenseRecord{expenseRecord(2, "2023-07-15", "100", "121")},
	)

	result, err := f.builder(t).Build(context.Background(), testRequest())
	require.NoError(t, err)

	assert.True(t, result.NothingToFile)
	assert.Equal(t, models.Totals{}, result.Totals)
	assert.Empty(t, result.Files)

	exists, err := afero.DirExists(f.fs, "/out/2023_6")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBuilder_Build_DataSourceError(t *testing.T) {
	f := newBuilderFixture(t)
	f.source.On("ListInvoices", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := f.builder(t).Build(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataSource))

	var dsErr *DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, "ListInvoices", dsErr.Op)
	f.source.AssertNotCalled(t, "ListExpenses", mock.Anything)
}

func TestBuilder_Build_MalformedRecord(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments(nil, []models.ExpenseRecord{expenseRecord(4, "2023-06-15", "12,5", "15")})

	_, err := f.builder(t).Build(context.Background(), testRequest())
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}

func TestBuilder_Build_ExpenseCacheIsFailSoft(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments([]models.InvoiceRecord{invoiceRecord(1, "2023-06-15", "100", "121")}, nil)
	f.source.On("ListExpensesFromCache", mock.Anything, "/out/2023_6/expenses.json").
		Return(nil, errors.New("no such file"))
	f.encoder.On("Encode", mock.Anything).Return([]byte("<svg/>"), nil)

	req := testRequest()
	req.UseExpenseCache = true

	result, err := f.builder(t).Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Totals.SupplierTotal)
	f.source.AssertExpectations(t)
}

func TestBuilder_Build_MergesCachedExpenses(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments(nil, []models.ExpenseRecord{expenseRecord(2, "2023-06-03", "1000", "1210")})
	f.source.On("ListExpensesFromCache", mock.Anything, mock.Anything).Return([]models.CachedExpenseRecord{
		{
			IssuedOn:                   "2023-06-20",
			DueOn:                      "2023-06-20",
			TaxableFulfillmentDue:      "2023-06-20",
			SupplierRegistrationNumber: "87654321",
			SupplierVatNumber:          "CZ87654321",
			Subtotal:                   "500",
			Total:                      "605",
			VariableSymbol:             "42",
		},
		{
			IssuedOn:              "2023-05-20",
			DueOn:                 "2023-05-20",
			TaxableFulfillmentDue: "2023-05-20",
			SupplierVatNumber:     "CZ87654321",
			Subtotal:              "1",
			Total:                 "1",
		},
	}, nil)

	req := testRequest()
	req.UseExpenseCache = true

	result, err := f.builder(t).Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1815), result.Totals.SupplierTotal)
	assert.Equal(t, int64(315), result.Totals.SupplierTax)
	assert.Equal(t, int64(-315), result.Totals.TaxDiff)

	// nothing to pay
	f.encoder.AssertNotCalled(t, "Encode", mock.Anything)
	assert.Len(t, result.Files, 2)
}

func TestBuilder_Build_RenderFailurePersistsNeither(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments([]models.InvoiceRecord{invoiceRecord(1, "2023-06-15", "100", "121")}, nil)

	renderer := new(mocks.DocumentRenderer)
	renderer.On("Render", output.KindVatReturn, mock.Anything).Return([]byte("<ok/>"), nil)
	renderer.On("Render", output.KindControlStatement, mock.Anything).Return(nil, errors.New("boom"))

	b := NewBuilder(f.source, renderer, f.store, WithClock(func() time.Time { return f.clock }))
	_, err := b.Build(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRender))

	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, output.KindControlStatement, rerr.Template)

	exists, err := afero.Exists(f.fs, "/out/2023_6/dphdp3_2023_6m.xml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBuilder_Build_LedgerFailureIsExportError(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments([]models.InvoiceRecord{invoiceRecord(1, "2023-06-15", "100", "121")}, nil)
	f.encoder.On("Encode", mock.Anything).Return([]byte("<svg/>"), nil)

	ledger := new(mocks.LedgerExporter)
	ledger.On("AppendTotals", mock.Anything, june, mock.Anything, f.clock).Return(errors.New("quota exceeded"))

	_, err := f.builder(t, WithLedgerExporter(ledger)).Build(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExport))

	exists, err := afero.Exists(f.fs, "/out/2023_6/dphkh1_2023_6m.xml")
	require.NoError(t, err)
	assert.True(t, exists)
	ledger.AssertExpectations(t)
}

func TestBuilder_Build_WritesSummary(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments([]models.InvoiceRecord{invoiceRecord(1, "2023-06-15", "100", "121")}, nil)

	summary := new(mocks.SummaryWriter)
	summary.On("Write", mock.MatchedBy(func(data models.ReportContext) bool {
		return len(data.Invoices) == 1 && data.SigningDate == "10.07.2023"
	})).Return([]byte("xlsx"), nil)

	req := testRequest()
	req.PaymentCode = false

	result, err := f.builder(t, WithSummaryWriter(summary)).Build(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, result.Files, "/out/2023_6/summary_2023_6.xlsx")
	f.encoder.AssertNotCalled(t, "Encode", mock.Anything)
}

func TestBuilder_Build_RerunIsByteIdenticalExceptSigningDate(t *testing.T) {
	f := newBuilderFixture(t)
	f.withDocuments(
		[]models.InvoiceRecord{
			invoiceRecord(1, "2023-06-15", "100.4", "121.0"),
			invoiceRecord(2, "2023-06-20", "20000", "24200"),
		},
		[]models.ExpenseRecord{expenseRecord(3, "2023-06-02", "15000.5", "18150.6")},
	)
	f.encoder.On("Encode", mock.Anything).Return([]byte("<svg/>"), nil)

	read := func() map[string]string {
		out := map[string]string{}
		for _, kind := range []string{output.KindVatReturn, output.KindControlStatement} {
			data, err := afero.ReadFile(f.fs, f.store.DocumentPath(kind, june))
			require.NoError(t, err)
			out[kind] = string(data)
		}
		return out
	}

	b := f.builder(t)
	_, err := b.Build(context.Background(), testRequest())
	require.NoError(t, err)
	first := read()

	f.clock = time.Date(2023, 7, 20, 9, 0, 0, 0, time.UTC)
	_, err = b.Build(context.Background(), testRequest())
	require.NoError(t, err)
	second := read()

	for kind := range first {
		assert.NotEqual(t, first[kind], second[kind], kind)
		normalized := strings.ReplaceAll(second[kind], "20.07.2023", "10.07.2023")
		assert.Equal(t, first[kind], normalized, kind)
	}
}

func TestBuilder_Load(t *testing.T) {
	f := newBuilderFixture(t)
	rec := invoiceRecord(1, "2023-06-15", "100", "121")
	rec.ClientVatNo = "CZ99999999"
	f.withDocuments([]models.InvoiceRecord{rec}, nil)

	invoices, expenses, err := f.builder(t).Load(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
	assert.Empty(t, expenses)
}
