package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"
	"github.com/rs/zerolog"

	"fsreport/internal/logger"
	"fsreport/internal/output"
	"fsreport/pkg/models"
	"fsreport/pkg/services"
)

// SigningDateLayout is the DD.MM.YYYY form expected by the filing portal.
const SigningDateLayout = "02.01.2006"

// SubmissionURL is where the generated documents are uploaded.
const SubmissionURL = "https://adisspr.mfcr.cz/dpr/adis/idpr_epo/epo2/uvod/vstup_expert.faces"

// Pipeline states.
const (
	StateFetching     = "Fetching"
	StateFiltering    = "Filtering"
	StateTransforming = "Transforming"
	StateValidating   = "Validating"
	StateAggregating  = "Aggregating"
	StateRendering    = "Rendering"
	StatePersisting   = "Persisting"
	StateDone         = "Done"
	StateAborted      = "Aborted"
)

const (
	triggerFetched     = "fetched"
	triggerFiltered    = "filtered"
	triggerTransformed = "transformed"
	triggerValidated   = "validated"
	triggerAggregated  = "aggregated"
	triggerNothingToDo = "nothing_to_file"
	triggerRendered    = "rendered"
	triggerPersisted   = "persisted"
	triggerAbort       = "abort"
)

// Request describes one report run.
type Request struct {
	Period          models.Period
	User            models.User
	Account         models.Account
	Clients         models.VatAllowList
	Suppliers       models.VatAllowList
	UseExpenseCache bool
	PaymentCode     bool
	PaymentMessage  string
}

// Result is the outcome of a successful run.
type Result struct {
	RunID         string
	Totals        models.Totals
	NothingToFile bool
	Files         []string
}

// Builder runs the report pipeline for one period.
type Builder struct {
	source   services.DocumentSource
	renderer services.DocumentRenderer
	encoder  services.PaymentCodeEncoder
	summary  services.SummaryWriter
	ledger   services.LedgerExporter
	store    *output.Store
	now      func() time.Time
	newID    func() string
}

// Option configures a Builder.
type Option func(*Builder)

// WithPaymentCodeEncoder enables the payment QR code.
func WithPaymentCodeEncoder(e services.PaymentCodeEncoder) Option {
	return func(b *Builder) { b.encoder = e }
}

// WithSummaryWriter enables the review workbook.
func WithSummaryWriter(w services.SummaryWriter) Option {
	return func(b *Builder) { b.summary = w }
}

// WithLedgerExporter enables the totals export.
func WithLedgerExporter(l services.LedgerExporter) Option {
	return func(b *Builder) { b.ledger = l }
}

// WithClock overrides the clock used for the signing date.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder.
func NewBuilder(source services.DocumentSource, renderer services.DocumentRenderer, store *output.Store, opts ...Option) *Builder {
	b := &Builder{
		source:   source,
		renderer: renderer,
		store:    store,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// run carries the data of one pipeline execution between states.
type run struct {
	req Request
	log zerolog.Logger

	invoiceRecords []models.InvoiceRecord
	expenseRecords []models.ExpenseRecord
	cachedRecords  []models.CachedExpenseRecord

	invoices models.Invoices
	expenses models.Expenses
	totals   models.Totals

	documents []output.Document
	result    *Result
}

type step func(ctx context.Context, r *run) (string, error)

func (b *Builder) newMachine(log zerolog.Logger) *stateless.StateMachine {
	machine := stateless.NewStateMachine(StateFetching)

	machine.Configure(StateFetching).
		Permit(triggerFetched, StateFiltering).
		Permit(triggerAbort, StateAborted)

	machine.Configure(StateFiltering).
		Permit(triggerFiltered, StateTransforming).
		Permit(triggerAbort, StateAborted)

	machine.Configure(StateTransforming).
		Permit(triggerTransformed, StateValidating).
		Permit(triggerAbort, StateAborted)

	machine.Configure(StateValidating).
		Permit(triggerValidated, StateAggregating).
		Permit(triggerAbort, StateAborted)

	machine.Configure(StateAggregating).
		Permit(triggerAggregated, StateRendering).
		Permit(triggerNothingToDo, StateDone).
		Permit(triggerAbort, StateAborted)

	machine.Configure(StateRendering).
		Permit(triggerRendered, StatePersisting).
		Permit(triggerAbort, StateAborted)

	machine.Configure(StatePersisting).
		Permit(triggerPersisted, StateDone).
		Permit(triggerAbort, StateAborted)

	machine.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		log.Debug().
			Str("from", fmt.Sprint(t.Source)).
			Str("to", fmt.Sprint(t.Destination)).
			Str("trigger", fmt.Sprint(t.Trigger)).
			Msg("Pipeline transition")
	})

	return machine
}

// Build runs the whole pipeline. When the period has no documents it returns
// zero totals with NothingToFile set and writes nothing.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	const op = "Build"

	runID := b.newID()
	r := &run{
		req:    req,
		log:    logger.WithRunID("report", runID),
		result: &Result{RunID: runID},
	}

	r.log.Info().
		Str("period", req.Period.String()).
		Bool("expense_cache", req.UseExpenseCache).
		Msg("Starting report run")

	steps := map[string]step{
		StateFetching:     b.fetch,
		StateFiltering:    b.filter,
		StateTransforming: b.transform,
		StateValidating:   b.validate,
		StateAggregating:  b.aggregate,
		StateRendering:    b.render,
		StatePersisting:   b.persist,
	}

	machine := b.newMachine(r.log)
	for {
		state := fmt.Sprint(machine.MustState())
		if state == StateDone {
			break
		}

		trigger, err := steps[state](ctx, r)
		if err != nil {
			r.log.Error().Err(err).Str("state", state).Msg("Report run aborted")
			if fireErr := machine.FireCtx(ctx, triggerAbort); fireErr != nil {
				r.log.Warn().Err(fireErr).Msg("Failed to record abort")
			}
			return nil, err
		}

		if err := machine.FireCtx(ctx, trigger); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return r.result, nil
}

func (b *Builder) fetch(ctx context.Context, r *run) (string, error) {
	var err error

	r.invoiceRecords, err = b.source.ListInvoices(ctx)
	if err != nil {
		return "", &DataSourceError{Op: "ListInvoices", Err: err}
	}

	r.expenseRecords, err = b.source.ListExpenses(ctx)
	if err != nil {
		return "", &DataSourceError{Op: "ListExpenses", Err: err}
	}

	if r.req.UseExpenseCache {
		path := b.store.ExpenseCachePath(r.req.Period)
		cached, err := b.source.ListExpensesFromCache(ctx, path)
		if err != nil {
			r.log.Warn().Err(err).Str("path", path).Msg("Expense cache unavailable, continuing without it")
			cached = nil
		}
		r.cachedRecords = cached
	}

	r.log.Debug().
		Int("invoices", len(r.invoiceRecords)).
		Int("expenses", len(r.expenseRecords)).
		Int("cached_expenses", len(r.cachedRecords)).
		Msg("Fetched documents")

	return triggerFetched, nil
}

func (b *Builder) filter(_ context.Context, r *run) (string, error) {
	var err error

	if r.invoiceRecords, err = FilterInvoices(r.invoiceRecords, r.req.Period); err != nil {
		return "", err
	}
	if r.expenseRecords, err = FilterExpenses(r.expenseRecords, r.req.Period); err != nil {
		return "", err
	}
	if r.cachedRecords, err = FilterCachedExpenses(r.cachedRecords, r.req.Period); err != nil {
		return "", err
	}

	return triggerFiltered, nil
}

func (b *Builder) transform(_ context.Context, r *run) (string, error) {
	var err error

	if r.invoices, err = TransformInvoices(r.invoiceRecords); err != nil {
		return "", err
	}
	if r.expenses, err = TransformExpenses(r.expenseRecords, r.cachedRecords); err != nil {
		return "", err
	}

	return triggerTransformed, nil
}

func (b *Builder) validate(_ context.Context, r *run) (string, error) {
	if err := Validate(r.invoices, r.expenses, r.req.Clients, r.req.Suppliers); err != nil {
		return "", err
	}
	return triggerValidated, nil
}

func (b *Builder) aggregate(_ context.Context, r *run) (string, error) {
	r.totals = Aggregate(r.invoices, r.expenses)
	r.result.Totals = r.totals

	logSummary(r.log, r.req.Period, r.invoices, r.expenses, r.totals)

	if len(r.invoices) == 0 && len(r.expenses) == 0 {
		r.log.Info().Str("period", r.req.Period.String()).Msg("No invoices nor expenses found, nothing to file")
		r.result.NothingToFile = true
		return triggerNothingToDo, nil
	}

	return triggerAggregated, nil
}

func (b *Builder) render(_ context.Context, r *run) (string, error) {
	data := b.reportContext(r)

	for _, kind := range []string{output.KindVatReturn, output.KindControlStatement} {
		content, err := b.renderer.Render(kind, data)
		if err != nil {
			return "", &RenderError{Template: kind, Err: err}
		}
		r.documents = append(r.documents, output.Document{
			Path: b.store.DocumentPath(kind, r.req.Period),
			Data: content,
		})
	}

	return triggerRendered, nil
}

func (b *Builder) persist(ctx context.Context, r *run) (string, error) {
	dir, err := b.store.EnsureDir(r.req.Period)
	if err != nil {
		return "", &PersistenceError{Path: b.store.Dir(r.req.Period), Err: err}
	}

	if err := b.store.WriteDocuments(r.documents...); err != nil {
		return "", &PersistenceError{Path: dir, Err: err}
	}
	for _, doc := range r.documents {
		r.result.Files = append(r.result.Files, doc.Path)
		r.log.Info().Str("path", doc.Path).Msg("Filing document written")
	}

	if err := b.writePaymentCode(r); err != nil {
		return "", err
	}
	if err := b.writeSummary(r); err != nil {
		return "", err
	}
	if err := b.exportTotals(ctx, r); err != nil {
		return "", err
	}

	r.log.Info().
		Str("directory", dir).
		Str("upload_url", SubmissionURL).
		Msg("Report ready, upload the documents to the tax portal")

	return triggerPersisted, nil
}

func (b *Builder) writePaymentCode(r *run) error {
	if b.encoder == nil || !r.req.PaymentCode {
		return nil
	}
	if r.totals.TaxDiff <= 0 {
		r.log.Info().Int64("tax_diff", r.totals.TaxDiff).Msg("No tax to pay, payment code skipped")
		return nil
	}

	instruction := NewPaymentInstruction(r.req.Account, r.totals.TaxDiff, r.req.PaymentMessage, r.req.Period)
	svg, err := b.encoder.Encode(instruction)
	if err != nil {
		return &RenderError{Template: "qr_code", Err: err}
	}

	path := b.store.PaymentCodePath(r.req.Period)
	if err := b.store.WriteDocuments(output.Document{Path: path, Data: svg}); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	r.result.Files = append(r.result.Files, path)

	r.log.Info().
		Str("path", path).
		Int64("amount", instruction.Amount).
		Str("due_date", instruction.DueDate.Format(models.DateLayout)).
		Msg("Payment code written")

	return nil
}

func (b *Builder) writeSummary(r *run) error {
	if b.summary == nil {
		return nil
	}

	path := b.store.SummaryPath(r.req.Period)
	content, err := b.summary.Write(b.reportContext(r))
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err := b.store.WriteDocuments(output.Document{Path: path, Data: content}); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	r.result.Files = append(r.result.Files, path)

	r.log.Info().Str("path", path).Msg("Review workbook written")
	return nil
}

func (b *Builder) exportTotals(ctx context.Context, r *run) error {
	if b.ledger == nil {
		return nil
	}

	if err := b.ledger.AppendTotals(ctx, r.req.Period, r.totals, b.now()); err != nil {
		return &ExportError{Destination: "ledger", Err: err}
	}

	r.log.Info().Msg("Totals exported to ledger")
	return nil
}

func (b *Builder) reportContext(r *run) models.ReportContext {
	return models.ReportContext{
		Invoices:    r.invoices,
		Expenses:    r.expenses,
		Totals:      r.totals,
		Period:      r.req.Period,
		SigningDate: b.now().Format(SigningDateLayout),
		User:        r.req.User,
		Account:     r.req.Account,
	}
}

// Load fetches, filters and normalizes the period's documents without
// validating or writing anything.
func (b *Builder) Load(ctx context.Context, req Request) (models.Invoices, models.Expenses, error) {
	r := &run{
		req: req,
		log: logger.WithComponent("report"),
	}

	for _, s := range []step{b.fetch, b.filter, b.transform} {
		if _, err := s(ctx, r); err != nil {
			return nil, nil, err
		}
	}

	return r.invoices, r.expenses, nil
}

// NewPaymentInstruction builds the transfer settling taxDiff with the tax office.
// The filer's VAT number is the variable symbol; the due date is the filing deadline.
func NewPaymentInstruction(account models.Account, taxDiff int64, message string, period models.Period) models.PaymentInstruction {
	return models.PaymentInstruction{
		Account:        account.FsTaxAccount,
		Amount:         taxDiff,
		VariableSymbol: fmt.Sprintf("%d", account.VatNumber),
		Message:        message,
		DueDate:        period.FilingDeadline(),
	}
}

func logSummary(log zerolog.Logger, period models.Period, invoices models.Invoices, expenses models.Expenses, totals models.Totals) {
	log.Info().Str("period", period.String()).Int("invoices", len(invoices)).Int("expenses", len(expenses)).Msg("Report summary")

	for _, inv := range invoices {
		log.Info().
			Str("id", inv.ID).
			Str("url", inv.HTMLURL).
			Int64("total", inv.Total).
			Int64("subtotal", inv.Subtotal).
			Int64("tax", inv.Tax).
			Msg("Invoice")
	}
	for _, exp := range expenses {
		log.Info().
			Str("id", exp.ID).
			Str("url", exp.HTMLURL).
			Int64("total", exp.Total).
			Int64("subtotal", exp.Subtotal).
			Int64("tax", exp.Tax).
			Msg("Expense")
	}

	log.Info().
		Int64("total", totals.Total).
		Int64("subtotal", totals.Subtotal).
		Int64("tax", totals.Tax).
		Int64("supplier_total", totals.SupplierTotal).
		Int64("supplier_subtotal", totals.SupplierSubtotal).
		Int64("supplier_tax", totals.SupplierTax).
		Int64("total_diff", totals.TotalDiff).
		Int64("tax_diff", totals.TaxDiff).
		Msg("Totals")
}
