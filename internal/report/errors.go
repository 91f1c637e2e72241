package report

import (
	"errors"
	"fmt"
)

// Report run failures. Every error returned by Builder.Build matches one of these.
var (
	// ErrDataSource is returned when documents cannot be fetched from the accounting API.
	ErrDataSource = errors.New("data source unavailable")

	// ErrMalformedRecord is returned when a record has an unparseable date or amount.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnknownCounterparty is returned when a VAT number is missing from the allow-list.
	ErrUnknownCounterparty = errors.New("unknown counterparty VAT number")

	// ErrRender is returned when a filing document cannot be rendered.
	ErrRender = errors.New("document rendering failed")

	// ErrPersistence is returned when an output file cannot be written.
	ErrPersistence = errors.New("writing output failed")

	// ErrExport is returned when the totals cannot be exported to the ledger.
	ErrExport = errors.New("ledger export failed")
)

// DataSourceError wraps a failed fetch from the document source.
type DataSourceError struct {
	// Op is the fetch that failed (e.g., "ListInvoices").
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DataSourceError) Error() string {
	return fmt.Sprintf("report: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches ErrDataSource and anything the underlying error matches.
func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSource || errors.Is(e.Err, target)
}

// MalformedRecordError names the record whose field could not be parsed.
type MalformedRecordError struct {
	Kind     string // invoice or expense
	RecordID string
	Field    string
	Value    string
	Err      error
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("report: malformed %s %s: field %s=%q: %v", e.Kind, e.RecordID, e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewMalformedRecordError creates a new MalformedRecordError.
func NewMalformedRecordError(kind, id, field, value string, err error) *MalformedRecordError {
	return &MalformedRecordError{
		Kind:     kind,
		RecordID: id,
		Field:    field,
		Value:    value,
		Err:      err,
	}
}

// ValidationError reports a document whose counterparty is not allow-listed.
type ValidationError struct {
	Kind       string // invoice or expense
	DocumentID string
	VatNumber  string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("report: %s %s: %s %q", e.Kind, e.DocumentID, ErrUnknownCounterparty, e.VatNumber)
}

// Is matches ErrUnknownCounterparty.
func (e *ValidationError) Is(target error) bool {
	return target == ErrUnknownCounterparty
}

// NewValidationError creates a new ValidationError.
func NewValidationError(kind, id, vatNumber string) *ValidationError {
	return &ValidationError{
		Kind:       kind,
		DocumentID: id,
		VatNumber:  vatNumber,
	}
}

// RenderError wraps a template failure for one document.
type RenderError struct {
	Template string
	Err      error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("report: rendering %s failed: %v", e.Template, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is matches ErrRender and anything the underlying error matches.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender || errors.Is(e.Err, target)
}

// PersistenceError wraps a failed write of an output file or directory.
type PersistenceError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("report: writing %s failed: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches ErrPersistence and anything the underlying error matches.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence || errors.Is(e.Err, target)
}

// ExportError wraps a failed ledger export.
type ExportError struct {
	Destination string
	Err         error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("report: exporting to %s failed: %v", e.Destination, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// Is matches ErrExport and anything the underlying error matches.
func (e *ExportError) Is(target error) bool {
	return target == ErrExport || errors.Is(e.Err, target)
}
