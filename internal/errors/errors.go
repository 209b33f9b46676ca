// Package errors provides custom error types for load failures.
//
// Every error here is fatal for the whole file: a load either produces a
// clean record batch or nothing. Row-scoped errors carry the 1-based row
// index so the input can be fixed without re-reading the file.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError reports required CSV columns missing from the header.
type SchemaError struct {
	Missing []string // sorted
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(missing []string) *SchemaError {
	return &SchemaError{Missing: missing}
}

// DateUniquenessError reports a file-scoped date column with more than one
// distinct value.
type DateUniquenessError struct {
	Column string
	Values []string
}

func (e *DateUniquenessError) Error() string {
	return fmt.Sprintf("%s must be single-valued for the entire file, found %d distinct values: %s",
		e.Column, len(e.Values), strings.Join(e.Values, ", "))
}

// NewDateUniquenessError creates a new DateUniquenessError.
func NewDateUniquenessError(column string, values []string) *DateUniquenessError {
	return &DateUniquenessError{Column: column, Values: values}
}

// DateFormatError reports a date value that is not a valid DD-MMM-YYYY
// calendar date. Row is 0 for file-scoped dates.
type DateFormatError struct {
	Column string
	Value  string
	Row    int
}

func (e *DateFormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: invalid date %q, expected DD-MMM-YYYY", e.Row, e.Column, e.Value)
	}
	return fmt.Sprintf("%s: invalid date %q, expected DD-MMM-YYYY", e.Column, e.Value)
}

// NewDateFormatError creates a new DateFormatError.
func NewDateFormatError(column, value string, row int) *DateFormatError {
	return &DateFormatError{Column: column, Value: value, Row: row}
}

// InvalidExchangeError reports exchange values outside the allowed set.
type InvalidExchangeError struct {
	Values  []string // sorted
	Allowed []string
}

func (e *InvalidExchangeError) Error() string {
	return fmt.Sprintf("invalid exchange(s): %s, allowed: %s",
		strings.Join(e.Values, ", "), strings.Join(e.Allowed, ", "))
}

// NewInvalidExchangeError creates a new InvalidExchangeError.
func NewInvalidExchangeError(values, allowed []string) *InvalidExchangeError {
	return &InvalidExchangeError{Values: values, Allowed: allowed}
}

// ExpiryFormatError reports an expiry that violates the format rules for its
// instrument: a malformed date, or any expiry at all on an equity row.
type ExpiryFormatError struct {
	Row    int
	Value  string
	Reason string
}

func (e *ExpiryFormatError) Error() string {
	return fmt.Sprintf("row %d: expiry %q: %s", e.Row, e.Value, e.Reason)
}

// NewExpiryFormatError creates a new ExpiryFormatError.
func NewExpiryFormatError(row int, value, reason string) *ExpiryFormatError {
	return &ExpiryFormatError{Row: row, Value: value, Reason: reason}
}

// MissingExpiryError reports a derivative row with no expiry.
type MissingExpiryError struct {
	Row int
}

func (e *MissingExpiryError) Error() string {
	return fmt.Sprintf("row %d: missing expiry", e.Row)
}

// NewMissingExpiryError creates a new MissingExpiryError.
func NewMissingExpiryError(row int) *MissingExpiryError {
	return &MissingExpiryError{Row: row}
}

// InvalidIndexInstrumentError reports BSE index rows whose instrument cannot
// resolve to OPTIDX or FUTIDX.
type InvalidIndexInstrumentError struct {
	Values []string // sorted
}

func (e *InvalidIndexInstrumentError) Error() string {
	return fmt.Sprintf("BSE index instruments must resolve to OPTIDX or FUTIDX, found: %s",
		strings.Join(e.Values, ", "))
}

// NewInvalidIndexInstrumentError creates a new InvalidIndexInstrumentError.
func NewInvalidIndexInstrumentError(values []string) *InvalidIndexInstrumentError {
	return &InvalidIndexInstrumentError{Values: values}
}

// UnknownInstrumentError reports instrument values outside the allowed set
// after canonicalization.
type UnknownInstrumentError struct {
	Values []string // sorted
}

func (e *UnknownInstrumentError) Error() string {
	return fmt.Sprintf("unknown instrument(s): %s", strings.Join(e.Values, ", "))
}

// NewUnknownInstrumentError creates a new UnknownInstrumentError.
func NewUnknownInstrumentError(values []string) *UnknownInstrumentError {
	return &UnknownInstrumentError{Values: values}
}

// ContractIncompleteError reports contract fields missing or present in
// violation of the instrument family rules.
type ContractIncompleteError struct {
	Row        int
	Instrument string
	Missing    []string
}

func (e *ContractIncompleteError) Error() string {
	return fmt.Sprintf("row %d: %s requires %s", e.Row, e.Instrument, strings.Join(e.Missing, ", "))
}

// NewContractIncompleteError creates a new ContractIncompleteError.
func NewContractIncompleteError(row int, instrument string, missing []string) *ContractIncompleteError {
	return &ContractIncompleteError{Row: row, Instrument: instrument, Missing: missing}
}

// NumericFormatError reports a numeric field that does not parse.
type NumericFormatError struct {
	Row   int
	Field string
	Value string
}

func (e *NumericFormatError) Error() string {
	return fmt.Sprintf("row %d: %s: %q is not a valid number", e.Row, e.Field, e.Value)
}

// NewNumericFormatError creates a new NumericFormatError.
func NewNumericFormatError(row int, field, value string) *NumericFormatError {
	return &NumericFormatError{Row: row, Field: field, Value: value}
}

// PriceInvalidError reports an average price that is negative, unparseable,
// or carries more than 3 decimal places.
type PriceInvalidError struct {
	Row   int
	Value string
}

func (e *PriceInvalidError) Error() string {
	return fmt.Sprintf("row %d: Avg_Price %q must be >= 0 with at most 3 decimals", e.Row, e.Value)
}

// NewPriceInvalidError creates a new PriceInvalidError.
func NewPriceInvalidError(row int, value string) *PriceInvalidError {
	return &PriceInvalidError{Row: row, Value: value}
}

// StrikeInvalidError reports a strike that is unparseable or carries more
// than 3 decimal places.
type StrikeInvalidError struct {
	Row   int
	Value string
}

func (e *StrikeInvalidError) Error() string {
	return fmt.Sprintf("row %d: Strike %q must be numeric with at most 3 decimals", e.Row, e.Value)
}

// NewStrikeInvalidError creates a new StrikeInvalidError.
func NewStrikeInvalidError(row int, value string) *StrikeInvalidError {
	return &StrikeInvalidError{Row: row, Value: value}
}

// EmptyExecutionError reports an intraday row with neither a buy nor a sell
// side.
type EmptyExecutionError struct {
	Row int
}

func (e *EmptyExecutionError) Error() string {
	return fmt.Sprintf("row %d: both Buy_Qty and Sell_Qty are zero", e.Row)
}

// NewEmptyExecutionError creates a new EmptyExecutionError.
func NewEmptyExecutionError(row int) *EmptyExecutionError {
	return &EmptyExecutionError{Row: row}
}

// QuantityMismatchError reports an intraday row where the net quantity does
// not equal buy minus sell.
type QuantityMismatchError struct {
	Row  int
	Net  int64
	Buy  int64
	Sell int64
}

func (e *QuantityMismatchError) Error() string {
	return fmt.Sprintf("row %d: Net_Qty %d does not match Buy_Qty - Sell_Qty (expected %d)",
		e.Row, e.Net, e.Buy-e.Sell)
}

// NewQuantityMismatchError creates a new QuantityMismatchError.
func NewQuantityMismatchError(row int, net, buy, sell int64) *QuantityMismatchError {
	return &QuantityMismatchError{Row: row, Net: net, Buy: buy, Sell: sell}
}

// NegativeRateError reports a negative buy or sell rate.
type NegativeRateError struct {
	Row   int
	Field string
	Value string
}

func (e *NegativeRateError) Error() string {
	return fmt.Sprintf("row %d: %s %q must be >= 0", e.Row, e.Field, e.Value)
}

// NewNegativeRateError creates a new NegativeRateError.
func NewNegativeRateError(row int, field, value string) *NegativeRateError {
	return &NegativeRateError{Row: row, Field: field, Value: value}
}

// StoreWriteError wraps a failure reported by the storage backend.
type StoreWriteError struct {
	Table string
	Op    string // "insert" or "upsert"
	Err   error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store %s into %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

// NewStoreWriteError creates a new StoreWriteError.
func NewStoreWriteError(table, op string, err error) *StoreWriteError {
	return &StoreWriteError{Table: table, Op: op, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
