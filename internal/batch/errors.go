package batch

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when the input contains no payable lines.
var ErrEmptyBatch = errors.New("batch contains no entries")

// MalformedLineError reports a line that does not split into exactly two
// comma-separated fields.
type MalformedLineError struct {
	Line int    // 1-based line number in the raw input
	Raw  string // the offending line as typed
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: expected \"address,amount\", got %q", e.Line, e.Raw)
}

// InvalidAddressError reports a recipient field that is not a valid hex address.
type InvalidAddressError struct {
	Line  int
	Value string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("line %d: invalid recipient address %q", e.Line, e.Value)
}

// InvalidAmountError reports an amount field that is not a positive decimal
// within the allowed precision.
type InvalidAmountError struct {
	Line   int
	Value  string
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("line %d: invalid amount %q: %s", e.Line, e.Value, e.Reason)
}

// InvalidTokenAddressError reports a token address that is not a valid,
// non-zero hex address.
type InvalidTokenAddressError struct {
	Value string
}

func (e *InvalidTokenAddressError) Error() string {
	return fmt.Sprintf("invalid token address %q", e.Value)
}

// CountMismatchError reports unequal line counts in two-column input.
type CountMismatchError struct {
	AddressCount int
	AmountCount  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("address and amount count mismatch: %d addresses, %d amounts", e.AddressCount, e.AmountCount)
}
