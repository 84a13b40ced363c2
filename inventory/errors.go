/*
errors.go - Centralized error types for inventory mutations

PURPOSE:
  Every failed mutation is reported as a one-line message to the
  operator and never terminates the session. Sentinel errors let the
  CLI distinguish the cases with errors.Is; structured errors carry the
  numbers the operator wants in the message.

ERROR CATEGORIES:
  1. Validation errors - bad quantity, missing drug
  2. Stock errors      - insufficient stock for sale/wastage
  3. Expiry errors     - expired drug blocked from sale
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when no drug matches the given name.
	ErrNotFound = errors.New("drug not found")

	// ErrInvalidQuantity is returned for non-positive transaction amounts.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInsufficientStock is returned when a sale or wastage exceeds stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrExpired is returned when a sale is blocked because the drug is
	// past its shelf life.
	ErrExpired = errors.New("drug is expired")

	// ErrBadProductionDate is returned when a drug's production date
	// cannot be parsed. For sales this blocks the transaction; for
	// reports the record is skipped with a warning instead.
	ErrBadProductionDate = errors.New("malformed production date")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError reports a stock shortage.
type InsufficientStockError struct {
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ExpiredError reports a blocked sale of an expired drug.
type ExpiredError struct {
	Name        string
	ExpiredDays int // days past expiry, always > 0
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("%s expired %d day(s) ago, sale blocked", e.Name, e.ExpiredDays)
}

func (e *ExpiredError) Unwrap() error { return ErrExpired }

// IsClientError returns true when the error is an operator-input
// condition to be reported and retried by hand, not a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrBadProductionDate)
}
