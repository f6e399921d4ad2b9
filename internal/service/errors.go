package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("error not found")
	ErrValidation     = errors.New("validation error")
	ErrAllocation     = errors.New("allocation error")
	ErrLotInUse       = errors.New("lot is referenced by a sale")
	ErrUpstream       = errors.New("upstream api error")
	ErrUploadDisabled = errors.New("report upload is not configured")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AllocationError carries the lot's remaining amount so the caller can correct input.
type AllocationError struct {
	LotID     string
	Requested decimal.Decimal
	Available decimal.Decimal
	Msg       string
}

func (e *AllocationError) Error() string {
	return e.Msg
}

func (e *AllocationError) Unwrap() error {
	return ErrAllocation
}
