package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation indicates malformed input rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint collision.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrDuplicateInvoice indicates an invoice number collision.
	ErrDuplicateInvoice = errors.New("duplicate invoice number")
	// ErrInsufficientStock indicates an adjustment would drive quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransition indicates a disallowed supply status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoChange indicates the requested status equals the current one.
	ErrNoChange = errors.New("status not changed")
	// ErrInfrastructure indicates a storage or connectivity failure.
	ErrInfrastructure = errors.New("infrastructure failure")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the session role may not perform the action.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError lists field level problems.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s %s", e.Entity, ErrNotFound)
	}
	return fmt.Sprintf("%s %v %s", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateError names the colliding value.
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *DuplicateError) Unwrap() error {
	if e.Entity == "supply" && e.Field == "invoice_number" {
		return ErrDuplicateInvoice
	}
	return ErrDuplicate
}

// InsufficientStockError reports the rejected adjustment.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Delta     int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %d: %s (available %d, delta %d)", e.ProductID, ErrInsufficientStock, e.Available, e.Delta)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidTransitionError carries the rejected status pair.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// InfrastructureError wraps an unclassified storage failure.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() []error { return []error{ErrInfrastructure, e.Err} }

// Infra wraps err as an InfrastructureError unless it already belongs to the taxonomy.
func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) || errors.Is(err, ErrInfrastructure) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}

// IsDomain reports whether err is a business rejection rather than a failure.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrNotFound, ErrDuplicate, ErrDuplicateInvoice, ErrInsufficientStock,
		ErrInvalidTransition, ErrNoChange, ErrInvalidCredentials, ErrUnauthorized, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
