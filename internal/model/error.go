package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrValidation           = errors.New("validation error")             // 400
	ErrForbidden            = errors.New("forbidden")                    // 403
	ErrAppointmentNotFound  = errors.New("appointment not found")        // 404
	ErrOrderNotFound        = errors.New("service order not found")      // 404
	ErrOrderDetailNotFound  = errors.New("order detail not found")       // 404
	ErrSparePartNotFound    = errors.New("spare part not found")         // 404
	ErrServiceNotFound      = errors.New("service not found")            // 404
	ErrWarrantyNotFound     = errors.New("warranty not found")           // 404
	ErrOrderConflict        = errors.New("order conflict")               // 409
	ErrInvalidTransition    = errors.New("invalid status transition")    // 422
	ErrRescheduleLimit      = errors.New("reschedule limit reached")     // 422
	ErrInsufficientStock    = errors.New("insufficient stock")           // 422
	ErrOrderNotReady        = errors.New("order lines not settle-ready") // 422
	ErrOrderMismatch        = errors.New("order line and appointment belong to different orders")
	ErrServiceInactive      = errors.New("service is not active")
	ErrUnknownStatus        = errors.New("unknown status")
	// ErrInconsistentState marks invariants that upstream steps should have
	// guaranteed; a server-side fault, never a client error.
	ErrInconsistentState = errors.New("internal consistency violation")
)

// InvalidTransitionError reports an illegal status move together with the
// full set of legal next states for the attempted operation.
type InvalidTransitionError struct {
	Current   AppointmentStatus
	Attempted AppointmentStatus
	Allowed   []AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("cannot transition from %q to %q (allowed: [%s])",
		e.Current, e.Attempted, strings.Join(allowed, ", "))
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// InsufficientStockError carries every short item of a batch, not just the
// first one.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortfalls))
	for i, s := range e.Shortfalls {
		parts[i] = fmt.Sprintf("%q (%s): requested %d, available %d",
			s.Name, s.SparePartID, s.Requested, s.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// SparePartsNotFoundError lists every referenced part that does not exist.
type SparePartsNotFoundError struct {
	IDs []uuid.UUID
}

func (e *SparePartsNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return "spare parts not found: " + strings.Join(ids, ", ")
}

func (e *SparePartsNotFoundError) Unwrap() error { return ErrSparePartNotFound }

// TotalMismatchError reports a stored order total that disagrees with the
// recomputed sum of its lines.
type TotalMismatchError struct {
	OrderID     uuid.UUID
	StoredTotal int64
	LinesTotal  int64
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("order %s total mismatch: stored %d, lines sum %d",
		e.OrderID, e.StoredTotal, e.LinesTotal)
}

func (e *TotalMismatchError) Unwrap() error { return ErrInconsistentState }
