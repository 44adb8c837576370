package service

import "github.com/fixmate/field-service/internal/model"

// operation names the workflow action attempting a status move. The same
// (from, to) pair may be legal for one operation and illegal for another.
type operation string

const (
	opConfirm      operation = "confirm"
	opProgress     operation = "progress"
	opQuote        operation = "quote"
	opQuoteConfirm operation = "quote_confirm"
	opComplete     operation = "complete"
	opReschedule   operation = "reschedule"
	opCancel       operation = "cancel"
)

type edge struct {
	from model.AppointmentStatus
	to   model.AppointmentStatus
	via  operation
}

var edges = []edge{
	{model.AppointmentBooked, model.AppointmentConfirmed, opConfirm},
	{model.AppointmentConfirmed, model.AppointmentEnRoute, opProgress},
	{model.AppointmentEnRoute, model.AppointmentArrived, opProgress},
	{model.AppointmentArrived, model.AppointmentQuoted, opQuote},
	{model.AppointmentInProgress, model.AppointmentQuoted, opQuote},
	{model.AppointmentQuoted, model.AppointmentQuoteConfirmed, opQuoteConfirm},
	{model.AppointmentQuoteConfirmed, model.AppointmentInProgress, opProgress},
	{model.AppointmentInProgress, model.AppointmentTechnicianDone, opComplete},
	{model.AppointmentBooked, model.AppointmentBooked, opReschedule},
	{model.AppointmentConfirmed, model.AppointmentBooked, opReschedule},
}

func isTerminal(s model.AppointmentStatus) bool {
	return s == model.AppointmentCancelled || s == model.AppointmentTechnicianDone
}

// canTransition reports whether the given operation may move an appointment
// from one status to another. Cancellation is legal from any non-terminal
// status and is not enumerated edge by edge.
func canTransition(from, to model.AppointmentStatus, via operation) bool {
	if via == opCancel {
		return to == model.AppointmentCancelled && !isTerminal(from)
	}
	for _, e := range edges {
		if e.from == from && e.to == to && e.via == via {
			return true
		}
	}
	return false
}

// allowedNext returns every status reachable from the given one by any
// operation, in a stable order. Used to build rejection payloads.
func allowedNext(from model.AppointmentStatus) []model.AppointmentStatus {
	var out []model.AppointmentStatus
	seen := make(map[model.AppointmentStatus]struct{})
	for _, e := range edges {
		if e.from != from {
			continue
		}
		if _, ok := seen[e.to]; ok {
			continue
		}
		seen[e.to] = struct{}{}
		out = append(out, e.to)
	}
	if !isTerminal(from) {
		out = append(out, model.AppointmentCancelled)
	}
	return out
}

func invalidTransition(current, attempted model.AppointmentStatus) error {
	return &model.InvalidTransitionError{
		Current:   current,
		Attempted: attempted,
		Allowed:   allowedNext(current),
	}
}
