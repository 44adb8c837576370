package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmate/field-service/internal/model"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from model.AppointmentStatus
		to   model.AppointmentStatus
		via  operation
		want bool
	}{
		{"staff confirms a booking", model.AppointmentBooked, model.AppointmentConfirmed, opConfirm, true},
		{"confirm is not a progress step", model.AppointmentBooked, model.AppointmentConfirmed, opProgress, false},
		{"technician departs", model.AppointmentConfirmed, model.AppointmentEnRoute, opProgress, true},
		{"technician arrives", model.AppointmentEnRoute, model.AppointmentArrived, opProgress, true},
		{"quote after inspection", model.AppointmentArrived, model.AppointmentQuoted, opQuote, true},
		{"re-quote during repair", model.AppointmentInProgress, model.AppointmentQuoted, opQuote, true},
		{"customer approves the quote", model.AppointmentQuoted, model.AppointmentQuoteConfirmed, opQuoteConfirm, true},
		{"work starts after approval", model.AppointmentQuoteConfirmed, model.AppointmentInProgress, opProgress, true},
		{"no work without an approved quote", model.AppointmentArrived, model.AppointmentInProgress, opProgress, false},
		{"technician finishes", model.AppointmentInProgress, model.AppointmentTechnicianDone, opComplete, true},
		{"reschedule keeps booked", model.AppointmentBooked, model.AppointmentBooked, opReschedule, true},
		{"reschedule drops confirmed back", model.AppointmentConfirmed, model.AppointmentBooked, opReschedule, true},
		{"reschedule after arrival", model.AppointmentArrived, model.AppointmentBooked, opReschedule, false},
		{"cancel mid-repair", model.AppointmentInProgress, model.AppointmentCancelled, opCancel, true},
		{"cancel a cancelled appointment", model.AppointmentCancelled, model.AppointmentCancelled, opCancel, false},
		{"cancel after completion", model.AppointmentTechnicianDone, model.AppointmentCancelled, opCancel, false},
		{"no way out of technician_done", model.AppointmentTechnicianDone, model.AppointmentConfirmed, opConfirm, false},
		{"cancel must target cancelled", model.AppointmentConfirmed, model.AppointmentBooked, opCancel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, canTransition(tt.from, tt.to, tt.via))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, isTerminal(model.AppointmentCancelled))
	assert.True(t, isTerminal(model.AppointmentTechnicianDone))

	for _, s := range []model.AppointmentStatus{
		model.AppointmentBooked,
		model.AppointmentConfirmed,
		model.AppointmentEnRoute,
		model.AppointmentArrived,
		model.AppointmentQuoted,
		model.AppointmentQuoteConfirmed,
		model.AppointmentInProgress,
	} {
		assert.False(t, isTerminal(s), "status %s", s)
	}
}

func TestAllowedNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from model.AppointmentStatus
		want []model.AppointmentStatus
	}{
		{
			name: "booked",
			from: model.AppointmentBooked,
			want: []model.AppointmentStatus{
				model.AppointmentConfirmed,
				model.AppointmentBooked,
				model.AppointmentCancelled,
			},
		},
		{
			name: "quoted",
			from: model.AppointmentQuoted,
			want: []model.AppointmentStatus{
				model.AppointmentQuoteConfirmed,
				model.AppointmentCancelled,
			},
		},
		{
			name: "in progress",
			from: model.AppointmentInProgress,
			want: []model.AppointmentStatus{
				model.AppointmentQuoted,
				model.AppointmentTechnicianDone,
				model.AppointmentCancelled,
			},
		},
		{
			name: "technician done is terminal",
			from: model.AppointmentTechnicianDone,
			want: nil,
		},
		{
			name: "cancelled is terminal",
			from: model.AppointmentCancelled,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, allowedNext(tt.from))
		})
	}
}

func TestEveryStatusReachableFromBooked(t *testing.T) {
	t.Parallel()

	reached := map[model.AppointmentStatus]bool{model.AppointmentBooked: true}
	queue := []model.AppointmentStatus{model.AppointmentBooked}
	for len(queue) > 0 {
		from := queue[0]
		queue = queue[1:]
		for _, next := range allowedNext(from) {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, s := range []model.AppointmentStatus{
		model.AppointmentBooked,
		model.AppointmentConfirmed,
		model.AppointmentEnRoute,
		model.AppointmentArrived,
		model.AppointmentQuoted,
		model.AppointmentQuoteConfirmed,
		model.AppointmentInProgress,
		model.AppointmentTechnicianDone,
		model.AppointmentCancelled,
	} {
		assert.True(t, reached[s], "status %s", s)
	}
}

func TestInvalidTransitionPayload(t *testing.T) {
	t.Parallel()

	err := invalidTransition(model.AppointmentConfirmed, model.AppointmentArrived)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	var itErr *model.InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Equal(t, model.AppointmentConfirmed, itErr.Current)
	assert.Equal(t, model.AppointmentArrived, itErr.Attempted)
	assert.ElementsMatch(t, []model.AppointmentStatus{
		model.AppointmentEnRoute,
		model.AppointmentBooked,
		model.AppointmentCancelled,
	}, itErr.Allowed)
}
