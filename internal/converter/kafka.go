package converter

import (
	"encoding/json"
	"time"

	"github.com/fixmate/field-service/internal/model"
)

// StatusChangedPayload is the wire form of a status change event. Keys carry
// the appointment id so one appointment's events stay in partition order.
type StatusChangedPayload struct {
	EventID       string    `json:"event_id"`
	AppointmentID string    `json:"appointment_id"`
	UserID        string    `json:"user_id"`
	NewStatus     string    `json:"new_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func StatusChangedToWire(e model.StatusChangedEvent) (key, value []byte, err error) {
	value, err = json.Marshal(StatusChangedPayload{
		EventID:       e.EventID.String(),
		AppointmentID: e.AppointmentID.String(),
		UserID:        e.UserID.String(),
		NewStatus:     string(e.NewStatus),
		OccurredAt:    e.OccurredAt,
	})
	if err != nil {
		return nil, nil, err
	}
	return []byte(e.AppointmentID.String()), value, nil
}

func StatusChangedFromWire(data []byte) (*StatusChangedPayload, error) {
	var p StatusChangedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
