package converter

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/fixmate/field-service/internal/converter"
)

var (
	//go:embed templates/status_changed.tmpl
	statusChangedFS       embed.FS
	statusChangedTemplate = template.Must(template.ParseFS(statusChangedFS, "templates/status_changed.tmpl"))
)

// statusTitles maps wire statuses to customer-facing wording; unknown
// statuses fall through to the raw value.
var statusTitles = map[string]string{
	"booked":          "Booked",
	"confirmed":       "Confirmed",
	"en_route":        "Technician en route",
	"arrived":         "Technician arrived",
	"quoted":          "Quote ready",
	"quote_confirmed": "Quote confirmed",
	"in_progress":     "Repair in progress",
	"technician_done": "Repair finished",
	"cancelled":       "Cancelled",
}

type statusChangedNotification struct {
	AppointmentID string
	Status        string
	OccurredAt    string
}

func BuildStatusChanged(p *converter.StatusChangedPayload) (string, error) {
	title, ok := statusTitles[p.NewStatus]
	if !ok {
		title = p.NewStatus
	}

	n := statusChangedNotification{
		AppointmentID: p.AppointmentID,
		Status:        title,
		OccurredAt:    p.OccurredAt.Format("2006-01-02 15:04"),
	}

	var buf bytes.Buffer
	if err := statusChangedTemplate.Execute(&buf, n); err != nil {
		return "", err
	}

	return buf.String(), nil
}
