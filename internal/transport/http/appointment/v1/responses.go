package v1

import (
	"time"

	"github.com/fixmate/field-service/internal/model"
)

type statusUpdateResponse struct {
	AppointmentID string    `json:"appointmentId"`
	Status        string    `json:"status"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type quoteResponse struct {
	OrderDetailID   string          `json:"orderDetailId"`
	AppointmentID   string          `json:"appointmentId"`
	BasePrice       int64           `json:"basePrice"`
	AdditionalPrice int64           `json:"additionalPrice"`
	FinalPrice      int64           `json:"finalPrice"`
	Images          []imageResponse `json:"images,omitempty"`
}

type quoteConfirmResponse struct {
	AppointmentID   string    `json:"appointmentId"`
	Status          string    `json:"status"`
	RescheduleCount int       `json:"rescheduleCount"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type addSparePartsResponse struct {
	AppointmentID  string `json:"appointmentId"`
	OrderDetailID  string `json:"orderDetailId"`
	PartCount      int    `json:"partCount"`
	AddedPartsCost int64  `json:"addedPartsCost"`
}

type completeRepairResponse struct {
	AppointmentID string            `json:"appointmentId"`
	Status        string            `json:"status"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Images        []imageResponse   `json:"images,omitempty"`
	Warranty      *warrantyResponse `json:"warranty,omitempty"`
}

type warrantyResponse struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

type customerUpdateResponse struct {
	AppointmentID   string `json:"appointmentId"`
	Status          string `json:"status"`
	ScheduledDate   string `json:"scheduledDate"`
	ScheduledTime   string `json:"scheduledTime"`
	Address         string `json:"address"`
	CustomerNote    string `json:"customerNote"`
	RescheduleCount int    `json:"rescheduleCount"`
}

type customerCancelResponse struct {
	AppointmentID  string    `json:"appointmentId"`
	Status         string    `json:"status"`
	CancelReason   string    `json:"cancelReason"`
	CancelledBy    string    `json:"cancelledBy"`
	OrderCancelled bool      `json:"orderCancelled"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type imageResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type statusChangeResponse struct {
	ID        string    `json:"id"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedBy string    `json:"changedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type appointmentResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	ServiceOrderID  string `json:"serviceOrderId"`
	OrderDetailID   string `json:"orderDetailId"`
	TechnicianID    string `json:"technicianId,omitempty"`
	Status          string `json:"status"`
	ScheduledDate   string `json:"scheduledDate"`
	ScheduledTime   string `json:"scheduledTime"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	CustomerNote    string `json:"customerNote,omitempty"`
	EmployeeNote    string `json:"employeeNote,omitempty"`
	Diagnosis       string `json:"diagnosis,omitempty"`
	CancelReason    string `json:"cancelReason,omitempty"`
	CancelledBy     string `json:"cancelledBy,omitempty"`
	RescheduleCount int    `json:"rescheduleCount"`
}

func toAppointmentResponse(a *model.Appointment) appointmentResponse {
	resp := appointmentResponse{
		ID:              a.ID.String(),
		UserID:          a.UserID.String(),
		ServiceOrderID:  a.ServiceOrderID.String(),
		OrderDetailID:   a.OrderDetailID.String(),
		Status:          string(a.Status),
		ScheduledDate:   a.ScheduledDate.Format(scheduledDateLayout),
		ScheduledTime:   a.ScheduledTime,
		Address:         a.Address,
		Phone:           a.Phone,
		CustomerNote:    a.CustomerNote,
		EmployeeNote:    a.EmployeeNote,
		Diagnosis:       a.Diagnosis,
		CancelReason:    a.CancelReason,
		RescheduleCount: a.RescheduleCount,
	}
	if a.TechnicianID != nil {
		resp.TechnicianID = a.TechnicianID.String()
	}
	if a.CancelledBy != nil {
		resp.CancelledBy = string(*a.CancelledBy)
	}
	return resp
}

func toImageResponses(images []model.RepairImage) []imageResponse {
	if len(images) == 0 {
		return nil
	}
	out := make([]imageResponse, len(images))
	for i, img := range images {
		out[i] = imageResponse{
			ID:   img.ID.String(),
			Kind: string(img.Kind),
			URL:  img.URL,
		}
	}
	return out
}
