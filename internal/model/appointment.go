package model

import (
	"time"

	"github.com/google/uuid"
)

type (
	AppointmentStatus string
	ActorKind         string
	CancelParty       string
	RepairImageKind   string
)

const (
	AppointmentBooked         AppointmentStatus = "booked"
	AppointmentConfirmed      AppointmentStatus = "confirmed"
	AppointmentEnRoute        AppointmentStatus = "en_route"
	AppointmentArrived        AppointmentStatus = "arrived"
	AppointmentQuoted         AppointmentStatus = "quoted"
	AppointmentQuoteConfirmed AppointmentStatus = "quote_confirmed"
	AppointmentInProgress     AppointmentStatus = "in_progress"
	AppointmentTechnicianDone AppointmentStatus = "technician_done"
	AppointmentCancelled      AppointmentStatus = "cancelled"
)

const (
	ActorCustomer   ActorKind = "customer"
	ActorTechnician ActorKind = "technician"
	ActorStaff      ActorKind = "staff"
	ActorSystem     ActorKind = "system"
)

const (
	CancelledByCustomer   CancelParty = "customer"
	CancelledByTechnician CancelParty = "technician"
	CancelledBySystem     CancelParty = "system"
)

const (
	RepairImagePre  RepairImageKind = "pre"
	RepairImagePost RepairImageKind = "post"
)

// MaxReschedules bounds customer-initiated date/time changes per appointment.
const MaxReschedules = 3

type Appointment struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ServiceOrderID uuid.UUID
	OrderDetailID  uuid.UUID
	// Assigned technician; nil until dispatch.
	TechnicianID    *uuid.UUID
	Status          AppointmentStatus
	ScheduledDate   time.Time
	ScheduledTime   string
	Address         string
	Phone           string
	CustomerNote    string
	EmployeeNote    string
	Diagnosis       string
	CancelReason    string
	CancelledBy     *CancelParty
	RescheduleCount int
}

// StatusChange is one append-only audit row; immutable once written.
type StatusChange struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	OldStatus     AppointmentStatus
	NewStatus     AppointmentStatus
	ChangedBy     ActorKind
	CreatedAt     time.Time
}

type RepairImage struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	Kind          RepairImageKind
	URL           string
}

type UpdateStatusParams struct {
	AppointmentID uuid.UUID
	TechnicianID  uuid.UUID
	NewStatus     AppointmentStatus
	Note          string
}

type StatusUpdateResult struct {
	AppointmentID uuid.UUID
	Status        AppointmentStatus
	UpdatedAt     time.Time
}

type CompleteRepairParams struct {
	AppointmentID uuid.UUID
	TechnicianID  uuid.UUID
	Note          string
	ImageURLs     []string
}

type CompleteRepairResult struct {
	AppointmentID uuid.UUID
	Status        AppointmentStatus
	UpdatedAt     time.Time
	Images        []RepairImage
	Warranty      *ServiceWarranty
}

type AddSparePartsParams struct {
	AppointmentID uuid.UUID
	TechnicianID  uuid.UUID
	Items         []SparePartUsage
}

type AddSparePartsResult struct {
	AppointmentID  uuid.UUID
	OrderDetailID  uuid.UUID
	PartCount      int
	AddedPartsCost int64
}

type QuoteParams struct {
	OrderDetailID   uuid.UUID
	AppointmentID   uuid.UUID
	TechnicianID    uuid.UUID
	BasePrice       int64
	AdditionalPrice int64
	Diagnosis       string
	ImageURLs       []string
}

type QuoteResult struct {
	OrderDetailID   uuid.UUID
	AppointmentID   uuid.UUID
	BasePrice       int64
	AdditionalPrice int64
	FinalPrice      int64
	Images          []RepairImage
}

type QuoteConfirmResult struct {
	AppointmentID   uuid.UUID
	Status          AppointmentStatus
	RescheduleCount int
	UpdatedAt       time.Time
}

type CustomerUpdateParams struct {
	AppointmentID uuid.UUID
	UserID        uuid.UUID
	ScheduledDate time.Time
	ScheduledTime string
	Address       string
	Phone         string
	CustomerNote  string
}

type CustomerUpdateResult struct {
	AppointmentID   uuid.UUID
	Status          AppointmentStatus
	ScheduledDate   time.Time
	ScheduledTime   string
	Address         string
	CustomerNote    string
	RescheduleCount int
}

type CustomerCancelParams struct {
	AppointmentID uuid.UUID
	UserID        uuid.UUID
	Reason        string
}

type CustomerCancelResult struct {
	AppointmentID  uuid.UUID
	Status         AppointmentStatus
	CancelReason   string
	CancelledBy    CancelParty
	OrderCancelled bool
	UpdatedAt      time.Time
}

// StatusChangedEvent is published after a unit of work commits; delivery is
// fire-and-forget.
type StatusChangedEvent struct {
	EventID       uuid.UUID
	AppointmentID uuid.UUID
	UserID        uuid.UUID
	NewStatus     AppointmentStatus
	OccurredAt    time.Time
}
