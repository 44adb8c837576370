package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentUpdate is a sparse patch; nil fields are left untouched.
type AppointmentUpdate struct {
	ID              uuid.UUID
	Status          *AppointmentStatus
	TechnicianID    *uuid.UUID
	ScheduledDate   *time.Time
	ScheduledTime   *string
	Address         *string
	Phone           *string
	CustomerNote    *string
	EmployeeNote    *string
	Diagnosis       *string
	CancelReason    *string
	CancelledBy     *CancelParty
	RescheduleCount *int
}

// OrderUpdate is a sparse patch; nil fields are left untouched.
type OrderUpdate struct {
	ID            uuid.UUID
	Status        *OrderStatus
	TotalAmount   *int64
	PaymentMethod *PaymentMethod
	UpdatedBy     *uuid.UUID
}
