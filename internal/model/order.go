package model

import (
	"time"

	"github.com/google/uuid"
)

type (
	OrderStatus   string
	DetailStatus  string
	PaymentMethod string
)

const (
	OrderBooked    OrderStatus = "booked"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPaid      OrderStatus = "paid"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

const (
	DetailBooked    DetailStatus = "booked"
	DetailConfirmed DetailStatus = "confirmed"
	DetailCompleted DetailStatus = "completed"
	DetailCancelled DetailStatus = "cancelled"
)

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

type ServiceOrder struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	StaffID    *uuid.UUID
	Status     OrderStatus
	// Sum of all non-cancelled lines' final price, in cents. Maintained by
	// delta, reconciled on completion.
	TotalAmount   int64
	PaymentMethod *PaymentMethod
	OrderDate     time.Time
	UpdatedBy     *uuid.UUID
	UpdatedAt     time.Time
}

type ServiceOrderDetail struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ServiceID uuid.UUID
	Status    DetailStatus
	// Prices in cents; FinalPrice == BasePrice + AdditionalPrice + PartsPrice.
	BasePrice       int64
	AdditionalPrice int64
	PartsPrice      int64
	FinalPrice      int64
}

// Service is the catalog entry an order line refers to.
type Service struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
	// Catalog price in cents; becomes the line's base price at booking.
	Price          int64
	WarrantyPeriod int
	WarrantyUnit   WarrantyUnit
}

type AppointmentRequest struct {
	ScheduledDate time.Time
	ScheduledTime string
	Address       string
	CustomerNote  string
}

type CreateOrderDetailParams struct {
	ServiceID   uuid.UUID
	Appointment *AppointmentRequest
}

type CreateOrderParams struct {
	CustomerID    uuid.UUID
	StaffID       *uuid.UUID
	CustomerPhone string
	Details       []CreateOrderDetailParams
}

type CreateOrderResult struct {
	OrderID        uuid.UUID
	AppointmentIDs []uuid.UUID
}

type OrderActionResult struct {
	OrderID     uuid.UUID
	Status      OrderStatus
	TotalAmount int64
	UpdatedAt   time.Time
}

type MarkPaidParams struct {
	OrderID       uuid.UUID
	TechnicianID  uuid.UUID
	PaymentMethod PaymentMethod
}

type MarkPaidResult struct {
	OrderID       uuid.UUID
	Status        OrderStatus
	PaymentMethod PaymentMethod
	UpdatedAt     time.Time
}
