package model

import (
	"time"

	"github.com/google/uuid"
)

type (
	WarrantyStatus string
	WarrantyUnit   string
)

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
	WarrantyVoid    WarrantyStatus = "void"
)

const (
	WarrantyUnitDays   WarrantyUnit = "days"
	WarrantyUnitMonths WarrantyUnit = "months"
	WarrantyUnitYears  WarrantyUnit = "years"
)

type ServiceWarranty struct {
	ID            uuid.UUID
	OrderDetailID uuid.UUID
	ServiceID     uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	Status        WarrantyStatus
	ClaimCount    int
}
