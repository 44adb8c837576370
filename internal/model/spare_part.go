package model

import "github.com/google/uuid"

type SparePart struct {
	ID   uuid.UUID
	Name string
	// Unit price in cents.
	Price           int64
	QuantityInStock int64
}

// UsedSparePart is one ledger row pairing a stock decrement with the
// appointment that consumed it.
type UsedSparePart struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	SparePartID   uuid.UUID
	QuantityUsed  int64
}

type SparePartUsage struct {
	SparePartID uuid.UUID
	Quantity    int64
}

type StockShortfall struct {
	SparePartID uuid.UUID
	Name        string
	Requested   int64
	Available   int64
}
