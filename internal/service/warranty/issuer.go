package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fixmate/field-service/internal/model"
)

type ServiceCatalogRepository interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

type WarrantyRepository interface {
	Create(ctx context.Context, w *model.ServiceWarranty) (uuid.UUID, error)
}

type issuer struct {
	catalog    ServiceCatalogRepository
	warranties WarrantyRepository
}

func NewWarrantyIssuer(catalog ServiceCatalogRepository, warranties WarrantyRepository) *issuer {
	return &issuer{
		catalog:    catalog,
		warranties: warranties,
	}
}

// Issue creates the warranty for a completed order line based on the
// service's catalog terms. Services without a warranty period yield no
// warranty and no error.
func (i *issuer) Issue(ctx context.Context, orderDetailID, serviceID uuid.UUID, completedAt time.Time) (*model.ServiceWarranty, error) {
	const op string = "warranty.service.Issue"

	svc, err := i.catalog.ByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if svc.WarrantyPeriod <= 0 {
		return nil, nil
	}

	endDate, err := warrantyEnd(completedAt, svc.WarrantyPeriod, svc.WarrantyUnit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w := &model.ServiceWarranty{
		OrderDetailID: orderDetailID,
		ServiceID:     serviceID,
		StartDate:     completedAt,
		EndDate:       endDate,
		Status:        model.WarrantyActive,
	}
	id, err := i.warranties.Create(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w.ID = id

	return w, nil
}

// warrantyEnd advances the start date by the warranty term using calendar
// arithmetic, so month terms land on the same day-of-month where possible.
func warrantyEnd(start time.Time, period int, unit model.WarrantyUnit) (time.Time, error) {
	switch unit {
	case model.WarrantyUnitDays:
		return start.AddDate(0, 0, period), nil
	case model.WarrantyUnitMonths:
		return start.AddDate(0, period, 0), nil
	case model.WarrantyUnitYears:
		return start.AddDate(period, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("warranty unit %q: %w", unit, model.ErrInconsistentState)
	}
}
