package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/fixmate/field-service/internal/model"
	"github.com/fixmate/field-service/platform/logger"
)

type TxManager interface {
	ReadCommitted(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.ServiceOrder) (uuid.UUID, error)
	ByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	ByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	Update(ctx context.Context, upd *model.OrderUpdate) error
}

type OrderDetailRepository interface {
	Create(ctx context.Context, d *model.ServiceOrderDetail) (uuid.UUID, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.ServiceOrderDetail, error)
	ListByOrderIDForUpdate(ctx context.Context, orderID uuid.UUID) ([]model.ServiceOrderDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DetailStatus) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) (uuid.UUID, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.Appointment, error)
	Update(ctx context.Context, upd *model.AppointmentUpdate) error
	UpsertStatusSnapshot(ctx context.Context, appointmentID uuid.UUID, status model.AppointmentStatus) error
}

type StatusHistoryRepository interface {
	Append(ctx context.Context, ch *model.StatusChange) (uuid.UUID, error)
}

type ServiceCatalogRepository interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

type Notifier interface {
	Notify(ctx context.Context, event model.StatusChangedEvent)
}

type service struct {
	txm          TxManager
	orders       OrderRepository
	details      OrderDetailRepository
	appointments AppointmentRepository
	history      StatusHistoryRepository
	catalog      ServiceCatalogRepository
	notifier     Notifier
}

func NewOrderService(
	txm TxManager,
	orders OrderRepository,
	details OrderDetailRepository,
	appointments AppointmentRepository,
	history StatusHistoryRepository,
	catalog ServiceCatalogRepository,
	notifier Notifier,
) *service {
	return &service{
		txm:          txm,
		orders:       orders,
		details:      details,
		appointments: appointments,
		history:      history,
		catalog:      catalog,
		notifier:     notifier,
	}
}

// Create books a service order with one line and one appointment per
// requested service. Line prices start at the catalog price; the order total
// is their sum.
func (svc *service) Create(ctx context.Context, params model.CreateOrderParams) (*model.CreateOrderResult, error) {
	const op string = "order.service.Create"
	log := logger.With(
		logger.String("customer_id", params.CustomerID.String()),
		logger.Int("number_details", len(params.Details)),
	)

	if params.CustomerID == uuid.Nil || len(params.Details) == 0 {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}
	for _, d := range params.Details {
		if d.ServiceID == uuid.Nil || d.Appointment == nil ||
			d.Appointment.ScheduledDate.IsZero() || d.Appointment.Address == "" {
			log.Error(ctx, "wrong detail params")
			return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
		}
	}

	services := make([]*model.Service, 0, len(params.Details))
	for _, d := range params.Details {
		s, err := svc.catalog.ByID(ctx, d.ServiceID)
		if err != nil {
			log.Error(ctx, "catalog service by id",
				logger.String("service_id", d.ServiceID.String()),
				logger.ErrorF(err),
			)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !s.IsActive {
			log.Error(ctx, "inactive service", logger.String("service_id", s.ID.String()))
			return nil, fmt.Errorf("%s: %w", op, model.ErrServiceInactive)
		}
		services = append(services, s)
	}

	total := lo.SumBy(services, func(s *model.Service) int64 { return s.Price })

	var result *model.CreateOrderResult
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		orderID, err := svc.orders.Create(ctx, &model.ServiceOrder{
			CustomerID:  params.CustomerID,
			StaffID:     params.StaffID,
			Status:      model.OrderBooked,
			TotalAmount: total,
			UpdatedBy:   params.StaffID,
		})
		if err != nil {
			return err
		}

		appointmentIDs := make([]uuid.UUID, 0, len(params.Details))
		for i, d := range params.Details {
			detailID, err := svc.details.Create(ctx, &model.ServiceOrderDetail{
				OrderID:    orderID,
				ServiceID:  d.ServiceID,
				Status:     model.DetailBooked,
				BasePrice:  services[i].Price,
				FinalPrice: services[i].Price,
			})
			if err != nil {
				return err
			}

			appointmentID, err := svc.appointments.Create(ctx, &model.Appointment{
				UserID:         params.CustomerID,
				ServiceOrderID: orderID,
				OrderDetailID:  detailID,
				Status:         model.AppointmentBooked,
				ScheduledDate:  d.Appointment.ScheduledDate,
				ScheduledTime:  d.Appointment.ScheduledTime,
				Address:        d.Appointment.Address,
				Phone:          params.CustomerPhone,
				CustomerNote:   d.Appointment.CustomerNote,
			})
			if err != nil {
				return err
			}

			if err := svc.appointments.UpsertStatusSnapshot(ctx, appointmentID, model.AppointmentBooked); err != nil {
				return err
			}
			appointmentIDs = append(appointmentIDs, appointmentID)
		}

		result = &model.CreateOrderResult{
			OrderID:        orderID,
			AppointmentIDs: appointmentIDs,
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "create order", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, id := range result.AppointmentIDs {
		svc.notifier.Notify(ctx, model.StatusChangedEvent{
			EventID:       uuid.New(),
			AppointmentID: id,
			UserID:        params.CustomerID,
			NewStatus:     model.AppointmentBooked,
			OccurredAt:    time.Now().UTC(),
		})
	}

	return result, nil
}

// Confirm is the staff acceptance of a booked order: the order, its live
// lines and their appointments all move to confirmed in one unit of work.
func (svc *service) Confirm(ctx context.Context, orderID, staffID uuid.UUID) (*model.OrderActionResult, error) {
	const op string = "order.service.Confirm"
	log := logger.With(
		logger.String("order_id", orderID.String()),
		logger.String("staff_id", staffID.String()),
	)

	if orderID == uuid.Nil || staffID == uuid.Nil {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var (
		result   *model.OrderActionResult
		notified []model.Appointment
	)
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		ord, err := svc.orders.ByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord.Status != model.OrderBooked {
			log.Error(ctx, "order conflict", logger.String("status", string(ord.Status)))
			return model.ErrOrderConflict
		}

		status := model.OrderConfirmed
		err = svc.orders.Update(ctx, &model.OrderUpdate{
			ID:        ord.ID,
			Status:    &status,
			UpdatedBy: &staffID,
		})
		if err != nil {
			return err
		}

		details, err := svc.details.ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		for _, d := range details {
			if d.Status != model.DetailBooked {
				continue
			}
			if err := svc.details.UpdateStatus(ctx, d.ID, model.DetailConfirmed); err != nil {
				return err
			}
		}

		appointments, err := svc.appointments.ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		for _, a := range appointments {
			if a.Status != model.AppointmentBooked {
				continue
			}

			confirmed := model.AppointmentConfirmed
			err := svc.appointments.Update(ctx, &model.AppointmentUpdate{
				ID:     a.ID,
				Status: &confirmed,
			})
			if err != nil {
				return err
			}
			if err := svc.appointments.UpsertStatusSnapshot(ctx, a.ID, model.AppointmentConfirmed); err != nil {
				return err
			}
			_, err = svc.history.Append(ctx, &model.StatusChange{
				AppointmentID: a.ID,
				OldStatus:     model.AppointmentBooked,
				NewStatus:     model.AppointmentConfirmed,
				ChangedBy:     model.ActorStaff,
			})
			if err != nil {
				return err
			}
			notified = append(notified, a)
		}

		result = &model.OrderActionResult{
			OrderID:     ord.ID,
			Status:      model.OrderConfirmed,
			TotalAmount: ord.TotalAmount,
			UpdatedAt:   time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "confirm order", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, a := range notified {
		svc.notifier.Notify(ctx, model.StatusChangedEvent{
			EventID:       uuid.New(),
			AppointmentID: a.ID,
			UserID:        a.UserID,
			NewStatus:     model.AppointmentConfirmed,
			OccurredAt:    time.Now().UTC(),
		})
	}

	return result, nil
}

// MarkPaid records an on-site payment collected by the assigned technician.
func (svc *service) MarkPaid(ctx context.Context, params model.MarkPaidParams) (*model.MarkPaidResult, error) {
	const op string = "order.service.MarkPaid"
	log := logger.With(
		logger.String("order_id", params.OrderID.String()),
		logger.String("technician_id", params.TechnicianID.String()),
		logger.String("payment_method", string(params.PaymentMethod)),
	)

	if params.OrderID == uuid.Nil || params.TechnicianID == uuid.Nil {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}
	switch params.PaymentMethod {
	case model.PaymentMethodCash, model.PaymentMethodCard, model.PaymentMethodTransfer:
	default:
		log.Error(ctx, "unknown payment method")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var result *model.MarkPaidResult
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		ord, err := svc.orders.ByIDForUpdate(ctx, params.OrderID)
		if err != nil {
			return err
		}

		switch ord.Status {
		case model.OrderConfirmed:
		case model.OrderPaid, model.OrderCompleted, model.OrderCancelled:
			log.Error(ctx, "order conflict", logger.String("status", string(ord.Status)))
			return model.ErrOrderConflict
		default:
			log.Error(ctx, "unexpected order status", logger.String("status", string(ord.Status)))
			return model.ErrUnknownStatus
		}

		appointments, err := svc.appointments.ListByOrderID(ctx, params.OrderID)
		if err != nil {
			return err
		}
		techAppointment, assigned := lo.Find(appointments, func(a model.Appointment) bool {
			return a.TechnicianID != nil && *a.TechnicianID == params.TechnicianID
		})
		if !assigned {
			return model.ErrForbidden
		}
		if techAppointment.Status != model.AppointmentTechnicianDone {
			log.Error(ctx, "repair not finished",
				logger.String("appointment_status", string(techAppointment.Status)),
			)
			return fmt.Errorf("appointment %s status %q: %w",
				techAppointment.ID, techAppointment.Status, model.ErrOrderNotReady)
		}

		details, err := svc.details.ListByOrderID(ctx, params.OrderID)
		if err != nil {
			return err
		}
		settleReady := lo.SomeBy(details, func(d model.ServiceOrderDetail) bool {
			return d.Status == model.DetailCompleted
		})
		if !settleReady {
			log.Error(ctx, "no completed lines")
			return model.ErrOrderNotReady
		}

		status := model.OrderPaid
		err = svc.orders.Update(ctx, &model.OrderUpdate{
			ID:            ord.ID,
			Status:        &status,
			PaymentMethod: &params.PaymentMethod,
			UpdatedBy:     &params.TechnicianID,
		})
		if err != nil {
			return err
		}

		result = &model.MarkPaidResult{
			OrderID:       ord.ID,
			Status:        model.OrderPaid,
			PaymentMethod: params.PaymentMethod,
			UpdatedAt:     time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "mark paid", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// Complete settles a paid order. Every non-cancelled line must already be
// completed, and the stored total must equal the recomputed sum of those
// lines; a mismatch means an earlier write went wrong and the settlement is
// refused.
func (svc *service) Complete(ctx context.Context, orderID, staffID uuid.UUID) (*model.OrderActionResult, error) {
	const op string = "order.service.Complete"
	log := logger.With(
		logger.String("order_id", orderID.String()),
		logger.String("staff_id", staffID.String()),
	)

	if orderID == uuid.Nil || staffID == uuid.Nil {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var result *model.OrderActionResult
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		ord, err := svc.orders.ByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord.Status != model.OrderPaid {
			log.Error(ctx, "order conflict", logger.String("status", string(ord.Status)))
			return model.ErrOrderConflict
		}

		details, err := svc.details.ListByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		var linesTotal int64
		live := 0
		for _, d := range details {
			if d.Status == model.DetailCancelled {
				continue
			}
			live++
			if d.Status != model.DetailCompleted {
				log.Error(ctx, "line not settle-ready",
					logger.String("order_detail_id", d.ID.String()),
					logger.String("status", string(d.Status)),
				)
				return model.ErrOrderNotReady
			}
			linesTotal += d.FinalPrice
		}
		if live == 0 {
			return model.ErrOrderNotReady
		}

		if linesTotal != ord.TotalAmount {
			return &model.TotalMismatchError{
				OrderID:     ord.ID,
				StoredTotal: ord.TotalAmount,
				LinesTotal:  linesTotal,
			}
		}

		status := model.OrderCompleted
		err = svc.orders.Update(ctx, &model.OrderUpdate{
			ID:        ord.ID,
			Status:    &status,
			UpdatedBy: &staffID,
		})
		if err != nil {
			return err
		}

		result = &model.OrderActionResult{
			OrderID:     ord.ID,
			Status:      model.OrderCompleted,
			TotalAmount: ord.TotalAmount,
			UpdatedAt:   time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "complete order", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) ByID(ctx context.Context, orderID uuid.UUID) (*model.ServiceOrder, error) {
	const op string = "order.service.ByID"

	ord, err := svc.orders.ByID(ctx, orderID)
	if err != nil {
		logger.Error(ctx, "repository order by id",
			logger.String("order_id", orderID.String()),
			logger.ErrorF(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ord, nil
}
