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

type AppointmentRepository interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, upd *model.AppointmentUpdate) error
	UpsertStatusSnapshot(ctx context.Context, appointmentID uuid.UUID, status model.AppointmentStatus) error
}

type StatusHistoryRepository interface {
	Append(ctx context.Context, ch *model.StatusChange) (uuid.UUID, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]model.StatusChange, error)
}

type OrderDetailRepository interface {
	ByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceOrderDetail, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.ServiceOrderDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DetailStatus) error
	SetQuote(ctx context.Context, id uuid.UUID, basePrice, additionalPrice int64) error
	AddPartsPrice(ctx context.Context, id uuid.UUID, delta int64) error
}

type OrderRepository interface {
	ByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	Update(ctx context.Context, upd *model.OrderUpdate) error
	AddTotal(ctx context.Context, id uuid.UUID, delta int64, updatedBy uuid.UUID) error
}

type SparePartRepository interface {
	ListByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.SparePart, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int64) error
	InsertUsed(ctx context.Context, rows []model.UsedSparePart) error
}

type RepairImageRepository interface {
	InsertBatch(ctx context.Context, images []model.RepairImage) ([]model.RepairImage, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]model.RepairImage, error)
}

type WarrantyIssuer interface {
	Issue(ctx context.Context, orderDetailID, serviceID uuid.UUID, completedAt time.Time) (*model.ServiceWarranty, error)
}

type Notifier interface {
	Notify(ctx context.Context, event model.StatusChangedEvent)
}

type service struct {
	txm          TxManager
	appointments AppointmentRepository
	history      StatusHistoryRepository
	details      OrderDetailRepository
	orders       OrderRepository
	parts        SparePartRepository
	images       RepairImageRepository
	warranty     WarrantyIssuer
	notifier     Notifier
}

func NewAppointmentService(
	txm TxManager,
	appointments AppointmentRepository,
	history StatusHistoryRepository,
	details OrderDetailRepository,
	orders OrderRepository,
	parts SparePartRepository,
	images RepairImageRepository,
	warranty WarrantyIssuer,
	notifier Notifier,
) *service {
	return &service{
		txm:          txm,
		appointments: appointments,
		history:      history,
		details:      details,
		orders:       orders,
		parts:        parts,
		images:       images,
		warranty:     warranty,
		notifier:     notifier,
	}
}

// UpdateStatus moves an appointment one step along the technician
// progression: confirmed -> en_route -> arrived and
// quote_confirmed -> in_progress.
func (svc *service) UpdateStatus(ctx context.Context, params model.UpdateStatusParams) (*model.StatusUpdateResult, error) {
	const op string = "appointment.service.UpdateStatus"
	log := logger.With(
		logger.String("appointment_id", params.AppointmentID.String()),
		logger.String("new_status", string(params.NewStatus)),
	)

	if params.AppointmentID == uuid.Nil || params.TechnicianID == uuid.Nil {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var (
		result     *model.StatusUpdateResult
		customerID uuid.UUID
	)
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		a, err := svc.appointments.ByIDForUpdate(ctx, params.AppointmentID)
		if err != nil {
			return err
		}
		customerID = a.UserID

		if err := requireTechnician(a, params.TechnicianID); err != nil {
			return err
		}
		if !canTransition(a.Status, params.NewStatus, opProgress) {
			return invalidTransition(a.Status, params.NewStatus)
		}

		upd := &model.AppointmentUpdate{}
		if params.Note != "" {
			upd.EmployeeNote = &params.Note
		}
		if err := svc.applyTransition(ctx, a, params.NewStatus, model.ActorTechnician, upd); err != nil {
			return err
		}

		result = &model.StatusUpdateResult{
			AppointmentID: a.ID,
			Status:        params.NewStatus,
			UpdatedAt:     time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "update status", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc.notify(ctx, params.AppointmentID, customerID, result.Status)

	return result, nil
}

// Quote records the technician's diagnosis and pricing on the order line and
// moves the appointment to quoted. The order total shifts by the difference
// between the new and the previous line price.
func (svc *service) Quote(ctx context.Context, params model.QuoteParams) (*model.QuoteResult, error) {
	const op string = "appointment.service.Quote"
	log := logger.With(
		logger.String("appointment_id", params.AppointmentID.String()),
		logger.String("order_detail_id", params.OrderDetailID.String()),
	)

	if params.AppointmentID == uuid.Nil || params.OrderDetailID == uuid.Nil || params.TechnicianID == uuid.Nil ||
		params.BasePrice < 0 || params.AdditionalPrice < 0 || params.Diagnosis == "" {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var (
		result     *model.QuoteResult
		customerID uuid.UUID
	)
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		a, err := svc.appointments.ByIDForUpdate(ctx, params.AppointmentID)
		if err != nil {
			return err
		}
		customerID = a.UserID

		if err := requireTechnician(a, params.TechnicianID); err != nil {
			return err
		}
		if !canTransition(a.Status, model.AppointmentQuoted, opQuote) {
			return invalidTransition(a.Status, model.AppointmentQuoted)
		}

		d, err := svc.details.ByIDForUpdate(ctx, params.OrderDetailID)
		if err != nil {
			return err
		}
		if d.ID != a.OrderDetailID || d.OrderID != a.ServiceOrderID {
			return model.ErrOrderMismatch
		}

		finalPrice := params.BasePrice + params.AdditionalPrice + d.PartsPrice
		delta := finalPrice - d.FinalPrice

		if err := svc.details.SetQuote(ctx, d.ID, params.BasePrice, params.AdditionalPrice); err != nil {
			return err
		}
		if delta != 0 {
			if err := svc.orders.AddTotal(ctx, d.OrderID, delta, params.TechnicianID); err != nil {
				return err
			}
		}

		images, err := svc.insertImages(ctx, a.ID, model.RepairImagePre, params.ImageURLs)
		if err != nil {
			return err
		}

		upd := &model.AppointmentUpdate{Diagnosis: &params.Diagnosis}
		if err := svc.applyTransition(ctx, a, model.AppointmentQuoted, model.ActorTechnician, upd); err != nil {
			return err
		}

		result = &model.QuoteResult{
			OrderDetailID:   d.ID,
			AppointmentID:   a.ID,
			BasePrice:       params.BasePrice,
			AdditionalPrice: params.AdditionalPrice,
			FinalPrice:      finalPrice,
			Images:          images,
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "quote", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc.notify(ctx, params.AppointmentID, customerID, model.AppointmentQuoted)

	return result, nil
}

// ConfirmQuote is the customer's approval of the quoted price, unlocking the
// in_progress step for the technician.
func (svc *service) ConfirmQuote(ctx context.Context, appointmentID, userID uuid.UUID) (*model.QuoteConfirmResult, error) {
	const op string = "appointment.service.ConfirmQuote"
	log := logger.With(
		logger.String("appointment_id", appointmentID.String()),
		logger.String("user_id", userID.String()),
	)

	if appointmentID == uuid.Nil || userID == uuid.Nil {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var result *model.QuoteConfirmResult
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		a, err := svc.appointments.ByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}

		if a.UserID != userID {
			return model.ErrForbidden
		}
		if !canTransition(a.Status, model.AppointmentQuoteConfirmed, opQuoteConfirm) {
			return invalidTransition(a.Status, model.AppointmentQuoteConfirmed)
		}

		d, err := svc.details.ByIDForUpdate(ctx, a.OrderDetailID)
		if err != nil {
			return err
		}
		if d.OrderID != a.ServiceOrderID {
			return fmt.Errorf("order detail %s belongs to order %s, not %s: %w",
				d.ID, d.OrderID, a.ServiceOrderID, model.ErrInconsistentState)
		}
		switch d.Status {
		case model.DetailBooked:
			if err := svc.details.UpdateStatus(ctx, d.ID, model.DetailConfirmed); err != nil {
				return err
			}
		case model.DetailConfirmed:
			// Already moved by the staff order confirmation.
		default:
			return fmt.Errorf("order detail %s status %q at quote confirm: %w",
				d.ID, d.Status, model.ErrInconsistentState)
		}

		if err := svc.applyTransition(ctx, a, model.AppointmentQuoteConfirmed, model.ActorCustomer, nil); err != nil {
			return err
		}

		result = &model.QuoteConfirmResult{
			AppointmentID:   a.ID,
			Status:          model.AppointmentQuoteConfirmed,
			RescheduleCount: a.RescheduleCount,
			UpdatedAt:       time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "confirm quote", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc.notify(ctx, appointmentID, userID, model.AppointmentQuoteConfirmed)

	return result, nil
}

// AddSpareParts consumes stock for an in-progress repair. All requested
// parts are locked in one batch; any shortfall rejects the whole request and
// leaves stock untouched.
func (svc *service) AddSpareParts(ctx context.Context, params model.AddSparePartsParams) (*model.AddSparePartsResult, error) {
	const op string = "appointment.service.AddSpareParts"
	log := logger.With(
		logger.String("appointment_id", params.AppointmentID.String()),
		logger.Int("number_items", len(params.Items)),
	)

	if params.AppointmentID == uuid.Nil || params.TechnicianID == uuid.Nil || len(params.Items) == 0 {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	// Requests may repeat a part id; collapse to one quantity per part.
	quantities := make(map[uuid.UUID]int64, len(params.Items))
	for _, it := range params.Items {
		if it.SparePartID == uuid.Nil || it.Quantity <= 0 {
			log.Error(ctx, "wrong item", logger.String("spare_part_id", it.SparePartID.String()))
			return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
		}
		quantities[it.SparePartID] += it.Quantity
	}
	ids := lo.Keys(quantities)

	var result *model.AddSparePartsResult
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		a, err := svc.appointments.ByIDForUpdate(ctx, params.AppointmentID)
		if err != nil {
			return err
		}

		if err := requireTechnician(a, params.TechnicianID); err != nil {
			return err
		}
		if a.Status != model.AppointmentInProgress {
			return fmt.Errorf("appointment status %q: %w", a.Status, model.ErrOrderConflict)
		}

		d, err := svc.details.ByIDForUpdate(ctx, a.OrderDetailID)
		if err != nil {
			return err
		}
		if d.OrderID != a.ServiceOrderID {
			return fmt.Errorf("order detail %s belongs to order %s, not %s: %w",
				d.ID, d.OrderID, a.ServiceOrderID, model.ErrInconsistentState)
		}

		parts, err := svc.parts.ListByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		byID := lo.KeyBy(parts, func(p model.SparePart) uuid.UUID { return p.ID })

		missing := lo.Filter(ids, func(id uuid.UUID, _ int) bool {
			_, ok := byID[id]
			return !ok
		})
		if len(missing) > 0 {
			return &model.SparePartsNotFoundError{IDs: missing}
		}

		var shortfalls []model.StockShortfall
		for _, p := range parts {
			if need := quantities[p.ID]; p.QuantityInStock < need {
				shortfalls = append(shortfalls, model.StockShortfall{
					SparePartID: p.ID,
					Name:        p.Name,
					Requested:   need,
					Available:   p.QuantityInStock,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &model.InsufficientStockError{Shortfalls: shortfalls}
		}

		var cost int64
		used := make([]model.UsedSparePart, 0, len(parts))
		for _, p := range parts {
			qty := quantities[p.ID]
			if err := svc.parts.DecrementStock(ctx, p.ID, qty); err != nil {
				return err
			}
			used = append(used, model.UsedSparePart{
				AppointmentID: a.ID,
				SparePartID:   p.ID,
				QuantityUsed:  qty,
			})
			cost += p.Price * qty
		}
		if err := svc.parts.InsertUsed(ctx, used); err != nil {
			return err
		}

		if err := svc.details.AddPartsPrice(ctx, d.ID, cost); err != nil {
			return err
		}
		if err := svc.orders.AddTotal(ctx, d.OrderID, cost, params.TechnicianID); err != nil {
			return err
		}

		result = &model.AddSparePartsResult{
			AppointmentID:  a.ID,
			OrderDetailID:  d.ID,
			PartCount:      len(used),
			AddedPartsCost: cost,
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "add spare parts", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// CompleteRepair finishes the technician's side of the job: the appointment
// becomes technician_done, the order line is marked completed, post-repair
// images are stored and the warranty is issued, all in one unit of work.
func (svc *service) CompleteRepair(ctx context.Context, params model.CompleteRepairParams) (*model.CompleteRepairResult, error) {
	const op string = "appointment.service.CompleteRepair"
	log := logger.With(
		logger.String("appointment_id", params.AppointmentID.String()),
	)

	if params.AppointmentID == uuid.Nil || params.TechnicianID == uuid.Nil {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var (
		result     *model.CompleteRepairResult
		customerID uuid.UUID
	)
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		a, err := svc.appointments.ByIDForUpdate(ctx, params.AppointmentID)
		if err != nil {
			return err
		}
		customerID = a.UserID

		if err := requireTechnician(a, params.TechnicianID); err != nil {
			return err
		}
		if !canTransition(a.Status, model.AppointmentTechnicianDone, opComplete) {
			return invalidTransition(a.Status, model.AppointmentTechnicianDone)
		}

		d, err := svc.details.ByIDForUpdate(ctx, a.OrderDetailID)
		if err != nil {
			return err
		}
		if d.OrderID != a.ServiceOrderID {
			return fmt.Errorf("order detail %s belongs to order %s, not %s: %w",
				d.ID, d.OrderID, a.ServiceOrderID, model.ErrInconsistentState)
		}

		images, err := svc.insertImages(ctx, a.ID, model.RepairImagePost, params.ImageURLs)
		if err != nil {
			return err
		}

		completedAt := time.Now().UTC()
		warranty, err := svc.warranty.Issue(ctx, d.ID, d.ServiceID, completedAt)
		if err != nil {
			return err
		}

		if err := svc.details.UpdateStatus(ctx, d.ID, model.DetailCompleted); err != nil {
			return err
		}

		upd := &model.AppointmentUpdate{}
		if params.Note != "" {
			upd.EmployeeNote = &params.Note
		}
		if err := svc.applyTransition(ctx, a, model.AppointmentTechnicianDone, model.ActorTechnician, upd); err != nil {
			return err
		}

		result = &model.CompleteRepairResult{
			AppointmentID: a.ID,
			Status:        model.AppointmentTechnicianDone,
			UpdatedAt:     completedAt,
			Images:        images,
			Warranty:      warranty,
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "complete repair", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc.notify(ctx, params.AppointmentID, customerID, model.AppointmentTechnicianDone)

	return result, nil
}

// CustomerUpdate lets the customer edit contact fields at any pre-visit
// stage. Changing the scheduled slot counts against the reschedule limit and
// drops a confirmed appointment back to booked for re-confirmation.
func (svc *service) CustomerUpdate(ctx context.Context, params model.CustomerUpdateParams) (*model.CustomerUpdateResult, error) {
	const op string = "appointment.service.CustomerUpdate"
	log := logger.With(
		logger.String("appointment_id", params.AppointmentID.String()),
		logger.String("user_id", params.UserID.String()),
	)

	if params.AppointmentID == uuid.Nil || params.UserID == uuid.Nil {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var (
		result      *model.CustomerUpdateResult
		rescheduled bool
	)
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		a, err := svc.appointments.ByIDForUpdate(ctx, params.AppointmentID)
		if err != nil {
			return err
		}

		if a.UserID != params.UserID {
			return model.ErrForbidden
		}
		if a.Status != model.AppointmentBooked && a.Status != model.AppointmentConfirmed {
			return invalidTransition(a.Status, model.AppointmentBooked)
		}

		d, err := svc.details.ByIDForUpdate(ctx, a.OrderDetailID)
		if err != nil {
			return err
		}
		if d.OrderID != a.ServiceOrderID {
			return fmt.Errorf("order detail %s belongs to order %s, not %s: %w",
				d.ID, d.OrderID, a.ServiceOrderID, model.ErrInconsistentState)
		}

		upd := &model.AppointmentUpdate{ID: a.ID}
		if params.Address != "" && params.Address != a.Address {
			upd.Address = &params.Address
			a.Address = params.Address
		}
		if params.Phone != "" && params.Phone != a.Phone {
			upd.Phone = &params.Phone
			a.Phone = params.Phone
		}
		if params.CustomerNote != "" && params.CustomerNote != a.CustomerNote {
			upd.CustomerNote = &params.CustomerNote
			a.CustomerNote = params.CustomerNote
		}

		dateChanged := !params.ScheduledDate.IsZero() && !params.ScheduledDate.Equal(a.ScheduledDate)
		timeChanged := params.ScheduledTime != "" && params.ScheduledTime != a.ScheduledTime

		if !dateChanged && !timeChanged {
			if err := svc.appointments.Update(ctx, upd); err != nil {
				return err
			}
			result = customerUpdateResult(a)
			return nil
		}

		if a.RescheduleCount >= model.MaxReschedules {
			return model.ErrRescheduleLimit
		}

		// A reschedule voids any prior staff confirmation: the line and the
		// order drop back to booked together with the appointment.
		if d.Status != model.DetailBooked && d.Status != model.DetailConfirmed {
			return fmt.Errorf("order detail %s status %q at reschedule: %w",
				d.ID, d.Status, model.ErrInconsistentState)
		}
		ord, err := svc.orders.ByIDForUpdate(ctx, d.OrderID)
		if err != nil {
			return err
		}
		if ord.Status != model.OrderBooked && ord.Status != model.OrderConfirmed {
			return fmt.Errorf("order %s status %q at reschedule: %w",
				ord.ID, ord.Status, model.ErrInconsistentState)
		}
		if d.Status != model.DetailBooked {
			if err := svc.details.UpdateStatus(ctx, d.ID, model.DetailBooked); err != nil {
				return err
			}
		}
		if ord.Status != model.OrderBooked {
			booked := model.OrderBooked
			err := svc.orders.Update(ctx, &model.OrderUpdate{
				ID:        ord.ID,
				Status:    &booked,
				UpdatedBy: &params.UserID,
			})
			if err != nil {
				return err
			}
		}

		count := a.RescheduleCount + 1
		upd.RescheduleCount = &count
		if dateChanged {
			upd.ScheduledDate = &params.ScheduledDate
			a.ScheduledDate = params.ScheduledDate
		}
		if timeChanged {
			upd.ScheduledTime = &params.ScheduledTime
			a.ScheduledTime = params.ScheduledTime
		}

		if err := svc.applyTransition(ctx, a, model.AppointmentBooked, model.ActorCustomer, upd); err != nil {
			return err
		}
		a.Status = model.AppointmentBooked
		a.RescheduleCount = count
		rescheduled = true

		result = customerUpdateResult(a)
		return nil
	})
	if err != nil {
		log.Error(ctx, "customer update", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if rescheduled {
		svc.notify(ctx, params.AppointmentID, params.UserID, model.AppointmentBooked)
	}

	return result, nil
}

// CustomerCancel cancels the appointment and its order line. The order total
// drops by the line's price; cancelling the last live line cancels the whole
// order.
func (svc *service) CustomerCancel(ctx context.Context, params model.CustomerCancelParams) (*model.CustomerCancelResult, error) {
	const op string = "appointment.service.CustomerCancel"
	log := logger.With(
		logger.String("appointment_id", params.AppointmentID.String()),
		logger.String("user_id", params.UserID.String()),
	)

	if params.AppointmentID == uuid.Nil || params.UserID == uuid.Nil {
		log.Error(ctx, "wrong params")
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	var result *model.CustomerCancelResult
	err := svc.txm.ReadCommitted(ctx, func(ctx context.Context) error {
		a, err := svc.appointments.ByIDForUpdate(ctx, params.AppointmentID)
		if err != nil {
			return err
		}

		if a.UserID != params.UserID {
			return model.ErrForbidden
		}
		if !canTransition(a.Status, model.AppointmentCancelled, opCancel) {
			return invalidTransition(a.Status, model.AppointmentCancelled)
		}

		d, err := svc.details.ByIDForUpdate(ctx, a.OrderDetailID)
		if err != nil {
			return err
		}
		if d.OrderID != a.ServiceOrderID {
			return fmt.Errorf("order detail %s belongs to order %s, not %s: %w",
				d.ID, d.OrderID, a.ServiceOrderID, model.ErrInconsistentState)
		}

		if _, err := svc.orders.ByIDForUpdate(ctx, d.OrderID); err != nil {
			return err
		}

		if d.Status != model.DetailCancelled {
			if err := svc.details.UpdateStatus(ctx, d.ID, model.DetailCancelled); err != nil {
				return err
			}
			if d.FinalPrice != 0 {
				if err := svc.orders.AddTotal(ctx, d.OrderID, -d.FinalPrice, params.UserID); err != nil {
					return err
				}
			}
		}

		siblings, err := svc.details.ListByOrderID(ctx, d.OrderID)
		if err != nil {
			return err
		}
		allCancelled := lo.EveryBy(siblings, func(s model.ServiceOrderDetail) bool {
			return s.ID == d.ID || s.Status == model.DetailCancelled
		})
		if allCancelled {
			status := model.OrderCancelled
			err := svc.orders.Update(ctx, &model.OrderUpdate{
				ID:        d.OrderID,
				Status:    &status,
				UpdatedBy: &params.UserID,
			})
			if err != nil {
				return err
			}
		}

		cancelledBy := model.CancelledByCustomer
		upd := &model.AppointmentUpdate{
			CancelReason: &params.Reason,
			CancelledBy:  &cancelledBy,
		}
		if err := svc.applyTransition(ctx, a, model.AppointmentCancelled, model.ActorCustomer, upd); err != nil {
			return err
		}

		result = &model.CustomerCancelResult{
			AppointmentID:  a.ID,
			Status:         model.AppointmentCancelled,
			CancelReason:   params.Reason,
			CancelledBy:    cancelledBy,
			OrderCancelled: allCancelled,
			UpdatedAt:      time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "customer cancel", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc.notify(ctx, params.AppointmentID, params.UserID, model.AppointmentCancelled)

	return result, nil
}

func (svc *service) ByID(ctx context.Context, appointmentID, userID uuid.UUID) (*model.Appointment, error) {
	const op string = "appointment.service.ByID"

	a, err := svc.appointments.ByID(ctx, appointmentID)
	if err != nil {
		logger.Error(ctx, "repository appointment by id",
			logger.String("appointment_id", appointmentID.String()),
			logger.ErrorF(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, model.ErrForbidden)
	}

	return a, nil
}

func (svc *service) History(ctx context.Context, appointmentID, userID uuid.UUID) ([]model.StatusChange, error) {
	const op string = "appointment.service.History"

	a, err := svc.appointments.ByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, model.ErrForbidden)
	}

	changes, err := svc.history.ListByAppointment(ctx, appointmentID)
	if err != nil {
		logger.Error(ctx, "repository list history",
			logger.String("appointment_id", appointmentID.String()),
			logger.ErrorF(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return changes, nil
}

// applyTransition performs the three writes every status move consists of:
// the appointment row, the snapshot row and, always last, the append-only
// audit row.
func (svc *service) applyTransition(
	ctx context.Context,
	a *model.Appointment,
	to model.AppointmentStatus,
	actor model.ActorKind,
	upd *model.AppointmentUpdate,
) error {
	if upd == nil {
		upd = &model.AppointmentUpdate{}
	}
	upd.ID = a.ID
	upd.Status = &to

	if err := svc.appointments.Update(ctx, upd); err != nil {
		return err
	}

	if err := svc.appointments.UpsertStatusSnapshot(ctx, a.ID, to); err != nil {
		return err
	}

	_, err := svc.history.Append(ctx, &model.StatusChange{
		AppointmentID: a.ID,
		OldStatus:     a.Status,
		NewStatus:     to,
		ChangedBy:     actor,
	})
	return err
}

func (svc *service) insertImages(ctx context.Context, appointmentID uuid.UUID, kind model.RepairImageKind, urls []string) ([]model.RepairImage, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	images := lo.Map(urls, func(u string, _ int) model.RepairImage {
		return model.RepairImage{AppointmentID: appointmentID, Kind: kind, URL: u}
	})
	return svc.images.InsertBatch(ctx, images)
}

// notify is called only after the transaction committed; delivery failures
// surface as request warnings, never as errors.
func (svc *service) notify(ctx context.Context, appointmentID, userID uuid.UUID, status model.AppointmentStatus) {
	svc.notifier.Notify(ctx, model.StatusChangedEvent{
		EventID:       uuid.New(),
		AppointmentID: appointmentID,
		UserID:        userID,
		NewStatus:     status,
		OccurredAt:    time.Now().UTC(),
	})
}

func requireTechnician(a *model.Appointment, technicianID uuid.UUID) error {
	if a.TechnicianID == nil || *a.TechnicianID != technicianID {
		return model.ErrForbidden
	}
	return nil
}

func customerUpdateResult(a *model.Appointment) *model.CustomerUpdateResult {
	return &model.CustomerUpdateResult{
		AppointmentID:   a.ID,
		Status:          a.Status,
		ScheduledDate:   a.ScheduledDate,
		ScheduledTime:   a.ScheduledTime,
		Address:         a.Address,
		CustomerNote:    a.CustomerNote,
		RescheduleCount: a.RescheduleCount,
	}
}
