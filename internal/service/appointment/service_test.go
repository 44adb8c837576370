package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fixmate/field-service/internal/model"
	"github.com/fixmate/field-service/internal/service/appointment/mocks"
)

type deps struct {
	txm          *mocks.MockTxManager
	appointments *mocks.MockAppointmentRepository
	history      *mocks.MockStatusHistoryRepository
	details      *mocks.MockOrderDetailRepository
	orders       *mocks.MockOrderRepository
	parts        *mocks.MockSparePartRepository
	images       *mocks.MockRepairImageRepository
	warranty     *mocks.MockWarrantyIssuer
	notifier     *mocks.MockNotifier
}

func newDeps(t *testing.T) deps {
	return deps{
		txm:          mocks.NewMockTxManager(t),
		appointments: mocks.NewMockAppointmentRepository(t),
		history:      mocks.NewMockStatusHistoryRepository(t),
		details:      mocks.NewMockOrderDetailRepository(t),
		orders:       mocks.NewMockOrderRepository(t),
		parts:        mocks.NewMockSparePartRepository(t),
		images:       mocks.NewMockRepairImageRepository(t),
		warranty:     mocks.NewMockWarrantyIssuer(t),
		notifier:     mocks.NewMockNotifier(t),
	}
}

func newSvc(d deps) *service {
	return NewAppointmentService(
		d.txm,
		d.appointments,
		d.history,
		d.details,
		d.orders,
		d.parts,
		d.images,
		d.warranty,
		d.notifier,
	)
}

// passthroughTx runs the unit of work directly; commit/rollback is the
// repository layer's concern and not under test here.
func passthroughTx(d deps) {
	d.txm.
		On("ReadCommitted", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func TestServiceUpdateStatus(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	userID := uuid.New()
	technicianID := uuid.New()

	fixture := func(status model.AppointmentStatus) *model.Appointment {
		return &model.Appointment{
			ID:             appointmentID,
			UserID:         userID,
			ServiceOrderID: uuid.New(),
			OrderDetailID:  uuid.New(),
			TechnicianID:   &technicianID,
			Status:         status,
		}
	}

	type testCase struct {
		name   string
		params model.UpdateStatusParams
		setup  func(d deps)
		assert func(t *testing.T, res *model.StatusUpdateResult, err error, d deps)
	}

	tests := []testCase{
		{
			name: "validation error: empty technician id",
			params: model.UpdateStatusParams{
				AppointmentID: appointmentID,
				NewStatus:     model.AppointmentEnRoute,
			},
			setup: func(d deps) {
				// No calls expected.
			},
			assert: func(t *testing.T, res *model.StatusUpdateResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrValidation)
				assert.Nil(t, res)
			},
		},
		{
			name: "forbidden: appointment assigned to another technician",
			params: model.UpdateStatusParams{
				AppointmentID: appointmentID,
				TechnicianID:  uuid.New(),
				NewStatus:     model.AppointmentEnRoute,
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentConfirmed), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.StatusUpdateResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrForbidden)
				assert.Nil(t, res)

				d.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			},
		},
		{
			name: "invalid transition: confirmed -> arrived skips en_route",
			params: model.UpdateStatusParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				NewStatus:     model.AppointmentArrived,
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentConfirmed), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.StatusUpdateResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
				assert.Nil(t, res)

				var itErr *model.InvalidTransitionError
				require.ErrorAs(t, err, &itErr)
				assert.Equal(t, model.AppointmentConfirmed, itErr.Current)
				assert.Equal(t, model.AppointmentArrived, itErr.Attempted)
				assert.Contains(t, itErr.Allowed, model.AppointmentEnRoute)
				assert.Contains(t, itErr.Allowed, model.AppointmentCancelled)

				d.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				d.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
			},
		},
		{
			name: "repository error: appointment not found",
			params: model.UpdateStatusParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				NewStatus:     model.AppointmentEnRoute,
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return((*model.Appointment)(nil), model.ErrAppointmentNotFound).
					Once()
			},
			assert: func(t *testing.T, res *model.StatusUpdateResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrAppointmentNotFound)
				assert.Nil(t, res)
			},
		},
		{
			name: "success: confirmed -> en_route with note and audit row",
			params: model.UpdateStatusParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				NewStatus:     model.AppointmentEnRoute,
				Note:          "left the depot",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentConfirmed), nil).
					Once()

				d.appointments.
					On("Update", mock.Anything, mock.MatchedBy(func(upd *model.AppointmentUpdate) bool {
						return upd.ID == appointmentID &&
							upd.Status != nil && *upd.Status == model.AppointmentEnRoute &&
							upd.EmployeeNote != nil && *upd.EmployeeNote == "left the depot"
					})).
					Return(nil).
					Once()

				d.history.
					On("Append", mock.Anything, mock.MatchedBy(func(ch *model.StatusChange) bool {
						return ch.AppointmentID == appointmentID &&
							ch.OldStatus == model.AppointmentConfirmed &&
							ch.NewStatus == model.AppointmentEnRoute &&
							ch.ChangedBy == model.ActorTechnician
					})).
					Return(uuid.New(), nil).
					Once()

				d.appointments.
					On("UpsertStatusSnapshot", mock.Anything, appointmentID, model.AppointmentEnRoute).
					Return(nil).
					Once()

				d.notifier.
					On("Notify", mock.Anything, mock.MatchedBy(func(e model.StatusChangedEvent) bool {
						return e.AppointmentID == appointmentID &&
							e.UserID == userID &&
							e.NewStatus == model.AppointmentEnRoute
					})).
					Return().
					Once()
			},
			assert: func(t *testing.T, res *model.StatusUpdateResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, appointmentID, res.AppointmentID)
				assert.Equal(t, model.AppointmentEnRoute, res.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDeps(t)
			if tt.setup != nil {
				tt.setup(d)
			}

			svc := newSvc(d)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			res, err := svc.UpdateStatus(ctx, tt.params)
			tt.assert(t, res, err, d)
		})
	}
}

func TestServiceQuote(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	orderID := uuid.New()
	orderDetailID := uuid.New()
	userID := uuid.New()
	technicianID := uuid.New()

	fixture := func(status model.AppointmentStatus) *model.Appointment {
		return &model.Appointment{
			ID:             appointmentID,
			UserID:         userID,
			ServiceOrderID: orderID,
			OrderDetailID:  orderDetailID,
			TechnicianID:   &technicianID,
			Status:         status,
		}
	}

	type testCase struct {
		name   string
		params model.QuoteParams
		setup  func(d deps)
		assert func(t *testing.T, res *model.QuoteResult, err error, d deps)
	}

	tests := []testCase{
		{
			name: "validation error: missing diagnosis",
			params: model.QuoteParams{
				AppointmentID: appointmentID,
				OrderDetailID: orderDetailID,
				TechnicianID:  technicianID,
				BasePrice:     3000,
			},
			setup: func(d deps) {
				// No calls expected.
			},
			assert: func(t *testing.T, res *model.QuoteResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrValidation)
				assert.Nil(t, res)
			},
		},
		{
			name: "validation error: negative additional price",
			params: model.QuoteParams{
				AppointmentID:   appointmentID,
				OrderDetailID:   orderDetailID,
				TechnicianID:    technicianID,
				BasePrice:       3000,
				AdditionalPrice: -1,
				Diagnosis:       "compressor worn out",
			},
			setup: func(d deps) {
				// No calls expected.
			},
			assert: func(t *testing.T, res *model.QuoteResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrValidation)
				assert.Nil(t, res)
			},
		},
		{
			name: "mismatch: order line belongs to a different appointment",
			params: model.QuoteParams{
				AppointmentID: appointmentID,
				OrderDetailID: orderDetailID,
				TechnicianID:  technicianID,
				BasePrice:     3000,
				Diagnosis:     "compressor worn out",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentArrived), nil).
					Once()

				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(&model.ServiceOrderDetail{
						ID:      uuid.New(), // not the line the appointment points at
						OrderID: orderID,
					}, nil).
					Once()
			},
			assert: func(t *testing.T, res *model.QuoteResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrOrderMismatch)
				assert.Nil(t, res)

				d.details.AssertNotCalled(t, "SetQuote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				d.orders.AssertNotCalled(t, "AddTotal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "success: order total shifts by the repricing delta",
			params: model.QuoteParams{
				AppointmentID:   appointmentID,
				OrderDetailID:   orderDetailID,
				TechnicianID:    technicianID,
				BasePrice:       3000,
				AdditionalPrice: 1000,
				Diagnosis:       "compressor worn out",
				ImageURLs:       []string{"https://img.example/pre-1.jpg"},
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentArrived), nil).
					Once()

				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(&model.ServiceOrderDetail{
						ID:         orderDetailID,
						OrderID:    orderID,
						Status:     model.DetailConfirmed,
						BasePrice:  2000,
						PartsPrice: 500,
						FinalPrice: 2500,
					}, nil).
					Once()

				d.details.
					On("SetQuote", mock.Anything, orderDetailID, int64(3000), int64(1000)).
					Return(nil).
					Once()

				// new final = 3000 + 1000 + 500, previous final = 2500
				d.orders.
					On("AddTotal", mock.Anything, orderID, int64(2000), technicianID).
					Return(nil).
					Once()

				d.images.
					On("InsertBatch", mock.Anything, mock.MatchedBy(func(images []model.RepairImage) bool {
						return len(images) == 1 &&
							images[0].AppointmentID == appointmentID &&
							images[0].Kind == model.RepairImagePre
					})).
					Return([]model.RepairImage{{
						ID:            uuid.New(),
						AppointmentID: appointmentID,
						Kind:          model.RepairImagePre,
						URL:           "https://img.example/pre-1.jpg",
					}}, nil).
					Once()

				d.appointments.
					On("Update", mock.Anything, mock.MatchedBy(func(upd *model.AppointmentUpdate) bool {
						return upd.ID == appointmentID &&
							upd.Status != nil && *upd.Status == model.AppointmentQuoted &&
							upd.Diagnosis != nil && *upd.Diagnosis == "compressor worn out"
					})).
					Return(nil).
					Once()

				d.history.
					On("Append", mock.Anything, mock.MatchedBy(func(ch *model.StatusChange) bool {
						return ch.OldStatus == model.AppointmentArrived &&
							ch.NewStatus == model.AppointmentQuoted
					})).
					Return(uuid.New(), nil).
					Once()

				d.appointments.
					On("UpsertStatusSnapshot", mock.Anything, appointmentID, model.AppointmentQuoted).
					Return(nil).
					Once()

				d.notifier.
					On("Notify", mock.Anything, mock.MatchedBy(func(e model.StatusChangedEvent) bool {
						return e.AppointmentID == appointmentID && e.NewStatus == model.AppointmentQuoted
					})).
					Return().
					Once()
			},
			assert: func(t *testing.T, res *model.QuoteResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, int64(3000), res.BasePrice)
				assert.Equal(t, int64(1000), res.AdditionalPrice)
				assert.Equal(t, int64(4500), res.FinalPrice)
				assert.Len(t, res.Images, 1)
			},
		},
		{
			name: "success: unchanged price leaves the order total alone",
			params: model.QuoteParams{
				AppointmentID: appointmentID,
				OrderDetailID: orderDetailID,
				TechnicianID:  technicianID,
				BasePrice:     2000,
				Diagnosis:     "standard wear, quoted as booked",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentArrived), nil).
					Once()

				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(&model.ServiceOrderDetail{
						ID:         orderDetailID,
						OrderID:    orderID,
						BasePrice:  2000,
						FinalPrice: 2000,
					}, nil).
					Once()

				d.details.
					On("SetQuote", mock.Anything, orderDetailID, int64(2000), int64(0)).
					Return(nil).
					Once()

				d.appointments.
					On("Update", mock.Anything, mock.AnythingOfType("*model.AppointmentUpdate")).
					Return(nil).
					Once()
				d.history.
					On("Append", mock.Anything, mock.AnythingOfType("*model.StatusChange")).
					Return(uuid.New(), nil).
					Once()
				d.appointments.
					On("UpsertStatusSnapshot", mock.Anything, appointmentID, model.AppointmentQuoted).
					Return(nil).
					Once()
				d.notifier.
					On("Notify", mock.Anything, mock.AnythingOfType("model.StatusChangedEvent")).
					Return().
					Once()
			},
			assert: func(t *testing.T, res *model.QuoteResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, int64(2000), res.FinalPrice)

				d.orders.AssertNotCalled(t, "AddTotal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDeps(t)
			if tt.setup != nil {
				tt.setup(d)
			}

			svc := newSvc(d)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			res, err := svc.Quote(ctx, tt.params)
			tt.assert(t, res, err, d)
		})
	}
}

func TestServiceConfirmQuote(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	orderID := uuid.New()
	orderDetailID := uuid.New()
	userID := uuid.New()

	fixture := func(status model.AppointmentStatus) *model.Appointment {
		return &model.Appointment{
			ID:             appointmentID,
			UserID:         userID,
			ServiceOrderID: orderID,
			OrderDetailID:  orderDetailID,
			Status:         status,
		}
	}

	detail := func(status model.DetailStatus) *model.ServiceOrderDetail {
		return &model.ServiceOrderDetail{
			ID:      orderDetailID,
			OrderID: orderID,
			Status:  status,
		}
	}

	expectConfirmTransition := func(d deps) {
		d.appointments.
			On("Update", mock.Anything, mock.MatchedBy(func(upd *model.AppointmentUpdate) bool {
				return upd.Status != nil && *upd.Status == model.AppointmentQuoteConfirmed
			})).
			Return(nil).
			Once()
		d.appointments.
			On("UpsertStatusSnapshot", mock.Anything, appointmentID, model.AppointmentQuoteConfirmed).
			Return(nil).
			Once()
		d.history.
			On("Append", mock.Anything, mock.MatchedBy(func(ch *model.StatusChange) bool {
				return ch.ChangedBy == model.ActorCustomer &&
					ch.NewStatus == model.AppointmentQuoteConfirmed
			})).
			Return(uuid.New(), nil).
			Once()

		d.notifier.
			On("Notify", mock.Anything, mock.AnythingOfType("model.StatusChangedEvent")).
			Return().
			Once()
	}

	type testCase struct {
		name   string
		userID uuid.UUID
		setup  func(d deps)
		assert func(t *testing.T, res *model.QuoteConfirmResult, err error, d deps)
	}

	tests := []testCase{
		{
			name:   "forbidden: not the appointment owner",
			userID: uuid.New(),
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentQuoted), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.QuoteConfirmResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrForbidden)
				assert.Nil(t, res)

				d.details.AssertNotCalled(t, "ByIDForUpdate", mock.Anything, mock.Anything)
			},
		},
		{
			name:   "invalid transition: nothing quoted yet",
			userID: userID,
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentArrived), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.QuoteConfirmResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
				assert.Nil(t, res)
			},
		},
		{
			name:   "inconsistent: order line already settled",
			userID: userID,
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentQuoted), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(model.DetailCompleted), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.QuoteConfirmResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInconsistentState)
				assert.Nil(t, res)

				d.details.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				d.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			},
		},
		{
			name:   "success: quoted -> quote_confirmed moves the booked line along",
			userID: userID,
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentQuoted), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(model.DetailBooked), nil).
					Once()
				d.details.
					On("UpdateStatus", mock.Anything, orderDetailID, model.DetailConfirmed).
					Return(nil).
					Once()

				expectConfirmTransition(d)
			},
			assert: func(t *testing.T, res *model.QuoteConfirmResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, model.AppointmentQuoteConfirmed, res.Status)
			},
		},
		{
			name:   "success: line confirmed at order acceptance needs no extra write",
			userID: userID,
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentQuoted), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(model.DetailConfirmed), nil).
					Once()

				expectConfirmTransition(d)
			},
			assert: func(t *testing.T, res *model.QuoteConfirmResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, model.AppointmentQuoteConfirmed, res.Status)

				d.details.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDeps(t)
			if tt.setup != nil {
				tt.setup(d)
			}

			svc := newSvc(d)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			res, err := svc.ConfirmQuote(ctx, appointmentID, tt.userID)
			tt.assert(t, res, err, d)
		})
	}
}

func TestServiceAddSpareParts(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	orderID := uuid.New()
	orderDetailID := uuid.New()
	technicianID := uuid.New()
	partID1 := uuid.New()
	partID2 := uuid.New()

	fixture := func(status model.AppointmentStatus) *model.Appointment {
		return &model.Appointment{
			ID:             appointmentID,
			UserID:         uuid.New(),
			ServiceOrderID: orderID,
			OrderDetailID:  orderDetailID,
			TechnicianID:   &technicianID,
			Status:         status,
		}
	}

	detail := func() *model.ServiceOrderDetail {
		return &model.ServiceOrderDetail{
			ID:      orderDetailID,
			OrderID: orderID,
			Status:  model.DetailConfirmed,
		}
	}

	type testCase struct {
		name   string
		params model.AddSparePartsParams
		setup  func(d deps)
		assert func(t *testing.T, res *model.AddSparePartsResult, err error, d deps)
	}

	tests := []testCase{
		{
			name: "validation error: zero quantity",
			params: model.AddSparePartsParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				Items:         []model.SparePartUsage{{SparePartID: partID1, Quantity: 0}},
			},
			setup: func(d deps) {
				// No calls expected.
			},
			assert: func(t *testing.T, res *model.AddSparePartsResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrValidation)
				assert.Nil(t, res)
			},
		},
		{
			name: "conflict: repair not in progress",
			params: model.AddSparePartsParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				Items:         []model.SparePartUsage{{SparePartID: partID1, Quantity: 1}},
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentQuoted), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.AddSparePartsResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrOrderConflict)
				assert.Nil(t, res)

				d.parts.AssertNotCalled(t, "ListByIDsForUpdate", mock.Anything, mock.Anything)
			},
		},
		{
			name: "unknown part: every missing id reported",
			params: model.AddSparePartsParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				Items: []model.SparePartUsage{
					{SparePartID: partID1, Quantity: 1},
					{SparePartID: partID2, Quantity: 2},
				},
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentInProgress), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(), nil).
					Once()

				d.parts.
					On("ListByIDsForUpdate", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
						return len(ids) == 2
					})).
					Return([]model.SparePart{
						{ID: partID1, Name: "fan belt", Price: 900, QuantityInStock: 10},
					}, nil).
					Once()
			},
			assert: func(t *testing.T, res *model.AddSparePartsResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrSparePartNotFound)
				assert.Nil(t, res)

				var nfErr *model.SparePartsNotFoundError
				require.ErrorAs(t, err, &nfErr)
				assert.Equal(t, []uuid.UUID{partID2}, nfErr.IDs)

				d.parts.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "insufficient stock: all shortfalls collected, nothing written",
			params: model.AddSparePartsParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				Items: []model.SparePartUsage{
					{SparePartID: partID1, Quantity: 5},
					{SparePartID: partID2, Quantity: 3},
				},
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentInProgress), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(), nil).
					Once()

				d.parts.
					On("ListByIDsForUpdate", mock.Anything, mock.Anything).
					Return([]model.SparePart{
						{ID: partID1, Name: "fan belt", Price: 900, QuantityInStock: 2},
						{ID: partID2, Name: "filter", Price: 400, QuantityInStock: 1},
					}, nil).
					Once()
			},
			assert: func(t *testing.T, res *model.AddSparePartsResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInsufficientStock)
				assert.Nil(t, res)

				var stockErr *model.InsufficientStockError
				require.ErrorAs(t, err, &stockErr)
				require.Len(t, stockErr.Shortfalls, 2)
				assert.Equal(t, int64(5), stockErr.Shortfalls[0].Requested)
				assert.Equal(t, int64(2), stockErr.Shortfalls[0].Available)
				assert.Equal(t, int64(3), stockErr.Shortfalls[1].Requested)
				assert.Equal(t, int64(1), stockErr.Shortfalls[1].Available)

				d.parts.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
				d.parts.AssertNotCalled(t, "InsertUsed", mock.Anything, mock.Anything)
				d.orders.AssertNotCalled(t, "AddTotal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "success: repeated item ids collapse into one ledger row each",
			params: model.AddSparePartsParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				Items: []model.SparePartUsage{
					{SparePartID: partID1, Quantity: 2},
					{SparePartID: partID1, Quantity: 1},
					{SparePartID: partID2, Quantity: 1},
				},
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentInProgress), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(), nil).
					Once()

				d.parts.
					On("ListByIDsForUpdate", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
						return len(ids) == 2
					})).
					Return([]model.SparePart{
						{ID: partID1, Name: "fan belt", Price: 900, QuantityInStock: 10},
						{ID: partID2, Name: "filter", Price: 400, QuantityInStock: 4},
					}, nil).
					Once()

				d.parts.On("DecrementStock", mock.Anything, partID1, int64(3)).Return(nil).Once()
				d.parts.On("DecrementStock", mock.Anything, partID2, int64(1)).Return(nil).Once()

				d.parts.
					On("InsertUsed", mock.Anything, mock.MatchedBy(func(rows []model.UsedSparePart) bool {
						return len(rows) == 2
					})).
					Return(nil).
					Once()

				// 3*900 + 1*400
				d.details.
					On("AddPartsPrice", mock.Anything, orderDetailID, int64(3100)).
					Return(nil).
					Once()
				d.orders.
					On("AddTotal", mock.Anything, orderID, int64(3100), technicianID).
					Return(nil).
					Once()
			},
			assert: func(t *testing.T, res *model.AddSparePartsResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, 2, res.PartCount)
				assert.Equal(t, int64(3100), res.AddedPartsCost)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDeps(t)
			if tt.setup != nil {
				tt.setup(d)
			}

			svc := newSvc(d)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			res, err := svc.AddSpareParts(ctx, tt.params)
			tt.assert(t, res, err, d)
		})
	}
}

func TestServiceCompleteRepair(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	orderID := uuid.New()
	orderDetailID := uuid.New()
	serviceID := uuid.New()
	userID := uuid.New()
	technicianID := uuid.New()

	fixture := func(status model.AppointmentStatus) *model.Appointment {
		return &model.Appointment{
			ID:             appointmentID,
			UserID:         userID,
			ServiceOrderID: orderID,
			OrderDetailID:  orderDetailID,
			TechnicianID:   &technicianID,
			Status:         status,
		}
	}

	type testCase struct {
		name   string
		params model.CompleteRepairParams
		setup  func(d deps)
		assert func(t *testing.T, res *model.CompleteRepairResult, err error, d deps)
	}

	tests := []testCase{
		{
			name: "invalid transition: quote not confirmed",
			params: model.CompleteRepairParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentQuoted), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.CompleteRepairResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
				assert.Nil(t, res)

				d.warranty.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "error: warranty issue fails, unit of work aborts",
			params: model.CompleteRepairParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentInProgress), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(&model.ServiceOrderDetail{
						ID:        orderDetailID,
						OrderID:   orderID,
						ServiceID: serviceID,
					}, nil).
					Once()

				d.warranty.
					On("Issue", mock.Anything, orderDetailID, serviceID, mock.AnythingOfType("time.Time")).
					Return((*model.ServiceWarranty)(nil), errors.New("catalog unavailable")).
					Once()
			},
			assert: func(t *testing.T, res *model.CompleteRepairResult, err error, d deps) {
				require.Error(t, err)
				assert.Nil(t, res)

				d.details.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				d.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			},
		},
		{
			name: "success: line completed, warranty issued, post images stored",
			params: model.CompleteRepairParams{
				AppointmentID: appointmentID,
				TechnicianID:  technicianID,
				Note:          "replaced compressor and belt",
				ImageURLs:     []string{"https://img.example/post-1.jpg", "https://img.example/post-2.jpg"},
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentInProgress), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(&model.ServiceOrderDetail{
						ID:        orderDetailID,
						OrderID:   orderID,
						ServiceID: serviceID,
						Status:    model.DetailConfirmed,
					}, nil).
					Once()

				d.images.
					On("InsertBatch", mock.Anything, mock.MatchedBy(func(images []model.RepairImage) bool {
						return len(images) == 2 && images[0].Kind == model.RepairImagePost
					})).
					Return([]model.RepairImage{
						{ID: uuid.New(), Kind: model.RepairImagePost},
						{ID: uuid.New(), Kind: model.RepairImagePost},
					}, nil).
					Once()

				d.warranty.
					On("Issue", mock.Anything, orderDetailID, serviceID, mock.AnythingOfType("time.Time")).
					Return(&model.ServiceWarranty{
						ID:            uuid.New(),
						OrderDetailID: orderDetailID,
						ServiceID:     serviceID,
						Status:        model.WarrantyActive,
					}, nil).
					Once()

				d.details.
					On("UpdateStatus", mock.Anything, orderDetailID, model.DetailCompleted).
					Return(nil).
					Once()

				d.appointments.
					On("Update", mock.Anything, mock.MatchedBy(func(upd *model.AppointmentUpdate) bool {
						return upd.Status != nil && *upd.Status == model.AppointmentTechnicianDone &&
							upd.EmployeeNote != nil
					})).
					Return(nil).
					Once()
				d.history.
					On("Append", mock.Anything, mock.MatchedBy(func(ch *model.StatusChange) bool {
						return ch.OldStatus == model.AppointmentInProgress &&
							ch.NewStatus == model.AppointmentTechnicianDone
					})).
					Return(uuid.New(), nil).
					Once()
				d.appointments.
					On("UpsertStatusSnapshot", mock.Anything, appointmentID, model.AppointmentTechnicianDone).
					Return(nil).
					Once()

				d.notifier.
					On("Notify", mock.Anything, mock.MatchedBy(func(e model.StatusChangedEvent) bool {
						return e.UserID == userID && e.NewStatus == model.AppointmentTechnicianDone
					})).
					Return().
					Once()
			},
			assert: func(t *testing.T, res *model.CompleteRepairResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, model.AppointmentTechnicianDone, res.Status)
				assert.Len(t, res.Images, 2)
				require.NotNil(t, res.Warranty)
				assert.Equal(t, model.WarrantyActive, res.Warranty.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDeps(t)
			if tt.setup != nil {
				tt.setup(d)
			}

			svc := newSvc(d)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			res, err := svc.CompleteRepair(ctx, tt.params)
			tt.assert(t, res, err, d)
		})
	}
}

func TestServiceCustomerUpdate(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	orderID := uuid.New()
	orderDetailID := uuid.New()
	userID := uuid.New()

	scheduledDate := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	newDate := scheduledDate.AddDate(0, 0, 3)
	address := gofakeit.Address().Address

	fixture := func(status model.AppointmentStatus, reschedules int) *model.Appointment {
		return &model.Appointment{
			ID:              appointmentID,
			UserID:          userID,
			ServiceOrderID:  orderID,
			OrderDetailID:   orderDetailID,
			Status:          status,
			ScheduledDate:   scheduledDate,
			ScheduledTime:   "10:00-12:00",
			Address:         address,
			RescheduleCount: reschedules,
		}
	}

	detail := func(status model.DetailStatus) *model.ServiceOrderDetail {
		return &model.ServiceOrderDetail{ID: orderDetailID, OrderID: orderID, Status: status}
	}

	type testCase struct {
		name   string
		params model.CustomerUpdateParams
		setup  func(d deps)
		assert func(t *testing.T, res *model.CustomerUpdateResult, err error, d deps)
	}

	tests := []testCase{
		{
			name: "forbidden: not the appointment owner",
			params: model.CustomerUpdateParams{
				AppointmentID: appointmentID,
				UserID:        uuid.New(),
				Address:       "somewhere else",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentBooked, 0), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerUpdateResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrForbidden)
				assert.Nil(t, res)
			},
		},
		{
			name: "invalid transition: technician already en route",
			params: model.CustomerUpdateParams{
				AppointmentID: appointmentID,
				UserID:        userID,
				ScheduledDate: newDate,
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentEnRoute, 0), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerUpdateResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
				assert.Nil(t, res)
			},
		},
		{
			name: "reschedule limit: fourth slot change rejected",
			params: model.CustomerUpdateParams{
				AppointmentID: appointmentID,
				UserID:        userID,
				ScheduledDate: newDate,
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentBooked, model.MaxReschedules), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(model.DetailBooked), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerUpdateResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrRescheduleLimit)
				assert.Nil(t, res)

				d.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			},
		},
		{
			name: "inconsistent: order line no longer reschedulable",
			params: model.CustomerUpdateParams{
				AppointmentID: appointmentID,
				UserID:        userID,
				ScheduledDate: newDate,
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentBooked, 0), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(model.DetailCompleted), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerUpdateResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInconsistentState)
				assert.Nil(t, res)

				d.orders.AssertNotCalled(t, "ByIDForUpdate", mock.Anything, mock.Anything)
				d.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			},
		},
		{
			name: "success: contact-only edit keeps status and reschedule count",
			params: model.CustomerUpdateParams{
				AppointmentID: appointmentID,
				UserID:        userID,
				Phone:         gofakeit.Phone(),
				CustomerNote:  "gate code 4711",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentConfirmed, 1), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(model.DetailConfirmed), nil).
					Once()

				d.appointments.
					On("Update", mock.Anything, mock.MatchedBy(func(upd *model.AppointmentUpdate) bool {
						return upd.ID == appointmentID &&
							upd.Status == nil &&
							upd.Phone != nil &&
							upd.CustomerNote != nil &&
							upd.RescheduleCount == nil
					})).
					Return(nil).
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerUpdateResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, model.AppointmentConfirmed, res.Status)
				assert.Equal(t, 1, res.RescheduleCount)

				d.orders.AssertNotCalled(t, "ByIDForUpdate", mock.Anything, mock.Anything)
				d.details.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				d.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
				d.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
			},
		},
		{
			name: "success: slot change drops confirmed back to booked",
			params: model.CustomerUpdateParams{
				AppointmentID: appointmentID,
				UserID:        userID,
				ScheduledDate: newDate,
				ScheduledTime: "14:00-16:00",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentConfirmed, 0), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(detail(model.DetailConfirmed), nil).
					Once()
				d.orders.
					On("ByIDForUpdate", mock.Anything, orderID).
					Return(&model.ServiceOrder{ID: orderID, Status: model.OrderConfirmed}, nil).
					Once()

				d.details.
					On("UpdateStatus", mock.Anything, orderDetailID, model.DetailBooked).
					Return(nil).
					Once()
				d.orders.
					On("Update", mock.Anything, mock.MatchedBy(func(upd *model.OrderUpdate) bool {
						return upd.ID == orderID &&
							upd.Status != nil && *upd.Status == model.OrderBooked &&
							upd.UpdatedBy != nil && *upd.UpdatedBy == userID
					})).
					Return(nil).
					Once()

				d.appointments.
					On("Update", mock.Anything, mock.MatchedBy(func(upd *model.AppointmentUpdate) bool {
						return upd.Status != nil && *upd.Status == model.AppointmentBooked &&
							upd.ScheduledDate != nil && upd.ScheduledDate.Equal(newDate) &&
							upd.ScheduledTime != nil && *upd.ScheduledTime == "14:00-16:00" &&
							upd.RescheduleCount != nil && *upd.RescheduleCount == 1
					})).
					Return(nil).
					Once()
				d.history.
					On("Append", mock.Anything, mock.MatchedBy(func(ch *model.StatusChange) bool {
						return ch.OldStatus == model.AppointmentConfirmed &&
							ch.NewStatus == model.AppointmentBooked &&
							ch.ChangedBy == model.ActorCustomer
					})).
					Return(uuid.New(), nil).
					Once()
				d.appointments.
					On("UpsertStatusSnapshot", mock.Anything, appointmentID, model.AppointmentBooked).
					Return(nil).
					Once()

				d.notifier.
					On("Notify", mock.Anything, mock.MatchedBy(func(e model.StatusChangedEvent) bool {
						return e.NewStatus == model.AppointmentBooked && e.UserID == userID
					})).
					Return().
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerUpdateResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, model.AppointmentBooked, res.Status)
				assert.Equal(t, 1, res.RescheduleCount)
				assert.True(t, res.ScheduledDate.Equal(newDate))
				assert.Equal(t, "14:00-16:00", res.ScheduledTime)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDeps(t)
			if tt.setup != nil {
				tt.setup(d)
			}

			svc := newSvc(d)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			res, err := svc.CustomerUpdate(ctx, tt.params)
			tt.assert(t, res, err, d)
		})
	}
}

func TestServiceCustomerCancel(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	orderID := uuid.New()
	orderDetailID := uuid.New()
	userID := uuid.New()

	fixture := func(status model.AppointmentStatus) *model.Appointment {
		return &model.Appointment{
			ID:             appointmentID,
			UserID:         userID,
			ServiceOrderID: orderID,
			OrderDetailID:  orderDetailID,
			Status:         status,
		}
	}

	expectCancelTransition := func(d deps) {
		d.appointments.
			On("Update", mock.Anything, mock.MatchedBy(func(upd *model.AppointmentUpdate) bool {
				return upd.Status != nil && *upd.Status == model.AppointmentCancelled &&
					upd.CancelReason != nil &&
					upd.CancelledBy != nil && *upd.CancelledBy == model.CancelledByCustomer
			})).
			Return(nil).
			Once()
		d.history.
			On("Append", mock.Anything, mock.MatchedBy(func(ch *model.StatusChange) bool {
				return ch.NewStatus == model.AppointmentCancelled &&
					ch.ChangedBy == model.ActorCustomer
			})).
			Return(uuid.New(), nil).
			Once()
		d.appointments.
			On("UpsertStatusSnapshot", mock.Anything, appointmentID, model.AppointmentCancelled).
			Return(nil).
			Once()
	}

	type testCase struct {
		name   string
		params model.CustomerCancelParams
		setup  func(d deps)
		assert func(t *testing.T, res *model.CustomerCancelResult, err error, d deps)
	}

	tests := []testCase{
		{
			name: "invalid transition: already completed",
			params: model.CustomerCancelParams{
				AppointmentID: appointmentID,
				UserID:        userID,
				Reason:        "changed my mind",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentTechnicianDone), nil).
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerCancelResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
				assert.Nil(t, res)
			},
		},
		{
			name: "success: other live lines keep the order open",
			params: model.CustomerCancelParams{
				AppointmentID: appointmentID,
				UserID:        userID,
				Reason:        "found a cheaper shop",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentConfirmed), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(&model.ServiceOrderDetail{
						ID:         orderDetailID,
						OrderID:    orderID,
						Status:     model.DetailConfirmed,
						FinalPrice: 1500,
					}, nil).
					Once()
				d.orders.
					On("ByIDForUpdate", mock.Anything, orderID).
					Return(&model.ServiceOrder{ID: orderID, Status: model.OrderConfirmed}, nil).
					Once()

				expectCancelTransition(d)

				d.details.
					On("UpdateStatus", mock.Anything, orderDetailID, model.DetailCancelled).
					Return(nil).
					Once()
				d.orders.
					On("AddTotal", mock.Anything, orderID, int64(-1500), userID).
					Return(nil).
					Once()

				d.details.
					On("ListByOrderID", mock.Anything, orderID).
					Return([]model.ServiceOrderDetail{
						{ID: orderDetailID, Status: model.DetailCancelled},
						{ID: uuid.New(), Status: model.DetailConfirmed},
					}, nil).
					Once()

				d.notifier.
					On("Notify", mock.Anything, mock.AnythingOfType("model.StatusChangedEvent")).
					Return().
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerCancelResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.Equal(t, model.AppointmentCancelled, res.Status)
				assert.False(t, res.OrderCancelled)

				d.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			},
		},
		{
			name: "success: cancelling the last live line cancels the order",
			params: model.CustomerCancelParams{
				AppointmentID: appointmentID,
				UserID:        userID,
				Reason:        "moving abroad",
			},
			setup: func(d deps) {
				passthroughTx(d)
				d.appointments.
					On("ByIDForUpdate", mock.Anything, appointmentID).
					Return(fixture(model.AppointmentBooked), nil).
					Once()
				d.details.
					On("ByIDForUpdate", mock.Anything, orderDetailID).
					Return(&model.ServiceOrderDetail{
						ID:         orderDetailID,
						OrderID:    orderID,
						Status:     model.DetailBooked,
						FinalPrice: 2000,
					}, nil).
					Once()
				d.orders.
					On("ByIDForUpdate", mock.Anything, orderID).
					Return(&model.ServiceOrder{ID: orderID, Status: model.OrderBooked}, nil).
					Once()

				expectCancelTransition(d)

				d.details.
					On("UpdateStatus", mock.Anything, orderDetailID, model.DetailCancelled).
					Return(nil).
					Once()
				d.orders.
					On("AddTotal", mock.Anything, orderID, int64(-2000), userID).
					Return(nil).
					Once()

				d.details.
					On("ListByOrderID", mock.Anything, orderID).
					Return([]model.ServiceOrderDetail{
						{ID: orderDetailID, Status: model.DetailCancelled},
						{ID: uuid.New(), Status: model.DetailCancelled},
					}, nil).
					Once()

				d.orders.
					On("Update", mock.Anything, mock.MatchedBy(func(upd *model.OrderUpdate) bool {
						return upd.ID == orderID &&
							upd.Status != nil && *upd.Status == model.OrderCancelled &&
							upd.UpdatedBy != nil && *upd.UpdatedBy == userID
					})).
					Return(nil).
					Once()

				d.notifier.
					On("Notify", mock.Anything, mock.AnythingOfType("model.StatusChangedEvent")).
					Return().
					Once()
			},
			assert: func(t *testing.T, res *model.CustomerCancelResult, err error, d deps) {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.True(t, res.OrderCancelled)
				assert.Equal(t, model.CancelledByCustomer, res.CancelledBy)
				assert.Equal(t, "moving abroad", res.CancelReason)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDeps(t)
			if tt.setup != nil {
				tt.setup(d)
			}

			svc := newSvc(d)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			res, err := svc.CustomerCancel(ctx, tt.params)
			tt.assert(t, res, err, d)
		})
	}
}

func TestServiceHistory(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	userID := uuid.New()

	t.Run("error: unknown appointment", func(t *testing.T) {
		t.Parallel()

		d := newDeps(t)
		d.appointments.
			On("ByID", mock.Anything, appointmentID).
			Return((*model.Appointment)(nil), model.ErrAppointmentNotFound).
			Once()

		svc := newSvc(d)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		changes, err := svc.History(ctx, appointmentID, userID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrAppointmentNotFound)
		assert.Nil(t, changes)

		d.history.AssertNotCalled(t, "ListByAppointment", mock.Anything, mock.Anything)
	})

	t.Run("forbidden: not the appointment owner", func(t *testing.T) {
		t.Parallel()

		d := newDeps(t)
		d.appointments.
			On("ByID", mock.Anything, appointmentID).
			Return(&model.Appointment{ID: appointmentID, UserID: uuid.New()}, nil).
			Once()

		svc := newSvc(d)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		changes, err := svc.History(ctx, appointmentID, userID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrForbidden)
		assert.Nil(t, changes)

		d.history.AssertNotCalled(t, "ListByAppointment", mock.Anything, mock.Anything)
	})

	t.Run("success: returns rows oldest first", func(t *testing.T) {
		t.Parallel()

		d := newDeps(t)
		d.appointments.
			On("ByID", mock.Anything, appointmentID).
			Return(&model.Appointment{ID: appointmentID, UserID: userID}, nil).
			Once()
		d.history.
			On("ListByAppointment", mock.Anything, appointmentID).
			Return([]model.StatusChange{
				{AppointmentID: appointmentID, OldStatus: model.AppointmentBooked, NewStatus: model.AppointmentConfirmed},
				{AppointmentID: appointmentID, OldStatus: model.AppointmentConfirmed, NewStatus: model.AppointmentEnRoute},
			}, nil).
			Once()

		svc := newSvc(d)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		changes, err := svc.History(ctx, appointmentID, userID)
		require.NoError(t, err)
		require.Len(t, changes, 2)
		assert.Equal(t, model.AppointmentConfirmed, changes[0].NewStatus)
		assert.Equal(t, model.AppointmentEnRoute, changes[1].NewStatus)
	})
}

func TestServiceByID(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	userID := uuid.New()

	t.Run("forbidden: not the appointment owner", func(t *testing.T) {
		t.Parallel()

		d := newDeps(t)
		d.appointments.
			On("ByID", mock.Anything, appointmentID).
			Return(&model.Appointment{ID: appointmentID, UserID: uuid.New()}, nil).
			Once()

		svc := newSvc(d)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		a, err := svc.ByID(ctx, appointmentID, userID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrForbidden)
		assert.Nil(t, a)
	})

	t.Run("success: owner reads their appointment", func(t *testing.T) {
		t.Parallel()

		d := newDeps(t)
		d.appointments.
			On("ByID", mock.Anything, appointmentID).
			Return(&model.Appointment{ID: appointmentID, UserID: userID, Status: model.AppointmentQuoted}, nil).
			Once()

		svc := newSvc(d)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		a, err := svc.ByID(ctx, appointmentID, userID)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, model.AppointmentQuoted, a.Status)
	})
}

func TestServiceUpdateStatusAuditWrittenLast(t *testing.T) {
	t.Parallel()

	appointmentID := uuid.New()
	technicianID := uuid.New()

	d := newDeps(t)
	passthroughTx(d)

	var writes []string

	d.appointments.
		On("ByIDForUpdate", mock.Anything, appointmentID).
		Return(&model.Appointment{
			ID:           appointmentID,
			UserID:       uuid.New(),
			TechnicianID: &technicianID,
			Status:       model.AppointmentConfirmed,
		}, nil).
		Once()
	d.appointments.
		On("Update", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { writes = append(writes, "appointment") }).
		Return(nil).
		Once()
	d.appointments.
		On("UpsertStatusSnapshot", mock.Anything, appointmentID, model.AppointmentEnRoute).
		Run(func(mock.Arguments) { writes = append(writes, "snapshot") }).
		Return(nil).
		Once()
	d.history.
		On("Append", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { writes = append(writes, "audit") }).
		Return(uuid.New(), nil).
		Once()
	d.notifier.
		On("Notify", mock.Anything, mock.AnythingOfType("model.StatusChangedEvent")).
		Return().
		Once()

	svc := newSvc(d)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := svc.UpdateStatus(ctx, model.UpdateStatusParams{
		AppointmentID: appointmentID,
		TechnicianID:  technicianID,
		NewStatus:     model.AppointmentEnRoute,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"appointment", "snapshot", "audit"}, writes)
}
