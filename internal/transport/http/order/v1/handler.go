package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fixmate/field-service/internal/model"
	"github.com/fixmate/field-service/internal/transport/http/render"
)

const (
	headerUserID       = "X-User-ID"
	headerStaffID      = "X-Staff-ID"
	headerTechnicianID = "X-Technician-ID"

	scheduledDateLayout = "2006-01-02"
)

type OrderService interface {
	Create(ctx context.Context, params model.CreateOrderParams) (*model.CreateOrderResult, error)
	Confirm(ctx context.Context, orderID, staffID uuid.UUID) (*model.OrderActionResult, error)
	MarkPaid(ctx context.Context, params model.MarkPaidParams) (*model.MarkPaidResult, error)
	Complete(ctx context.Context, orderID, staffID uuid.UUID) (*model.OrderActionResult, error)
	ByID(ctx context.Context, orderID uuid.UUID) (*model.ServiceOrder, error)
}

type handler struct {
	svc OrderService
}

func NewHandler(svc OrderService) *handler {
	return &handler{svc: svc}
}

func (h *handler) Routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.byID)
			r.Post("/confirm", h.confirm)
			r.Post("/payment", h.markPaid)
			r.Post("/complete", h.complete)
		})
	})
}

type createOrderRequest struct {
	Phone   string                     `json:"phone" validate:"required"`
	Details []createOrderDetailRequest `json:"details" validate:"required,min=1,dive"`
}

type createOrderDetailRequest struct {
	ServiceID   string                  `json:"serviceId" validate:"required,uuid"`
	Appointment *appointmentSlotRequest `json:"appointment" validate:"required"`
}

type appointmentSlotRequest struct {
	ScheduledDate string `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	ScheduledTime string `json:"scheduledTime" validate:"required"`
	Address       string `json:"address" validate:"required"`
	CustomerNote  string `json:"customerNote"`
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := render.HeaderUUID(r, headerUserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var staffID *uuid.UUID
	if raw := r.Header.Get(headerStaffID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			render.Error(w, r, fmt.Errorf("header %s: %w", headerStaffID, model.ErrValidation))
			return
		}
		staffID = &id
	}

	var req createOrderRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	details := make([]model.CreateOrderDetailParams, len(req.Details))
	for i, d := range req.Details {
		serviceID, _ := uuid.Parse(d.ServiceID)
		scheduledDate, err := time.Parse(scheduledDateLayout, d.Appointment.ScheduledDate)
		if err != nil {
			render.Error(w, r, fmt.Errorf("scheduledDate: %w", model.ErrValidation))
			return
		}
		details[i] = model.CreateOrderDetailParams{
			ServiceID: serviceID,
			Appointment: &model.AppointmentRequest{
				ScheduledDate: scheduledDate,
				ScheduledTime: d.Appointment.ScheduledTime,
				Address:       d.Appointment.Address,
				CustomerNote:  d.Appointment.CustomerNote,
			},
		}
	}

	result, err := h.svc.Create(r.Context(), model.CreateOrderParams{
		CustomerID:    userID,
		StaffID:       staffID,
		CustomerPhone: req.Phone,
		Details:       details,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	appointmentIDs := make([]string, len(result.AppointmentIDs))
	for i, id := range result.AppointmentIDs {
		appointmentIDs[i] = id.String()
	}

	render.JSON(w, r, http.StatusCreated, createOrderResponse{
		OrderID:        result.OrderID.String(),
		AppointmentIDs: appointmentIDs,
	})
}

func (h *handler) confirm(w http.ResponseWriter, r *http.Request) {
	orderID, err := render.PathUUID(r, "orderID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	staffID, err := render.HeaderUUID(r, headerStaffID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	result, err := h.svc.Confirm(r.Context(), orderID, staffID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toOrderActionResponse(result))
}

type markPaidRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash card transfer"`
}

func (h *handler) markPaid(w http.ResponseWriter, r *http.Request) {
	orderID, err := render.PathUUID(r, "orderID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	technicianID, err := render.HeaderUUID(r, headerTechnicianID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req markPaidRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	result, err := h.svc.MarkPaid(r.Context(), model.MarkPaidParams{
		OrderID:       orderID,
		TechnicianID:  technicianID,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, markPaidResponse{
		OrderID:       result.OrderID.String(),
		Status:        string(result.Status),
		PaymentMethod: string(result.PaymentMethod),
		UpdatedAt:     result.UpdatedAt,
	})
}

func (h *handler) complete(w http.ResponseWriter, r *http.Request) {
	orderID, err := render.PathUUID(r, "orderID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	staffID, err := render.HeaderUUID(r, headerStaffID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	result, err := h.svc.Complete(r.Context(), orderID, staffID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toOrderActionResponse(result))
}

func (h *handler) byID(w http.ResponseWriter, r *http.Request) {
	orderID, err := render.PathUUID(r, "orderID")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	ord, err := h.svc.ByID(r.Context(), orderID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := orderResponse{
		ID:          ord.ID.String(),
		CustomerID:  ord.CustomerID.String(),
		Status:      string(ord.Status),
		TotalAmount: ord.TotalAmount,
		OrderDate:   ord.OrderDate,
		UpdatedAt:   ord.UpdatedAt,
	}
	if ord.StaffID != nil {
		resp.StaffID = ord.StaffID.String()
	}
	if ord.PaymentMethod != nil {
		resp.PaymentMethod = string(*ord.PaymentMethod)
	}

	render.JSON(w, r, http.StatusOK, resp)
}

type createOrderResponse struct {
	OrderID        string   `json:"orderId"`
	AppointmentIDs []string `json:"appointmentIds"`
}

type orderActionResponse struct {
	OrderID     string    `json:"orderId"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"totalAmount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type markPaidResponse struct {
	OrderID       string    `json:"orderId"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type orderResponse struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	StaffID       string    `json:"staffId,omitempty"`
	Status        string    `json:"status"`
	TotalAmount   int64     `json:"totalAmount"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	OrderDate     time.Time `json:"orderDate"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toOrderActionResponse(result *model.OrderActionResult) orderActionResponse {
	return orderActionResponse{
		OrderID:     result.OrderID.String(),
		Status:      string(result.Status),
		TotalAmount: result.TotalAmount,
		UpdatedAt:   result.UpdatedAt,
	}
}
