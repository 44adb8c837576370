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
	headerTechnicianID = "X-Technician-ID"

	scheduledDateLayout = "2006-01-02"
)

type AppointmentService interface {
	UpdateStatus(ctx context.Context, params model.UpdateStatusParams) (*model.StatusUpdateResult, error)
	Quote(ctx context.Context, params model.QuoteParams) (*model.QuoteResult, error)
	ConfirmQuote(ctx context.Context, appointmentID, userID uuid.UUID) (*model.QuoteConfirmResult, error)
	AddSpareParts(ctx context.Context, params model.AddSparePartsParams) (*model.AddSparePartsResult, error)
	CompleteRepair(ctx context.Context, params model.CompleteRepairParams) (*model.CompleteRepairResult, error)
	CustomerUpdate(ctx context.Context, params model.CustomerUpdateParams) (*model.CustomerUpdateResult, error)
	CustomerCancel(ctx context.Context, params model.CustomerCancelParams) (*model.CustomerCancelResult, error)
	ByID(ctx context.Context, appointmentID, userID uuid.UUID) (*model.Appointment, error)
	History(ctx context.Context, appointmentID, userID uuid.UUID) ([]model.StatusChange, error)
}

type handler struct {
	svc AppointmentService
}

func NewHandler(svc AppointmentService) *handler {
	return &handler{svc: svc}
}

func (h *handler) Routes(r chi.Router) {
	r.Route("/appointments/{appointmentID}", func(r chi.Router) {
		r.Get("/", h.byID)
		r.Get("/history", h.history)
		r.Patch("/", h.customerUpdate)
		r.Patch("/status", h.updateStatus)
		r.Post("/quote", h.quote)
		r.Post("/quote/confirm", h.confirmQuote)
		r.Post("/parts", h.addSpareParts)
		r.Post("/complete", h.completeRepair)
		r.Post("/cancel", h.customerCancel)
	})
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

func (h *handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	technicianID, err := render.HeaderUUID(r, headerTechnicianID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	result, err := h.svc.UpdateStatus(r.Context(), model.UpdateStatusParams{
		AppointmentID: appointmentID,
		TechnicianID:  technicianID,
		NewStatus:     model.AppointmentStatus(req.Status),
		Note:          req.Note,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, statusUpdateResponse{
		AppointmentID: result.AppointmentID.String(),
		Status:        string(result.Status),
		UpdatedAt:     result.UpdatedAt,
	})
}

type quoteRequest struct {
	OrderDetailID   string   `json:"orderDetailId" validate:"required,uuid"`
	BasePrice       int64    `json:"basePrice" validate:"gte=0"`
	AdditionalPrice int64    `json:"additionalPrice" validate:"gte=0"`
	Diagnosis       string   `json:"diagnosis" validate:"required"`
	ImageURLs       []string `json:"imageUrls" validate:"dive,url"`
}

func (h *handler) quote(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	technicianID, err := render.HeaderUUID(r, headerTechnicianID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req quoteRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	orderDetailID, _ := uuid.Parse(req.OrderDetailID)

	result, err := h.svc.Quote(r.Context(), model.QuoteParams{
		OrderDetailID:   orderDetailID,
		AppointmentID:   appointmentID,
		TechnicianID:    technicianID,
		BasePrice:       req.BasePrice,
		AdditionalPrice: req.AdditionalPrice,
		Diagnosis:       req.Diagnosis,
		ImageURLs:       req.ImageURLs,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, quoteResponse{
		OrderDetailID:   result.OrderDetailID.String(),
		AppointmentID:   result.AppointmentID.String(),
		BasePrice:       result.BasePrice,
		AdditionalPrice: result.AdditionalPrice,
		FinalPrice:      result.FinalPrice,
		Images:          toImageResponses(result.Images),
	})
}

func (h *handler) confirmQuote(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	userID, err := render.HeaderUUID(r, headerUserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	result, err := h.svc.ConfirmQuote(r.Context(), appointmentID, userID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, quoteConfirmResponse{
		AppointmentID:   result.AppointmentID.String(),
		Status:          string(result.Status),
		RescheduleCount: result.RescheduleCount,
		UpdatedAt:       result.UpdatedAt,
	})
}

type addSparePartsRequest struct {
	Items []sparePartItem `json:"items" validate:"required,min=1,dive"`
}

type sparePartItem struct {
	SparePartID string `json:"sparePartId" validate:"required,uuid"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
}

func (h *handler) addSpareParts(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	technicianID, err := render.HeaderUUID(r, headerTechnicianID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req addSparePartsRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	items := make([]model.SparePartUsage, len(req.Items))
	for i, it := range req.Items {
		id, _ := uuid.Parse(it.SparePartID)
		items[i] = model.SparePartUsage{SparePartID: id, Quantity: it.Quantity}
	}

	result, err := h.svc.AddSpareParts(r.Context(), model.AddSparePartsParams{
		AppointmentID: appointmentID,
		TechnicianID:  technicianID,
		Items:         items,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, addSparePartsResponse{
		AppointmentID:  result.AppointmentID.String(),
		OrderDetailID:  result.OrderDetailID.String(),
		PartCount:      result.PartCount,
		AddedPartsCost: result.AddedPartsCost,
	})
}

type completeRepairRequest struct {
	Note      string   `json:"note"`
	ImageURLs []string `json:"imageUrls" validate:"dive,url"`
}

func (h *handler) completeRepair(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	technicianID, err := render.HeaderUUID(r, headerTechnicianID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	req := completeRepairRequest{}
	if r.ContentLength > 0 {
		if err := render.Decode(r, &req); err != nil {
			render.Error(w, r, err)
			return
		}
	}

	result, err := h.svc.CompleteRepair(r.Context(), model.CompleteRepairParams{
		AppointmentID: appointmentID,
		TechnicianID:  technicianID,
		Note:          req.Note,
		ImageURLs:     req.ImageURLs,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := completeRepairResponse{
		AppointmentID: result.AppointmentID.String(),
		Status:        string(result.Status),
		UpdatedAt:     result.UpdatedAt,
		Images:        toImageResponses(result.Images),
	}
	if result.Warranty != nil {
		resp.Warranty = &warrantyResponse{
			ID:        result.Warranty.ID.String(),
			StartDate: result.Warranty.StartDate,
			EndDate:   result.Warranty.EndDate,
			Status:    string(result.Warranty.Status),
		}
	}

	render.JSON(w, r, http.StatusOK, resp)
}

type customerUpdateRequest struct {
	ScheduledDate string `json:"scheduledDate" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime string `json:"scheduledTime"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	CustomerNote  string `json:"customerNote"`
}

func (h *handler) customerUpdate(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	userID, err := render.HeaderUUID(r, headerUserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req customerUpdateRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	var scheduledDate time.Time
	if req.ScheduledDate != "" {
		scheduledDate, err = time.Parse(scheduledDateLayout, req.ScheduledDate)
		if err != nil {
			render.Error(w, r, fmt.Errorf("scheduledDate: %w", model.ErrValidation))
			return
		}
	}

	result, err := h.svc.CustomerUpdate(r.Context(), model.CustomerUpdateParams{
		AppointmentID: appointmentID,
		UserID:        userID,
		ScheduledDate: scheduledDate,
		ScheduledTime: req.ScheduledTime,
		Address:       req.Address,
		Phone:         req.Phone,
		CustomerNote:  req.CustomerNote,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, customerUpdateResponse{
		AppointmentID:   result.AppointmentID.String(),
		Status:          string(result.Status),
		ScheduledDate:   result.ScheduledDate.Format(scheduledDateLayout),
		ScheduledTime:   result.ScheduledTime,
		Address:         result.Address,
		CustomerNote:    result.CustomerNote,
		RescheduleCount: result.RescheduleCount,
	})
}

type customerCancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *handler) customerCancel(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	userID, err := render.HeaderUUID(r, headerUserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req customerCancelRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	result, err := h.svc.CustomerCancel(r.Context(), model.CustomerCancelParams{
		AppointmentID: appointmentID,
		UserID:        userID,
		Reason:        req.Reason,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, customerCancelResponse{
		AppointmentID:  result.AppointmentID.String(),
		Status:         string(result.Status),
		CancelReason:   result.CancelReason,
		CancelledBy:    string(result.CancelledBy),
		OrderCancelled: result.OrderCancelled,
		UpdatedAt:      result.UpdatedAt,
	})
}

func (h *handler) byID(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	userID, err := render.HeaderUUID(r, headerUserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	a, err := h.svc.ByID(r.Context(), appointmentID, userID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toAppointmentResponse(a))
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := render.PathUUID(r, "appointmentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	userID, err := render.HeaderUUID(r, headerUserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	changes, err := h.svc.History(r.Context(), appointmentID, userID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	out := make([]statusChangeResponse, len(changes))
	for i, ch := range changes {
		out[i] = statusChangeResponse{
			ID:        ch.ID.String(),
			OldStatus: string(ch.OldStatus),
			NewStatus: string(ch.NewStatus),
			ChangedBy: string(ch.ChangedBy),
			CreatedAt: ch.CreatedAt,
		}
	}

	render.JSON(w, r, http.StatusOK, out)
}
