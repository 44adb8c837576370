package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fixmate/field-service/internal/model"
	"github.com/fixmate/field-service/platform/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type envelope struct {
	Data     any      `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Transition rejections only.
	CurrentStatus     string   `json:"currentStatus,omitempty"`
	AttemptedStatus   string   `json:"attemptedStatus,omitempty"`
	ValidNextStatuses []string `json:"validNextStatuses,omitempty"`

	// Stock rejections only.
	Shortfalls []shortfall `json:"shortfalls,omitempty"`
}

type shortfall struct {
	SparePartID string `json:"sparePartId"`
	Name        string `json:"name"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
}

// Decode parses and validates a JSON request body. Validation failures come
// back as model.ErrValidation so the error mapper turns them into 400s.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", model.ErrValidation)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), model.ErrValidation)
	}
	return nil
}

func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("path param %s: %w", name, model.ErrValidation)
	}
	return id, nil
}

func HeaderUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.Header.Get(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("header %s: %w", name, model.ErrValidation)
	}
	return id, nil
}

// JSON writes a success envelope, folding in any warnings collected during
// the request.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := envelope{
		Data:     data,
		Warnings: model.WarningsFrom(r.Context()).Items(),
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(r.Context(), "encode response", logger.ErrorF(err))
	}
}

func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorBody{Error: payload}); encErr != nil {
		logger.Error(r.Context(), "encode error response", logger.ErrorF(encErr))
	}
}

func mapError(err error) (int, errorPayload) {
	var transitionErr *model.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		allowed := make([]string, len(transitionErr.Allowed))
		for i, s := range transitionErr.Allowed {
			allowed[i] = string(s)
		}
		return http.StatusUnprocessableEntity, errorPayload{
			Code:              "INVALID_STATUS_TRANSITION",
			Message:           transitionErr.Error(),
			CurrentStatus:     string(transitionErr.Current),
			AttemptedStatus:   string(transitionErr.Attempted),
			ValidNextStatuses: allowed,
		}
	}

	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		shortfalls := make([]shortfall, len(stockErr.Shortfalls))
		for i, s := range stockErr.Shortfalls {
			shortfalls[i] = shortfall{
				SparePartID: s.SparePartID.String(),
				Name:        s.Name,
				Requested:   s.Requested,
				Available:   s.Available,
			}
		}
		return http.StatusUnprocessableEntity, errorPayload{
			Code:       "INSUFFICIENT_STOCK",
			Message:    stockErr.Error(),
			Shortfalls: shortfalls,
		}
	}

	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, errorPayload{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, errorPayload{Code: "FORBIDDEN", Message: "access denied"}
	case errors.Is(err, model.ErrAppointmentNotFound),
		errors.Is(err, model.ErrOrderNotFound),
		errors.Is(err, model.ErrOrderDetailNotFound),
		errors.Is(err, model.ErrSparePartNotFound),
		errors.Is(err, model.ErrServiceNotFound),
		errors.Is(err, model.ErrWarrantyNotFound):
		return http.StatusNotFound, errorPayload{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, model.ErrOrderConflict):
		return http.StatusConflict, errorPayload{Code: "ORDER_CONFLICT", Message: err.Error()}
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, errorPayload{Code: "INVALID_STATUS_TRANSITION", Message: err.Error()}
	case errors.Is(err, model.ErrRescheduleLimit):
		return http.StatusUnprocessableEntity, errorPayload{Code: "RESCHEDULE_LIMIT_REACHED", Message: err.Error()}
	case errors.Is(err, model.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, errorPayload{Code: "INSUFFICIENT_STOCK", Message: err.Error()}
	case errors.Is(err, model.ErrOrderNotReady):
		return http.StatusUnprocessableEntity, errorPayload{Code: "ORDER_NOT_READY", Message: err.Error()}
	case errors.Is(err, model.ErrOrderMismatch):
		return http.StatusUnprocessableEntity, errorPayload{Code: "ORDER_MISMATCH", Message: err.Error()}
	case errors.Is(err, model.ErrServiceInactive):
		return http.StatusUnprocessableEntity, errorPayload{Code: "SERVICE_INACTIVE", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Code: "INTERNAL", Message: "internal server error"}
	}
}
