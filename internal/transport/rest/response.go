package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/KotFed0t/gold_tracker/utils"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// rawJSON writes an already encoded upstream body unchanged.
func rawJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		JSONError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return false
	}
	return true
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		validationErr *service.ValidationError
		allocationErr *service.AllocationError
	)

	switch {
	case errors.As(err, &validationErr):
		JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{
			"field":  validationErr.Field,
			"reason": validationErr.Reason,
		})
	case errors.As(err, &allocationErr):
		JSONError(w, http.StatusUnprocessableEntity, allocationErr.Error(), map[string]string{
			"purchaseId": allocationErr.LotID,
			"requested":  allocationErr.Requested.String(),
			"available":  allocationErr.Available.String(),
		})
	case errors.Is(err, service.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not found", nil)
	case errors.Is(err, service.ErrLotInUse):
		JSONError(w, http.StatusConflict, "purchase is referenced by a sale", nil)
	case errors.Is(err, service.ErrUploadDisabled):
		JSONError(w, http.StatusServiceUnavailable, "report upload is not configured", nil)
	case errors.Is(err, service.ErrUpstream):
		JSONError(w, http.StatusBadGateway, "upstream service unavailable", nil)
	default:
		slog.Error(
			"unhandled error",
			slog.String("rqID", utils.GetRequestIDFromCtx(r.Context())),
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		JSONError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
