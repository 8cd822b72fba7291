package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/kodbank/backend/internal/bank"
	"github.com/kodbank/backend/internal/services"
)

// errorStatus maps domain errors to HTTP status codes. Their messages go to
// the client verbatim.
var errorStatus = []struct {
	err    error
	status int
}{
	{bank.ErrDuplicateEmail, http.StatusConflict},
	{bank.ErrInvalidCredentials, http.StatusUnauthorized},
	{bank.ErrNotAuthenticated, http.StatusUnauthorized},
	{bank.ErrAccountNotFound, http.StatusNotFound},
	{bank.ErrSenderNotFound, http.StatusNotFound},
	{bank.ErrReceiverNotFound, http.StatusNotFound},
	{bank.ErrSelfTransfer, http.StatusBadRequest},
	{bank.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{bank.ErrInvalidAmount, http.StatusBadRequest},
	{bank.ErrStorageUnavailable, http.StatusServiceUnavailable},
	{bank.ErrSelfDelete, http.StatusBadRequest},
	{bank.ErrForbidden, http.StatusForbidden},
	{bank.ErrInvalidRole, http.StatusBadRequest},
	{bank.ErrVerificationRequired, http.StatusForbidden},
	{services.ErrPaymentRequestNotFound, http.StatusNotFound},
}

func sendError(w http.ResponseWriter, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			services.SendErrorResponse(w, e.err.Error(), e.status, nil)
			return
		}
	}
	log.Printf("[API] Unhandled error: %v", err)
	services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads exactly one JSON object into dst and validates it. It
// writes the error response itself and reports whether the caller may go on.
func decodeJSON(w http.ResponseWriter, r *http.Request, validator *services.ValidationHelper, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := validator.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}
