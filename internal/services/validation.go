package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/smartatm/backend/internal/bank"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		errorResp.Details = make(map[string]string)
		for _, err := range validationErr.(validator.ValidationErrors) {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// statusForError maps a domain error onto an HTTP status code.
func statusForError(err error) int {
	switch {
	case errors.Is(err, bank.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrWrongPIN),
		errors.Is(err, bank.ErrInvalidOTP),
		errors.Is(err, bank.ErrOTPExpired),
		errors.Is(err, bank.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, bank.ErrInsufficientBalance):
		return http.StatusConflict
	case errors.Is(err, bank.ErrInvalidPIN),
		errors.Is(err, bank.ErrInvalidAmount),
		errors.Is(err, bank.ErrPINMismatch),
		errors.Is(err, bank.ErrNoChallenge),
		errors.Is(err, bank.ErrSessionActive):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sendDomainError renders a domain error with its mapped status.
func sendDomainError(w http.ResponseWriter, err error) {
	SendErrorResponse(w, err.Error(), statusForError(err), nil)
}
