package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")

	// Business errors
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrContractNotOpen    = errors.New("contract is not open for offers")
	ErrOfferAlreadyExists = errors.New("offer already exists for this contract and driver")
	ErrOfferTerminal      = errors.New("cannot change status of an accepted/rejected offer")
	ErrNotADriver         = errors.New("user is not a driver")
	ErrNotARequester      = errors.New("user is not a requester")
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Common API errors
func NotFound(resource string) *APIError {
	return NewAPIError("not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func BadRequest(message string) *APIError {
	return NewAPIError("bad_request", message, http.StatusBadRequest)
}

func Conflict(message string) *APIError {
	return NewAPIError("conflict", message, http.StatusConflict)
}

func Forbidden(message string) *APIError {
	return NewAPIError("forbidden", message, http.StatusForbidden)
}

func InternalError(message string) *APIError {
	return NewAPIError("internal_error", message, http.StatusInternalServerError)
}

func Unauthorized(message string) *APIError {
	return NewAPIError("unauthorized", message, http.StatusUnauthorized)
}

func InvalidTransition(from, to string) *APIError {
	return NewAPIError("invalid_transition", fmt.Sprintf("cannot transition from %s to %s", from, to), http.StatusConflict)
}

func ContractNotRequested(status string) *APIError {
	return NewAPIError("contract_not_requested", fmt.Sprintf("contract is in status %s, not requested", status), http.StatusBadRequest)
}

func ContractNotOpen(status string) *APIError {
	return NewAPIError("contract_not_open", fmt.Sprintf("contract in status %s is not open for offers", status), http.StatusConflict)
}

func OfferTerminal(status string) *APIError {
	return NewAPIError("offer_terminal", fmt.Sprintf("cannot change status of an %s offer", status), http.StatusConflict)
}

func DuplicateOffer() *APIError {
	return NewAPIError("duplicate_offer", "driver already has a live offer on this contract", http.StatusConflict)
}

func NotADriver() *APIError {
	return NewAPIError("not_a_driver", "referenced user is not a driver", http.StatusBadRequest)
}

func NotARequester() *APIError {
	return NewAPIError("not_a_requester", "referenced user is not a requester", http.StatusBadRequest)
}
