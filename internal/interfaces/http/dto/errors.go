package dto

import "net/http"

// Standard error codes returned by the API
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeUnknownCurrency  = "UNKNOWN_CURRENCY"
	ErrCodeConversionFailed = "CONVERSION_FAILED"
	ErrCodeRatesUnavailable = "RATES_UNAVAILABLE"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeQueryFailed      = "QUERY_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeUnknownCurrency:  http.StatusBadRequest,
	ErrCodeConversionFailed: http.StatusBadGateway,
	ErrCodeRatesUnavailable: http.StatusServiceUnavailable,
	ErrCodeStoreUnavailable: http.StatusServiceUnavailable,
	ErrCodeQueryFailed:      http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
