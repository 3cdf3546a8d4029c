package domain

import (
	"fmt"
	"time"
)

// APIError represents a standardized error response of the HTTP and MCP surfaces
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput    = "INVALID_INPUT"
	ErrValidation      = "VALIDATION_ERROR"
	ErrPayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrInternalServer  = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Validate checks the required request fields
func (r *ExplanationRequest) Validate() []error {
	var errs []error
	if r.Drug == "" {
		errs = append(errs, NewValidationError("drug", "drug is required", r.Drug))
	}
	if r.Phenotype == "" {
		errs = append(errs, NewValidationError("phenotype", "phenotype is required", r.Phenotype))
	}
	return errs
}
