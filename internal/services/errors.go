// Package services provides the business logic layer between handlers and
// the forecasting core. Services encapsulate orchestration, caching and
// event publication.
package services

// Service error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidHorizon = "INVALID_HORIZON"
	CodeSeriesNotFound = "SERIES_NOT_FOUND"
	CodeInvalidSeries  = "INVALID_SERIES"
	CodeNotFound       = "NOT_FOUND"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
