package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Dataset   string `json:"dataset_version,omitempty"`
}

// JurisdictionListResponse lists the jurisdictions in the dataset
type JurisdictionListResponse struct {
	Jurisdictions []string `json:"jurisdictions"`
	Count         int      `json:"count"`
}

// CategoryListResponse lists the crime categories of one jurisdiction
type CategoryListResponse struct {
	Jurisdiction string   `json:"jurisdiction"`
	Categories   []string `json:"categories"`
	Count        int      `json:"count"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewErrorResponse builds an ErrorResponse
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}
