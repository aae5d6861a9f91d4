package models

// ForecastRequest is the body of POST /v1/forecast. A missing horizon
// takes the configured default; an explicit zero is rejected.
type ForecastRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	Category     string `json:"category"`
	Horizon      *int   `json:"horizon,omitempty"`
}
