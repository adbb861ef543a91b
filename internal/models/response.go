// internal/models/response.go
package models

type ErrorResponse struct {
	Error   string   `json:"error"`
	Type    string   `json:"type,omitempty"`
	Details string   `json:"details,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Database string `json:"database,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}
