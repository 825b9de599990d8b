// internal/models/health.go
package models

// HealthStatus is the payload of the health check endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}
