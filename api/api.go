// @title argus API
// @description argus dashboard API

// @BasePath /api/
package api

import "github.com/0xERR0R/argus/model"

const (
	// PathLogs recent log entries (GET) and clear (DELETE)
	PathLogs = "/api/logs"
	// PathDomainRules domain rule list (GET) and append (POST)
	PathDomainRules = "/api/rules/domains"

	// DefaultLogLimit number of log entries returned without limit parameter
	DefaultLogLimit = 250
)

// LogList is the response of the log query
type LogList []model.LogEntry

// AddDomainRequest is the body of the append rule call
type AddDomainRequest struct {
	// Domain to block, subdomains are blocked as well
	Domain string `json:"domain"`
}

// StatusResponse acknowledges a mutation
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Domain  string `json:"domain,omitempty"`
}

// ErrorResponse is returned with non 2xx status codes
type ErrorResponse struct {
	Error string `json:"error"`
}
