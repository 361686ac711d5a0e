// Package health provides watchdog status reporting over HTTP.
package health

import (
	"time"

	"github.com/vietddude/ethalive/internal/core/domain"
	"github.com/vietddude/ethalive/internal/infra/rpc"
)

// SystemStatus represents the overall health state of the monitored node.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// StatusFor maps a verdict to a system status.
func StatusFor(kind domain.VerdictKind) SystemStatus {
	switch kind {
	case domain.VerdictSynced, domain.VerdictLocalAhead:
		return StatusHealthy
	case domain.VerdictLagging, domain.VerdictLocalUnreachable:
		return StatusCritical
	default:
		return StatusDegraded
	}
}

// DependencyHealth is the ping result of a backing service.
type DependencyHealth struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// HealthReport contains the full watchdog health report.
type HealthReport struct {
	Status       SystemStatus                  `json:"status"`
	Stale        bool                          `json:"stale"`
	LastCheck    *domain.Check                 `json:"last_check,omitempty"`
	LastAlert    *time.Time                    `json:"last_alert,omitempty"`
	Endpoints    map[string]rpc.EndpointHealth `json:"endpoints,omitempty"`
	Dependencies map[string]DependencyHealth   `json:"dependencies,omitempty"`
	Uptime       string                        `json:"uptime"`
}
