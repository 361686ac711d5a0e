package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/ethalive/internal/core/domain"
	"github.com/vietddude/ethalive/internal/infra/rpc"
)

// EndpointReporter exposes per-endpoint call statistics.
type EndpointReporter interface {
	Health(name string) rpc.EndpointHealth
}

// Monitor keeps the latest watchdog check for the HTTP endpoints.
type Monitor struct {
	endpoints  []string
	reporter   EndpointReporter
	staleAfter time.Duration
	startedAt  time.Time

	deps []dependency

	mu        sync.RWMutex
	lastCheck *domain.Check
	lastAlert *time.Time
	now       func() time.Time
}

// NewMonitor creates a new health monitor. A report whose last check is
// older than staleAfter is degraded regardless of its verdict.
func NewMonitor(endpoints []string, reporter EndpointReporter, staleAfter time.Duration) *Monitor {
	return &Monitor{
		endpoints:  endpoints,
		reporter:   reporter,
		staleAfter: staleAfter,
		startedAt:  time.Now(),
		now:        time.Now,
	}
}

const dependencyTimeout = 2 * time.Second

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

type dependency struct {
	name string
	ping PingFunc
}

// AddDependency registers a backing service shown in the detailed report.
// A failing dependency degrades an otherwise healthy report. Must be
// called before the monitor is shared.
func (m *Monitor) AddDependency(name string, ping PingFunc) {
	m.deps = append(m.deps, dependency{name: name, ping: ping})
}

// Observe implements watchdog.Observer.
func (m *Monitor) Observe(ctx context.Context, check domain.Check) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCheck = &check
	if check.Alert == domain.AlertSent {
		at := check.CheckedAt
		m.lastAlert = &at
	}
	return nil
}

// CheckHealth builds a report from the latest observed check.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	report := HealthReport{
		Status:    StatusDegraded,
		LastAlert: m.lastAlert,
		Uptime:    now.Sub(m.startedAt).Round(time.Second).String(),
	}

	if m.lastCheck != nil {
		last := *m.lastCheck
		report.LastCheck = &last
		report.Status = StatusFor(last.Verdict)

		if m.staleAfter > 0 && now.Sub(last.CheckedAt) > m.staleAfter {
			report.Stale = true
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}

	if len(m.deps) > 0 {
		report.Dependencies = make(map[string]DependencyHealth, len(m.deps))
		for _, d := range m.deps {
			pingCtx, cancel := context.WithTimeout(ctx, dependencyTimeout)
			err := d.ping(pingCtx)
			cancel()

			dh := DependencyHealth{Available: true}
			if err != nil {
				dh = DependencyHealth{Available: false, Error: err.Error()}
				if report.Status == StatusHealthy {
					report.Status = StatusDegraded
				}
			}
			report.Dependencies[d.name] = dh
		}
	}

	if m.reporter != nil {
		report.Endpoints = make(map[string]rpc.EndpointHealth, len(m.endpoints))
		for _, name := range m.endpoints {
			report.Endpoints[name] = m.reporter.Health(name)
		}
	}
	return report
}
