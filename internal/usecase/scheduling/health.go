package scheduling

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"textgen/internal/domain"
)

// HealthReport is the outcome of one health probe.
type HealthReport struct {
	Status *domain.HealthStatus // nil when the probe failed
	Err    error
	At     time.Time
}

// Online reports whether the service answered and declared itself healthy.
func (r HealthReport) Online() bool {
	return r.Err == nil && r.Status != nil && r.Status.Healthy()
}

// HealthMonitor probes the generation service and publishes each result.
type HealthMonitor struct {
	checker domain.HealthChecker
	publish func(HealthReport)
	logger  *slog.Logger

	mu   sync.Mutex
	last *HealthReport
}

// NewHealthMonitor creates a monitor. publish may be nil.
func NewHealthMonitor(checker domain.HealthChecker, publish func(HealthReport), logger *slog.Logger) *HealthMonitor {
	return &HealthMonitor{checker: checker, publish: publish, logger: logger}
}

// Probe runs one health check. It returns the probe error so the scheduler
// logs failures.
func (m *HealthMonitor) Probe(ctx context.Context) error {
	status, err := m.checker.Health(ctx)
	report := HealthReport{Status: status, Err: err, At: time.Now()}
	if err != nil {
		report.Status = nil
	}

	m.mu.Lock()
	prev := m.last
	m.last = &report
	m.mu.Unlock()

	if prev == nil || prev.Online() != report.Online() {
		m.logger.Info("generation service health changed", "online", report.Online())
	}
	if m.publish != nil {
		m.publish(report)
	}
	return err
}

// Last returns the most recent report, if any.
func (m *HealthMonitor) Last() (HealthReport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return HealthReport{}, false
	}
	return *m.last, true
}

// Register wires the monitor into s under ActionHealthProbe.
func (m *HealthMonitor) Register(s *Scheduler, schedule string) error {
	s.RegisterAction(ActionHealthProbe, m.Probe)
	return s.AddTask(ScheduledTask{
		Name:       "health",
		Schedule:   schedule,
		Action:     ActionHealthProbe,
		RunOnStart: true,
	})
}
