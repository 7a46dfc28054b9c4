package health

import (
	"context"
	"sync"
	"time"

	"github.com/loadline/dispatch/internal/recovery"
)

// Pinger checks reachability of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor aggregates health status from the store, the cache and the
// classified-error log.
type Monitor struct {
	store      Pinger
	cache      Pinger
	errlog     *recovery.Log
	window     time.Duration
	lastCheck  time.Time
	lastReport HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor. Either pinger may be nil when the
// dependency is not configured (memory mode, no cache).
func NewMonitor(store, cache Pinger, errlog *recovery.Log) *Monitor {
	return &Monitor{
		store:  store,
		cache:  cache,
		errlog: errlog,
		window: time.Minute,
	}
}

// CheckHealth pings the configured dependencies and builds a report.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks (max once per 10s) to avoid hammering dependencies
	if time.Since(m.lastCheck) < 10*time.Second && m.lastReport.Components != nil {
		return m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth),
	}

	report.Components["database"] = m.checkPinger(ctx, "database", m.store, StatusCritical)
	report.Components["redis"] = m.checkPinger(ctx, "redis", m.cache, StatusDegraded)

	if m.errlog != nil {
		report.RecentErrors = m.countRecent(time.Now().Add(-m.window))
	}

	// Aggregate status (worst case wins)
	for _, c := range report.Components {
		if c.Status == StatusCritical {
			report.SystemStatus = StatusCritical
			break
		}
		if c.Status == StatusDegraded {
			report.SystemStatus = StatusDegraded
		}
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

// checkPinger pings one dependency, downgrading to the given severity on
// failure. Unconfigured dependencies report healthy.
func (m *Monitor) checkPinger(ctx context.Context, name string, p Pinger, onFail SystemStatus) ComponentHealth {
	c := ComponentHealth{Component: name, Status: StatusHealthy}
	if p == nil {
		c.Detail = "not configured"
		return c
	}
	if err := p.Ping(ctx); err != nil {
		c.Status = onFail
		c.Detail = err.Error()
	}
	return c
}

func (m *Monitor) countRecent(since time.Time) int {
	n := 0
	for _, e := range m.errlog.Recent(0) {
		if e.Timestamp.After(since) {
			n++
		}
	}
	return n
}
