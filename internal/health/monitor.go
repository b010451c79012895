package health

import (
	"context"
	"sync"
	"time"
)

// Check is the most recent result of a background probe.
type Check struct {
	Status    string    `json:"status"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Monitor periodically runs a reachability probe and keeps the last result
// for the health endpoint to report. It never issues a probe inline with a
// health request.
type Monitor struct {
	probe    func(context.Context) error
	interval time.Duration
	timeout  time.Duration

	mu        sync.RWMutex
	last      Check
	hasResult bool
	startOnce sync.Once
}

// NewMonitor constructs a monitor. Non-positive interval and timeout fall
// back to one minute and five seconds.
func NewMonitor(probe func(context.Context) error, interval, timeout time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 || timeout > interval {
		timeout = 5 * time.Second
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		timeout:  timeout,
	}
}

// Start begins the monitoring loop until ctx is canceled.
func (m *Monitor) Start(ctx context.Context) {
	if m == nil || m.probe == nil {
		return
	}
	m.startOnce.Do(func() {
		go m.run(ctx)
	})
}

// Last returns the most recent check; ok is false before the first sweep
// completes.
func (m *Monitor) Last() (Check, bool) {
	if m == nil {
		return Check{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.hasResult
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Initial sweep
	m.check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	timeoutCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := m.probe(timeoutCtx)

	result := Check{
		Status:    "ok",
		LatencyMS: time.Since(start).Milliseconds(),
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		result.Status = "error"
		result.Error = err.Error()
	}

	m.mu.Lock()
	m.last = result
	m.hasResult = true
	m.mu.Unlock()
}
