package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultCheckInterval    = time.Minute
	DefaultActivityInterval = 5 * time.Minute
)

type MonitorConfig struct {
	CheckInterval    time.Duration
	ActivityInterval time.Duration
}

// Monitor polls a Manager while the user is signed in. On the first invalid
// check it clears the session, calls onExpired once and closes Done.
type Monitor struct {
	manager   *Manager
	onExpired func()
	logger    *zap.Logger
	cron      *cron.Cron

	mu      sync.Mutex
	expired bool
	warned  bool
	done    chan struct{}
}

func NewMonitor(manager *Manager, onExpired func(), logger *zap.Logger, cfg MonitorConfig) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.ActivityInterval <= 0 {
		cfg.ActivityInterval = DefaultActivityInterval
	}

	m := &Monitor{
		manager:   manager,
		onExpired: onExpired,
		logger:    logger,
		cron:      cron.New(cron.WithSeconds()),
		done:      make(chan struct{}),
	}
	_, _ = m.cron.AddFunc(every(cfg.CheckInterval), func() { m.Check() })
	_, _ = m.cron.AddFunc(every(cfg.ActivityInterval), m.touch)
	return m
}

func every(d time.Duration) string {
	return fmt.Sprintf("@every %ds", max(int(d.Seconds()), 1))
}

// Start runs an immediate check and schedules the periodic jobs.
func (m *Monitor) Start() {
	if m.Check() {
		m.cron.Start()
	}
}

// Stop halts the scheduler and waits for a running job.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// Done is closed once the session has been found invalid.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// ExpiryWarned reports whether the expiry-soon warning has fired.
func (m *Monitor) ExpiryWarned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.warned
}

// Check runs one validity check and reports whether the session is still valid.
func (m *Monitor) Check() bool {
	m.mu.Lock()
	if m.expired {
		m.mu.Unlock()
		return false
	}

	if !m.manager.HasValidSession() {
		m.expired = true
		m.mu.Unlock()

		m.manager.ClearSession()
		m.logger.Info("session expired, signing out")
		close(m.done)
		if m.onExpired != nil {
			m.onExpired()
		}
		go m.cron.Stop()
		return false
	}

	warn := !m.warned && m.manager.ShouldRefreshToken()
	if warn {
		m.warned = true
	}
	m.mu.Unlock()

	if warn {
		info := m.manager.SessionInfo()
		fields := []zap.Field{}
		if info.TokenExpiry != nil {
			fields = append(fields, zap.Time("expires_at", *info.TokenExpiry))
		}
		m.logger.Warn("session expires within the hour", fields...)
	}
	return true
}

func (m *Monitor) touch() {
	m.mu.Lock()
	expired := m.expired
	m.mu.Unlock()
	if !expired {
		m.manager.UpdateActivity()
	}
}
