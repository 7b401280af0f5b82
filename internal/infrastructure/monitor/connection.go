package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/questify/internal/infrastructure/buffer"
)

// Check pings one dependency. Critical checks decide IsOnline.
type Check struct {
	Name     string
	Critical bool
	Timeout  time.Duration
	Ping     func(ctx context.Context) error
}

func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{
		Name:     "postgresql",
		Critical: true,
		Timeout:  3 * time.Second,
		Ping: func(ctx context.Context) error {
			if pool == nil {
				return errors.New("not configured")
			}
			return pool.Ping(ctx)
		},
	}
}

func RedisCheck(client *redislib.Client) Check {
	return Check{
		Name:     "redis",
		Critical: true,
		Timeout:  2 * time.Second,
		Ping: func(ctx context.Context) error {
			if client == nil {
				return errors.New("not configured")
			}
			return client.Ping(ctx).Err()
		},
	}
}

func BufferCheck(store *buffer.Store) Check {
	return Check{
		Name: "buffer",
		Ping: func(context.Context) error {
			if store == nil {
				return errors.New("not configured")
			}
			_, err := store.Size()
			return err
		},
	}
}

// Sizer reports how many edits are waiting in the offline buffer.
type Sizer interface {
	Size() (int, error)
}

type Monitor struct {
	checks []Check
	sizer  Sizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checks []Check, sizer Sizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		sizer:    sizer,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Online:     true,
		Components: make(map[string]Component, len(m.checks)),
		LastCheck:  time.Now(),
	}

	for _, check := range m.checks {
		comp := m.run(ctx, check)
		if check.Critical && !comp.Healthy {
			status.Online = false
		}
		status.Components[check.Name] = comp
	}

	if m.sizer != nil {
		size, err := m.sizer.Size()
		if err != nil {
			m.logger.Warn("buffer size check failed", zap.Error(err))
		}
		status.BufferSize = size
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.Online != status.Online {
		m.logger.Warn("connectivity changed", zap.Bool("online", status.Online))
	}
	return status
}

func (m *Monitor) run(ctx context.Context, check Check) Component {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := check.Ping(pingCtx)
	comp := Component{
		Healthy:  err == nil,
		Critical: check.Critical,
		Latency:  time.Since(start),
	}
	if err != nil {
		comp.Error = err.Error()
		m.logger.Debug("dependency check failed", zap.String("component", check.Name), zap.Error(err))
	}
	return comp
}
