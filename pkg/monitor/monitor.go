package monitor

import (
	"context"
	"fmt"
	"time"

	"reservewatch/pkg/config"
	"reservewatch/pkg/logger"
	"reservewatch/pkg/probe"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Notifier delivers a message to a chat and reports success. It must not
// block the loop on failure.
type Notifier interface {
	Send(ctx context.Context, text, chatID string) bool
}

// Session is a browser session the loop owns for its whole run.
type Session interface {
	probe.Session
	Close() error
}

// SessionFactory opens the session once, before the first probe.
type SessionFactory func(ctx context.Context) (Session, error)

// Monitor is the poll loop: probe, notify, sleep, forever.
type Monitor struct {
	cfg        *config.Config
	notifier   Notifier
	newSession SessionFactory
	schedule   cron.Schedule
	status     *Status

	sleep         func(ctx context.Context, d time.Duration) error
	now           func() time.Time
	heartbeat     func()
	maxIterations int

	streak      int
	streakFired bool
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithSleep replaces the inter-iteration wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Monitor) { m.sleep = sleep }
}

// WithClock replaces time.Now for schedule calculations.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithMaxIterations stops Run after n probes. Zero means run forever.
func WithMaxIterations(n int) Option {
	return func(m *Monitor) { m.maxIterations = n }
}

// WithHeartbeat registers a callback invoked after every iteration.
func WithHeartbeat(fn func()) Option {
	return func(m *Monitor) { m.heartbeat = fn }
}

// New builds a monitor. The schedule is the cron expression when one is
// configured, else a fixed interval.
func New(cfg *config.Config, notifier Notifier, newSession SessionFactory, opts ...Option) (*Monitor, error) {
	schedule, err := buildSchedule(cfg.Monitor)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:        cfg,
		notifier:   notifier,
		newSession: newSession,
		schedule:   schedule,
		sleep:      sleepContext,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.status = newStatus(cfg.Target, m.now())

	return m, nil
}

func buildSchedule(mc *config.MonitorConfig) (cron.Schedule, error) {
	if mc.Schedule != "" {
		schedule, err := cron.ParseStandard(mc.Schedule)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", config.ErrInvalidCron, mc.Schedule, err)
		}
		return schedule, nil
	}
	return cron.Every(mc.IntervalDuration()), nil
}

// Status exposes the loop's progress to readers on other goroutines.
func (m *Monitor) Status() *Status {
	return m.status
}

// Run announces startup, opens the session and polls until ctx is cancelled.
// Probe failures never end the loop; only a session that cannot be opened does.
func (m *Monitor) Run(ctx context.Context) error {
	tg := m.cfg.Telegram

	logger.Info("Starting availability monitor",
		zap.String("url", m.cfg.Target.URL),
		zap.String("model", m.cfg.Target.Model),
		zap.String("color", m.cfg.Target.Color),
		zap.String("capacity", m.cfg.Target.Capacity),
		zap.Duration("interval", m.cfg.Monitor.IntervalDuration()),
		zap.String("schedule", m.cfg.Monitor.Schedule))

	m.deliver(ctx, Notification{Text: StartupMessage(m.cfg.Target), ChatID: tg.DebugChatID})

	session, err := m.newSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close browser session", zap.Error(err))
		}
	}()

	prober := probe.New(session, m.cfg.Target, m.cfg.Monitor.WaitTimeoutDuration())

	for iteration := 1; ; iteration++ {
		if ctx.Err() != nil {
			break
		}

		ictx := logger.WithIteration(ctx, iteration)
		verdict := prober.Probe(ictx)

		// a probe cut short by shutdown has nothing to report
		if ctx.Err() != nil {
			break
		}

		m.deliver(ictx, m.route(verdict))
		m.status.record(verdict, m.streak)

		if m.heartbeat != nil {
			m.heartbeat()
		}

		if m.maxIterations > 0 && iteration >= m.maxIterations {
			logger.Info("Iteration limit reached", zap.Int("iterations", iteration))
			return nil
		}

		now := m.now()
		next := m.schedule.Next(now)
		logger.FromContext(ictx).Debug("Sleeping until next probe", zap.Time("next", next))
		if err := m.sleep(ctx, next.Sub(now)); err != nil {
			break
		}
	}

	logger.Info("Availability monitor stopped")
	return nil
}

// route maps a verdict to its notification and maintains the unavailable
// streak.
func (m *Monitor) route(v probe.Verdict) Notification {
	n := BuildNotification(v, m.cfg.Telegram)

	if v.Kind != probe.Unavailable {
		m.streak = 0
		m.streakFired = false
		return n
	}

	m.streak++
	alertAfter := m.cfg.Monitor.UnavailableAlertAfter
	if alertAfter > 0 && m.streak >= alertAfter && !m.streakFired {
		m.streakFired = true
		logger.Warn("Unavailable streak reached threshold",
			zap.Int("streak", m.streak),
			zap.String("waypoint", string(v.Waypoint)))
		return Notification{Text: StreakMessage(m.streak, v.Waypoint), ChatID: m.cfg.Telegram.DebugChatID}
	}
	return n
}

func (m *Monitor) deliver(ctx context.Context, n Notification) {
	ok := m.notifier.Send(ctx, n.Text, n.ChatID)
	m.status.recordDelivery(ok)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
