package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbnhln/kckScraper/internal/config"
)

// Report summarises one warm-up run.
type Report struct {
	OK       bool
	Teachers int
	Duration time.Duration
	Err      error
}

func (r Report) String() string {
	s := fmt.Sprintf("warmed %d teachers in %s", r.Teachers, r.Duration.Round(time.Millisecond))
	if r.Err != nil {
		s += "\n\n" + r.Err.Error()
	}
	return s
}

type Notifier interface {
	Name() string
	Start(ctx context.Context) error
	Finish(ctx context.Context, r Report) error
}

// Manager fans out to every configured notifier. Notification failures are
// logged and never fail the run itself.
type Manager struct {
	logger    *slog.Logger
	notifiers []Notifier
}

func NewManager(logger *slog.Logger, notifiers ...Notifier) *Manager {
	return &Manager{logger: logger, notifiers: notifiers}
}

func NewManagerFromConfig(logger *slog.Logger, cfg config.Config) *Manager {
	m := NewManager(logger)
	if cfg.Notifications.HealthchecksURL != "" {
		m.notifiers = append(m.notifiers, NewHealthchecks(cfg.Notifications.HealthchecksURL, cfg.Source.UserAgent))
	}
	return m
}

func (m *Manager) Start(ctx context.Context) {
	for _, n := range m.notifiers {
		err := n.Start(ctx)
		if err != nil {
			m.logger.Warn("notification start failed", "notifier", n.Name(), "error", err)
		}
	}
}

func (m *Manager) Finish(ctx context.Context, r Report) error {
	var errs []error
	for _, n := range m.notifiers {
		err := n.Finish(ctx, r)
		if err != nil {
			m.logger.Warn("notification finish failed", "notifier", n.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
