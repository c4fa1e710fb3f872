package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ittop-club/secret-santa-bot/internal/config"
	"github.com/ittop-club/secret-santa-bot/internal/service"
)

const checkInterval = 24 * time.Hour

// Clock abstracts time so tests can drive the loop without real sleeps.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done; it reports false on cancellation.
	Sleep(ctx context.Context, d time.Duration) bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return systemClock{} }

type DrawRunner interface {
	PerformDraw(ctx context.Context, year int) (int, error)
}

type RevealRunner interface {
	RevealAll(ctx context.Context, year int, byAdmin bool) (int, error)
}

type Dispatcher interface {
	NotifyAssignments(ctx context.Context, year int) (int, error)
	NotifyReveals(ctx context.Context, year int, byAdmin bool) (int, error)
}

// Scheduler fires the draw and the reveal on their configured dates.
// It checks once per day; the dates come from the live config store so
// a mid-season edit takes effect without a restart.
type Scheduler struct {
	game       func() config.GameConfig
	draw       DrawRunner
	reveal     RevealRunner
	dispatcher Dispatcher
	clock      Clock
}

func NewScheduler(game func() config.GameConfig, draw DrawRunner, reveal RevealRunner, dispatcher Dispatcher, clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}

	return &Scheduler{
		game:       game,
		draw:       draw,
		reveal:     reveal,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// Run loops until both dates have passed or ctx is cancelled. Each date
// fires at most once per pass; errors are logged and the loop continues,
// so a transient failure is retried on the next day's check.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		game := s.game()
		today := dateOnly(s.clock.Now())
		drawDate := game.DrawDate.Time()
		revealDate := game.RevealDate.Time()

		if !today.Before(drawDate) {
			s.runDraw(ctx, game.Year())
		} else {
			zap.L().Info("scheduler waiting for draw date",
				zap.Int("days_remaining", daysBetween(today, drawDate)))
		}

		if !today.Before(revealDate) {
			s.runReveal(ctx, game.Year())
		} else if !today.Before(drawDate) {
			zap.L().Info("scheduler waiting for reveal date",
				zap.Int("days_remaining", daysBetween(today, revealDate)))
		}

		if today.After(drawDate) && today.After(revealDate) {
			zap.L().Info("scheduler finished, both dates passed")

			return
		}

		if !s.clock.Sleep(ctx, checkInterval) {
			zap.L().Info("scheduler stopped")

			return
		}
	}
}

func (s *Scheduler) runDraw(ctx context.Context, year int) {
	n, err := s.draw.PerformDraw(ctx, year)
	switch {
	case errors.Is(err, service.ErrAlreadyDrawn):
		// Draw already happened on an earlier pass; only retry notifications.
	case err != nil:
		zap.L().Error("scheduled draw failed", zap.Int("year", year), zap.Error(err))

		return
	default:
		zap.L().Info("scheduled draw performed", zap.Int("year", year), zap.Int("pairs", n))
	}

	sent, err := s.dispatcher.NotifyAssignments(ctx, year)
	if err != nil {
		zap.L().Error("assignment notifications failed", zap.Error(err))

		return
	}
	if sent > 0 {
		zap.L().Info("assignment notifications sent", zap.Int("sent", sent))
	}
}

func (s *Scheduler) runReveal(ctx context.Context, year int) {
	n, err := s.reveal.RevealAll(ctx, year, false)
	if err != nil {
		zap.L().Error("scheduled reveal failed", zap.Int("year", year), zap.Error(err))

		return
	}
	if n == 0 {
		return
	}

	zap.L().Info("scheduled reveal performed", zap.Int("year", year), zap.Int("revealed", n))

	sent, err := s.dispatcher.NotifyReveals(ctx, year, false)
	if err != nil {
		zap.L().Error("reveal notifications failed", zap.Error(err))

		return
	}

	zap.L().Info("reveal notifications sent", zap.Int("sent", sent))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
