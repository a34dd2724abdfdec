package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/repository"
)

// Sweeper periodically drops push registrations that haven't been refreshed
// within the retention window. Send-time pruning catches endpoints that
// answer; this catches the ones that silently stopped registering.
type Sweeper struct {
	pushRepo  *repository.PushRepository
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
	sched     gocron.Scheduler
}

// NewSweeper creates the sweeper against the given DB connection.
func NewSweeper(database *gorm.DB, interval, retention time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		pushRepo:  repository.NewPushRepository(database),
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start schedules the sweep and returns immediately.
func (s *Sweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
	); err != nil {
		return err
	}
	sched.Start()
	s.sched = sched
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.sched != nil {
		_ = s.sched.Shutdown()
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.pushRepo.PruneStale(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.logger.Warn("push registration sweep failed", "err", err)
		return
	}
	if removed > 0 {
		s.logger.Info("swept stale push registrations", "removed", removed)
	}
}
