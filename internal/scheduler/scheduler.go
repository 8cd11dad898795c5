package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/logger"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/services"
)

// Scheduler re-submits the frozen request snapshots of baseline runs on
// cron expressions, producing a fresh run per tick. Because the snapshot is
// complete, deleting the configs a run was built from never breaks its
// schedules.
type Scheduler struct {
	db      db.ConfigDatabase
	evals   *services.EvaluationService
	cron    *cron.Cron
	running bool
	mu      sync.RWMutex
}

// New creates a new scheduler
func New(database db.ConfigDatabase, evals *services.EvaluationService) *Scheduler {
	return &Scheduler{
		db:    database,
		evals: evals,
		cron:  cron.New(),
	}
}

// Start loads all enabled schedules and registers them with cron
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	enabled := true
	schedules, err := s.db.ListSchedules(ctx, &enabled)
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}

	for _, schedule := range schedules {
		if err := s.registerSchedule(schedule); err != nil {
			logger.Error("Failed to register schedule %s: %v", schedule.ID, err)
		}
	}

	s.cron.Start()
	s.running = true

	logger.Info("Scheduler started with %d schedules", len(schedules))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false

	logger.Info("Scheduler stopped")
}

// Reload restarts the scheduler to pick up schedule changes
func (s *Scheduler) Reload(ctx context.Context) error {
	s.Stop()
	s.cron = cron.New()
	return s.Start(ctx)
}

func (s *Scheduler) registerSchedule(schedule *models.Schedule) error {
	id := schedule.ID
	_, err := s.cron.AddFunc(schedule.CronExpr, func() {
		if err := s.ExecuteNow(context.Background(), id); err != nil {
			logger.Error("Failed to execute schedule %s: %v", id, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	logger.Info("Registered schedule %s with cron expression: %s", schedule.ID, schedule.CronExpr)
	return nil
}

// ExecuteNow re-submits the schedule's baseline run immediately and records
// the tick time. The schedule row is re-read per tick so edits take effect
// without a reload.
func (s *Scheduler) ExecuteNow(ctx context.Context, scheduleID string) error {
	schedule, err := s.db.GetSchedule(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to get schedule: %w", err)
	}

	logger.Info("Executing schedule %s (%q) against run %s", schedule.ID, schedule.Name, schedule.RunID)

	name := fmt.Sprintf("%s %s", schedule.Name, time.Now().UTC().Format("2006-01-02 15:04"))
	run, err := s.evals.ResubmitRun(ctx, schedule.RunID, name)
	if err != nil {
		return fmt.Errorf("failed to re-submit run %s: %w", schedule.RunID, err)
	}

	logger.Info("Schedule %s produced run %s", schedule.ID, run.ID)

	now := time.Now().UTC()
	schedule.LastRun = &now
	schedule.UpdatedAt = now
	if err := s.db.UpdateSchedule(ctx, schedule); err != nil {
		logger.Error("Failed to update schedule last run: %v", err)
	}

	return nil
}

// ValidateCronExpr checks a cron expression without registering it
func ValidateCronExpr(expr string) error {
	_, err := cron.ParseStandard(expr)
	return err
}
