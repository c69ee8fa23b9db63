// Package scheduler runs the periodic background jobs of the server.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yukikurage/ems-api/internal/events"
	"github.com/yukikurage/ems-api/internal/models"
)

const (
	sweepLockPrefix = "ems:overdue-sweep:"
	sweepLockTTL    = 25 * time.Hour
)

// OverdueSource lists tasks that are past due and not completed
type OverdueSource interface {
	ListOverdue(ctx context.Context, now time.Time) ([]models.Task, error)
}

// NotificationLog tells whether a notification was already sent
type NotificationLog interface {
	HasNotified(ctx context.Context, userID string, t models.NotificationType, ref models.Reference) (bool, error)
}

// OverdueSweeper publishes a TaskOverdue event for every overdue task whose
// assignee has not been told yet. At most one sweep per calendar day does
// any work, across every instance sharing the Locker.
type OverdueSweeper struct {
	tasks     OverdueSource
	sent      NotificationLog
	publisher events.Publisher
	locker    Locker
}

func NewOverdueSweeper(tasks OverdueSource, sent NotificationLog, publisher events.Publisher, locker Locker) *OverdueSweeper {
	return &OverdueSweeper{
		tasks:     tasks,
		sent:      sent,
		publisher: publisher,
		locker:    locker,
	}
}

// RunOnce sweeps as of now and returns how many tasks were reported. It
// returns 0 without looking at tasks when today's sweep already ran.
func (s *OverdueSweeper) RunOnce(ctx context.Context, now time.Time) (int, error) {
	key := sweepLockPrefix + now.Format("2006-01-02")
	acquired, err := s.locker.Acquire(ctx, key, sweepLockTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		return 0, nil
	}

	reported, err := s.sweep(ctx, now)
	if err != nil {
		// Let the next tick retry today's sweep
		if releaseErr := s.locker.Release(ctx, key); releaseErr != nil {
			log.Printf("failed to release sweep lock %s: %v", key, releaseErr)
		}
		return reported, err
	}
	return reported, nil
}

func (s *OverdueSweeper) sweep(ctx context.Context, now time.Time) (int, error) {
	tasks, err := s.tasks.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	reported := 0
	for i := range tasks {
		task := tasks[i]
		if !task.IsOverdue(now) {
			continue
		}

		notified, err := s.sent.HasNotified(ctx, task.AssignedTo, models.NotificationTaskOverdue, models.TaskRef(task.ID))
		if err != nil {
			return reported, err
		}
		if notified {
			continue
		}

		s.publisher.Publish(ctx, events.Event{Kind: events.TaskOverdue, Task: &task, OccurredAt: now})
		reported++
	}
	return reported, nil
}

// Start sweeps immediately and then on every tick until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (s *OverdueSweeper) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Run starts the sweep loop in a new goroutine. The returned channel is
// closed once the loop has returned, including any sweep in progress when
// ctx was cancelled.
func (s *OverdueSweeper) Run(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Start(ctx, interval)
	}()
	return done
}

func (s *OverdueSweeper) tick(ctx context.Context) {
	reported, err := s.RunOnce(ctx, time.Now())
	if err != nil {
		log.Printf("overdue sweep failed: %v", err)
		return
	}
	if reported > 0 {
		log.Printf("overdue sweep reported %d task(s)", reported)
	}
}
