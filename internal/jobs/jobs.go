// Package jobs wires the background work: the periodic reminder scan and
// the nightly retention sweep.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/niranjan-aware/resonance-system/internal/modules/reminder"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
)

type Runner struct {
	scheduler gocron.Scheduler
}

// Start builds the scheduler, registers both jobs and begins ticking.
// Times are interpreted in the business timezone, so the retention sweep
// runs at 02:00 local regardless of server clock.
func Start(scanner *reminder.Scanner, sweeper *RetentionSweeper, interval time.Duration, loc *time.Location) (*Runner, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { scanner.Run(ctx) }),
		gocron.WithName("reminder-scan"),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0))),
		gocron.NewTask(func() { sweeper.Sweep(ctx) }),
		gocron.WithName("retention-sweep"),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	logger.InfoLogger.WithField("jobs", len(sched.Jobs())).Info("background scheduler started")
	return &Runner{scheduler: sched}, nil
}

func (r *Runner) Stop() error {
	return r.scheduler.Shutdown()
}
