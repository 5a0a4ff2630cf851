package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// Runner runs the reconciliation sweep on a cron schedule.
type Runner struct {
	db       *gorm.DB
	schedule string
	log      *slog.Logger
}

func NewRunner(db *gorm.DB, schedule string, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{db: db, schedule: schedule, log: log}
}

// Run sweeps on the configured schedule until ctx is cancelled. It returns
// immediately if the schedule is empty or unparseable.
func (r *Runner) Run(ctx context.Context) {
	if r.schedule == "" {
		return
	}
	d := nextCronDuration(r.schedule)
	if d <= 0 {
		r.log.Warn("reconcile schedule invalid, sweeps disabled", "schedule", r.schedule)
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			report, err := Verify(ctx, r.db)
			if err != nil {
				r.log.Error("reconcile sweep failed", "error", err)
			} else {
				r.log.Info("reconcile sweep complete",
					"participants", report.Participants,
					"repairedCounts", report.RepairedCounts,
					"promotedReads", report.PromotedReads)
			}
			if d := nextCronDuration(r.schedule); d > 0 {
				timer.Reset(d)
			}
		}
	}
}
