package optimize

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/rcliao/recoengine/internal/logger"
)

// DefaultSchedule is "03:00 local, every day", per spec §4.6.
const DefaultSchedule = "0 3 * * *"

// Scheduler runs a Cycle on a cron schedule, logging but not propagating a
// single cycle's failure: the next scheduled run is still expected to fire.
type Scheduler struct {
	cron  *cron.Cron
	cycle *Cycle
}

func NewScheduler(cycle *Cycle, schedule string) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	c := cron.New()
	s := &Scheduler{cron: c, cycle: cycle}
	if _, err := c.AddFunc(schedule, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	result, err := s.cycle.Run(ctx)
	if err != nil {
		logger.Error("optimization cycle failed, will retry next window", err)
		return
	}
	logger.Info("optimization cycle scheduled run finished", "clusters", result.ClustersIdentified)
}

// Start begins the cron scheduler in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop blocks until any running job completes, then stops the scheduler.
func (s *Scheduler) Stop() { <-s.cron.Stop().Done() }
