// Package scheduler runs the periodic maintenance jobs, currently only the
// nightly analytics rollup.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	rollupFunc func(ctx context.Context, date time.Time) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetRollupFunction sets the job invoked for each daily rollup run.
func (s *Scheduler) SetRollupFunction(f func(ctx context.Context, date time.Time) error) {
	s.rollupFunc = f
}

func (s *Scheduler) Start() error {
	if s.rollupFunc == nil {
		log.Println("rollup function not set, scheduler idle")
		return nil
	}

	// shortly after midnight UTC, rolling up the day that just ended
	_, err := s.cron.AddFunc("5 0 * * *", func() {
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		log.Printf("running daily rollup for %s", yesterday.Format("2006-01-02"))
		if err := s.rollupFunc(s.ctx, yesterday); err != nil {
			log.Printf("daily rollup failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("scheduler started, daily rollup at 00:05 UTC")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
