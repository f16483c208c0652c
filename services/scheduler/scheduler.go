// Package scheduler runs periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

// Job is run with a context cancelled after the job timeout.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	logger  core.Logger
	timeout time.Duration
}

func New(logger core.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: timeout,
	}
}

// Add registers job under a standard 5 fields cron spec. An empty spec is ignored.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error(fmt.Sprintf("job %s panicked: %v", name, r))
			}
		}()
		if err := job(ctx); err != nil {
			s.logger.Error(fmt.Sprintf("job %s: %v", name, err), err)
		}
	})
	return errors.Wrapf(err, "scheduling %s (%q)", name, spec)
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs, at most until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
