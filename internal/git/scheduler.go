package git

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/bashhack/gitautocommit/internal/errors"
	"github.com/bashhack/gitautocommit/internal/logger"
)

// WaitOutcome tells why a wait between ticks ended
type WaitOutcome int

const (
	// WaitTimedOut means the interval elapsed and the next tick is due
	WaitTimedOut WaitOutcome = iota
	// WaitCancelled means the run was cancelled while waiting
	WaitCancelled
)

func (w WaitOutcome) String() string {
	switch w {
	case WaitTimedOut:
		return "timed out"
	case WaitCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("WaitOutcome(%d)", int(w))
	}
}

// ScheduleStats summarizes a finished schedule
type ScheduleStats struct {
	Ticks     int
	Snapshots int
	Changes   int
	LastHash  plumbing.Hash
}

// IntervalScheduler drives a Committer on a fixed cadence until cancelled,
// then runs one final pass
type IntervalScheduler struct {
	committer  Committer
	interval   time.Duration
	maxRetries int
	logger     logger.Logger

	consecutiveErrors int
	lastErrorMsg      string
}

// NewIntervalScheduler creates an IntervalScheduler. maxRetries is the number
// of times the same error may repeat before the loop gives up; 0 retries forever.
func NewIntervalScheduler(c Committer, interval time.Duration, maxRetries int, log logger.Logger) *IntervalScheduler {
	return &IntervalScheduler{
		committer:  c,
		interval:   interval,
		maxRetries: maxRetries,
		logger:     log,
	}
}

// Run ticks until ctx is cancelled. Tick errors are retried on the next tick;
// once the same error repeats more than maxRetries times in a row, Run stops
// and returns it without the final pass.
func (s *IntervalScheduler) Run(ctx context.Context) (ScheduleStats, error) {
	var stats ScheduleStats

	for ctx.Err() == nil {
		stats.Ticks++
		if err := s.tryOperation(func() error { return s.commit(ctx, &stats) }); err != nil {
			return stats, err
		}

		if s.wait(ctx) == WaitCancelled {
			break
		}
	}

	s.logger.Info("Monitoring stopped, taking the final snapshot")
	if err := s.commit(context.WithoutCancel(ctx), &stats); err != nil {
		return stats, errors.Wrap(err, "final snapshot failed")
	}

	return stats, nil
}

func (s *IntervalScheduler) commit(ctx context.Context, stats *ScheduleStats) error {
	snap, committed, err := s.committer.CommitIfDirty(ctx)
	if err != nil {
		return err
	}
	if committed {
		stats.Snapshots++
		stats.Changes += snap.Changes
		stats.LastHash = snap.Hash
	}
	return nil
}

// wait blocks for one interval or until ctx is cancelled
func (s *IntervalScheduler) wait(ctx context.Context) WaitOutcome {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return WaitCancelled
	case <-timer.C:
		return WaitTimedOut
	}
}

// tryOperation runs operation and tracks identical consecutive failures.
// It only returns an error once the retry budget is spent.
func (s *IntervalScheduler) tryOperation(operation func() error) error {
	err := operation()
	if err == nil {
		s.consecutiveErrors = 0
		s.lastErrorMsg = ""
		return nil
	}

	s.logger.Error("Snapshot failed: %v", err)

	if msg := err.Error(); msg == s.lastErrorMsg {
		s.consecutiveErrors++
	} else {
		s.consecutiveErrors = 1
		s.lastErrorMsg = msg
	}

	// '>' so that maxRetries = 1 still allows one retry
	if s.maxRetries > 0 && s.consecutiveErrors > s.maxRetries {
		s.logger.WarningToUser("Same error %d times in a row, stopping.", s.consecutiveErrors)
		return errors.Wrap(err, fmt.Sprintf("maximum retries (%d) exceeded", s.maxRetries))
	}

	s.logger.StatusMessage("Will retry in %s.", s.interval)
	return nil
}
