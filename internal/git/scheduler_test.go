package git

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashhack/gitautocommit/internal/errors"
)

// fakeCommitter returns scripted results and counts calls
type fakeCommitter struct {
	mu      sync.Mutex
	calls   int
	results []fakeResult
	onCall  func(call int)
}

type fakeResult struct {
	committed bool
	err       error
}

func (f *fakeCommitter) CommitIfDirty(context.Context) (Snapshot, bool, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	var res fakeResult
	if call <= len(f.results) {
		res = f.results[call-1]
	}
	hook := f.onCall
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if res.err != nil {
		return Snapshot{}, false, res.err
	}
	if !res.committed {
		return Snapshot{}, false, nil
	}
	return Snapshot{Hash: plumbing.NewHash("0123456789abcdef0123456789abcdef01234567"), Changes: 2}, true, nil
}

func (f *fakeCommitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestWaitOutcome(t *testing.T) {
	log, _ := newTestLogger()
	s := NewIntervalScheduler(&fakeCommitter{}, 10*time.Millisecond, 0, log)

	assert.Equal(t, WaitTimedOut, s.wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	long := NewIntervalScheduler(&fakeCommitter{}, time.Hour, 0, log)

	start := time.Now()
	assert.Equal(t, WaitCancelled, long.wait(ctx))
	assert.Less(t, time.Since(start), time.Second, "cancellation returns immediately")

	assert.Equal(t, "timed out", WaitTimedOut.String())
	assert.Equal(t, "cancelled", WaitCancelled.String())
}

func TestRunCancelledBeforeStartOnlyRunsFinalPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := &fakeCommitter{results: []fakeResult{{committed: true}}}
	log, _ := newTestLogger()

	stats, err := NewIntervalScheduler(fc, time.Hour, 3, log).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.Calls())
	assert.Equal(t, 0, stats.Ticks)
	assert.Equal(t, 1, stats.Snapshots)
	assert.Equal(t, 2, stats.Changes)
}

func TestRunCancelWhileWaitingTakesExactlyOneMoreSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fc := &fakeCommitter{
		results: []fakeResult{{committed: true}, {committed: true}},
		onCall: func(call int) {
			if call == 1 {
				cancel()
			}
		},
	}
	log, _ := newTestLogger()

	done := make(chan struct{})
	var stats ScheduleStats
	var err error
	go func() {
		defer close(done)
		stats, err = NewIntervalScheduler(fc, time.Hour, 3, log).Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler kept waiting after cancellation")
	}

	require.NoError(t, err)
	assert.Equal(t, 2, fc.Calls(), "one tick plus the final pass")
	assert.Equal(t, 1, stats.Ticks)
	assert.Equal(t, 2, stats.Snapshots)
}

func TestRunTicksOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fc := &fakeCommitter{
		onCall: func(call int) {
			if call == 3 {
				cancel()
			}
		},
	}
	log, _ := newTestLogger()

	stats, err := NewIntervalScheduler(fc, 5*time.Millisecond, 3, log).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Ticks)
	assert.Equal(t, 4, fc.Calls())
	assert.Zero(t, stats.Snapshots)
}

func TestRunRetriesTransientErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("index locked")
	fc := &fakeCommitter{
		results: []fakeResult{{err: boom}, {err: boom}, {committed: true}, {err: boom}, {err: boom}},
		onCall: func(call int) {
			if call == 5 {
				cancel()
			}
		},
	}
	log, out := newTestLogger()

	stats, err := NewIntervalScheduler(fc, time.Millisecond, 2, log).Run(ctx)
	require.NoError(t, err, "a success resets the error streak")
	assert.Equal(t, 1, stats.Snapshots)
	assert.Equal(t, 6, fc.Calls())
	assert.Contains(t, out.String(), "Snapshot failed: index locked")
}

func TestRunGivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("disk full")
	fc := &fakeCommitter{results: []fakeResult{{err: boom}, {err: boom}, {err: boom}, {err: boom}}}
	log, _ := newTestLogger()

	_, err := NewIntervalScheduler(fc, time.Millisecond, 2, log).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "maximum retries (2) exceeded")
	assert.Equal(t, 3, fc.Calls(), "first failure plus two retries, no final pass")
}

func TestRunDifferentErrorsResetTheStreak(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fc := &fakeCommitter{
		results: []fakeResult{
			{err: errors.New("a")}, {err: errors.New("b")}, {err: errors.New("a")}, {err: errors.New("b")},
		},
		onCall: func(call int) {
			if call == 4 {
				cancel()
			}
		},
	}
	log, _ := newTestLogger()

	_, err := NewIntervalScheduler(fc, time.Millisecond, 1, log).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, fc.Calls())
}

func TestRunReturnsFinalPassError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	boom := errors.New("final failure")
	fc := &fakeCommitter{results: []fakeResult{{err: boom}}}
	log, _ := newTestLogger()

	_, err := NewIntervalScheduler(fc, time.Hour, 0, log).Run(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "final snapshot failed")
}
