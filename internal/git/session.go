package git

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/bashhack/gitautocommit/internal/clock"
	"github.com/bashhack/gitautocommit/internal/errors"
	"github.com/bashhack/gitautocommit/internal/logger"
)

// Options configures one monitoring session
type Options struct {
	Interval     time.Duration
	SourceBranch string
	NewBranch    string
	PushEnabled  bool
	PushRemote   string
	MaxRetries   int
}

// Result describes what a session did
type Result struct {
	StartBranch  string
	StartCommit  plumbing.Hash
	Archived     string
	Snapshots    int
	Changes      int
	SquashCommit plumbing.Hash
	Pushed       bool
	PushErr      error
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Session runs the whole snapshot-and-squash lifecycle on an open repository
type Session struct {
	opts     Options
	repo     *Repository
	clock    clock.Clock
	logger   logger.Logger
	messages MessageProvider
	auth     transport.AuthMethod
}

// NewSession creates a Session. auth may be nil.
func NewSession(
	opts Options,
	repo *Repository,
	c clock.Clock,
	log logger.Logger,
	messages MessageProvider,
	auth transport.AuthMethod,
) *Session {
	return &Session{
		opts:     opts,
		repo:     repo,
		clock:    c,
		logger:   log,
		messages: messages,
		auth:     auth,
	}
}

// Run takes snapshots until ctx is cancelled, then squashes them onto the
// start branch. Cancelling ctx is the normal way to stop a session and is
// not reported as an error.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	result := &Result{StartedAt: s.clock.Now()}
	defer func() { result.FinishedAt = s.clock.Now() }()

	branches := NewBranchController(s.repo, s.clock, s.logger, s.auth)

	if _, err := branches.CheckStart(); err != nil {
		return result, err
	}

	author, err := s.repo.UserSignature(s.clock)
	if err != nil {
		return result, err
	}

	if s.opts.SourceBranch != "" {
		if err := branches.CheckoutSource(ctx, s.opts.SourceBranch); err != nil {
			return result, err
		}
	}
	if s.opts.NewBranch != "" {
		if err := branches.CreateTarget(s.opts.NewBranch); err != nil {
			return result, err
		}
	}

	if err := branches.CaptureStart(); err != nil {
		return result, err
	}
	result.StartBranch = branches.StartRef().Short()
	result.StartCommit = branches.StartCommit()

	if result.Archived, err = branches.RecoverStale(); err != nil {
		return result, err
	}

	if err := branches.AcquireReserved(); err != nil {
		return result, err
	}

	s.logger.Debug("Checking repo changes with an interval of %s", s.opts.Interval)
	s.logger.InfoToUser("Monitoring %s for changes", s.repo.Path())
	s.logger.StatusMessage("❓ Press Ctrl+C to stop, squash and view the session summary")

	committer := NewSnapshotCommitter(s.repo, s.clock, s.logger)
	scheduler := NewIntervalScheduler(committer, s.opts.Interval, s.opts.MaxRetries, s.logger)

	stats, err := scheduler.Run(ctx)
	result.Snapshots = stats.Snapshots
	result.Changes = stats.Changes
	if err != nil {
		return result, s.abandon(branches, err)
	}

	// Nothing below is interrupted by the cancellation that ended the loop.
	ctx = context.WithoutCancel(ctx)

	tip, err := branches.ReservedTip()
	if err != nil {
		return result, s.abandon(branches, err)
	}
	hasChanges := tip != result.StartCommit

	var message string
	if hasChanges {
		if message, err = s.messages.Message(ctx); err != nil {
			return result, s.abandon(branches, err)
		}
	} else {
		s.logger.InfoToUser("Git Auto Commit didn't commit any changes while it was running")
	}

	if err := branches.Return(); err != nil {
		return result, err
	}

	if hasChanges {
		author.When = s.clock.Now()
		squash := NewSquashMerger(s.repo, s.logger)
		if result.SquashCommit, err = squash.Squash(result.StartCommit, tip, message, author); err != nil {
			s.logger.WarningToUser("The auto commits are kept on %s and will be archived by the next run", ReservedRef.Short())
			return result, err
		}
	}

	if err := branches.Release(); err != nil {
		return result, err
	}

	if s.opts.PushEnabled {
		pusher := NewRemotePusher(s.repo, s.logger, s.auth)
		result.PushErr = pusher.Push(ctx, branches.StartRef(), s.opts.PushRemote)
		result.Pushed = result.PushErr == nil
	}

	s.logger.Info("Finished auto committing")
	return result, nil
}

// abandon gets the user back to their branch without squashing. The
// reserved branch keeps the snapshots for the next run to archive.
func (s *Session) abandon(branches *BranchController, cause error) error {
	s.logger.WarningToUser("Stopping without squashing, the auto commits are kept on %s", ReservedRef.Short())
	if err := branches.Return(); err != nil {
		return errors.Join(cause, errors.Wrap(err, "failed to return to the start branch"))
	}
	return cause
}

// PrintSummary reports the session on the user channel
func (r *Result) PrintSummary(log logger.Logger) {
	duration := r.FinishedAt.Sub(r.StartedAt).Round(time.Second)

	commit := "none"
	if !r.SquashCommit.IsZero() {
		commit = r.SquashCommit.String()[:12]
	}

	fields := []logger.SummaryField{
		{Label: "Branch", Value: r.StartBranch},
		{Label: "Snapshots taken", Value: fmt.Sprint(r.Snapshots)},
		{Label: "Changes captured", Value: fmt.Sprint(r.Changes)},
		{Label: "Squash commit", Value: commit},
		{Label: "Duration", Value: duration.String()},
	}
	if r.Archived != "" {
		fields = append(fields, logger.SummaryField{Label: "Archived branch", Value: r.Archived})
	}
	if r.Pushed {
		fields = append(fields, logger.SummaryField{Label: "Pushed", Value: "yes"})
	} else if r.PushErr != nil {
		fields = append(fields, logger.SummaryField{Label: "Pushed", Value: "failed"})
	}

	log.StatusMessage("")
	log.StatusMessage("%s", logger.RenderSummary("📊 Session summary", fields))
}
