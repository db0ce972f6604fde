// Package git implements the snapshot-and-squash lifecycle on top of go-git.
//
// A Session owns an open Repository for the length of a run:
//
//	start branch ──► GitAutocommit (snapshots every interval) ──► start branch
//	                                                               │
//	                                               one squashed commit by the user
//
// The pieces, leaves first:
//
//   - Validate checks the directory is a worktree root and the interval is at
//     least ten seconds, without touching anything.
//   - BranchController refuses ambiguous starts, optionally checks out and
//     pulls a source branch or creates a target branch, archives a reserved
//     branch left behind by a crash under autoCommits/, and owns the reserved
//     branch until it is released.
//   - SnapshotCommitter commits the whole worktree as GitAutocommit when it
//     is dirty.
//   - IntervalScheduler calls the committer on a fixed cadence until its
//     context is cancelled, then once more.
//   - SquashMerger turns the snapshots into one commit on the start branch.
//   - RemotePusher optionally publishes the result; its failures never fail
//     the run.
//
// The squash message comes from a MessageProvider: FixedMessage for
// --message and tests, PromptMessage on a terminal, LineReader otherwise.
//
// If anything fails after the reserved branch was created and before it was
// released, the branch is left in place. The next run renames it into the
// archive namespace instead of deleting it, so snapshots are never lost.
package git
