// Package gitautocommit snapshots a repository while you work and squashes
// the snapshots into one commit when you stop.
//
// Every interval, changes in the worktree are committed by a bot identity on
// the reserved GitAutocommit branch. Pressing Ctrl+C takes a last snapshot,
// asks for a commit message and replaces the snapshots with a single commit,
// authored by you, on the branch you started from. The reserved branch is then
// deleted and the result optionally pushed.
//
// # Quick Start
//
//	cd /path/to/your/repo
//	gitautocommit            # snapshot every 60 seconds
//	gitautocommit -i 30 -p   # every 30 seconds, push to origin when done
//
// # Module Structure
//
//   - cmd/gitautocommit: command line interface
//   - internal/git: session lifecycle, snapshots, squash and push
//   - internal/config: flags, environment and config file
//   - internal/lock: one instance per repository
//   - internal/logger: structured log and user-facing lines
//   - internal/signal: first Ctrl+C stops the session, the second kills it
//   - internal/errors: sentinel and typed errors
//   - internal/clock: injectable time source
//   - internal/constants: reserved names and fixed values
//
// # After a Crash
//
// If a run is killed, the snapshots stay on GitAutocommit. The next run refuses
// to start while that branch is checked out; once you switch back to your own
// branch it renames the leftover branch to autoCommits/<date>/<time> so
// nothing is lost.
package gitautocommit
