// Package constants provides application-wide constant values for gitautocommit.
//
// This package centralizes the fixed values that define the tool's behavior:
// the reserved branch name, the archival namespace used when a crashed run
// left the reserved branch behind, the bot identity stamped on snapshot
// commits, interval limits and the visual elements printed by --logo.
//
// # Usage
//
//	import "github.com/bashhack/gitautocommit/internal/constants"
//
//	ref := plumbing.NewBranchReferenceName(constants.ReservedBranch)
//
// # Maintenance
//
// ReservedBranch and ArchiveNamespace are part of the on-disk contract with
// previous runs: changing either means older leftover branches are no longer
// recognized and recovered.
package constants
