package constants

// AppName is the binary name and the environment variable prefix root.
const AppName = "gitautocommit"

// EnvPrefix prefixes every environment variable read by the configuration layer.
const EnvPrefix = "GITAUTOCOMMIT"

// Branch names. ReservedBranch is owned by the tool for the whole run and
// must never be used for a user branch.
const (
	ReservedBranch   = "GitAutocommit"
	ArchiveNamespace = "autoCommits"

	// ArchiveTimeLayout keeps archived branch names sortable, with
	// millisecond precision to avoid collisions between quick restarts.
	ArchiveTimeLayout = "2006-01-02/15-04-05.000"
)

// Bot identity used for every snapshot commit.
const (
	BotName         = "GitAutocommit"
	BotEmail        = "@GitAutocommit"
	SnapshotMessage = "Git Auto Commit"
)

// Interval and retry settings, in seconds where applicable.
const (
	MinIntervalSeconds     = 10
	DefaultIntervalSeconds = 60
	DefaultMaxRetries      = 3
)

// DefaultRemote is used when pushing is enabled without naming a remote.
const DefaultRemote = "origin"

// Log file rotation settings for the structured debug log.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
)

// Tagline is printed under the logo.
const Tagline = "snapshot while you work, squash when you stop"

// Logo is the ASCII art shown by --logo.
const Logo = `
             _ _                 _                                      _ _
  __ _(_) |_ __ _ _   _| |_ ___   ___ ___  _ __ ___  _ __ ___ (_) |_
 / _` + "`" + ` | | __/ _` + "`" + ` | | | | __/ _ \ / __/ _ \| '_ ` + "`" + ` _ \| '_ ` + "`" + ` _ \| | __|
| (_| | | || (_| | |_| | || (_) | (_| (_) | | | | | | | | | | | | |_
 \__, |_|\__\__,_|\__,_|\__\___/ \___\___/|_| |_| |_|_| |_| |_|_|\__|
 |___/`
