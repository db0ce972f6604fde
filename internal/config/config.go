package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bashhack/gitautocommit/internal/constants"
	"github.com/bashhack/gitautocommit/internal/errors"
)

// Flag names, also used as config file keys and, upper-cased with dashes
// turned into underscores, as GITAUTOCOMMIT_* environment variables.
const (
	FlagVerbose    = "verbose"
	FlagInterval   = "interval"
	FlagDirectory  = "directory"
	FlagPush       = "push"
	FlagBranch     = "branch"
	FlagFrom       = "from"
	FlagMessage    = "message"
	FlagMaxRetries = "max-retries"
	FlagDebug      = "debug"
	FlagLogFile    = "log-file"
	FlagConfig     = "config"
	FlagVersion    = "version"
	FlagLogo       = "logo"

	// keyToken is read from the environment only.
	keyToken = "token"
)

// Config holds all gitautocommit settings
type Config struct {
	// Repository
	Directory       string
	IntervalSeconds int
	SourceBranch    string
	NewBranch       string

	// Finishing
	PushEnabled bool
	PushRemote  string
	Message     string
	Token       string

	// Loop
	MaxRetries int

	// Output
	Verbose bool
	Debug   bool
	LogFile string

	ConfigFile string

	// Print and exit
	Version  bool
	ShowLogo bool

	VersionInfo VersionInfo
}

// VersionInfo contains build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		IntervalSeconds: constants.DefaultIntervalSeconds,
		MaxRetries:      constants.DefaultMaxRetries,
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// SetupFlags registers the command-line flags on fs
func (c *Config) SetupFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.Verbose, FlagVerbose, "v", c.Verbose, "Show debug-level messages")
	fs.IntVarP(&c.IntervalSeconds, FlagInterval, "i", c.IntervalSeconds,
		fmt.Sprintf("Seconds between snapshot commits (minimum %d)", constants.MinIntervalSeconds))
	fs.StringVarP(&c.Directory, FlagDirectory, "d", c.Directory, "Path to the repository root (default: current directory)")
	fs.StringVarP(&c.PushRemote, FlagPush, "p", c.PushRemote, "Push the branch to this remote after squashing")
	fs.Lookup(FlagPush).NoOptDefVal = constants.DefaultRemote
	fs.StringVarP(&c.NewBranch, FlagBranch, "b", c.NewBranch, "Create and check out this branch before monitoring")
	fs.StringVarP(&c.SourceBranch, FlagFrom, "f", c.SourceBranch, "Check out and pull this branch before monitoring")
	fs.StringVarP(&c.Message, FlagMessage, "m", c.Message, "Squash commit message (skips the prompt)")
	fs.IntVar(&c.MaxRetries, FlagMaxRetries, c.MaxRetries, "Consecutive identical snapshot failures before giving up (0 = never)")
	fs.BoolVar(&c.Debug, FlagDebug, c.Debug, "Write the structured debug log")
	fs.StringVar(&c.LogFile, FlagLogFile, c.LogFile,
		fmt.Sprintf("Path to the log file (default: ~/.local/share/%s/logs/%s-<repo-hash>.log)", constants.AppName, constants.AppName))
	fs.StringVar(&c.ConfigFile, FlagConfig, c.ConfigFile, "Optional YAML config file")
	fs.BoolVar(&c.Version, FlagVersion, c.Version, "Print version information and exit")
	fs.BoolVar(&c.ShowLogo, FlagLogo, c.ShowLogo, "Display ASCII logo and exit")
}

// PushRemoteArg lets "-p upstream" and "--push upstream" name a remote.
// pflag binds a bare push flag to the default remote and leaves the name as
// the only positional argument; that argument becomes the remote. It returns
// the positional arguments still unclaimed.
func PushRemoteArg(fs *pflag.FlagSet, args []string) ([]string, error) {
	f := fs.Lookup(FlagPush)
	if f == nil || !f.Changed || f.Value.String() != f.NoOptDefVal || len(args) != 1 {
		return args, nil
	}
	if strings.HasPrefix(args[0], "-") {
		return args, nil
	}
	if err := fs.Set(FlagPush, args[0]); err != nil {
		return args, errors.NewConfigError(FlagPush, args[0], errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}
	return nil, nil
}

// Load merges flags, environment variables and the optional config file.
// Explicit flags win over the environment, which wins over the file.
func (c *Config) Load(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return errors.NewConfigError("flags", nil, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if file := v.GetString(FlagConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.NewConfigError(FlagConfig, file, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
		}
		c.ConfigFile = file
	}

	c.Verbose = v.GetBool(FlagVerbose)
	c.IntervalSeconds = v.GetInt(FlagInterval)
	c.Directory = v.GetString(FlagDirectory)
	c.NewBranch = v.GetString(FlagBranch)
	c.SourceBranch = v.GetString(FlagFrom)
	c.Message = v.GetString(FlagMessage)
	c.MaxRetries = v.GetInt(FlagMaxRetries)
	c.Debug = v.GetBool(FlagDebug)
	c.LogFile = v.GetString(FlagLogFile)
	c.Version = v.GetBool(FlagVersion)
	c.ShowLogo = v.GetBool(FlagLogo)
	c.Token = v.GetString(keyToken)

	if v.IsSet(FlagPush) {
		c.PushEnabled = true
		c.PushRemote = v.GetString(FlagPush)
	}

	return nil
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if c.MaxRetries < 0 {
		return errors.NewConfigError(FlagMaxRetries, c.MaxRetries,
			errors.Wrap(errors.ErrInvalidConfiguration, "must be zero or positive"))
	}

	for flag, name := range map[string]string{FlagBranch: c.NewBranch, FlagFrom: c.SourceBranch} {
		if name == constants.ReservedBranch {
			return errors.NewConfigError(flag, name,
				errors.Wrap(errors.ErrInvalidConfiguration, "this branch name is reserved for snapshot commits"))
		}
	}

	if c.NewBranch != "" && c.NewBranch == c.SourceBranch {
		return errors.NewConfigError(FlagBranch, c.NewBranch,
			errors.Wrap(errors.ErrInvalidConfiguration, "the new branch must differ from the source branch"))
	}

	if c.Directory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.NewConfigError(FlagDirectory, "", errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to get current directory: %v", err)))
		}
		c.Directory = wd
	}

	abs, err := filepath.Abs(c.Directory)
	if err != nil {
		return errors.NewConfigError(FlagDirectory, c.Directory, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}
	c.Directory = abs

	if c.PushEnabled && c.PushRemote == "" {
		c.PushRemote = constants.DefaultRemote
	}

	if c.LogFile == "" {
		c.LogFile = defaultLogFile(c.Directory)
	}

	return nil
}

// RemoteName returns the remote to push to, or "" when pushing is disabled
func (c *Config) RemoteName() string {
	if !c.PushEnabled {
		return ""
	}
	if c.PushRemote == "" {
		return constants.DefaultRemote
	}
	return c.PushRemote
}

// defaultLogFile follows the XDG base directory layout, one file per repository
func defaultLogFile(repo string) string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataDir = filepath.Join(home, ".local", "share")
		} else {
			dataDir = os.TempDir()
		}
	}

	sum := sha256.Sum256([]byte(repo))
	return filepath.Join(dataDir, constants.AppName, "logs",
		fmt.Sprintf("%s-%x.log", constants.AppName, sum[:8]))
}
