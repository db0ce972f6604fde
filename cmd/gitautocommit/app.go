package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bashhack/gitautocommit/internal/clock"
	"github.com/bashhack/gitautocommit/internal/config"
	"github.com/bashhack/gitautocommit/internal/constants"
	gacErrors "github.com/bashhack/gitautocommit/internal/errors"
	"github.com/bashhack/gitautocommit/internal/git"
	"github.com/bashhack/gitautocommit/internal/lock"
	"github.com/bashhack/gitautocommit/internal/logger"
	"github.com/bashhack/gitautocommit/internal/signal"
)

// Exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
)

// Runner runs one monitoring session
type Runner interface {
	Run(ctx context.Context) (*git.Result, error)
}

// Locker manages file locking
type Locker interface {
	Acquire() error
	Release() error
}

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger logger.Logger
	Locker Locker
	Runner Runner

	// I/O dependencies
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	Exit     func(code int)
	Validate func(directory string, intervalSeconds int) error
}

// App is the gitautocommit command line application
type App struct {
	Config *config.Config
	Logger logger.Logger
	Locker Locker
	Runner Runner

	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer

	exit     func(code int)
	validate func(directory string, intervalSeconds int) error

	repo     *git.Repository
	acquired bool
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo

	return NewApp(AppOptions{
		Config:   cfg,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Exit:     os.Exit,
		Validate: git.Validate,
	})
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:   opts.Config,
		Logger:   opts.Logger,
		Locker:   opts.Locker,
		Runner:   opts.Runner,
		Stdin:    opts.Stdin,
		Stdout:   opts.Stdout,
		Stderr:   opts.Stderr,
		exit:     opts.Exit,
		validate: opts.Validate,
	}

	if app.Stdin == nil {
		app.Stdin = os.Stdin
	}
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.validate == nil {
		app.validate = git.Validate
	}

	return app
}

// NewCommand builds the root command. Flags are bound to a.Config.
func (a *App) NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Snapshot a repository while you work and squash the snapshots when you stop",
		Long: `gitautocommit commits every change in the repository on a reserved branch at
a fixed interval. When stopped with Ctrl+C it squashes those snapshots into a
single commit with your message on the branch you started from, and optionally
pushes it (-p alone pushes to origin, -p <remote> names another remote).

Every flag can also be set with a GITAUTOCOMMIT_* environment variable or in
the file given by --config. GITAUTOCOMMIT_TOKEN authenticates HTTPS remotes.`,
		Args: func(cmd *cobra.Command, args []string) error {
			rest, err := config.PushRemoteArg(cmd.Flags(), args)
			if err != nil {
				return err
			}
			if err := cobra.NoArgs(cmd, rest); err != nil {
				return gacErrors.NewConfigError("arguments", nil, gacErrors.Wrap(gacErrors.ErrInvalidConfiguration, err.Error()))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.Config.Load(cmd.Flags()); err != nil {
				return err
			}

			if a.Config.Version {
				a.ShowVersion()
				return nil
			}
			if a.Config.ShowLogo {
				a.ShowLogo()
				return nil
			}

			handler := signal.NewHandler(cmd.Context())
			defer handler.Stop()
			go a.announceInterrupt(handler)

			return a.Run(handler.Context())
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return gacErrors.NewConfigError("flags", nil, gacErrors.Wrap(gacErrors.ErrInvalidConfiguration, err.Error()))
	})
	a.Config.SetupFlags(cmd.Flags())

	return cmd
}

// Execute parses args, runs the application and returns the process exit code
func (a *App) Execute(ctx context.Context, args []string) int {
	cmd := a.NewCommand()
	cmd.SetArgs(args)
	cmd.SetIn(a.Stdin)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v\n", err)
	}
	return ExitCode(err)
}

// ExitCode maps a run error to the process exit code. Bad input detected
// before the repository was touched exits with ExitValidation.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case gacErrors.IsValidation(err):
		return ExitValidation
	default:
		return ExitFailure
	}
}

// Initialize sets up components not provided during construction
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		if gacErrors.Is(err, gacErrors.ErrInvalidConfiguration) {
			return err
		}
		return gacErrors.Wrap(gacErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		a.Logger = logger.NewWithOutput(a.Config.Debug, a.Config.LogFile, a.Config.Verbose, a.Stdout, a.Stderr)
	}

	if err := a.validate(a.Config.Directory, a.Config.IntervalSeconds); err != nil {
		return err
	}
	a.Logger.Info("Git repository verified")

	if a.Locker == nil {
		locker, err := lock.New(a.Config.Directory)
		if err != nil {
			return gacErrors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = locker
	}

	if a.Runner == nil {
		repo, err := git.Open(a.Config.Directory)
		if err != nil {
			return err
		}
		a.repo = repo
		a.Runner = git.NewSession(
			git.Options{
				Interval:     time.Duration(a.Config.IntervalSeconds) * time.Second,
				SourceBranch: a.Config.SourceBranch,
				NewBranch:    a.Config.NewBranch,
				PushEnabled:  a.Config.PushEnabled,
				PushRemote:   a.Config.RemoteName(),
				MaxRetries:   a.Config.MaxRetries,
			},
			repo,
			clock.RealClock{},
			a.Logger,
			git.NewMessageProvider(a.Config.Message, a.Stdin, a.Stdout),
			git.TokenAuth(a.Config.Token),
		)
	}

	return nil
}

// Run validates the configuration, takes the repository lock and runs one
// session. The summary is printed whenever the session got to start.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
		}
	}()

	if err := a.Initialize(); err != nil {
		return err
	}

	if err := a.Locker.Acquire(); err != nil {
		if gacErrors.Is(err, gacErrors.ErrAlreadyRunning) {
			return err
		}
		return gacErrors.Wrap(gacErrors.ErrLockAcquisitionFailure, err.Error())
	}
	a.acquired = true

	a.Logger.Info("Starting %s %s in %s", constants.AppName, a.Config.VersionInfo.Version, a.Config.Directory)
	a.logSettings()

	result, err := a.Runner.Run(ctx)
	if result != nil && result.StartBranch != "" {
		result.PrintSummary(a.Logger)
	}
	return err
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "%s %s (%s) built on %s\n",
		constants.AppName,
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// ShowLogo displays ASCII art logo
func (a *App) ShowLogo() {
	_, _ = fmt.Fprintln(a.Stdout, constants.Logo)
	_, _ = fmt.Fprintln(a.Stdout, "")

	asciiArtWidth := 72
	padding := max((asciiArtWidth-len(constants.Tagline))/2, 0)
	_, _ = fmt.Fprintln(a.Stdout, strings.Repeat(" ", padding)+constants.Tagline)
}

// Close releases resources held by the App. Safe to call more than once.
func (a *App) Close() error {
	var errs []error

	if a.Locker != nil && a.acquired {
		if err := a.Locker.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to release lock during cleanup: %v\n", err)
			}
			errs = append(errs, err)
		}
		a.acquired = false
	}

	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			errs = append(errs, err)
		}
		a.repo = nil
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	return gacErrors.Join(errs...)
}

func (a *App) announceInterrupt(h *signal.Handler) {
	<-h.Context().Done()
	if h.Fired() {
		_, _ = fmt.Fprintf(a.Stdout, "\nReceived %v, stopping %s...\n", h.Signal(), constants.AppName)
	}
}

func (a *App) logSettings() {
	c := a.Config
	a.Logger.Debug("Interval: %ds, max retries: %d", c.IntervalSeconds, c.MaxRetries)
	if c.SourceBranch != "" {
		a.Logger.Debug("Source branch: %s", c.SourceBranch)
	}
	if c.NewBranch != "" {
		a.Logger.Debug("New branch: %s", c.NewBranch)
	}
	if c.PushEnabled {
		a.Logger.Debug("Push to %s enabled, token set: %t", c.RemoteName(), c.Token != "")
	}
	if c.ConfigFile != "" {
		a.Logger.Debug("Config file: %s", c.ConfigFile)
	}
}
