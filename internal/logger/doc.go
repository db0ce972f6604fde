// Package logger provides the two logging channels used by gitautocommit.
//
// The structured run log is written with zerolog as JSON lines into a
// rotating file (lumberjack) when debug logging is enabled. Every line
// carries a run_id so interleaved runs against the same log file can be told
// apart.
//
// User-facing lines are plain text on stdout, prefixed with an emoji per
// kind, and errors are always reported on stderr:
//
//	log := logger.New(cfg.Debug, cfg.LogFile, cfg.Verbose)
//	defer log.Close()
//
//	log.Debug("No changes found")          // file, and stdout with --verbose
//	log.InfoToUser("Branch: %s", branch)    // file and stdout
//	log.Error("git commit failed: %v", err) // file and stderr
//
// RenderSummary formats the end-of-run summary with lipgloss.
package logger
