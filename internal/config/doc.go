// Package config resolves the settings of a gitautocommit run.
//
// Values come from three sources, highest priority first:
//
//  1. Command-line flags
//  2. GITAUTOCOMMIT_* environment variables (dashes become underscores,
//     so --max-retries is GITAUTOCOMMIT_MAX_RETRIES)
//  3. An optional YAML file passed with --config, keyed by flag name
//
// followed by the defaults from New. GITAUTOCOMMIT_TOKEN has no flag: when
// set it is used as the HTTP password for pull and push.
//
// The usual sequence is:
//
//	cfg := config.New()
//	cfg.SetupFlags(cmd.Flags())
//	// cobra parses the arguments
//	if err := cfg.Load(cmd.Flags()); err != nil { ... }
//	if err := cfg.Finalize(); err != nil { ... }
//
// Finalize resolves the directory to an absolute path, fills in the default
// log file and the default remote, and rejects branch options that name the
// reserved snapshot branch. The interval minimum is enforced later, together
// with the repository check, so both validation failures are reported the
// same way.
package config
