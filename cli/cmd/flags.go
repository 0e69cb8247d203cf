// Package cmd provides CLI commands for the optree binary.
package cmd

import "github.com/urfave/cli/v2"

// FormatFlag selects the version command's output format: text or json.
var FormatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Usage:   "Output format: text, json",
}

// NoColorFlag is accepted by `run`, but no command reads it: the
// example Ops' lipgloss styling is the same with or without it.
var NoColorFlag = &cli.BoolFlag{
	Name:  "no-color",
	Usage: "Accepted but has no effect on output",
}

// ModeFlag selects the I/O context's operating mode for `run`.
var ModeFlag = &cli.StringFlag{
	Name:  "mode",
	Usage: "I/O mode: interactive, record, replay",
	Value: "interactive",
}

// SessionFileFlag names the session file `run` saves to or loads from.
var SessionFileFlag = &cli.StringFlag{
	Name:  "session-file",
	Usage: "Path to save (record mode) or load (replay mode) the session",
}

// LogFileFlag names a file to tee process output to. Scheduler logs are
// not written to it; they go to the context's logger (stderr).
var LogFileFlag = &cli.StringFlag{
	Name:  "log-file",
	Usage: "Path to tee output to",
}

// ConfigFlag names a YAML config file providing defaults for the other
// run flags; explicit flags take precedence over it.
var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to a YAML config file",
}

// RunFlags returns the flag set for the `run` command.
func RunFlags() []cli.Flag {
	return []cli.Flag{
		ModeFlag,
		SessionFileFlag,
		LogFileFlag,
		ConfigFlag,
		NoColorFlag,
	}
}
