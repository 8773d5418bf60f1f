package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"replayfetch/pkg/config"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// newRootCmd builds the replayfetch command. It has exactly two flags.
func newRootCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "replayfetch",
		Short: "Download Pokémon Showdown replays for one format",
		Long: `replayfetch walks the public Pokémon Showdown replay search for a format and
saves every replay as <output>/<id>.json. Replays already on disk are skipped,
so an interrupted run can simply be started again.

Settings beyond the flags come from a YAML file ($REPLAYFETCH_CONFIG,
.replayfetch.yaml or ~/.config/replayfetch/config.yaml) and REPLAYFETCH_*
environment variables.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := make(map[string]interface{})
			if cmd.Flags().Changed("format") {
				flags["format"] = format
			}
			if cmd.Flags().Changed("output") {
				flags["output"] = output
			}
			return runFetch(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&format, "format", config.DefaultFormat, "battle format to download")
	cmd.Flags().StringVar(&output, "output", config.DefaultOutputDir, "directory to save replays to")

	cmd.SetVersionTemplate(`replayfetch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	return cmd
}

// Execute runs the root command and exits non-zero on setup failures
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
