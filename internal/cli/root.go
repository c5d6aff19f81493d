// Package cli implements the autofix command surface.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion records build metadata injected by the linker.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "autofix",
	Short: "Turn code findings into safe, auditable source edits",
	Long: `autofix converts analyzer findings into confidence-scored tasks, decides
each task against a declarative approval policy, and applies the approved
ones with deterministic transforms. Every run is recorded for audit.

Detectors are external: feed their findings in as JSON. autofix never
writes source files unless asked to with --write.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(versionCmd)
}
