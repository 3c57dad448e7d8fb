package cmd

import (
	"fmt"
	"time"

	"video-trimmer/infrastructure/workspace"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cleanOlderThan time.Duration

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove session directories left by interrupted conversions",
	Long: `Delete session directories under the workspace directory that have not
been touched for the given age. Refuses to run while a conversion holds the
workspace lock.

Example:
  video-trimmer clean --older-than 6h`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().DurationVar(&cleanOlderThan, "older-than", 24*time.Hour, "Minimum age of a session directory to remove")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	return RunCleanWithDependencies(cfg.Paths.WorkspaceDirectory, cleanOlderThan, time.Now(), cmd.OutOrStdout())
}

// RunCleanWithDependencies runs the clean command with injected dependencies (for testing)
func RunCleanWithDependencies(root string, olderThan time.Duration, now time.Time, output OutputWriter) error {
	if olderThan < 0 {
		return fmt.Errorf("--older-than must not be negative")
	}

	result, err := workspace.Sweep(root, olderThan, now)
	if err != nil {
		return err
	}

	if len(result.Removed) == 0 {
		fmt.Fprintln(output, "No stale sessions found")
		return nil
	}
	for _, s := range result.Removed {
		fmt.Fprintf(output, "  Removed: %s (%s, last used %s)\n",
			s.Name, humanize.Bytes(uint64(s.Size)), humanize.RelTime(s.Modified, now, "ago", "from now"))
	}
	fmt.Fprintf(output, "Freed %s from %d sessions\n", humanize.Bytes(uint64(result.FreedBytes)), len(result.Removed))
	return nil
}
