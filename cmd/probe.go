package cmd

import (
	"context"
	"fmt"
	"strings"

	"video-trimmer/domain/edit"
	"video-trimmer/infrastructure/ffmpeg"

	"github.com/spf13/cobra"
)

var probeSourcePath string

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print a video's duration",
	Long: `Read a video's duration with ffprobe. Trim times passed to convert are
clamped to this value.

Example:
  video-trimmer probe --source clip.mp4`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().StringVar(&probeSourcePath, "source", "", "Path to source video file (required)")
	probeCmd.MarkFlagRequired("source")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	prober := ffmpeg.NewProber(ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath))
	return RunProbeWithDependencies(cmd.Context(), prober, probeSourcePath, cmd.OutOrStdout())
}

// StreamLister lists a source's stream types
type StreamLister interface {
	StreamTypes(ctx context.Context, path string) ([]string, error)
}

// RunProbeWithDependencies runs the probe command with injected dependencies (for testing)
func RunProbeWithDependencies(ctx context.Context, prober DurationProber, sourcePath string, output OutputWriter) error {
	if err := verifyInstalled(ctx, "ffprobe", prober); err != nil {
		return err
	}

	duration, err := prober.Duration(ctx, sourcePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "Duration: %ss (%s)\n", edit.FormatSeconds(duration), edit.Timestamp(duration))

	if lister, ok := prober.(StreamLister); ok {
		types, err := lister.StreamTypes(ctx, sourcePath)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "Streams:  %s\n", strings.Join(types, ", "))
	}
	return nil
}
