package cmd

import (
	"context"
	"fmt"
	"strconv"

	"video-trimmer/domain/edit"
	"video-trimmer/infrastructure/ffmpeg"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
)

var (
	planSourcePath string
	planEdits      EditOptions
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the ffmpeg invocations a conversion would run",
	Long: `Compile the edit flags into ffmpeg invocations and print them without
running anything. The source is only probed for its duration; pass
--duration to skip probing or when no source is given.

Examples:
  video-trimmer plan --duration 120 --start 10 --end 20 --speed 5
  video-trimmer plan --source clip.mp4 --fade-in 1 --rotate 180`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planSourcePath, "source", "", "Path to source video file")
	bindEditFlags(planCmd, &planEdits)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	planEdits.markChanged(cmd)

	var prober DurationProber
	if planSourcePath != "" {
		prober = ffmpeg.NewProber(ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath))
	}

	return RunPlanWithDependencies(
		cmd.Context(),
		edit.NewCompiler(edit.WithEncoder(cfg.EncoderSettings())),
		prober,
		planSourcePath,
		planEdits,
		cmd.OutOrStdout(),
	)
}

// RunPlanWithDependencies runs the plan command with injected dependencies (for testing)
func RunPlanWithDependencies(
	ctx context.Context,
	compiler *edit.Compiler,
	prober DurationProber,
	sourcePath string,
	edits EditOptions,
	output OutputWriter,
) error {
	duration, err := sourceDuration(ctx, prober, sourcePath, edits.Duration)
	if err != nil {
		return err
	}

	req, err := edits.Request(duration)
	if err != nil {
		return err
	}

	plan, err := compiler.Compile(req)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Mode:     %s\n", plan.Mode)
	fmt.Fprintf(output, "Clip:     %s - %s (%ss)\n",
		edit.Timestamp(req.TrimStart), edit.Timestamp(req.TrimEnd), edit.FormatSeconds(plan.Duration))
	fmt.Fprintf(output, "Download: %s (%s)\n", plan.DownloadName, plan.MIMEType)
	if plan.Mode == edit.KindEncode {
		fmt.Fprintf(output, "Video:    %s\n", orNone(plan.Filters.VideoChain()))
		fmt.Fprintf(output, "Audio:    %s\n", orNone(plan.Filters.AudioChain()))
	}
	fmt.Fprintln(output, renderPlan(plan))
	return nil
}

func renderPlan(plan *edit.Plan) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Stage", "Kind", "Input", "Output", "Command"})

	for _, inv := range plan.Invocations {
		tw.AppendRow(table.Row{
			strconv.Itoa(inv.Stage + 1),
			string(inv.Kind),
			inv.Input,
			inv.Output,
			"ffmpeg " + shellquote.Join(inv.Args...),
		})
	}

	return tw.Render()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
