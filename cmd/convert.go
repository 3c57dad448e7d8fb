package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	appedit "video-trimmer/application/edit"
	"video-trimmer/domain/edit"
	"video-trimmer/infrastructure/ffmpeg"
	"video-trimmer/infrastructure/logging"
	"video-trimmer/infrastructure/workspace"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	convertSourcePath string
	convertOutputPath string
	convertEdits      EditOptions
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Trim and edit a video",
	Long: `Trim a video and optionally change its speed, frame rate, audio fades
and display rotation.

Without speed, frame rate or fades the clip is cut with a stream copy and
written as trimmed.mp4. Otherwise the clip is cut first and then
re-encoded, and the result is written as converted.mp4.

Examples:
  video-trimmer convert --source clip.mp4 --start 12.5 --end 1:40
  video-trimmer convert --source clip.mp4 --speed 3 --fade-out 2 --rotate 90 --output fast.mp4`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertSourcePath, "source", "", "Path to source video file (required)")
	convertCmd.Flags().StringVar(&convertOutputPath, "output", "", "Output file (default is <output_directory>/<download name>)")
	bindEditFlags(convertCmd, &convertEdits)
	convertCmd.MarkFlagRequired("source")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	convertEdits.markChanged(cmd)

	ws, err := workspace.New(cfg.Paths.WorkspaceDirectory)
	if err != nil {
		return err
	}
	defer ws.Close()

	log := logging.WithSession(GetLogger(), ws.SessionID())
	transcoder := ffmpeg.NewTranscoder(ws.Dir(),
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.Path),
		ffmpeg.WithLogger(log),
	)
	prober := ffmpeg.NewProber(ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath))
	compiler := edit.NewCompiler(edit.WithEncoder(cfg.EncoderSettings()))

	return RunConvertWithDependencies(
		cmd.Context(),
		compiler,
		transcoder,
		prober,
		ws,
		convertSourcePath,
		convertOutputPath,
		cfg.Paths.OutputDirectory,
		convertEdits,
		log,
		cmd.OutOrStdout(),
	)
}

// DurationProber reads a source's duration
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// SessionWorkspace is a workspace that can claim the single conversion slot
type SessionWorkspace interface {
	edit.Workspace
	TryLock() error
	Unlock() error
}

// RunConvertWithDependencies runs the convert command with injected dependencies (for testing)
func RunConvertWithDependencies(
	ctx context.Context,
	compiler *edit.Compiler,
	transcoder edit.Transcoder,
	prober DurationProber,
	ws SessionWorkspace,
	sourcePath string,
	outputPath string,
	outputDir string,
	edits EditOptions,
	log *slog.Logger,
	output OutputWriter,
) error {
	if err := verifyInstalled(ctx, "ffmpeg", transcoder); err != nil {
		return err
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("source file does not exist: %s", sourcePath)
	}
	defer source.Close()

	duration, err := sourceDuration(ctx, prober, sourcePath, edits.Duration)
	if err != nil {
		return err
	}

	req, err := edits.Request(duration)
	if err != nil {
		return err
	}

	service := appedit.NewConvertService(compiler, transcoder, ws, log, output)

	// Compile up front so the destination name is known and bad input
	// fails before anything is created
	plan, err := service.Plan(req)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = filepath.Join(outputDir, plan.DownloadName)
	}

	if err := ws.TryLock(); err != nil {
		return err
	}
	defer ws.Unlock()

	fmt.Fprintf(output, "Converting %s [%s - %s] (%s mode)...\n",
		filepath.Base(sourcePath),
		edit.Timestamp(req.TrimStart), edit.Timestamp(req.TrimEnd), plan.Mode)

	result, err := convertToFile(ctx, service, source, req, outputPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Successfully created: %s (%s, %s)\n",
		outputPath, humanize.Bytes(uint64(result.BytesWritten)), result.MIMEType)
	return nil
}

// convertToFile writes through a temporary file beside the destination so a
// failed conversion never leaves a truncated output behind
func convertToFile(ctx context.Context, service *appedit.ConvertService, source *os.File, req *edit.Request, outputPath string) (*appedit.ConvertResult, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".partial-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	result, err := service.Convert(ctx, appedit.ConvertInput{
		Source:  source,
		Request: req,
		Output:  tmp,
	})
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write output file: %w", closeErr)
	}
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return nil, fmt.Errorf("failed to move output into place: %w", err)
	}
	return result, nil
}

// verifyInstalled checks the tool behind dep when the adapter supports it
func verifyInstalled(ctx context.Context, tool string, dep any) error {
	verifiable, ok := dep.(interface{ VerifyInstalled(context.Context) error })
	if !ok {
		return nil
	}
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("%s verification failed: %w", tool, err)
	}
	return nil
}

func sourceDuration(ctx context.Context, prober DurationProber, sourcePath string, override float64) (float64, error) {
	if override > 0 {
		return override, nil
	}
	if prober == nil {
		return 0, nil
	}
	duration, err := prober.Duration(ctx, sourcePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read source duration: %w", err)
	}
	return duration, nil
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}
