package edit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"video-trimmer/domain/edit"
)

// ConvertInput represents the input for a conversion
type ConvertInput struct {
	Source  io.Reader     // source video bytes
	Request *edit.Request // edit parameters built from the collaborator's state
	Output  io.Writer     // receives the final artifact
}

// ConvertResult contains the result of a successful conversion
type ConvertResult struct {
	Plan         *edit.Plan
	BytesWritten int64
	MIMEType     string
	DownloadName string
	Elapsed      time.Duration
}

// ConvertService executes edit plans against a workspace
type ConvertService struct {
	compiler   *edit.Compiler
	transcoder edit.Transcoder
	workspace  edit.Workspace
	logger     *slog.Logger
	output     io.Writer
}

// NewConvertService creates a new ConvertService. Progress lines go to
// output; structured records go to logger.
func NewConvertService(compiler *edit.Compiler, transcoder edit.Transcoder, workspace edit.Workspace, logger *slog.Logger, output io.Writer) *ConvertService {
	if compiler == nil {
		compiler = edit.NewCompiler()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if output == nil {
		output = io.Discard
	}
	return &ConvertService{
		compiler:   compiler,
		transcoder: transcoder,
		workspace:  workspace,
		logger:     logger,
		output:     output,
	}
}

// Plan compiles the request without running anything
func (s *ConvertService) Plan(req *edit.Request) (*edit.Plan, error) {
	return s.compiler.Compile(req)
}

// Convert compiles the request, runs every stage in order, and streams the
// final artifact to input.Output. Nothing is written to the workspace when
// the request is invalid. On failure no output artifact is left behind.
func (s *ConvertService) Convert(ctx context.Context, input ConvertInput) (*ConvertResult, error) {
	started := time.Now()

	plan, err := s.compiler.Compile(input.Request)
	if err != nil {
		return nil, err
	}
	if input.Source == nil {
		return nil, edit.ErrNoSource
	}
	if input.Output == nil {
		return nil, fmt.Errorf("output writer is required")
	}

	s.logger.Info("conversion started",
		"mode", plan.Mode,
		"stages", len(plan.Invocations),
		"duration", plan.Duration,
	)

	if _, err := s.workspace.Write(plan.Source, input.Source); err != nil {
		return nil, fmt.Errorf("failed to stage source: %w", err)
	}
	defer s.discard(plan.Source)

	if err := s.runStages(ctx, plan); err != nil {
		s.discard(plan.Output)
		return nil, err
	}

	written, err := s.export(plan.Output, input.Output)
	s.discard(plan.Output)
	if err != nil {
		return nil, err
	}

	result := &ConvertResult{
		Plan:         plan,
		BytesWritten: written,
		MIMEType:     plan.MIMEType,
		DownloadName: plan.DownloadName,
		Elapsed:      time.Since(started),
	}

	s.logger.Info("conversion finished",
		"bytes", written,
		"elapsed", result.Elapsed.Round(time.Millisecond),
	)
	return result, nil
}

// runStages awaits each invocation before starting the next. The
// intermediate artifact is removed once the stages finish, whatever the outcome.
func (s *ConvertService) runStages(ctx context.Context, plan *edit.Plan) error {
	if plan.Intermediate != "" {
		defer s.discard(plan.Intermediate)
	}

	total := len(plan.Invocations)
	for _, inv := range plan.Invocations {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("conversion cancelled: %w", err)
		}

		log := s.logger.With("stage", inv.Stage+1, "kind", inv.Kind)
		if inv.DependsOn >= 0 && !s.workspace.Exists(inv.Input) {
			err := fmt.Errorf("input %s was not produced by stage %d", inv.Input, inv.DependsOn+1)
			log.Error("invocation skipped", "error", err)
			return &edit.TranscodeFailure{Stage: inv.Stage, Kind: inv.Kind, Err: err}
		}

		fmt.Fprintf(s.output, "[%d/%d] %s...\n", inv.Stage+1, total, describe(inv))
		log.Debug("invocation starting", "input", inv.Input, "output", inv.Output)

		stageStart := time.Now()
		if err := s.transcoder.Run(ctx, inv.Args); err != nil {
			log.Error("invocation failed", "error", err)
			return &edit.TranscodeFailure{Stage: inv.Stage, Kind: inv.Kind, Err: err}
		}
		log.Info("invocation finished", "elapsed", time.Since(stageStart).Round(time.Millisecond))
	}

	return nil
}

func (s *ConvertService) export(name string, w io.Writer) (int64, error) {
	rc, err := s.workspace.Open(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read output: %w", err)
	}
	defer rc.Close()

	n, err := io.Copy(w, rc)
	if err != nil {
		return n, fmt.Errorf("failed to copy output: %w", err)
	}
	return n, nil
}

// discard removes an artifact; failures are logged, not returned, so they
// never mask the conversion's own outcome
func (s *ConvertService) discard(name string) {
	if err := s.workspace.Remove(name); err != nil {
		s.logger.Warn("failed to remove artifact", "name", name, "error", err)
	}
}

func describe(inv edit.Invocation) string {
	if inv.Kind == edit.KindEncode {
		return "Re-encoding with filters"
	}
	return "Trimming (stream copy)"
}
