//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"video-trimmer/cmd"
	"video-trimmer/domain/edit"
	"video-trimmer/infrastructure/ffmpeg"
	"video-trimmer/infrastructure/logging"
	"video-trimmer/infrastructure/workspace"

	"github.com/cucumber/godog"
)

// fakeFFmpeg copies the -i input to the output named by the last argument,
// inside the workspace directory
type fakeFFmpeg struct {
	dir     string
	calls   [][]string
	failOn  int // 1-based run number, 0 never fails
	failMsg string
}

func (f *fakeFFmpeg) Run(ctx context.Context, args []string) error {
	f.calls = append(f.calls, args)
	if f.failOn == len(f.calls) {
		return errors.New(f.failMsg)
	}

	var input string
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-i" {
			input = args[i+1]
		}
	}
	data, err := os.ReadFile(filepath.Join(f.dir, input))
	if err != nil {
		return fmt.Errorf("%s: No such file or directory", input)
	}
	return os.WriteFile(filepath.Join(f.dir, args[len(args)-1]), append(data, '+'), 0644)
}

type fixedDuration float64

func (d fixedDuration) Duration(ctx context.Context, path string) (float64, error) {
	return float64(d), nil
}

// convertContext holds test state for conversion scenarios
type convertContext struct {
	tempDir    string
	sourcePath string
	outputDir  string
	duration   float64
	ws         *workspace.Workspace
	fake       *fakeFFmpeg
	transcoder edit.Transcoder
	output     bytes.Buffer
	err        error
}

// SharedConvertContext is reset before each scenario via Before hook
var SharedConvertContext *convertContext

func getConvertContext() *convertContext {
	return SharedConvertContext
}

func InitializeConvertScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "video-trimmer-convert-*")
		if err != nil {
			return c, err
		}
		ws, err := workspace.New(filepath.Join(tempDir, "work"))
		if err != nil {
			return c, err
		}
		fake := &fakeFFmpeg{dir: ws.Dir()}
		SharedConvertContext = &convertContext{
			tempDir:    tempDir,
			outputDir:  filepath.Join(tempDir, "out"),
			ws:         ws,
			fake:       fake,
			transcoder: fake,
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if cc := getConvertContext(); cc != nil {
			cc.ws.Close()
			os.RemoveAll(cc.tempDir)
		}
		SharedConvertContext = nil
		return c, nil
	})

	ctx.Step(`^a source video "([^"]*)" of (\d+(?:\.\d+)?) seconds$`, aSourceVideoNamedOfSeconds)
	ctx.Step(`^ffmpeg fails on run (\d+) with "([^"]*)"$`, ffmpegFailsOnRunWith)
	ctx.Step(`^I convert from "([^"]*)" to "([^"]*)"$`, iConvertFromTo)
	ctx.Step(`^I convert from "([^"]*)" to "([^"]*)" at (\d+(?:\.\d+)?)x speed$`, iConvertFromToAtSpeed)
	ctx.Step(`^the conversion should succeed$`, theConversionShouldSucceed)
	ctx.Step(`^the conversion should fail mentioning "([^"]*)"$`, theConversionShouldFailMentioning)
	ctx.Step(`^ffmpeg should have been run (\d+) times?$`, ffmpegShouldHaveBeenRunTimes)
	ctx.Step(`^ffmpeg should have been run with arguments:$`, ffmpegShouldHaveBeenRunWithArguments)
	ctx.Step(`^the output file should be "([^"]*)"$`, theOutputFileShouldBe)
	ctx.Step(`^no output file should exist$`, noOutputFileShouldExist)
	ctx.Step(`^no working files should remain$`, noWorkingFilesShouldRemain)
	ctx.Step(`^a (\d+) second test clip "([^"]*)" generated with ffmpeg$`, aTestClipGeneratedWithFFmpeg)
	ctx.Step(`^I convert the whole clip with ffmpeg$`, iConvertTheWholeClipWithFFmpeg)
	ctx.Step(`^the output should last as long as the source$`, theOutputShouldLastAsLongAsTheSource)
	ctx.Step(`^the output should have streams "([^"]*)"$`, theOutputShouldHaveStreams)
}

func aSourceVideoNamedOfSeconds(name string, seconds float64) error {
	c := getConvertContext()
	c.sourcePath = filepath.Join(c.tempDir, name)
	c.duration = seconds
	return os.WriteFile(c.sourcePath, []byte("source video"), 0644)
}

func ffmpegFailsOnRunWith(run int, message string) error {
	c := getConvertContext()
	c.fake.failOn = run
	c.fake.failMsg = message
	return nil
}

func runConversion(edits cmd.EditOptions) error {
	c := getConvertContext()
	if edits.Rotation == "" {
		edits.Rotation = "0"
	}
	c.err = cmd.RunConvertWithDependencies(
		context.Background(),
		edit.NewCompiler(),
		c.transcoder,
		fixedDuration(c.duration),
		c.ws,
		c.sourcePath,
		"",
		c.outputDir,
		edits,
		logging.Discard(),
		&c.output,
	)
	return nil
}

func iConvertFromTo(start, end string) error {
	return runConversion(cmd.EditOptions{Start: start, End: end, Speed: 1.0})
}

func iConvertFromToAtSpeed(start, end string, speed float64) error {
	return runConversion(cmd.EditOptions{Start: start, End: end, Speed: speed})
}

func theConversionShouldSucceed() error {
	if err := getConvertContext().err; err != nil {
		return fmt.Errorf("expected conversion to succeed, got: %v", err)
	}
	return nil
}

func theConversionShouldFailMentioning(message string) error {
	err := getConvertContext().err
	if err == nil {
		return fmt.Errorf("expected conversion to fail")
	}
	if !strings.Contains(err.Error(), message) {
		return fmt.Errorf("expected error to mention %q, got: %v", message, err)
	}
	return nil
}

func ffmpegShouldHaveBeenRunTimes(n int) error {
	if got := len(getConvertContext().fake.calls); got != n {
		return fmt.Errorf("expected ffmpeg to run %d times, ran %d", n, got)
	}
	return nil
}

func ffmpegShouldHaveBeenRunWithArguments(table *godog.Table) error {
	calls := getConvertContext().fake.calls
	if len(calls) == 0 {
		return fmt.Errorf("ffmpeg was never run")
	}
	return argumentsInclude(calls[0], table)
}

func outputFiles() ([]string, error) {
	entries, err := os.ReadDir(getConvertContext().outputDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func theOutputFileShouldBe(name string) error {
	names, err := outputFiles()
	if err != nil {
		return err
	}
	if len(names) != 1 || names[0] != name {
		return fmt.Errorf("expected output directory to hold only %q, got %v", name, names)
	}
	return nil
}

func noOutputFileShouldExist() error {
	names, err := outputFiles()
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return fmt.Errorf("expected no output files, got %v", names)
	}
	return nil
}

func noWorkingFilesShouldRemain() error {
	entries, err := os.ReadDir(getConvertContext().ws.Dir())
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return fmt.Errorf("expected an empty workspace, found %v", names)
	}
	return nil
}

// aTestClipGeneratedWithFFmpeg renders a test pattern with a sine tone as the source
func aTestClipGeneratedWithFFmpeg(seconds int, name string) error {
	c := getConvertContext()
	generator := ffmpeg.NewTranscoder(c.tempDir)
	err := generator.Run(context.Background(), []string{
		"-f", "lavfi", "-i", fmt.Sprintf("testsrc=duration=%d:size=320x240:rate=25", seconds),
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=440:duration=%d", seconds),
		"-c:v", "mpeg4", "-c:a", "aac", "-shortest",
		"-y", name,
	})
	if err != nil {
		return fmt.Errorf("failed to generate test clip: %w", err)
	}

	c.sourcePath = filepath.Join(c.tempDir, name)
	c.duration, err = ffmpeg.NewProber().Duration(context.Background(), c.sourcePath)
	return err
}

func iConvertTheWholeClipWithFFmpeg() error {
	c := getConvertContext()
	c.transcoder = ffmpeg.NewTranscoder(c.ws.Dir())
	return runConversion(cmd.EditOptions{Start: "0", Speed: 1.0})
}

func outputPath() (string, error) {
	names, err := outputFiles()
	if err != nil {
		return "", err
	}
	if len(names) != 1 {
		return "", fmt.Errorf("expected one output file, got %v", names)
	}
	return filepath.Join(getConvertContext().outputDir, names[0]), nil
}

func theOutputShouldLastAsLongAsTheSource() error {
	path, err := outputPath()
	if err != nil {
		return err
	}
	got, err := ffmpeg.NewProber().Duration(context.Background(), path)
	if err != nil {
		return err
	}
	if want := getConvertContext().duration; math.Abs(got-want) > 0.1 {
		return fmt.Errorf("expected output duration %ss, got %ss", edit.FormatSeconds(want), edit.FormatSeconds(got))
	}
	return nil
}

func theOutputShouldHaveStreams(expected string) error {
	path, err := outputPath()
	if err != nil {
		return err
	}
	types, err := ffmpeg.NewProber().StreamTypes(context.Background(), path)
	if err != nil {
		return err
	}
	if got := strings.Join(types, ", "); got != expected {
		return fmt.Errorf("expected streams %q, got %q", expected, got)
	}
	return nil
}
