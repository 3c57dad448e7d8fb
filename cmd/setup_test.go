package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"video-trimmer/infrastructure/config"
)

// scriptedPrompter answers prompts from queues
type scriptedPrompter struct {
	inputs   []string
	confirms []bool
	err      error
	messages []string
}

func (p *scriptedPrompter) Input(message string, defaultValue string) (string, error) {
	p.messages = append(p.messages, message)
	if p.err != nil {
		return "", p.err
	}
	if len(p.inputs) == 0 {
		return defaultValue, nil
	}
	answer := p.inputs[0]
	p.inputs = p.inputs[1:]
	return answer, nil
}

func (p *scriptedPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	p.messages = append(p.messages, message)
	if p.err != nil {
		return false, p.err
	}
	if len(p.confirms) == 0 {
		return defaultValue, nil
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func TestRunSetupWithPrompter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	prompter := &scriptedPrompter{
		inputs:   []string{"/tmp/work", "/home/user/Videos", "", "", "libx265", "", ""},
		confirms: []bool{false},
	}
	out := &bytes.Buffer{}

	if err := RunSetupWithPrompter(prompter, path, out); err != nil {
		t.Fatalf("RunSetupWithPrompter() unexpected error: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Paths.WorkspaceDirectory != "/tmp/work" || cfg.Paths.OutputDirectory != "/home/user/Videos" {
		t.Errorf("Paths = %+v", cfg.Paths)
	}
	if cfg.FFmpeg.Path != "ffmpeg" {
		t.Errorf("FFmpeg.Path = %q, want default kept", cfg.FFmpeg.Path)
	}
	settings := cfg.EncoderSettings()
	if settings.VideoCodec != "libx265" || settings.Preset != "fast" || settings.FastStart {
		t.Errorf("EncoderSettings() = %+v", settings)
	}
	if !strings.Contains(out.String(), "Configuration saved to") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunSetupWithPrompter_KeepsExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("paths:\n  output_directory: /keep\n"), 0644); err != nil {
		t.Fatal(err)
	}
	prompter := &scriptedPrompter{confirms: []bool{false}}
	out := &bytes.Buffer{}

	if err := RunSetupWithPrompter(prompter, path, out); err != nil {
		t.Fatalf("RunSetupWithPrompter() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Setup cancelled.") {
		t.Errorf("output = %q", out.String())
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "/keep") {
		t.Errorf("config was overwritten: %s", data)
	}
}

func TestRunSetupWithPrompter_Cancelled(t *testing.T) {
	prompter := &scriptedPrompter{err: errors.New("interrupt")}
	err := RunSetupWithPrompter(prompter, filepath.Join(t.TempDir(), "config.yaml"), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "prompt cancelled") {
		t.Errorf("error = %v, want prompt cancelled", err)
	}
}

func TestRunConfigShowWithDependencies(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDirectory = "/exports"
	out := &bytes.Buffer{}

	if err := RunConfigShowWithDependencies(cfg, "config/config.yaml", out); err != nil {
		t.Fatalf("RunConfigShowWithDependencies() unexpected error: %v", err)
	}
	for _, want := range []string{"# config/config.yaml", "output_directory: /exports", "video_codec: libx264"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
