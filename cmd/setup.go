package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"video-trimmer/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command asks where to keep working files and finished videos,
where ffmpeg and ffprobe live, and which encoder to use when a clip has
to be re-encoded.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, cmd.OutOrStdout())
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, output OutputWriter) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, "Welcome to video-trimmer setup!")
	fmt.Fprintln(output)

	cfg := config.Default()

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}
	if err := promptEncoder(prompter, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	work, err := prompter.Input("Where should working files go while converting?", cfg.Paths.WorkspaceDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if work == "" {
		return fmt.Errorf("workspace directory is required")
	}
	cfg.Paths.WorkspaceDirectory = work

	out, err := prompter.Input("Where should finished videos go?", cfg.Paths.OutputDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if out == "" {
		return fmt.Errorf("output directory is required")
	}
	cfg.Paths.OutputDirectory = out

	return nil
}

func promptFFmpeg(prompter Prompter, cfg *config.Config) error {
	ffmpegPath, err := prompter.Input("Path to ffmpeg?", cfg.FFmpeg.Path)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffmpegPath != "" {
		cfg.FFmpeg.Path = ffmpegPath
	}

	ffprobePath, err := prompter.Input("Path to ffprobe?", cfg.FFmpeg.FFprobePath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffprobePath != "" {
		cfg.FFmpeg.FFprobePath = ffprobePath
	}

	return nil
}

func promptEncoder(prompter Prompter, cfg *config.Config) error {
	videoCodec, err := prompter.Input("Video encoder for re-encoded clips?", cfg.Encoder.VideoCodec)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if videoCodec != "" {
		cfg.Encoder.VideoCodec = videoCodec
	}

	preset, err := prompter.Input("Encoder preset?", cfg.Encoder.Preset)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if preset != "" {
		cfg.Encoder.Preset = preset
	}

	audioCodec, err := prompter.Input("Audio encoder?", cfg.Encoder.AudioCodec)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if audioCodec != "" {
		cfg.Encoder.AudioCodec = audioCodec
	}

	fastStart, err := prompter.Confirm("Move the MP4 index to the front for faster playback start?", *cfg.Encoder.FastStart)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Encoder.FastStart = &fastStart

	return nil
}
