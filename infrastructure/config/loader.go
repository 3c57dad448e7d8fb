package config

import (
	"errors"
	"fmt"
	"os"

	"video-trimmer/domain/edit"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its configuration
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Encoder EncoderConfig `yaml:"encoder"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig contains working and output directories
type PathsConfig struct {
	WorkspaceDirectory string `yaml:"workspace_directory"`
	OutputDirectory    string `yaml:"output_directory"`
}

// FFmpegConfig contains transcoder executable locations
type FFmpegConfig struct {
	Path        string `yaml:"path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

// EncoderConfig contains settings for the re-encode stage
type EncoderConfig struct {
	VideoCodec string `yaml:"video_codec"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf,omitempty"`
	AudioCodec string `yaml:"audio_codec"`
	FastStart  *bool  `yaml:"faststart,omitempty"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills any unset field
func (c *Config) ApplyDefaults() {
	if c.Paths.WorkspaceDirectory == "" {
		c.Paths.WorkspaceDirectory = os.TempDir()
	}
	if c.Paths.OutputDirectory == "" {
		c.Paths.OutputDirectory = "."
	}
	if c.FFmpeg.Path == "" {
		c.FFmpeg.Path = "ffmpeg"
	}
	if c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = "ffprobe"
	}
	if c.Encoder.VideoCodec == "" {
		c.Encoder.VideoCodec = edit.DefaultEncoder.VideoCodec
	}
	if c.Encoder.Preset == "" {
		c.Encoder.Preset = edit.DefaultEncoder.Preset
	}
	if c.Encoder.AudioCodec == "" {
		c.Encoder.AudioCodec = edit.DefaultEncoder.AudioCodec
	}
	if c.Encoder.FastStart == nil {
		fastStart := edit.DefaultEncoder.FastStart
		c.Encoder.FastStart = &fastStart
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if c.Encoder.CRF < 0 || c.Encoder.CRF > 51 {
		return fmt.Errorf("encoder.crf must be between 0 and 51, got %d", c.Encoder.CRF)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// EncoderSettings converts the encoder section for the plan compiler
func (c *Config) EncoderSettings() edit.EncoderSettings {
	settings := edit.EncoderSettings{
		VideoCodec: c.Encoder.VideoCodec,
		Preset:     c.Encoder.Preset,
		CRF:        c.Encoder.CRF,
		AudioCodec: c.Encoder.AudioCodec,
		FastStart:  edit.DefaultEncoder.FastStart,
	}
	if c.Encoder.FastStart != nil {
		settings.FastStart = *c.Encoder.FastStart
	}
	return settings
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
