package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"video-trimmer/infrastructure/config"
	"video-trimmer/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "video-trimmer",
	Short: "Trim, retime and fade videos with ffmpeg",
	Long: `video-trimmer turns a handful of edit choices into the smallest set of
ffmpeg invocations that produce the result:

  - Trim by start/end time with a lossless stream copy
  - Change playback speed (video and audio together)
  - Force a frame rate
  - Fade audio in and out
  - Tag a display rotation without re-encoding

Plain trims are stream-copied. Anything that needs filtering is trimmed
first and then re-encoded as H.264/AAC.

Example:
  video-trimmer convert --source holiday.mp4 --start 1:05 --end 2:30 --speed 2`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	// A missing file means defaults; a broken one is reported by the
	// commands that need it.
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr != nil {
		cfg = nil
		logger = logging.New("info", "text", os.Stderr)
		return
	}
	logger = logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
}

// GetConfig returns the loaded configuration, or the error that prevented loading it
func GetConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("configuration not loaded: %w", cfgErr)
		}
		return config.Default(), nil
	}
	return cfg, nil
}

// GetLogger returns the process logger
func GetLogger() *slog.Logger {
	if logger == nil {
		return logging.Discard()
	}
	return logger
}
