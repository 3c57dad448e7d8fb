//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"video-trimmer/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	loadErr    error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext *configContext

func getConfigContext() *configContext {
	return SharedConfigContext
}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "video-trimmer-config-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config.yaml"),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if cc := getConfigContext(); cc != nil {
			os.RemoveAll(cc.tempDir)
		}
		SharedConfigContext = nil
		return c, nil
	})

	ctx.Step(`^a configuration file containing:$`, aConfigurationFileContaining)
	ctx.Step(`^no configuration file exists$`, noConfigurationFileExists)
	ctx.Step(`^I load the configuration$`, iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, iAttemptToLoadTheConfiguration)
	ctx.Step(`^the video encoder should be "([^"]*)"$`, theVideoEncoderShouldBe)
	ctx.Step(`^the preset should be "([^"]*)"$`, thePresetShouldBe)
	ctx.Step(`^I should receive an error about the configuration$`, iShouldReceiveAnErrorAboutTheConfiguration)
}

func aConfigurationFileContaining(doc *godog.DocString) error {
	return os.WriteFile(getConfigContext().configPath, []byte(doc.Content), 0644)
}

func noConfigurationFileExists() error {
	c := getConfigContext()
	if _, err := os.Stat(c.configPath); err == nil {
		return fmt.Errorf("config file unexpectedly exists at %s", c.configPath)
	}
	return nil
}

func iLoadTheConfiguration() error {
	c := getConfigContext()
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func iAttemptToLoadTheConfiguration() error {
	c := getConfigContext()
	c.cfg, c.loadErr = config.LoadOrDefault(c.configPath)
	return nil
}

func theVideoEncoderShouldBe(expected string) error {
	c := getConfigContext()
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if got := c.cfg.EncoderSettings().VideoCodec; got != expected {
		return fmt.Errorf("expected video encoder %q, got %q", expected, got)
	}
	return nil
}

func thePresetShouldBe(expected string) error {
	c := getConfigContext()
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if got := c.cfg.EncoderSettings().Preset; got != expected {
		return fmt.Errorf("expected preset %q, got %q", expected, got)
	}
	return nil
}

func iShouldReceiveAnErrorAboutTheConfiguration() error {
	c := getConfigContext()
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if c.cfg != nil {
		return fmt.Errorf("expected no configuration alongside the error")
	}
	return nil
}
