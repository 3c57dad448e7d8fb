package cmd

import (
	"fmt"

	"video-trimmer/infrastructure/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration with every default filled in, as YAML.

Example:
  video-trimmer config show --config ~/trimmer.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	return RunConfigShowWithDependencies(cfg, cfgFile, cmd.OutOrStdout())
}

// RunConfigShowWithDependencies prints cfg with injected dependencies (for testing)
func RunConfigShowWithDependencies(cfg *config.Config, configPath string, output OutputWriter) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	fmt.Fprintf(output, "# %s\n", configPath)
	_, err = output.Write(data)
	return err
}
