package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/Norgate-AV/fsstage/internal/config"
)

// resolvedConfig is the printed form of config.Config
type resolvedConfig struct {
	ProjectDir  string   `yaml:"project_dir"`
	Source      string   `yaml:"source"`
	Output      string   `yaml:"output"`
	CompressExt []string `yaml:"compress_ext"`
	CopyExt     []string `yaml:"copy_ext"`
	Format      string   `yaml:"format"`
	Exclude     []string `yaml:"exclude,omitempty"`
	Prune       bool     `yaml:"prune"`
	KeepGoing   bool     `yaml:"keep_going"`
	DryRun      bool     `yaml:"dry_run"`
	Verbose     bool     `yaml:"verbose"`
	Quiet       bool     `yaml:"quiet"`
	Environment string   `yaml:"environment,omitempty"`
	PioPath     string   `yaml:"pio_path"`
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "config",
		Short:        "Print the resolved configuration",
		RunE:         runConfig,
		SilenceUsage: true,
		Args:         noArgs,
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", used)
	}

	out, err := yaml.Marshal(toResolved(cfg))
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func toResolved(cfg *config.Config) resolvedConfig {
	return resolvedConfig{
		ProjectDir:  cfg.ProjectDir,
		Source:      cfg.SourceDir,
		Output:      cfg.OutputDir,
		CompressExt: cfg.CompressExts,
		CopyExt:     cfg.CopyExts,
		Format:      cfg.Format,
		Exclude:     cfg.Exclude,
		Prune:       cfg.Prune,
		KeepGoing:   cfg.KeepGoing,
		DryRun:      cfg.DryRun,
		Verbose:     cfg.Verbose,
		Quiet:       cfg.Quiet,
		Environment: cfg.Environment,
		PioPath:     cfg.PioPath,
	}
}
