package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Norgate-AV/fsstage/internal/codec"
	"github.com/Norgate-AV/fsstage/internal/stager"
	"github.com/Norgate-AV/fsstage/internal/utils"
)

// Default configuration values
const (
	DefaultSource  = "web_src"
	DefaultOutput  = "data"
	DefaultFormat  = codec.Default
	DefaultPioPath = "pio"
)

var (
	DefaultCompressExts = []string{".html", ".css", ".js"}
	DefaultCopyExts     = []string{".ico"}
)

// Holds the configuration options for fsstage
type Config struct {
	// Project root; relative source and output paths resolve against it
	ProjectDir string

	// Directory holding the web assets to stage
	SourceDir string

	// Directory the filesystem image is built from
	OutputDir string

	// Suffixes to compress
	CompressExts []string

	// Suffixes to copy verbatim
	CopyExts []string

	// Compression format (gzip or brotli)
	Format string

	// Doublestar patterns excluded from staging
	Exclude []string

	// Remove staged files whose source is gone
	Prune bool

	// Continue past failed files
	KeepGoing bool

	// Report without writing
	DryRun bool

	// Enable verbose output
	Verbose bool

	// Print failures and the summary only
	Quiet bool

	// PlatformIO environment name
	Environment string

	// Path to the PlatformIO CLI
	PioPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		ProjectDir:   viper.GetString("project_dir"),
		SourceDir:    viper.GetString("source"),
		OutputDir:    viper.GetString("output"),
		CompressExts: viper.GetStringSlice("compress_ext"),
		CopyExts:     viper.GetStringSlice("copy_ext"),
		Format:       viper.GetString("format"),
		Exclude:      viper.GetStringSlice("exclude"),
		Prune:        viper.GetBool("prune"),
		KeepGoing:    viper.GetBool("keep_going"),
		DryRun:       viper.GetBool("dry_run"),
		Verbose:      viper.GetBool("verbose"),
		Quiet:        viper.GetBool("quiet"),
		Environment:  viper.GetString("environment"),
		PioPath:      viper.GetString("pio_path"),
	}

	// Apply defaults if not set
	if cfg.SourceDir == "" {
		cfg.SourceDir = DefaultSource
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutput
	}

	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}

	if cfg.PioPath == "" {
		cfg.PioPath = DefaultPioPath
	}

	if len(cfg.Exclude) == 0 {
		cfg.Exclude = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ProjectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		c.ProjectDir = wd
	}

	abs, err := filepath.Abs(c.ProjectDir)
	if err != nil {
		return fmt.Errorf("invalid project directory: %v", err)
	}

	c.ProjectDir = abs

	if c.SourceDir == "" {
		return fmt.Errorf("source directory not specified")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output directory not specified")
	}

	c.SourceDir = c.resolve(c.SourceDir)
	c.OutputDir = c.resolve(c.OutputDir)

	c.CompressExts = utils.ParseExtensions(c.CompressExts)
	c.CopyExts = utils.ParseExtensions(c.CopyExts)

	if len(c.CompressExts) == 0 && len(c.CopyExts) == 0 {
		return fmt.Errorf("no extensions to stage")
	}

	if _, err := codec.Lookup(c.Format); err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	if c.Verbose && c.Quiet {
		return fmt.Errorf("verbose and quiet cannot be used together")
	}

	opts, err := c.StageOptions(nil)
	if err != nil {
		return err
	}

	return opts.Validate()
}

// StageOptions builds the stager options for this configuration
func (c *Config) StageOptions(logger *slog.Logger) (stager.Options, error) {
	cd, err := codec.Lookup(c.Format)
	if err != nil {
		return stager.Options{}, err
	}

	return stager.Options{
		SourceRoot:   c.SourceDir,
		OutputRoot:   c.OutputDir,
		CompressExts: c.CompressExts,
		CopyExts:     c.CopyExts,
		Codec:        cd,
		Exclude:      c.Exclude,
		KeepGoing:    c.KeepGoing,
		Prune:        c.Prune,
		DryRun:       c.DryRun,
		Logger:       logger,
	}, nil
}

// resolve makes path absolute, relative to the project directory
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(c.ProjectDir, path)
}
