package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Norgate-AV/fsstage/internal/codes"
	"github.com/Norgate-AV/fsstage/internal/config"
	"github.com/Norgate-AV/fsstage/internal/version"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fsstage",
		Short: "Stage web assets for an embedded filesystem image",
		Long: `Mirror a web source tree into the data directory that PlatformIO builds
its filesystem image from. Text assets are compressed, a small set of binary
files is copied verbatim, and files already up to date are skipped.`,
		RunE:          runStage,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return codes.Wrap(codes.Usage, err)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringP("project-dir", "p", "", "Project directory (default: current directory)")
	flags.StringP("source", "s", "", "Source directory of web assets (default: web_src)")
	flags.StringP("output", "o", "", "Output directory for the filesystem image (default: data)")
	flags.StringSlice("compress-ext", nil, "Extensions to compress (default: .html,.css,.js)")
	flags.StringSlice("copy-ext", nil, "Extensions to copy verbatim (default: .ico)")
	flags.StringP("format", "f", "", "Compression format: gzip or brotli (default: gzip)")
	flags.StringSliceP("exclude", "x", nil, "Glob patterns to exclude, relative to the source directory")
	flags.Bool("prune", false, "Remove staged files whose source no longer exists")
	flags.BoolP("keep-going", "k", false, "Continue past failed files")
	flags.BoolP("dry-run", "n", false, "Show what would be staged without writing")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.BoolP("quiet", "q", false, "Only print failures and the summary")
	flags.StringP("environment", "e", "", "PlatformIO environment (default: $PIOENV)")
	flags.String("pio", "", "Path to the PlatformIO CLI (default: pio)")

	rootCmd.Flags().BoolP("watch", "w", false, "Restage whenever the source changes")

	rootCmd.AddCommand(newStageCmd(), newVerifyCmd(), newUploadCmd(), newConfigCmd())
	return rootCmd
}

func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(codes.ExitCode(err))
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	return codes.Wrap(codes.Usage, cobra.NoArgs(cmd, args))
}

// loadConfig resolves the configuration for cmd and builds its logger
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.NewLoader().LoadForCommand(cmd)
	if err != nil {
		return nil, nil, codes.Wrap(codes.Config, fmt.Errorf("failed to load config: %w", err))
	}

	log := newLogger(cmd.ErrOrStderr(), cfg)
	log.Debug("loaded config", "project", cfg.ProjectDir, "environment", cfg.Environment, "config_file", viper.ConfigFileUsed())

	return cfg, log, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case cfg.Verbose:
		level = slog.LevelDebug
	case cfg.Quiet:
		level = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
