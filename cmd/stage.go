package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fsstage/internal/codes"
	"github.com/Norgate-AV/fsstage/internal/report"
	"github.com/Norgate-AV/fsstage/internal/stager"
	"github.com/Norgate-AV/fsstage/internal/watch"
)

func newStageCmd() *cobra.Command {
	stageCmd := &cobra.Command{
		Use:   "stage",
		Short: "Stage web assets into the data directory",
		Long: `Compress and copy web assets from the source directory into the output
directory. Files whose staged copy is at least as new as the source are
skipped. A missing source directory is reported and is not an error.`,
		RunE:         runStage,
		SilenceUsage: true,
		Args:         noArgs,
	}

	stageCmd.Flags().BoolP("watch", "w", false, "Restage whenever the source changes")
	return stageCmd
}

func runStage(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := cfg.StageOptions(log)
	if err != nil {
		return codes.Wrap(codes.Config, err)
	}

	printer := report.NewPrinter(cmd.OutOrStdout(), cfg.Quiet)

	watching, _ := cmd.Flags().GetBool("watch")
	if !watching {
		return stageOnce(opts, printer)
	}

	if err := stageOnce(opts, printer); err != nil {
		log.Error("staging failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = watch.Run(ctx, opts, func() {
		if err := stageOnce(opts, printer); err != nil {
			log.Error("staging failed", "error", err)
		}
	})

	return codes.Wrap(codes.Stage, err)
}

func stageOnce(opts stager.Options, printer *report.Printer) error {
	r, err := stager.Stage(opts)
	if r != nil {
		printer.Stage(r)
	}

	return codes.Wrap(codes.Stage, err)
}
