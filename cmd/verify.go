package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fsstage/internal/codes"
	"github.com/Norgate-AV/fsstage/internal/report"
	"github.com/Norgate-AV/fsstage/internal/verify"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the staged output matches the source",
		Long: `Check every staged file: it must exist, be at least as new as its source,
and decompress (or for verbatim copies, compare) to the source bytes.`,
		RunE:         runVerify,
		SilenceUsage: true,
		Args:         noArgs,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := cfg.StageOptions(log)
	if err != nil {
		return codes.Wrap(codes.Config, err)
	}

	res, err := verify.Tree(opts)
	if err != nil {
		return codes.Wrap(codes.Verify, fmt.Errorf("failed to verify: %w", err))
	}

	for _, w := range res.Warnings {
		log.Warn(w)
	}

	report.NewPrinter(cmd.OutOrStdout(), cfg.Quiet).Verify(res)

	if n := len(res.Problems()); n > 0 {
		return codes.Wrap(codes.Verify, fmt.Errorf("%d staged files do not match their source", n))
	}

	return nil
}
