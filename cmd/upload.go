package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fsstage/internal/codes"
	"github.com/Norgate-AV/fsstage/internal/platformio"
)

func newUploadCmd() *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload firmware with PlatformIO",
		Long: `Run after PlatformIO has uploaded the filesystem image to upload the
firmware as well. With --fs the filesystem image is uploaded first, and the
firmware only if that succeeded.`,
		RunE:         runUpload,
		SilenceUsage: true,
		Args:         noArgs,
	}

	uploadCmd.Flags().Bool("fs", false, "Upload the filesystem image before the firmware")
	return uploadCmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Environment == "" {
		return codes.Wrap(codes.Config, fmt.Errorf("environment not specified (use --environment or set PIOENV)"))
	}

	runner := platformio.NewRunner(cfg.PioPath)
	runner.Dir = cfg.ProjectDir
	runner.Stdout = cmd.OutOrStdout()
	runner.Stderr = cmd.ErrOrStderr()
	runner.Logger = log

	withFS, _ := cmd.Flags().GetBool("fs")
	if withFS {
		err = runner.UploadFSThenFirmware(cfg.Environment)
	} else {
		err = runner.UploadAfterFS(cfg.Environment)
	}

	if err != nil {
		if code := platformio.ExitCode(err); code > 0 {
			log.Error("platformio failed", "exit_code", code)
		}

		return codes.Wrap(codes.Upload, err)
	}

	return nil
}
