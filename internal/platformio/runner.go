// Package platformio runs the PlatformIO CLI for the upload steps that
// follow filesystem staging.
package platformio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// PlatformIO targets
const (
	TargetUpload   = "upload"
	TargetUploadFS = "uploadfs"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// Runner invokes `pio run` for a target and environment
type Runner struct {
	// PioPath is the PlatformIO executable
	PioPath string

	// Dir is the working directory for pio; empty uses the current one
	Dir string

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	execCommand func(name string, args ...string) Commander
}

// NewRunner creates a runner for the given pio executable
func NewRunner(pioPath string) *Runner {
	return &Runner{
		PioPath: pioPath,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  slog.New(slog.DiscardHandler),
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
	}
}

// BuildRunArgs builds the pio arguments for running target in environment
func BuildRunArgs(target, environment string) ([]string, error) {
	if target == "" {
		return nil, fmt.Errorf("target not specified")
	}

	if environment == "" {
		return nil, fmt.Errorf("environment not specified")
	}

	return []string{"run", "--target", target, "--environment", environment}, nil
}

// Run executes pio for target in environment with stdio attached. The
// command's error is returned unchanged.
func (r *Runner) Run(target, environment string) error {
	args, err := BuildRunArgs(target, environment)
	if err != nil {
		return err
	}

	r.Logger.Debug("running platformio", "command", r.PioPath+" "+strings.Join(args, " "), "dir", r.Dir)

	c := r.execCommand(r.PioPath, args...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		cmd.Dir = r.Dir
	}

	return c.Run()
}

// UploadAfterFS uploads the firmware once. Used as the hook that runs after
// PlatformIO has uploaded the filesystem image.
func (r *Runner) UploadAfterFS(environment string) error {
	return r.Run(TargetUpload, environment)
}

// UploadFSThenFirmware uploads the filesystem image and, only if that
// succeeds, the firmware
func (r *Runner) UploadFSThenFirmware(environment string) error {
	if err := r.Run(TargetUploadFS, environment); err != nil {
		return fmt.Errorf("failed to upload filesystem: %w", err)
	}

	return r.UploadAfterFS(environment)
}

// ExitCode returns the process exit code carried by err, or -1 when err
// did not come from a finished process
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
