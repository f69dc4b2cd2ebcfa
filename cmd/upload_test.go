package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/fsstage/internal/codes"
)

// fakePio writes a shell script that logs its arguments and fails when the
// target is failTarget. It returns the script and log paths.
func fakePio(t *testing.T, failTarget string) (string, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}

	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	script := filepath.Join(dir, "pio")

	content := "#!/bin/sh\n" +
		"echo \"$@\" >> \"" + logPath + "\"\n" +
		"[ \"$3\" = \"" + failTarget + "\" ] && exit 1\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))

	return script, logPath
}

func calls(t *testing.T, logPath string) []string {
	t.Helper()

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestUpload_AfterFS(t *testing.T) {
	isolate(t)
	pio, logPath := fakePio(t, "none")

	_, _, err := execute(t, "upload", "-p", t.TempDir(), "--pio", pio, "-e", "esp32dev")
	require.NoError(t, err)

	assert.Equal(t, []string{"run --target upload --environment esp32dev"}, calls(t, logPath))
}

func TestUpload_EnvironmentFromPIOENV(t *testing.T) {
	isolate(t)
	pio, logPath := fakePio(t, "none")
	t.Setenv("PIOENV", "d1_mini")

	_, _, err := execute(t, "upload", "-p", t.TempDir(), "--pio", pio)
	require.NoError(t, err)

	assert.Equal(t, []string{"run --target upload --environment d1_mini"}, calls(t, logPath))
}

func TestUpload_FSThenFirmware(t *testing.T) {
	isolate(t)
	pio, logPath := fakePio(t, "none")

	_, _, err := execute(t, "upload", "--fs", "-p", t.TempDir(), "--pio", pio, "-e", "esp32dev")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"run --target uploadfs --environment esp32dev",
		"run --target upload --environment esp32dev",
	}, calls(t, logPath))
}

func TestUpload_FSFailureSkipsFirmware(t *testing.T) {
	isolate(t)
	pio, logPath := fakePio(t, "uploadfs")

	_, _, err := execute(t, "upload", "--fs", "-p", t.TempDir(), "--pio", pio, "-e", "esp32dev")
	require.Error(t, err)

	assert.Equal(t, codes.Upload, codes.ExitCode(err))
	assert.Equal(t, []string{"run --target uploadfs --environment esp32dev"}, calls(t, logPath))
}

func TestUpload_Failure(t *testing.T) {
	isolate(t)
	pio, _ := fakePio(t, "upload")

	_, stderr, err := execute(t, "upload", "-p", t.TempDir(), "--pio", pio, "-e", "esp32dev")
	require.Error(t, err)

	assert.Equal(t, codes.Upload, codes.ExitCode(err))
	assert.Contains(t, stderr, "exit_code=1")
}

func TestUpload_MissingEnvironment(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "upload", "-p", t.TempDir())
	require.Error(t, err)

	assert.Equal(t, codes.Config, codes.ExitCode(err))
	assert.Contains(t, err.Error(), "environment not specified")
}
