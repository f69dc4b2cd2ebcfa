package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/fsstage/internal/codes"
	"github.com/Norgate-AV/fsstage/internal/testutil"
)

func TestStage_SecondRunSkips(t *testing.T) {
	isolate(t)
	project := newProject(t)

	_, _, err := execute(t, "stage", "-p", project)
	require.NoError(t, err)

	stdout, _, err := execute(t, "stage", "-p", project)
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 compressed, 0 copied, 3 up to date, 0 failed")
}

func TestStage_DryRun(t *testing.T) {
	isolate(t)
	project := newProject(t)

	stdout, _, err := execute(t, "stage", "-p", project, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "(dry run)")
	assert.NoDirExists(t, filepath.Join(project, "data"))
}

func TestStage_Quiet(t *testing.T) {
	isolate(t)
	project := newProject(t)

	stdout, _, err := execute(t, "stage", "-p", project, "-q")
	require.NoError(t, err)

	assert.NotContains(t, stdout, "compress ")
	assert.Contains(t, stdout, "2 compressed, 1 copied")
}

func TestStage_CustomDirsAndBrotli(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	testutil.WriteTree(t, filepath.Join(project, "ui"), map[string]string{
		"index.html": "<html></html>",
		"logo.svg":   "<svg/>",
	})

	_, _, err := execute(t, "stage", "-p", project, "-s", "ui", "-o", "fs", "-f", "brotli", "--compress-ext", "html,svg")
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"index.html.br", "logo.svg.br"},
		testutil.ListFiles(t, filepath.Join(project, "fs")))
}

func TestStage_EnvironmentFromPlatformIO(t *testing.T) {
	isolate(t)
	project := newProject(t)
	dataDir := filepath.Join(t.TempDir(), "pio-data")

	t.Setenv("PROJECT_DIR", project)
	t.Setenv("PROJECT_DATA_DIR", dataDir)

	_, _, err := execute(t, "stage")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dataDir, "index.html.gz"))
}

func TestStage_LocalConfig(t *testing.T) {
	isolate(t)
	project := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, ".fsstage.yml"), []byte("exclude:\n  - css/**\n"), 0o644))

	_, _, err := execute(t, "stage", "-p", project)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"index.html.gz", "favicon.ico"},
		testutil.ListFiles(t, filepath.Join(project, "data")))
}

func TestStage_Failure(t *testing.T) {
	isolate(t)
	project := newProject(t)

	// A file where the output directory should be
	testutil.WriteFile(t, filepath.Join(project, "data"), "in the way", testutil.BaseTime)

	stdout, _, err := execute(t, "stage", "-p", project)
	require.Error(t, err)

	assert.Equal(t, codes.Stage, codes.ExitCode(err))
	assert.Contains(t, stdout, "FAIL")
}

func TestStage_MissingSourceSucceeds(t *testing.T) {
	isolate(t)
	project := t.TempDir()

	stdout, stderr, err := execute(t, "stage", "-p", project)
	require.NoError(t, err)

	assert.Contains(t, stdout, "0 compressed, 0 copied, 0 up to date, 0 failed")
	assert.Contains(t, stderr, "nothing to stage")
	assert.NoDirExists(t, filepath.Join(project, "data"))
}

func TestStage_Prune(t *testing.T) {
	isolate(t)
	project := newProject(t)

	_, _, err := execute(t, "stage", "-p", project)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(project, "web_src", "favicon.ico")))

	stdout, _, err := execute(t, "stage", "-p", project, "--prune")
	require.NoError(t, err)

	assert.Contains(t, stdout, "prune    favicon.ico")
	assert.NoFileExists(t, filepath.Join(project, "data", "favicon.ico"))
}
