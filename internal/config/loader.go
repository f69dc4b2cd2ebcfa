package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the fsstage environment variables
const EnvPrefix = "FSSTAGE"

// flagKeys maps viper keys to command flag names
var flagKeys = map[string]string{
	"project_dir":  "project-dir",
	"source":       "source",
	"output":       "output",
	"compress_ext": "compress-ext",
	"copy_ext":     "copy-ext",
	"format":       "format",
	"exclude":      "exclude",
	"prune":        "prune",
	"keep_going":   "keep-going",
	"dry_run":      "dry-run",
	"verbose":      "verbose",
	"quiet":        "quiet",
	"environment":  "environment",
	"pio_path":     "pio",
}

// Variables set by PlatformIO when it runs extra scripts. They rank below
// the FSSTAGE_ variables.
var orchestratorEnv = map[string]string{
	"project_dir": "PROJECT_DIR",
	"output":      "PROJECT_DATA_DIR",
	"environment": "PIOENV",
}

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForCommand loads configuration for a command. Sources in increasing
// priority: defaults, global config, local config, project .env,
// environment, flags.
func (l *Loader) LoadForCommand(cmd *cobra.Command) (*Config, error) {
	l.setupViperDefaults()
	l.bindEnv()
	l.bindCommandFlags(cmd)

	projectDir := l.projectDir()
	l.loadDotEnv(projectDir)
	l.loadGlobalConfig()
	l.loadLocalConfig(projectDir)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("source", DefaultSource)
	viper.SetDefault("output", DefaultOutput)
	viper.SetDefault("compress_ext", DefaultCompressExts)
	viper.SetDefault("copy_ext", DefaultCopyExts)
	viper.SetDefault("format", DefaultFormat)
	viper.SetDefault("pio_path", DefaultPioPath)
	viper.SetDefault("prune", false)
	viper.SetDefault("keep_going", false)
	viper.SetDefault("dry_run", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("quiet", false)
}

// bindEnv binds FSSTAGE_<KEY> for every key, followed by the PlatformIO
// variable where one exists
func (l *Loader) bindEnv() {
	for key := range flagKeys {
		names := []string{key, EnvPrefix + "_" + envName(key)}
		if name, ok := orchestratorEnv[key]; ok {
			names = append(names, name)
		}

		_ = viper.BindEnv(names...)
	}
}

// projectDir returns the configured project directory or the working directory
func (l *Loader) projectDir() string {
	if dir := viper.GetString("project_dir"); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	return wd
}

// loadDotEnv loads a .env file from the project directory without
// overriding variables that are already set
func (l *Loader) loadDotEnv(projectDir string) {
	if projectDir == "" {
		return
	}

	path := filepath.Join(projectDir, ".env")
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	if path := FindGlobalConfig(); path != "" {
		viper.SetConfigFile(path)
		_ = viper.ReadInConfig()
	}
}

// loadLocalConfig merges local configuration found from the project directory
func (l *Loader) loadLocalConfig(projectDir string) {
	if projectDir == "" {
		return
	}

	if path := FindLocalConfig(projectDir); path != "" {
		viper.SetConfigFile(path)
		_ = viper.MergeInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	for key, name := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}

func envName(key string) string {
	return strings.ToUpper(key)
}
