// Package paths resolves configuration and data directory locations for the
// modeler CLI. Models are project-local by default: the config directory is
// .modeler in the working directory and the store lives beneath it.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "modeler"

// Working-directory relative defaults.
const (
	DefaultConfigDirName = ".modeler"
	DefaultDataDirName   = "model"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "MODELER_CONFIG_DIR"
	EnvDataDir   = "MODELER_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	getwd         func() (string, error)
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	getwd:         os.Getwd,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// UserConfigDir returns the per-user configuration directory. A config.yaml
// there supplies defaults for every project.
//
// Linux:   $XDG_CONFIG_HOME/modeler (fallback ~/.config/modeler)
// macOS:   ~/Library/Application Support/modeler
// Windows: %APPDATA%/modeler
func UserConfigDir() (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > MODELER_CONFIG_DIR > $(CWD)/.modeler.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultConfigDirName), nil
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > MODELER_DATA_DIR > config.yaml data_dir > <configDir>/model.
// A relative config.yaml value is taken relative to configDir.
func ResolveDataDir(flag, configYAMLValue, configDir string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	if configYAMLValue != "" {
		if filepath.IsAbs(configYAMLValue) {
			return filepath.Clean(configYAMLValue), nil
		}
		return filepath.Abs(filepath.Join(configDir, configYAMLValue))
	}
	return filepath.Abs(filepath.Join(configDir, DefaultDataDirName))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
