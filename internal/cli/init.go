package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/modelcore/pkg/sqlite"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a model in the current project",
		Long:  "Create the configuration and data directories, write a default config.yaml,\nand initialize the model store. Running init again is harmless.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	r, err := resolve(flags)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}
	configPath := filepath.Join(r.configDir, configFileExt)
	if err := writeConfigIfMissing(configPath, flags.dataDir); err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	store := sqlite.NewBackend(r.logger(cmd.ErrOrStderr()))
	if err := store.Attach(r.settings.Config); err != nil {
		return sysError(fmt.Errorf("initialize store: %w", err))
	}
	if err := store.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize store: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized model in %s\n", r.settings.DataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left untouched.
func writeConfigIfMissing(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := struct {
		Backend   string `yaml:"backend"`
		DataDir   string `yaml:"data_dir,omitempty"`
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	}{
		Backend:   "sqlite",
		DataDir:   dataDir,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
