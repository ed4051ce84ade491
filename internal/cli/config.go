package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyLogLevel = "log_level"

	envPrefix = "CAFEMEMO"
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// loadConfig reads config.yaml from configDir. A missing directory or file
// is not an error: defaults apply. log_level may also come from
// CAFEMEMO_LOG_LEVEL; data_dir from the environment is handled by
// paths.ResolveDataDir so that the file wins over it.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	if err := v.BindEnv(cfgKeyLogLevel); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml in configDir. An existing file is
// left alone; the return reports whether a file was written.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(&configFile{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
