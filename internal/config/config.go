// Package config loads taskheap settings from defaults, an optional config
// file, TASKHEAP_* environment variables and bound command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/nick-dorsch/taskheap/pkg/models"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	AppDir         = ".taskheap"
	ConfigFileName = "config"
	EnvPrefix      = "TASKHEAP"

	KeyCapacity = "capacity"
	KeyCriteria = "criteria"
	KeyPort     = "http.port"
	KeyDebug    = "log.debug"
	KeyLogDir   = "log.dir"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Capacity int
	Criteria models.Criteria
	Port     string
	Debug    bool
	LogDir   string

	// File is the config file that was read, if any.
	File string
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCapacity, 10)
	v.SetDefault(KeyCriteria, models.CriteriaTime.String())
	v.SetDefault(KeyPort, "8000")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogDir, "")
}

// DefaultDir returns ~/.taskheap.
func DefaultDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, AppDir), nil
}

// Load reads configuration into a Config. An explicit path must exist; without
// one, ~/.taskheap/config.{yaml,json,toml} is used when present.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to expand config path %s", path)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", expanded)
		}
	} else if dir, err := DefaultDir(); err == nil {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "failed to read config")
			}
		}
	}

	cfg := &Config{
		Capacity: v.GetInt(KeyCapacity),
		Port:     strings.TrimSpace(v.GetString(KeyPort)),
		Debug:    v.GetBool(KeyDebug),
		LogDir:   strings.TrimSpace(v.GetString(KeyLogDir)),
		File:     v.ConfigFileUsed(),
	}

	if cfg.Capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s must be positive, got %d", KeyCapacity, cfg.Capacity)
	}

	criteria, err := models.ParseCriteria(v.GetString(KeyCriteria))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s: %v", KeyCriteria, err)
	}
	cfg.Criteria = criteria

	if cfg.LogDir != "" {
		if cfg.LogDir, err = homedir.Expand(cfg.LogDir); err != nil {
			return nil, errors.Wrapf(err, "failed to expand %s", KeyLogDir)
		}
	}

	return cfg, nil
}

// WriteDefault writes a config file with every default value to path unless
// one already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	v := viper.New()
	SetDefaults(v)
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}
