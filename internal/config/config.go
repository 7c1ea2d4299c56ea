// Package config resolves ruleminer settings from flags, environment and an
// optional YAML file.
//
// Precedence (highest first): command-line flags, RULEMINER_* environment
// variables, the config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

// EnvPrefix is prepended to every environment variable (RULEMINER_SUPPORT, ...).
const EnvPrefix = "RULEMINER"

// Keys recognised in the config file and environment.
const (
	KeyDB         = "db"
	KeyDSN        = "dsn"
	KeyTable      = "table"
	KeySupport    = "support"
	KeyConfidence = "confidence"
	KeyRelative   = "relative"
	KeyWorkers    = "workers"
	KeyCacheSize  = "cache_size"
	KeyLogLevel   = "log_level"
	KeyLogFormat  = "log_format"
)

// Defaults applied when no other source sets a key.
const (
	DefaultSupport    = 0.5
	DefaultConfidence = 0.7
	DefaultCacheSize  = 4096
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
)

// Settings is the resolved configuration for one command invocation.
type Settings struct {
	DB         string
	DSN        string
	Table      string
	Support    float64
	Confidence float64
	Relative   bool
	Workers    int
	CacheSize  int
	LogLevel   string
	LogFormat  string
}

// MinerConfig converts the threshold settings into a miner configuration.
func (s Settings) MinerConfig() miner.Config {
	return miner.Config{
		SupportThreshold:    s.Support,
		ConfidenceThreshold: s.Confidence,
		RelativeSupport:     s.Relative,
	}
}

// Dir returns the ruleminer home directory (~/.ruleminer), creating it if
// needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".ruleminer")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ruleminer directory: %w", err)
	}
	return dir, nil
}

// SetDefaults installs built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySupport, DefaultSupport)
	v.SetDefault(KeyConfidence, DefaultConfidence)
	v.SetDefault(KeyRelative, true)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyCacheSize, DefaultCacheSize)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
}

// Load wires environment lookup into v and reads the config file. An empty
// file means the default ~/.ruleminer/config.yaml, which may be absent; an
// explicitly named file must exist.
func Load(v *viper.Viper, file string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	explicit := file != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return err
		}
		file = filepath.Join(dir, "config.yaml")
	}

	if _, err := os.Stat(file); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", file, err)
	}
	return nil
}

// Decode reads the resolved values out of v.
func Decode(v *viper.Viper) Settings {
	return Settings{
		DB:         v.GetString(KeyDB),
		DSN:        v.GetString(KeyDSN),
		Table:      v.GetString(KeyTable),
		Support:    v.GetFloat64(KeySupport),
		Confidence: v.GetFloat64(KeyConfidence),
		Relative:   v.GetBool(KeyRelative),
		Workers:    v.GetInt(KeyWorkers),
		CacheSize:  v.GetInt(KeyCacheSize),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
	}
}

// ConfigureLogger applies a level name and a format ("text" or "json") to l.
func ConfigureLogger(l *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", format)
	}
	return nil
}
