package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	EnvMaxPacketLen = "MCHANDSHAKE_MAX_PACKET_LEN"
	EnvLogLevel     = "MCHANDSHAKE_LOG_LEVEL"
	EnvLogJSON      = "MCHANDSHAKE_LOG_JSON"
	EnvLogNoColor   = "MCHANDSHAKE_LOG_NOCOLOR"
	EnvMetricsFile  = "MCHANDSHAKE_METRICS_FILE"
)

// Config holds the settings of the mchandshake command.
type Config struct {
	MaxPacketLen int32
	LogLevel     string
	LogJSON      bool
	LogNoColor   bool
	MetricsFile  string
}

func Default() Config {
	return Config{
		MaxPacketLen: 32768,
		LogLevel:     "info",
	}
}

type fileConfig struct {
	MaxPacketLen int64  `toml:"max_packet_len"`
	LogLevel     string `toml:"log_level"`
	LogJSON      bool   `toml:"log_json"`
	LogNoColor   bool   `toml:"log_no_color"`
	MetricsFile  string `toml:"metrics_file"`
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty), and environment variables. Variables set in the process
// environment win over those read from envFiles; missing envFiles are
// ignored.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnvOverrides(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MaxPacketLen <= 0 {
		return fmt.Errorf("max_packet_len must be positive, got %d", c.MaxPacketLen)
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("max_packet_len") {
		if raw.MaxPacketLen <= 0 || raw.MaxPacketLen > 1<<31-1 {
			return fmt.Errorf("max_packet_len out of range: %d", raw.MaxPacketLen)
		}
		cfg.MaxPacketLen = int32(raw.MaxPacketLen)
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("log_json") {
		cfg.LogJSON = raw.LogJSON
	}

	if meta.IsDefined("log_no_color") {
		cfg.LogNoColor = raw.LogNoColor
	}

	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}

	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		present = append(present, f)
	}
	if len(present) == 0 {
		return map[string]string{}, nil
	}

	env, err := godotenv.Read(present...)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return env, nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	if raw, ok := lookup(EnvMaxPacketLen); ok && strings.TrimSpace(raw) != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvMaxPacketLen, err)
		}
		cfg.MaxPacketLen = int32(n)
	}
	if raw, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(raw) != "" {
		cfg.LogLevel = strings.TrimSpace(raw)
	}
	if v, ok := parseBool(lookup(EnvLogJSON)); ok {
		cfg.LogJSON = v
	}
	if v, ok := parseBool(lookup(EnvLogNoColor)); ok {
		cfg.LogNoColor = v
	}
	if raw, ok := lookup(EnvMetricsFile); ok {
		cfg.MetricsFile = strings.TrimSpace(raw)
	}
	return nil
}

func parseBool(raw string, set bool) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if !set || raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
