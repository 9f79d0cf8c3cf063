package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"onsm/numt_classifier/common"
)

// Environment variables consulted after the config file and before CLI flags.
const (
	EnvThreads     = "ONSM_THREADS"
	EnvLogLevel    = "ONSM_LOG_LEVEL"
	EnvLogFormat   = "ONSM_LOG_FORMAT"
	EnvSingletons  = "ONSM_SINGLETON_POLICY"
	EnvCallThresh  = "ONSM_CALL_THRESHOLD"
	EnvHighConfThr = "ONSM_HIGHCONF_THRESHOLD"
)

// LoadFile overlays a TOML file onto base. Keys the file sets but Config does not know
// are rejected so typos do not silently fall back to defaults.
func LoadFile(path string, base Config) (Config, error) {
	cfg := base
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, common.ConfigError("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadDotEnv reads a .env file in the working directory when present.
// A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overlays ONSM_* environment values onto cfg.
func ApplyEnv(cfg Config) (Config, error) {
	if raw := strings.TrimSpace(os.Getenv(EnvThreads)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, common.ConfigError("%s=%q is not an integer", EnvThreads, raw)
		}
		cfg.Threads = n
	}
	if raw := strings.TrimSpace(os.Getenv(EnvSingletons)); raw != "" {
		cfg.Pairing.Singletons = SingletonPolicy(strings.ToLower(raw))
	}
	if raw := strings.TrimSpace(os.Getenv(EnvCallThresh)); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, common.ConfigError("%s=%q is not a number", EnvCallThresh, raw)
		}
		cfg.Thresholds.Call = v
	}
	if raw := strings.TrimSpace(os.Getenv(EnvHighConfThr)); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, common.ConfigError("%s=%q is not a number", EnvHighConfThr, raw)
		}
		cfg.Thresholds.HighConf = v
	}
	return cfg, nil
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
