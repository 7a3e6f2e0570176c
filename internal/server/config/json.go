package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kentxun/anymind/internal/flagx"
	"github.com/kentxun/anymind/internal/timex"
)

// JSONConfig is the on-disk form of Config. Timeouts use timex.Duration so
// the file may hold "15s" or integer nanoseconds.
type JSONConfig struct {
	Address         string         `json:"address"`
	DatabaseDSN     string         `json:"database_dsn"`
	PullLimitMax    int            `json:"pull_limit_max"`
	LogFile         string         `json:"log_file"`
	LogLevel        string         `json:"log_level"`
	ReadTimeout     timex.Duration `json:"read_timeout"`
	WriteTimeout    timex.Duration `json:"write_timeout"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
}

func toJSON(c *Config) JSONConfig {
	return JSONConfig{
		Address:         c.Address,
		DatabaseDSN:     c.DatabaseDSN,
		PullLimitMax:    c.PullLimitMax,
		LogFile:         c.LogFile,
		LogLevel:        c.LogLevel,
		ReadTimeout:     timex.Duration{Duration: c.ReadTimeout},
		WriteTimeout:    timex.Duration{Duration: c.WriteTimeout},
		ShutdownTimeout: timex.Duration{Duration: c.ShutdownTimeout},
	}
}

func (jc JSONConfig) apply(c *Config) {
	c.Address = jc.Address
	c.DatabaseDSN = jc.DatabaseDSN
	c.PullLimitMax = jc.PullLimitMax
	c.LogFile = jc.LogFile
	c.LogLevel = jc.LogLevel
	c.ReadTimeout = jc.ReadTimeout.Duration
	c.WriteTimeout = jc.WriteTimeout.Duration
	c.ShutdownTimeout = jc.ShutdownTimeout.Duration
}

// parseJSON overlays cfg with the JSON file named by -c/-config in args or
// by $ANYMIND_SERVER_CONFIG. Keys absent from the file keep their value.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args, EnvConfigFile)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := toJSON(cfg)
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}
