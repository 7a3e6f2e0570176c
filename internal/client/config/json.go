package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kentxun/anymind/internal/flagx"
	"github.com/kentxun/anymind/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so the file may hold "30s" or integer nanoseconds.
type JSONConfig struct {
	DataDir         string         `json:"data_dir"`
	DBFile          string         `json:"db_file"`
	ServerURL       string         `json:"server_url"`
	SpaceID         string         `json:"space_id"`
	SpaceSecret     string         `json:"space_secret"`
	DeviceID        string         `json:"device_id"`
	SyncEnabled     bool           `json:"sync_enabled"`
	SyncInterval    timex.Duration `json:"sync_interval"`
	HTTPTimeout     timex.Duration `json:"http_timeout"`
	PullLimit       int            `json:"pull_limit"`
	LogFile         string         `json:"log_file"`
	LogLevel        string         `json:"log_level"`
	BackupBucket    string         `json:"backup_bucket"`
	BackupRegion    string         `json:"backup_region"`
	BackupEndpoint  string         `json:"backup_endpoint"`
	BackupPrefix    string         `json:"backup_prefix"`
	BackupAccessKey string         `json:"backup_access_key"`
	BackupSecretKey string         `json:"backup_secret_key"`
}

func toJSON(c *Config) JSONConfig {
	return JSONConfig{
		DataDir:         c.DataDir,
		DBFile:          c.DBFile,
		ServerURL:       c.ServerURL,
		SpaceID:         c.SpaceID,
		SpaceSecret:     c.SpaceSecret,
		DeviceID:        c.DeviceID,
		SyncEnabled:     c.SyncEnabled,
		SyncInterval:    timex.Duration{Duration: c.SyncInterval},
		HTTPTimeout:     timex.Duration{Duration: c.HTTPTimeout},
		PullLimit:       c.PullLimit,
		LogFile:         c.LogFile,
		LogLevel:        c.LogLevel,
		BackupBucket:    c.BackupBucket,
		BackupRegion:    c.BackupRegion,
		BackupEndpoint:  c.BackupEndpoint,
		BackupPrefix:    c.BackupPrefix,
		BackupAccessKey: c.BackupAccessKey,
		BackupSecretKey: c.BackupSecretKey,
	}
}

func (jc JSONConfig) apply(c *Config) {
	c.DataDir = jc.DataDir
	c.DBFile = jc.DBFile
	c.ServerURL = jc.ServerURL
	c.SpaceID = jc.SpaceID
	c.SpaceSecret = jc.SpaceSecret
	c.DeviceID = jc.DeviceID
	c.SyncEnabled = jc.SyncEnabled
	c.SyncInterval = jc.SyncInterval.Duration
	c.HTTPTimeout = jc.HTTPTimeout.Duration
	c.PullLimit = jc.PullLimit
	c.LogFile = jc.LogFile
	c.LogLevel = jc.LogLevel
	c.BackupBucket = jc.BackupBucket
	c.BackupRegion = jc.BackupRegion
	c.BackupEndpoint = jc.BackupEndpoint
	c.BackupPrefix = jc.BackupPrefix
	c.BackupAccessKey = jc.BackupAccessKey
	c.BackupSecretKey = jc.BackupSecretKey
}

// parseJSON overlays cfg with the JSON file named by -c/-config in args or
// by $ANYMIND_CONFIG. Keys absent from the file keep their current value.
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
