package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kentxun/anymind/internal/common"
)

// AppName names the default data directory.
const AppName = "anymind"

// EnvConfigFile names the environment variable consulted for the JSON file
// when neither -c nor -config is given.
const EnvConfigFile = "ANYMIND_CONFIG"

// Config holds runtime settings for the anymind CLI.
//
// Sync and backup fields left empty here may still be filled from settings
// the CLI stored in the database; values given here win.
type Config struct {
	DataDir string
	DBFile  string

	ServerURL    string
	SpaceID      string
	SpaceSecret  string
	DeviceID     string
	SyncEnabled  bool
	SyncInterval time.Duration
	HTTPTimeout  time.Duration
	PullLimit    int

	LogFile  string
	LogLevel string

	BackupBucket    string
	BackupRegion    string
	BackupEndpoint  string
	BackupPrefix    string
	BackupAccessKey string
	BackupSecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = ""
	c.DBFile = "anymind.db"
	c.SyncInterval = 5 * time.Minute
	c.HTTPTimeout = common.DefaultHTTPTimeout
	c.PullLimit = common.DefaultPullLimit
	c.LogLevel = "info"
	c.BackupPrefix = "anymind"
}

// DBPath joins the data directory and database file name. An absolute
// DBFile is returned as is.
func (c *Config) DBPath(dataDir string) string {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(dataDir, c.DBFile)
}

// Load constructs a Config from args: defaults, then the JSON file (if
// any), then flags. Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
