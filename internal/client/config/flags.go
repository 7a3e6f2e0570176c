package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/kentxun/anymind/internal/flagx"
)

var knownFlags = []string{
	"-d", "-db", "-s", "-space", "-device", "-sync", "-i", "-t", "-pull-limit",
	"-l", "-log-file", "-backup-bucket", "-backup-region", "-backup-endpoint", "-backup-prefix",
}

// parseFlags populates Config fields from command-line flags.
//
//	-d string             data directory
//	-db string            database file name (relative to -d) or absolute path
//	-s string             sync server URL
//	-space string         space id
//	-device string        device id
//	-sync                 enable automatic sync
//	-i int                auto sync interval in seconds
//	-t int                HTTP timeout in seconds
//	-pull-limit int       records per pull page
//	-l string             log level
//	-log-file string      log file path (rotated)
//	-backup-* string      S3 backup settings
//
// The space secret has no flag; it comes from the config file or the
// connect command. Unknown arguments are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("anymind", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DBFile, "db", cfg.DBFile, "database file")
	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "sync server URL")
	fs.StringVar(&cfg.SpaceID, "space", cfg.SpaceID, "space id")
	fs.StringVar(&cfg.DeviceID, "device", cfg.DeviceID, "device id")
	fs.BoolVar(&cfg.SyncEnabled, "sync", cfg.SyncEnabled, "enable automatic sync")
	interval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "auto sync interval (in seconds)")
	timeout := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")
	fs.IntVar(&cfg.PullLimit, "pull-limit", cfg.PullLimit, "records per pull page")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file")
	fs.StringVar(&cfg.BackupBucket, "backup-bucket", cfg.BackupBucket, "backup bucket")
	fs.StringVar(&cfg.BackupRegion, "backup-region", cfg.BackupRegion, "backup region")
	fs.StringVar(&cfg.BackupEndpoint, "backup-endpoint", cfg.BackupEndpoint, "backup endpoint")
	fs.StringVar(&cfg.BackupPrefix, "backup-prefix", cfg.BackupPrefix, "backup key prefix")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.SyncInterval = time.Duration(*interval) * time.Second
	cfg.HTTPTimeout = time.Duration(*timeout) * time.Second
	return nil
}
