package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/kentxun/anymind/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-m", "-l", "-log-file", "-rt", "-wt", "-st"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string        HTTP bind address (e.g., ":8080")
//	-d string        PostgreSQL DSN
//	-m int           max records per pull page
//	-l string        log level
//	-log-file string log file path (rotated)
//	-rt int          read timeout, seconds
//	-wt int          write timeout, seconds
//	-st int          shutdown timeout, seconds
//
// Arguments not listed above are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("anymind-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Address, "a", cfg.Address, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.IntVar(&cfg.PullLimitMax, "m", cfg.PullLimitMax, "max records per pull page")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file")
	rt := fs.Int("rt", int(cfg.ReadTimeout.Seconds()), "read timeout (in seconds)")
	wt := fs.Int("wt", int(cfg.WriteTimeout.Seconds()), "write timeout (in seconds)")
	st := fs.Int("st", int(cfg.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.ReadTimeout = time.Duration(*rt) * time.Second
	cfg.WriteTimeout = time.Duration(*wt) * time.Second
	cfg.ShutdownTimeout = time.Duration(*st) * time.Second
	return nil
}
