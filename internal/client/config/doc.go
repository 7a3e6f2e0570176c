// Package config loads runtime configuration for the anymind CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config, or via $ANYMIND_CONFIG.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "30s"
// or integer nanoseconds:
//
//	{
//	  "data_dir": "~/.anymind",
//	  "server_url": "https://sync.example.org",
//	  "space_id": "spc_...",
//	  "space_secret": "sec_...",
//	  "sync_enabled": true,
//	  "sync_interval": "5m",
//	  "http_timeout": "30s",
//	  "pull_limit": 200,
//	  "backup_bucket": "anymind-backups"
//	}
package config
