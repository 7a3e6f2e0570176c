package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		mutate    func(*Config)
		expectErr bool
	}{
		{
			name:   "no flags keeps defaults",
			mutate: func(*Config) {},
		},
		{
			name: "all flags",
			args: []string{"-a", ":7000", "-d", "postgres://x", "-m", "20", "-l", "debug",
				"-log-file", "/tmp/s.log", "-rt", "1", "-wt", "2", "-st", "3"},
			mutate: func(c *Config) {
				c.Address = ":7000"
				c.DatabaseDSN = "postgres://x"
				c.PullLimitMax = 20
				c.LogLevel = "debug"
				c.LogFile = "/tmp/s.log"
				c.ReadTimeout = time.Second
				c.WriteTimeout = 2 * time.Second
				c.ShutdownTimeout = 3 * time.Second
			},
		},
		{
			name:   "unknown flags ignored",
			args:   []string{"-x", "1", "--verbose", "-a=:7001"},
			mutate: func(c *Config) { c.Address = ":7001" },
		},
		{
			name:      "bad number",
			args:      []string{"-m", "many"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Config
			got.LoadDefaults()
			err := parseFlags(&got, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			var want Config
			want.LoadDefaults()
			tt.mutate(&want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}
