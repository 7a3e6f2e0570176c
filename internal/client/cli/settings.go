package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/kentxun/anymind/internal/client/config"
	"github.com/kentxun/anymind/internal/client/repositories/metadata"
	"github.com/kentxun/anymind/internal/client/services"
)

// newDeviceID is a test seam for uuid.NewString.
var newDeviceID = uuid.NewString

// resolveSyncConfig merges settings stored by earlier sessions with the
// loaded configuration; non-empty configuration values win. A device id is
// generated and stored on first use.
func resolveSyncConfig(ctx context.Context, st SettingsStore, c *config.Config) (services.SyncConfig, error) {
	saved, err := st.Settings(ctx)
	if err != nil {
		return services.SyncConfig{}, fmt.Errorf("error loading settings: %w", err)
	}

	pick := func(v, key string) string {
		if v != "" {
			return v
		}
		return saved[key]
	}

	savedEnabled, _ := strconv.ParseBool(saved[metadata.KeySyncEnabled])

	cfg := services.SyncConfig{
		Enabled:     c.SyncEnabled || savedEnabled,
		ServerURL:   pick(c.ServerURL, metadata.KeyServerURL),
		SpaceID:     pick(c.SpaceID, metadata.KeySpaceID),
		SpaceSecret: pick(c.SpaceSecret, metadata.KeySpaceSecret),
		DeviceID:    pick(c.DeviceID, metadata.KeyDeviceID),
		PullLimit:   c.PullLimit,
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID = newDeviceID()
		if err := st.SaveSettings(ctx, map[string]string{metadata.KeyDeviceID: cfg.DeviceID}); err != nil {
			return services.SyncConfig{}, fmt.Errorf("error saving device id: %w", err)
		}
	}
	return cfg, nil
}

// saveRemote stores connection settings and enables sync.
func saveRemote(ctx context.Context, st SettingsStore, serverURL, spaceID, secret string) error {
	err := st.SaveSettings(ctx, map[string]string{
		metadata.KeyServerURL:   serverURL,
		metadata.KeySpaceID:     spaceID,
		metadata.KeySpaceSecret: secret,
		metadata.KeySyncEnabled: "true",
	})
	if err != nil {
		return fmt.Errorf("error saving connection settings: %w", err)
	}
	return nil
}
