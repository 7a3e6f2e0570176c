package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kentxun/anymind/internal/client/services"
	"github.com/kentxun/anymind/internal/common"
)

// Sync runs one reconciliation pass and prints its outcome.
func (a *App) Sync(ctx context.Context) error {
	res := a.sync.Sync(ctx, a.syncConfig())
	a.applyResult(ctx, res)

	switch res.Status {
	case services.SyncDisabled:
		fmt.Fprintln(a.out, "Sync is not configured; run 'connect' or 'space-create' first")
		return nil
	case services.SyncFailed:
		return errors.New(res.Message)
	}

	fmt.Fprintln(a.out, res.Message)
	if res.Conflicts > 0 {
		fmt.Fprintln(a.out, "Conflict copies are tagged #conflict: list --tags conflict")
	}
	return nil
}

// Connect asks for the server URL, space id and secret, stores them and
// enables sync.
func (a *App) Connect(ctx context.Context) error {
	cur := a.syncConfig()

	serverURL, err := GetDefaultText(a.reader, "Server URL", cur.ServerURL, a.out)
	if err != nil {
		return err
	}
	spaceID, err := GetDefaultText(a.reader, "Space id", cur.SpaceID, a.out)
	if err != nil {
		return err
	}
	secret, err := GetSecret("Space secret", a.out)
	if err != nil {
		return err
	}
	if serverURL == "" || spaceID == "" || secret == "" {
		return fmt.Errorf("server URL, space id and secret are required: %w", common.ErrSyncNotConfigured)
	}

	if err := a.connect(ctx, serverURL, spaceID, secret); err != nil {
		return err
	}

	if err := a.sync.Ping(ctx, a.syncConfig()); err != nil {
		a.setMode(ctx, ModeOffline)
		fmt.Fprintf(a.out, "Saved, but the server did not answer: %v\n", err)
		return nil
	}
	fmt.Fprintln(a.out, "Connected; run 'sync' to reconcile now")
	return nil
}

func (a *App) connect(ctx context.Context, serverURL, spaceID, secret string) error {
	if err := saveRemote(ctx, a.settings, serverURL, spaceID, secret); err != nil {
		return err
	}
	a.updateSyncConfig(func(c *services.SyncConfig) {
		c.Enabled = true
		c.ServerURL = serverURL
		c.SpaceID = spaceID
		c.SpaceSecret = secret
	})
	a.setMode(ctx, ModeOffline)
	return nil
}

// CreateSpace creates a space on the server and connects to it. The secret
// is printed once so other devices can connect.
func (a *App) CreateSpace(ctx context.Context, args []string) error {
	serverURL := a.syncConfig().ServerURL
	if serverURL == "" {
		v, err := GetSimpleText(a.reader, "Server URL", a.out)
		if err != nil {
			return err
		}
		serverURL = v
	}

	sp, err := a.sync.CreateSpace(ctx, serverURL, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := a.connect(ctx, serverURL, sp.ID, sp.Secret); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Space created: %s\nSecret (shown once, keep it to connect other devices): %s\n", sp.ID, sp.Secret)
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	key, err := a.backup.Backup(ctx)
	if err != nil {
		if errors.Is(err, common.ErrSyncNotConfigured) {
			return fmt.Errorf("backup is not configured; set backup_bucket: %w", err)
		}
		return err
	}
	fmt.Fprintf(a.out, "Backup uploaded: %s\n", key)
	return nil
}

// Status prints the sync settings and the last pass. The secret is never
// printed.
func (a *App) Status(ctx context.Context) error {
	cfg := a.syncConfig()

	secret := "not set"
	if cfg.SpaceSecret != "" {
		secret = "set"
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Mode:\t%s\n", a.currentMode())
	fmt.Fprintf(tw, "Sync enabled:\t%t\n", cfg.Enabled)
	fmt.Fprintf(tw, "Server:\t%s\n", valueOr(cfg.ServerURL, "not set"))
	fmt.Fprintf(tw, "Space:\t%s\n", valueOr(cfg.SpaceID, "not set"))
	fmt.Fprintf(tw, "Secret:\t%s\n", secret)
	fmt.Fprintf(tw, "Device:\t%s\n", cfg.DeviceID)

	if last := a.sync.LastResult(); last != nil {
		fmt.Fprintf(tw, "Last sync:\t%s at %s\n", last.Status, last.At.Local().Format(listTimeLayout))
		fmt.Fprintf(tw, "\t%s\n", last.Message)
		fmt.Fprintf(tw, "Cursor:\t%d\n", last.Cursor)
	} else {
		fmt.Fprintf(tw, "Last sync:\tnever\n")
	}
	return tw.Flush()
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
