package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/kentxun/anymind/internal/client/client"
	"github.com/kentxun/anymind/internal/client/config"
	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/client/services"
	"github.com/kentxun/anymind/internal/client/store"
	"github.com/kentxun/anymind/internal/filex"
	"github.com/kentxun/anymind/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "local"
)

// RecordAPI is the record surface the REPL drives.
type RecordAPI interface {
	Create(ctx context.Context, content string) (*models.Record, error)
	Update(ctx context.Context, id, content string) (*models.Record, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Record, error)
	List(ctx context.Context, q models.RecordQuery) ([]models.RecordSummary, error)
	Groups(ctx context.Context, mode models.GroupingMode) ([]models.GroupSummary, error)
	Tags(ctx context.Context) ([]models.TagSummary, error)
	SetSyncEnabled(ctx context.Context, id string, enabled bool) (*models.Record, error)
}

// SyncAPI is the reconciler surface the REPL drives.
type SyncAPI interface {
	Sync(ctx context.Context, cfg services.SyncConfig) services.SyncResult
	LastResult() *services.SyncResult
	CreateSpace(ctx context.Context, serverURL, name string) (*models.Space, error)
	Ping(ctx context.Context, cfg services.SyncConfig) error
}

type BackupAPI interface {
	Backup(ctx context.Context) (string, error)
}

// SettingsStore persists values collected interactively.
type SettingsStore interface {
	Settings(ctx context.Context) (map[string]string, error)
	SaveSettings(ctx context.Context, values map[string]string) error
}

type App struct {
	config   *config.Config
	records  RecordAPI
	sync     SyncAPI
	backup   BackupAPI
	settings SettingsStore
	log      logging.Logger
	closer   io.Closer

	reader *bufio.Reader
	out    io.Writer

	mu      sync.RWMutex
	syncCfg services.SyncConfig
	mode    Mode
}

// NewApp opens the local store under the configured data directory and
// builds the services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	dataDir, err := filex.EnsureDataDir(c.DataDir, config.AppName)
	if err != nil {
		return nil, fmt.Errorf("error preparing data directory: %w", err)
	}

	st, err := store.Open(ctx, c.DBPath(dataDir), log)
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}

	syncCfg, err := resolveSyncConfig(ctx, st, c)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	backupCfg := services.BackupConfig{
		Bucket:    c.BackupBucket,
		Region:    c.BackupRegion,
		Endpoint:  c.BackupEndpoint,
		Prefix:    c.BackupPrefix,
		AccessKey: c.BackupAccessKey,
		SecretKey: c.BackupSecretKey,
		DeviceID:  syncCfg.DeviceID,
	}

	httpClient := client.NewHTTPClient(c.HTTPTimeout)

	a := &App{
		config:   c,
		records:  services.NewRecordService(st),
		sync:     services.NewSyncService(st, httpClient, log),
		backup:   services.NewBackupService(st, backupCfg, log),
		settings: st,
		log:      log,
		closer:   st,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		syncCfg:  syncCfg,
	}
	a.mode = a.initialMode()
	return a, nil
}

// Run starts the auto sync ticker and blocks in the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closer != nil {
			_ = a.closer.Close()
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "anymind (type 'help' for commands)")

	if a.config != nil && a.config.SyncInterval > 0 {
		go a.StartAutoSync(ctx, a.config.SyncInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) syncConfig() services.SyncConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.syncCfg
}

func (a *App) updateSyncConfig(fn func(*services.SyncConfig)) {
	a.mu.Lock()
	fn(&a.syncCfg)
	a.mu.Unlock()
}

func (a *App) initialMode() Mode {
	if a.syncConfig().Configured() {
		return ModeOffline
	}
	return ModeDisabled
}

func (a *App) currentMode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "switched mode", "mode", string(mode))
	}
}

func (a *App) getStatus() string {
	if m := a.currentMode(); m != "" {
		return fmt.Sprintf("(%s)", m)
	}
	return ""
}

// applyResult maps a sync outcome to the connectivity mode.
func (a *App) applyResult(ctx context.Context, res services.SyncResult) {
	switch res.Status {
	case services.SyncOK:
		a.setMode(ctx, ModeOnline)
	case services.SyncFailed:
		a.setMode(ctx, ModeOffline)
	default:
		a.setMode(ctx, ModeDisabled)
	}
}

// StartAutoSync runs a reconciliation pass every interval while sync is
// configured. Passes share the reconciler lock with the manual command.
func (a *App) StartAutoSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.autoSync(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) autoSync(ctx context.Context) {
	cfg := a.syncConfig()
	if !cfg.Configured() {
		return
	}
	res := a.sync.Sync(ctx, cfg)
	a.applyResult(ctx, res)
	if res.Status == services.SyncFailed {
		a.log.Warn(ctx, "auto sync failed", "error", res.Err)
		return
	}
	a.log.Debug(ctx, "auto sync done", "pushed", res.Pushed, "pulled", res.Pulled, "cursor", res.Cursor)
}
