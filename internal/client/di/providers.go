package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samber/do/v2"

	"prompthub/internal/client/api"
	"prompthub/internal/client/draft"
	"prompthub/internal/client/localstore"
	"prompthub/internal/client/workspace"
	"prompthub/internal/config"
)

const shutdownTimeout = 10 * time.Second

// Logger is the client's structured logger. It writes to a log file under
// the data directory so it never interleaves with the REPL.
type Logger struct {
	*slog.Logger
	file *os.File
}

// Shutdown implements do.Shutdownable.
func (l *Logger) Shutdown() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ProvideLogger provides a text logger at the configured level. When no log
// file can be created it falls back to stderr.
func ProvideLogger(i do.Injector) (*Logger, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	f, err := config.OpenLogFile(cfg.LogDir(), "workspace", config.MaxClientLogFiles)
	if err != nil {
		l := slog.New(slog.NewTextHandler(os.Stderr, opts))
		l.Warn("logging to stderr", "error", err)
		return &Logger{Logger: l}, nil
	}
	l := slog.New(slog.NewTextHandler(f, opts))
	l.Info("workspace client starting", "api_url", cfg.APIURL, "draft_backend", cfg.DraftBackend)
	return &Logger{Logger: l, file: f}, nil
}

// LocalStoreHandle wraps the badger store with shutdown capability.
type LocalStoreHandle struct {
	*localstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *LocalStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideLocalStore opens the on-disk store under the data directory.
func ProvideLocalStore(i do.Injector) (*LocalStoreHandle, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	log := do.MustInvoke[*Logger](i)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := localstore.Open(cfg.DataDir, log.Logger)
	if err != nil {
		return nil, err
	}
	return &LocalStoreHandle{Store: store}, nil
}

// DraftStoreHandle is the configured draft backend.
type DraftStoreHandle struct {
	workspace.DraftStore
	close func() error
}

// Shutdown implements do.Shutdownable.
func (h *DraftStoreHandle) Shutdown() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// ProvideDraftStore picks the badger or redis draft backend.
func ProvideDraftStore(i do.Injector) (*DraftStoreHandle, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	log := do.MustInvoke[*Logger](i)

	switch cfg.DraftBackend {
	case config.DraftBackendRedis:
		rs, err := draft.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Debug("drafts stored in redis")
		return &DraftStoreHandle{DraftStore: rs, close: rs.Close}, nil
	default:
		local := do.MustInvoke[*LocalStoreHandle](i)
		return &DraftStoreHandle{DraftStore: draft.NewBadgerStore(local.Store)}, nil
	}
}

// ProvideAPIClient provides the PromptHub API client.
func ProvideAPIClient(i do.Injector) (*api.Client, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	log := do.MustInvoke[*Logger](i)
	return api.NewClient(cfg.APIURL, log.Logger), nil
}

// ProvideAuthClient provides the Supabase Auth client.
func ProvideAuthClient(i do.Injector) (*api.AuthClient, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	if cfg.SupabaseURL == "" {
		return nil, errors.New("supabase_url is not configured")
	}
	return api.NewAuthClient(cfg.SupabaseURL, cfg.SupabaseAnonKey), nil
}

// WorkspaceHandle owns the session and its background snapshot sync.
type WorkspaceHandle struct {
	*workspace.Workspace
	stopSync func()
}

// Shutdown implements do.Shutdownable. Pending edits are saved first.
func (h *WorkspaceHandle) Shutdown() error {
	h.stopSync()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	h.Close(ctx)
	return nil
}

// ProvideWorkspace provides the workspace session and starts snapshot sync.
func ProvideWorkspace(i do.Injector) (*WorkspaceHandle, error) {
	cfg := do.MustInvoke[*config.ClientConfig](i)
	log := do.MustInvoke[*Logger](i)
	local := do.MustInvoke[*LocalStoreHandle](i)
	drafts := do.MustInvoke[*DraftStoreHandle](i)
	client := do.MustInvoke[*api.Client](i)
	auth := do.MustInvoke[*api.AuthClient](i)

	ws := workspace.New(workspace.Deps{
		Backend: client,
		Auth:    auth,
		Local:   local.Store,
		Drafts:  drafts,
		Logger:  log.Logger,
	}, workspace.Options{
		AutoSaveDelay:   cfg.AutoSaveDelay,
		SnapshotRefresh: cfg.SnapshotRefresh,
	})
	stop := ws.StartSync(context.Background())
	return &WorkspaceHandle{Workspace: ws, stopSync: stop}, nil
}

func recoverError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
