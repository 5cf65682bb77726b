package di

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompthub/internal/client/draft"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workspace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestBootstrap_BadgerDrafts(t *testing.T) {
	t.Setenv("PROMPTHUB_DATA_DIR", "")
	dataDir := filepath.Join(t.TempDir(), "data")
	path := writeConfig(t, "supabase_url: http://auth.example.com\ndata_dir: "+dataDir+"\n")

	injector := NewContainer(path)
	require.NoError(t, Bootstrap(injector))

	drafts := do.MustInvoke[*DraftStoreHandle](injector)
	assert.IsType(t, &draft.BadgerStore{}, drafts.DraftStore)
	ws := do.MustInvoke[*WorkspaceHandle](injector)
	_, signedIn := ws.User()
	assert.False(t, signedIn)

	_ = injector.Shutdown()
	logs, err := filepath.Glob(filepath.Join(dataDir, "logs", "workspace-*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestBootstrap_MissingAuthURL(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("PROMPTHUB_DATA_DIR", "")
	path := writeConfig(t, "data_dir: "+filepath.Join(t.TempDir(), "data")+"\n")

	injector := NewContainer(path)
	err := Bootstrap(injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supabase_url")
	_ = injector.Shutdown()
}

func TestBootstrap_BadConfig(t *testing.T) {
	path := writeConfig(t, "draft_backend: floppy\n")

	err := Bootstrap(NewContainer(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floppy")
}
