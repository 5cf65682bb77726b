package docsystem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "prompthub/internal/domain/models/docsystem"
	docsysSvc "prompthub/internal/domain/services/docsystem"
)

func TestGetSnapshot(t *testing.T) {
	ts := newTestServices()
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	ts.workspace.(*workspaceService).now = func() time.Time { return fixed }

	folder := ts.mustFolder(t, "Prompts", nil)
	ts.mustDocument(t, folder.ID, strPtr("One"), "")
	ts.mustDocument(t, folder.ID, nil, "")

	snap, err := ts.workspace.GetSnapshot(context.Background(), testUser)
	require.NoError(t, err)
	assert.Len(t, snap.Folders, 1)
	assert.Len(t, snap.Documents, 2)
	assert.Equal(t, fixed.UTC(), snap.LoadedAt)
}

func TestGetDashboard(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()
	folder := ts.mustFolder(t, "Prompts", nil)
	ts.mustFolder(t, "Other", nil)

	var last *models.Document
	for i := 0; i < 6; i++ {
		last = ts.mustDocument(t, folder.ID, nil, "")
	}
	_, _, err := ts.documents.SaveVersion(ctx, testUser, last.ID, &docsysSvc.SaveVersionRequest{Title: "Latest", Content: "x"})
	require.NoError(t, err)

	metrics, err := ts.workspace.GetDashboard(ctx, testUser)
	require.NoError(t, err)

	assert.Equal(t, 6, metrics.TotalDocuments)
	assert.Equal(t, 2, metrics.TotalFolders)
	assert.Equal(t, 1, metrics.TotalVersions)
	require.Len(t, metrics.RecentlyUpdated, models.RecentLimit)
	assert.Equal(t, "Latest", metrics.RecentlyUpdated[0].Title)
	assert.Equal(t, models.RecentFallbackTitle, metrics.RecentlyUpdated[1].Title)
}
