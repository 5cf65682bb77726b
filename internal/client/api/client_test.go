package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompthub/internal/domain"
	"prompthub/internal/domain/models/docsystem"
)

type captured struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

type callLog struct {
	mu    sync.Mutex
	calls []captured
}

func (l *callLog) add(c captured) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
}

func (l *callLog) all() []captured {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]captured(nil), l.calls...)
}

func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*Client, *callLog) {
	t.Helper()
	calls := &callLog{}
	mux := http.NewServeMux()
	for pattern, h := range routes {
		h := h
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			c := captured{
				method: r.Method,
				path:   r.URL.Path,
				query:  r.URL.RawQuery,
				auth:   r.Header.Get("Authorization"),
			}
			if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
				assert.NoError(t, json.Unmarshal(raw, &c.body))
			}
			calls.add(c)
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL+"/", nil)
	client.SetToken("tok")
	return client, calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, detail string, extra map[string]any) {
	body := map[string]any{"type": "about:blank", "title": http.StatusText(status), "status": status, "detail": detail}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_GetDocumentSendsToken(t *testing.T) {
	title := "Greeting"
	client, calls := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/documents/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, docsystem.Document{ID: r.PathValue("id"), Title: &title, Content: "hello"})
		},
	})

	doc, err := client.GetDocument(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, "hello", doc.Content)
	require.Len(t, calls.all(), 1)
	assert.Equal(t, "Bearer tok", calls.all()[0].auth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	client, calls := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/dashboard": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, docsystem.DashboardMetrics{TotalDocuments: 3})
		},
	})
	client.SetToken("")

	m, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalDocuments)
	assert.Empty(t, calls.all()[0].auth)
}

func TestClient_SaveContentAndVersion(t *testing.T) {
	client, calls := newTestServer(t, map[string]http.HandlerFunc{
		"PUT /api/documents/{id}/content": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, docsystem.DocumentSummary{ID: r.PathValue("id")})
		},
		"POST /api/documents/{id}/versions": func(w http.ResponseWriter, r *http.Request) {
			title := "Greeting"
			writeJSON(w, http.StatusCreated, SaveVersionResult{
				VersionID: 7,
				Document:  &docsystem.Document{ID: r.PathValue("id"), Title: &title},
			})
		},
	})
	ctx := context.Background()

	_, err := client.SaveContent(ctx, "d1", "", "hello world")
	require.NoError(t, err)
	res, err := client.SaveVersion(ctx, "d1", "Greeting", "hello world")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.VersionID)
	assert.Equal(t, "Greeting", res.Document.TitleOrEmpty())

	require.Len(t, calls.all(), 2)
	assert.Equal(t, map[string]any{"title": "", "content": "hello world"}, calls.all()[0].body)
	assert.Equal(t, "/api/documents/d1/versions", calls.all()[1].path)
}

func TestClient_CreateDocumentOmitsNilTitle(t *testing.T) {
	client, calls := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/documents": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, docsystem.Document{ID: "new"})
		},
	})

	doc, err := client.CreateDocument(context.Background(), "f1", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "new", doc.ID)
	_, hasTitle := calls.all()[0].body["title"]
	assert.False(t, hasTitle)
	assert.Equal(t, "f1", calls.all()[0].body["folder_id"])
}

func TestClient_ListFoldersQuery(t *testing.T) {
	client, calls := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/folders": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []docsystem.Folder{{ID: "f1", Name: "Go"}})
		},
	})
	parent := "p 1"

	_, err := client.ListFolders(context.Background(), nil)
	require.NoError(t, err)
	folders, err := client.ListFolders(context.Background(), &parent)
	require.NoError(t, err)

	assert.Len(t, folders, 1)
	assert.Empty(t, calls.all()[0].query)
	assert.Equal(t, "parent_id=p+1", calls.all()[1].query)
}

func TestClient_DeleteFolderAndDocument(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"DELETE /api/folders/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, docsystem.FolderDeletion{FolderIDs: []string{"f1"}, DocumentIDs: []string{"d1", "d2"}})
		},
		"DELETE /api/documents/{id}": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
	})
	ctx := context.Background()

	del, err := client.DeleteFolder(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, del.DocumentIDs)
	assert.NoError(t, client.DeleteDocument(ctx, "d1"))
}

func TestClient_ValidateDocuments(t *testing.T) {
	client, calls := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/documents/validate": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string][]string{"valid_ids": {"a"}})
		},
	})

	valid, err := client.ValidateDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, valid)
	assert.Equal(t, []any{"a", "b"}, calls.all()[0].body["ids"])
}

func TestClient_Versions(t *testing.T) {
	client, calls := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/documents/{id}/versions": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []docsystem.Version{{ID: 2}, {ID: 1}})
		},
		"GET /api/documents/{id}/versions/{versionId}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, docsystem.VersionContent{Version: docsystem.Version{ID: 2}, Content: "hello world"})
		},
	})
	ctx := context.Background()

	versions, err := client.ListVersions(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	v, err := client.GetVersion(ctx, "d1", 2)
	require.NoError(t, err)
	assert.Equal(t, "hello world", v.Content)
	assert.Equal(t, "/api/documents/d1/versions/2", calls.all()[1].path)
}

func TestClient_ProfileUpdateSendsNull(t *testing.T) {
	client, calls := newTestServer(t, map[string]http.HandlerFunc{
		"PATCH /api/profile": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"email": "a@b.c"})
		},
	})

	p, err := client.UpdateDisplayName(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", p.Email)
	v, present := calls.all()[0].body["display_name"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"not found", http.StatusNotFound, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrNotFound)
			assert.Contains(t, err.Error(), "document not found")
		}},
		{"validation", http.StatusBadRequest, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrValidation)
		}},
		{"too large", http.StatusRequestEntityTooLarge, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrValidation)
		}},
		{"unauthorized", http.StatusUnauthorized, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		}},
		{"rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.True(t, IsTemporary(err))
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			assert.True(t, IsTemporary(err))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, map[string]http.HandlerFunc{
				"GET /api/documents/{id}": func(w http.ResponseWriter, r *http.Request) {
					writeProblem(w, tt.status, "document not found", nil)
				},
			})
			_, err := client.GetDocument(context.Background(), "d1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_RenameConflictProblem(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"PATCH /api/documents/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeProblem(w, http.StatusConflict, "a document titled 'foo' already exists in this folder",
				map[string]any{"resource_type": "document", "resource_id": "d9"})
		},
	})

	_, err := client.RenameDocument(context.Background(), "d1", "Foo")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "document", conflict.ResourceType)
	assert.Equal(t, "d9", conflict.ResourceID)
	assert.False(t, IsTemporary(err))
}

func TestClient_CreateConflictWithExistingResource(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/folders": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, docsystem.Folder{ID: "existing", Name: "Go"})
		},
	})

	_, err := client.CreateFolder(context.Background(), "go", nil)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "existing", conflict.ResourceID)
}

func TestClient_ContextCancelled(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/documents/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, docsystem.Document{})
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetDocument(ctx, "d1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsTemporary(err))
}

func TestClient_TransportErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(srv.URL, nil, WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := client.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, IsTemporary(err))
}
