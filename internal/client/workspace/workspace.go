// Package workspace composes the client core into one signed-in session:
// the edit surface, the document and snapshot caches, drafts, tabs and the
// optimistic folder/document mutations.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"prompthub/internal/client/api"
	"prompthub/internal/client/autosave"
	"prompthub/internal/client/doccache"
	"prompthub/internal/client/localstore"
	"prompthub/internal/client/snapshot"
	"prompthub/internal/client/tabs"
	"prompthub/internal/client/transition"
	"prompthub/internal/domain"
	"prompthub/internal/domain/models"
	"prompthub/internal/domain/models/docsystem"
	"prompthub/internal/id"
)

// ErrNotSignedIn is returned by actions that need a session.
var ErrNotSignedIn = &domain.UnauthorizedError{Message: "not signed in"}

// DefaultSnapshotRefresh is how often StartSync refetches the snapshot.
const DefaultSnapshotRefresh = 45 * time.Second

// Deps are the collaborators of a Workspace.
type Deps struct {
	Backend Backend
	Auth    Authenticator
	Local   *localstore.Store
	Drafts  DraftStore
	Logger  *slog.Logger
}

// Options tune a Workspace.
type Options struct {
	AutoSaveDelay   time.Duration
	SnapshotRefresh time.Duration
	// AfterFunc replaces the auto-save timer source.
	AfterFunc autosave.AfterFunc
	// OnView receives every view the edit surface should render.
	OnView func(View)
}

// Workspace is one user's session.
type Workspace struct {
	backend Backend
	auth    Authenticator
	local   *localstore.Store
	drafts  DraftStore
	logger  *slog.Logger
	refresh time.Duration

	cache  *doccache.Cache
	snap   *snapshot.Cache
	tabs   *tabs.Coordinator
	editor *Editor

	mu      sync.RWMutex
	session *api.Session
}

// New creates a signed-out workspace.
func New(deps Deps, opts Options) *Workspace {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	refresh := opts.SnapshotRefresh
	if refresh <= 0 {
		refresh = DefaultSnapshotRefresh
	}

	w := &Workspace{
		backend: deps.Backend,
		auth:    deps.Auth,
		local:   deps.Local,
		drafts:  deps.Drafts,
		logger:  logger,
		refresh: refresh,
		cache:   doccache.New(logger),
		snap:    snapshot.New(),
	}
	if deps.Local != nil {
		w.tabs = tabs.New(deps.Local, logger)
	} else {
		w.tabs = tabs.New(nil, logger)
	}

	w.editor = NewEditor(EditorConfig{
		Backend:       deps.Backend,
		Cache:         w.cache,
		Drafts:        deps.Drafts,
		Owner:         w.OwnerID,
		AutoSaveDelay: opts.AutoSaveDelay,
		AfterFunc:     opts.AfterFunc,
		Logger:        logger,
		Hooks: EditorHooks{
			OnView:  opts.OnView,
			OnDirty: w.onDirty,
			OnSaved: w.onSaved,
		},
	})
	return w
}

// Editor returns the edit surface model.
func (w *Workspace) Editor() *Editor { return w.editor }

// Tabs returns the tab coordinator.
func (w *Workspace) Tabs() *tabs.Coordinator { return w.tabs }

// Snapshot returns the workspace snapshot cache.
func (w *Workspace) Snapshot() *snapshot.Cache { return w.snap }

// User returns the signed-in user.
func (w *Workspace) User() (api.User, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.session == nil {
		return api.User{}, false
	}
	return w.session.User, true
}

// OwnerID returns the signed-in user's id, or "".
func (w *Workspace) OwnerID() string {
	u, _ := w.User()
	return u.ID
}

// Login signs in, loads the snapshot and restores this user's tabs. A live
// session is logged out first, so its pending edits are saved with its own
// credentials.
func (w *Workspace) Login(ctx context.Context, email, password string) Result[api.User] {
	if _, ok := w.User(); ok {
		if err := w.Logout(ctx).Err(); err != nil {
			w.logger.Warn("sign-out before switching user failed", "error", err)
		}
	}
	w.cache.Clear()
	w.snap.Reset()

	sess, err := w.auth.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return Err[api.User](err)
	}

	w.mu.Lock()
	w.session = sess
	w.mu.Unlock()
	w.backend.SetToken(sess.AccessToken)
	w.logger.Info("signed in", "user_id", sess.User.ID)

	if r := w.Refresh(ctx); !r.IsOk() {
		w.logger.Warn("initial snapshot failed", "error", r.Err())
	}

	w.tabs.SetOwner(sess.User.ID)
	if err := w.tabs.Restore(); err != nil {
		w.logger.Warn("failed to restore tabs", "error", err)
	}
	if r := w.CleanupTabs(ctx); !r.IsOk() {
		w.logger.Warn("tab cleanup failed", "error", r.Err())
	}
	w.followActiveTab(ctx)

	return Ok(sess.User)
}

// Logout flushes pending edits, drops every cached document and the tab
// strip, then revokes the session. Local state is cleared before the
// sign-out request is sent.
func (w *Workspace) Logout(ctx context.Context) Result[struct{}] {
	w.editor.Close(ctx)
	w.cache.Clear()
	w.snap.Reset()
	w.tabs.Reset()
	w.tabs.SetOwner("")

	w.mu.Lock()
	sess := w.session
	w.session = nil
	w.mu.Unlock()
	w.backend.SetToken("")

	if sess == nil {
		return Ok(struct{}{})
	}
	if err := w.auth.SignOut(ctx, sess.AccessToken); err != nil {
		return Err[struct{}](err)
	}
	w.logger.Info("signed out", "user_id", sess.User.ID)
	return Ok(struct{}{})
}

// Refresh refetches the workspace snapshot.
func (w *Workspace) Refresh(ctx context.Context) Result[time.Time] {
	if _, ok := w.User(); !ok {
		return Err[time.Time](ErrNotSignedIn)
	}
	snap, err := w.backend.Snapshot(ctx)
	if err != nil {
		return Err[time.Time](err)
	}
	w.snap.Hydrate(*snap)
	return Ok(w.snap.LoadedAt())
}

// StartSync refreshes the snapshot every refresh interval until ctx is done
// or stop is called.
func (w *Workspace) StartSync(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(w.refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, ok := w.User(); !ok {
					continue
				}
				if r := w.Refresh(ctx); !r.IsOk() && !errors.Is(r.Err(), context.Canceled) {
					w.logger.Warn("background snapshot refresh failed", "error", r.Err())
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// LoadFolder refetches the document listing of one folder.
func (w *Workspace) LoadFolder(ctx context.Context, folderID string) Result[[]docsystem.DocumentSummary] {
	docs, err := w.backend.ListDocuments(ctx, folderID)
	if err != nil {
		return Err[[]docsystem.DocumentSummary](err)
	}
	w.snap.SetDocumentsForFolder(folderID, docs)
	return Ok(w.snap.DocumentsIn(folderID))
}

// Open opens docID in a permanent tab and makes it live.
func (w *Workspace) Open(ctx context.Context, docID string) Result[tabs.Tab] {
	return w.open(ctx, docID, false)
}

// Preview opens docID in the preview tab and makes it live.
func (w *Workspace) Preview(ctx context.Context, docID string) Result[tabs.Tab] {
	return w.open(ctx, docID, true)
}

func (w *Workspace) open(ctx context.Context, docID string, preview bool) Result[tabs.Tab] {
	if _, ok := w.User(); !ok {
		return Err[tabs.Tab](ErrNotSignedIn)
	}
	req := tabs.OpenRequest{Kind: tabs.KindDocument, DocumentID: docID, Preview: preview, Title: docsystem.UntitledDisplayTitle}
	if summary, ok := w.snap.Document(docID); ok {
		req.FolderID = summary.FolderID
		req.Title = summary.DisplayTitle()
	}
	tab := w.tabs.Open(req)

	err := w.editor.Select(ctx, docID)
	switch {
	case err == nil, errors.Is(err, transition.ErrStaleResult):
		return Ok(tab)
	case errors.Is(err, domain.ErrNotFound):
		w.forgetDocument(ctx, docID)
		return Err[tabs.Tab](err)
	default:
		return Err[tabs.Tab](err)
	}
}

// ReorderTabs moves the named tabs to the front in the given order.
func (w *Workspace) ReorderTabs(tabIDs []string) Result[[]tabs.Tab] {
	for _, id := range tabIDs {
		if _, ok := w.tabs.Get(id); !ok {
			return Err[[]tabs.Tab](fmt.Errorf("reorder %s: %w", id, tabs.ErrTabNotFound))
		}
	}
	w.tabs.Reorder(tabIDs)
	return Ok(w.tabs.Tabs())
}

// ActivateTab focuses tabID and makes its document live.
func (w *Workspace) ActivateTab(ctx context.Context, tabID string) Result[tabs.Tab] {
	if err := w.tabs.Activate(tabID); err != nil {
		return Err[tabs.Tab](err)
	}
	tab, _ := w.tabs.Get(tabID)
	if tab.Kind != tabs.KindDocument {
		w.editor.Close(ctx)
		return Ok(tab)
	}
	if err := w.editor.Select(ctx, tab.DocumentID); err != nil && !errors.Is(err, transition.ErrStaleResult) {
		return Err[tabs.Tab](err)
	}
	return Ok(tab)
}

// CloseTab closes tabID. A new, unsaved document needs force.
func (w *Workspace) CloseTab(ctx context.Context, tabID string, force bool) Result[struct{}] {
	tab, ok := w.tabs.Get(tabID)
	if !ok {
		return Err[struct{}](tabs.ErrTabNotFound)
	}
	if !force && w.tabs.ShouldConfirmClose(tabID) {
		return Err[struct{}](tabs.ErrConfirmClose)
	}
	if tab.Kind == tabs.KindDocument && w.editor.DocID() == tab.DocumentID {
		w.editor.Flush()
	}
	if err := w.tabs.Close(tabID, force); err != nil {
		return Err[struct{}](err)
	}
	w.followActiveTab(ctx)
	return Ok(struct{}{})
}

// Edit changes the live document's content.
func (w *Workspace) Edit(ctx context.Context, content string) Result[View] {
	if err := w.editor.Edit(ctx, content); err != nil {
		return Err[View](err)
	}
	return Ok(w.editor.View())
}

// SetTitle changes the live document's working title.
func (w *Workspace) SetTitle(ctx context.Context, title string) Result[View] {
	if err := w.editor.SetTitle(ctx, title); err != nil {
		return Err[View](err)
	}
	return Ok(w.editor.View())
}

// SaveVersion records an explicit version of the live document.
func (w *Workspace) SaveVersion(ctx context.Context, title string) Result[int64] {
	versionID, err := w.editor.SaveVersion(ctx, title)
	if err != nil {
		return Err[int64](err)
	}
	return Ok(versionID)
}

// CreateFolder creates a folder, showing it immediately under a temporary id.
func (w *Workspace) CreateFolder(ctx context.Context, name string, parentID *string) Result[docsystem.Folder] {
	tmp := docsystem.Folder{ID: id.NewTemp(), OwnerID: w.OwnerID(), ParentID: parentID, Name: name}
	return optimistic(ctx, mutation[docsystem.Folder]{
		apply: func() { w.snap.UpsertFolder(tmp) },
		call: func(ctx context.Context) (docsystem.Folder, error) {
			f, err := w.backend.CreateFolder(ctx, name, parentID)
			if err != nil {
				return docsystem.Folder{}, err
			}
			return *f, nil
		},
		commit: func(f docsystem.Folder) {
			w.snap.RemoveFolder(tmp.ID)
			w.snap.UpsertFolder(f)
		},
		rollback: func() { w.snap.RemoveFolder(tmp.ID) },
	})
}

// RenameFolder renames a folder, showing the new name immediately.
func (w *Workspace) RenameFolder(ctx context.Context, folderID, name string) Result[docsystem.Folder] {
	prev, known := w.snap.Folder(folderID)
	return optimistic(ctx, mutation[docsystem.Folder]{
		apply: func() {
			if known {
				next := prev
				next.Name = name
				w.snap.UpsertFolder(next)
			}
		},
		call: func(ctx context.Context) (docsystem.Folder, error) {
			f, err := w.backend.RenameFolder(ctx, folderID, name)
			if err != nil {
				return docsystem.Folder{}, err
			}
			return *f, nil
		},
		commit: func(f docsystem.Folder) { w.snap.UpsertFolder(f) },
		rollback: func() {
			if known {
				w.snap.UpsertFolder(prev)
			}
		},
	})
}

// DeleteFolder deletes a folder with its subtree, hiding it immediately.
// Tabs of every removed document are closed.
func (w *Workspace) DeleteFolder(ctx context.Context, folderID string) Result[docsystem.FolderDeletion] {
	folders, docs := w.snap.Subtree(folderID)
	return optimistic(ctx, mutation[docsystem.FolderDeletion]{
		apply: func() { w.snap.RemoveFolder(folderID) },
		call: func(ctx context.Context) (docsystem.FolderDeletion, error) {
			del, err := w.backend.DeleteFolder(ctx, folderID)
			if err != nil {
				return docsystem.FolderDeletion{}, err
			}
			return *del, nil
		},
		commit: func(del docsystem.FolderDeletion) {
			gone := slices.Clone(del.DocumentIDs)
			for _, d := range docs {
				if !slices.Contains(gone, d.ID) {
					gone = append(gone, d.ID)
				}
			}
			for _, docID := range gone {
				w.forgetDocument(ctx, docID)
			}
		},
		rollback: func() {
			for _, f := range folders {
				w.snap.UpsertFolder(f)
			}
			for _, d := range docs {
				w.snap.UpsertDocument(d)
			}
		},
	})
}

// CreateDocument creates a document in folderID and opens it as a new document.
func (w *Workspace) CreateDocument(ctx context.Context, folderID string, title *string) Result[docsystem.Document] {
	tmp := docsystem.DocumentSummary{ID: id.NewTemp(), FolderID: folderID, Title: title, UpdatedAt: time.Now().UTC()}
	res := optimistic(ctx, mutation[docsystem.Document]{
		apply: func() { w.snap.UpsertDocument(tmp) },
		call: func(ctx context.Context) (docsystem.Document, error) {
			doc, err := w.backend.CreateDocument(ctx, folderID, title, "")
			if err != nil {
				return docsystem.Document{}, err
			}
			return *doc, nil
		},
		commit: func(doc docsystem.Document) {
			w.snap.RemoveDocument(tmp.ID)
			w.snap.UpsertDocument(doc.Summary())
			w.cache.Put(w.OwnerID(), doc.ID, doccache.Entry{
				Document:    doc,
				Title:       doc.TitleOrEmpty(),
				Content:     doc.Content,
				LastSavedAt: doc.UpdatedAt,
			})
		},
		rollback: func() { w.snap.RemoveDocument(tmp.ID) },
	})

	doc, err := res.Unwrap()
	if err != nil {
		return res
	}
	w.tabs.Open(tabs.OpenRequest{
		Kind:        tabs.KindDocument,
		DocumentID:  doc.ID,
		FolderID:    doc.FolderID,
		Title:       doc.Summary().DisplayTitle(),
		NewDocument: true,
	})
	if err := w.editor.Select(ctx, doc.ID); err != nil && !errors.Is(err, transition.ErrStaleResult) {
		w.logger.Warn("failed to open new document", "doc_id", doc.ID, "error", err)
	}
	return res
}

// RenameDocument renames a document, showing the new title immediately.
func (w *Workspace) RenameDocument(ctx context.Context, docID, title string) Result[docsystem.Document] {
	prev, known := w.snap.Document(docID)
	return optimistic(ctx, mutation[docsystem.Document]{
		apply: func() {
			if known {
				t := title
				w.snap.RenameDocument(docID, &t)
			}
		},
		call: func(ctx context.Context) (docsystem.Document, error) {
			doc, err := w.backend.RenameDocument(ctx, docID, title)
			if err != nil {
				return docsystem.Document{}, err
			}
			return *doc, nil
		},
		commit: func(doc docsystem.Document) {
			w.snap.UpsertDocument(doc.Summary())
			newTitle := doc.TitleOrEmpty()
			w.tabs.RetitleDocument(docID, docsystem.DisplayTitle(newTitle))
			if e, ok := w.cache.Get(w.OwnerID(), docID); ok {
				e.Title = newTitle
				e.Document.Title = doc.Title
				w.cache.Put(w.OwnerID(), docID, e)
			}
			w.editor.RetitleExternally(docID, newTitle)
		},
		rollback: func() {
			if known {
				w.snap.UpsertDocument(prev)
			}
		},
	})
}

// DeleteDocument deletes a document, hiding it immediately and closing its tabs.
func (w *Workspace) DeleteDocument(ctx context.Context, docID string) Result[struct{}] {
	prev, known := w.snap.Document(docID)
	return optimistic(ctx, mutation[struct{}]{
		apply: func() { w.snap.RemoveDocument(docID) },
		call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, w.backend.DeleteDocument(ctx, docID)
		},
		commit: func(struct{}) { w.forgetDocument(ctx, docID) },
		rollback: func() {
			if known {
				w.snap.UpsertDocument(prev)
			}
		},
	})
}

// CleanupTabs closes tabs whose documents no longer exist and returns the
// closed tab ids.
func (w *Workspace) CleanupTabs(ctx context.Context) Result[[]string] {
	var check, keep []string
	for _, docID := range w.tabs.DocumentIDs() {
		if id.IsTemp(docID) {
			keep = append(keep, docID)
			continue
		}
		check = append(check, docID)
	}
	if len(check) == 0 {
		return Ok[[]string](nil)
	}

	valid, err := w.backend.ValidateDocuments(ctx, check)
	if err != nil {
		return Err[[]string](err)
	}
	keep = append(keep, valid...)

	for _, docID := range check {
		if !slices.Contains(valid, docID) {
			w.cache.Delete(docID)
		}
	}
	closed := w.tabs.Prune(keep)
	if len(closed) > 0 {
		w.logger.Info("closed tabs for missing documents", "count", len(closed))
		w.followActiveTab(ctx)
	}
	return Ok(closed)
}

// DiscardDrafts drops every locally stored draft.
func (w *Workspace) DiscardDrafts(ctx context.Context) Result[struct{}] {
	if err := w.drafts.ClearAll(ctx); err != nil {
		return Err[struct{}](err)
	}
	return Ok(struct{}{})
}

// Versions lists a document's versions.
func (w *Workspace) Versions(ctx context.Context, docID string) Result[[]docsystem.Version] {
	v, err := w.backend.ListVersions(ctx, docID)
	if err != nil {
		return Err[[]docsystem.Version](err)
	}
	return Ok(v)
}

// Version loads one version with its content.
func (w *Workspace) Version(ctx context.Context, docID string, versionID int64) Result[docsystem.VersionContent] {
	v, err := w.backend.GetVersion(ctx, docID, versionID)
	if err != nil {
		return Err[docsystem.VersionContent](err)
	}
	return Ok(*v)
}

// Dashboard loads workspace totals.
func (w *Workspace) Dashboard(ctx context.Context) Result[docsystem.DashboardMetrics] {
	m, err := w.backend.Dashboard(ctx)
	if err != nil {
		return Err[docsystem.DashboardMetrics](err)
	}
	return Ok(*m)
}

// Tree loads the nested folder tree.
func (w *Workspace) Tree(ctx context.Context) Result[docsystem.TreeNode] {
	t, err := w.backend.Tree(ctx)
	if err != nil {
		return Err[docsystem.TreeNode](err)
	}
	return Ok(*t)
}

// Profile loads the caller's profile.
func (w *Workspace) Profile(ctx context.Context) Result[models.Profile] {
	p, err := w.backend.Profile(ctx)
	if err != nil {
		return Err[models.Profile](err)
	}
	return Ok(*p)
}

// SetDisplayName updates the display name; nil clears it.
func (w *Workspace) SetDisplayName(ctx context.Context, name *string) Result[models.Profile] {
	p, err := w.backend.UpdateDisplayName(ctx, name)
	if err != nil {
		return Err[models.Profile](err)
	}
	return Ok(*p)
}

// Close saves pending edits and idles the editor.
func (w *Workspace) Close(ctx context.Context) {
	w.editor.Close(ctx)
}

// forgetDocument removes every local trace of a deleted document.
func (w *Workspace) forgetDocument(ctx context.Context, docID string) {
	w.snap.RemoveDocument(docID)
	w.cache.Delete(docID)
	if err := w.drafts.Clear(ctx, docID); err != nil {
		w.logger.Warn("failed to clear draft", "doc_id", docID, "error", err)
	}
	if closed := w.tabs.CloseByDocument(docID); len(closed) > 0 || w.editor.DocID() == docID {
		w.followActiveTab(ctx)
	}
}

// followActiveTab makes the editor show the focused tab's document.
func (w *Workspace) followActiveTab(ctx context.Context) {
	sel := w.tabs.Selection()
	if sel.DocumentID == "" {
		if w.editor.DocID() != "" {
			w.editor.Close(ctx)
		}
		return
	}
	if w.editor.DocID() == sel.DocumentID {
		return
	}
	if err := w.editor.Select(ctx, sel.DocumentID); err != nil && !errors.Is(err, transition.ErrStaleResult) {
		w.logger.Warn("failed to load active tab", "doc_id", sel.DocumentID, "error", err)
	}
}

func (w *Workspace) onDirty(docID string, dirty bool) {
	for _, t := range w.tabs.Tabs() {
		if t.Kind == tabs.KindDocument && t.DocumentID == docID {
			_ = w.tabs.SetDirty(t.ID, dirty)
		}
	}
}

func (w *Workspace) onSaved(docID, title string, explicit bool) {
	if strings.TrimSpace(title) != "" {
		t := title
		w.snap.RenameDocument(docID, &t)
	}
	w.tabs.RetitleDocument(docID, docsystem.DisplayTitle(title))
	if !explicit {
		return
	}
	for _, t := range w.tabs.Tabs() {
		if t.Kind == tabs.KindDocument && t.DocumentID == docID {
			_ = w.tabs.MarkSaved(t.ID)
		}
	}
}
