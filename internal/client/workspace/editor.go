package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"prompthub/internal/client/autosave"
	"prompthub/internal/client/doccache"
	"prompthub/internal/client/draft"
	"prompthub/internal/client/transition"
	"prompthub/internal/domain"
	"prompthub/internal/domain/models/docsystem"
)

// ErrNoDocument is returned by edits when no document is selected.
var ErrNoDocument = errors.New("no document selected")

// View is what the edit surface renders. Epoch changes on every switch; a
// surface must drop its internal state when it sees a new epoch.
type View struct {
	DocID       string
	Title       string
	Content     string
	State       transition.State
	Epoch       uint64
	Dirty       bool
	LastSavedAt time.Time
	Err         error
}

// EditorHooks let the owner mirror editor events elsewhere (tabs, snapshot).
// Hooks run without editor locks held.
type EditorHooks struct {
	// OnView sees every rendered view, in order.
	OnView func(View)
	// OnDirty reports dirty state changes of the live document.
	OnDirty func(docID string, dirty bool)
	// OnSaved runs after a save (auto or explicit) has been applied.
	OnSaved func(docID, title string, explicit bool)
}

// EditorConfig wires an Editor.
type EditorConfig struct {
	Backend       Backend
	Cache         *doccache.Cache
	Drafts        draft.Store
	Owner         func() string
	AutoSaveDelay time.Duration
	AfterFunc     autosave.AfterFunc
	Hooks         EditorHooks
	Logger        *slog.Logger
}

// Editor is the model behind the edit surface: one live document at a time,
// with drafts and auto-save gated on that document having fully loaded.
type Editor struct {
	backend Backend
	cache   *doccache.Cache
	drafts  draft.Store
	binding *draft.Binding
	ctrl    *transition.Controller
	saver   *autosave.Scheduler
	owner   func() string
	hooks   EditorHooks
	logger  *slog.Logger

	emitMu    sync.Mutex
	lastEpoch uint64

	mu           sync.Mutex
	view         View
	savedTitle   string
	savedContent string
	document     docsystem.Document
}

// NewEditor creates an idle editor.
func NewEditor(cfg EditorConfig) *Editor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Editor{
		backend: cfg.Backend,
		cache:   cfg.Cache,
		drafts:  cfg.Drafts,
		ctrl:    transition.New(logger),
		owner:   cfg.Owner,
		hooks:   cfg.Hooks,
		logger:  logger,
	}
	e.binding = draft.NewBinding(cfg.Drafts,
		draft.WithGate(e.ctrl.LoadedFor),
		draft.WithLogger(logger),
	)

	opts := []autosave.Option{
		autosave.WithGate(e.ctrl.LoadedFor),
		autosave.WithLogger(logger),
	}
	if cfg.AfterFunc != nil {
		opts = append(opts, autosave.WithAfterFunc(cfg.AfterFunc))
	}
	e.saver = autosave.New(cfg.AutoSaveDelay, e.autoSave, opts...)
	return e
}

// Select makes docID the live document. Selecting the live document again is
// a no-op unless its load failed. Display state is cleared before anything
// else happens. A cached document loads synchronously; otherwise
// Select blocks on the fetch and returns transition.ErrStaleResult if another
// Select overtook it.
func (e *Editor) Select(ctx context.Context, docID string) error {
	if docID == "" {
		e.Close(ctx)
		return nil
	}
	owner := e.owner()

	e.mu.Lock()
	if docID == e.view.DocID && e.view.State != transition.Failed {
		e.mu.Unlock()
		return nil
	}
	e.saver.Cancel()
	tok, loadCtx := e.ctrl.Begin(ctx, docID)
	e.view = View{DocID: docID, State: transition.Transitioning, Epoch: e.view.Epoch + 1}
	e.savedTitle, e.savedContent = "", ""
	e.document = docsystem.Document{}
	cleared := e.view

	entry, hit := e.cache.Get(owner, docID)
	if !hit {
		e.ctrl.MarkLoading(tok)
		e.view.State = transition.Loading
	}
	loading := e.view
	e.mu.Unlock()

	e.emit(cleared)
	if hit {
		return e.apply(ctx, tok, entry)
	}
	e.emit(loading)

	doc, err := e.backend.GetDocument(loadCtx, docID)
	if err == nil && doc.OwnerID != "" && doc.OwnerID != owner {
		err = &domain.NotFoundError{Message: "document not found"}
	}
	if err != nil {
		if !e.ctrl.IsCurrent(tok) {
			return transition.ErrStaleResult
		}
		e.mu.Lock()
		if !e.ctrl.Fail(tok, err) {
			e.mu.Unlock()
			return transition.ErrStaleResult
		}
		e.view.State = transition.Failed
		e.view.Err = err
		failed := e.view
		e.mu.Unlock()
		e.emit(failed)
		return err
	}

	return e.apply(ctx, tok, doccache.Entry{
		Document:    *doc,
		Title:       doc.TitleOrEmpty(),
		Content:     doc.Content,
		LastSavedAt: doc.UpdatedAt,
	})
}

// apply presents entry for tok. The draft key is switched before the title
// and content change, and the cache is only written once tok is known to be current.
func (e *Editor) apply(ctx context.Context, tok transition.Token, entry doccache.Entry) error {
	e.mu.Lock()
	if !e.ctrl.IsCurrent(tok) {
		e.mu.Unlock()
		e.logger.Debug("discarding stale document load", "doc_id", tok.DocID, "generation", tok.Generation)
		return transition.ErrStaleResult
	}

	content, err := e.binding.Load(ctx, tok.DocID, entry.Content)
	if err != nil {
		e.logger.Warn("failed to read draft", "doc_id", tok.DocID, "error", err)
	}
	e.cache.Put(e.owner(), tok.DocID, entry)

	e.document = entry.Document
	e.savedTitle = entry.Title
	e.savedContent = entry.Content
	e.view.Title = entry.Title
	e.view.Content = content
	e.view.LastSavedAt = entry.LastSavedAt
	e.view.Dirty = content != entry.Content
	// The surface remounts with the loaded value; that pass is a load, not an
	// edit, and it must consume the one-shot flag before edits are let through.
	if _, err := e.binding.Commit(ctx, content); err != nil {
		e.logger.Warn("draft pass failed", "doc_id", tok.DocID, "error", err)
	}
	e.view.State = transition.Loaded
	e.ctrl.Complete(tok)
	loaded := e.view
	recovered := loaded.Dirty
	e.mu.Unlock()

	e.emit(loaded)
	if recovered {
		e.notifyDirty(tok.DocID, true)
		e.saver.Schedule(autosave.Request{
			DocID:      tok.DocID,
			Title:      loaded.Title,
			Content:    loaded.Content,
			Generation: tok.Generation,
		})
	}
	return nil
}

// Edit replaces the content of the live document.
func (e *Editor) Edit(ctx context.Context, content string) error {
	return e.change(ctx, func(v *View) { v.Content = content }, true)
}

// SetTitle replaces the working title of the live document.
func (e *Editor) SetTitle(ctx context.Context, title string) error {
	return e.change(ctx, func(v *View) { v.Title = title }, false)
}

func (e *Editor) change(ctx context.Context, mutate func(*View), contentChanged bool) error {
	e.mu.Lock()
	docID := e.view.DocID
	if docID == "" {
		e.mu.Unlock()
		return ErrNoDocument
	}
	if !e.ctrl.LoadedFor(docID) {
		e.mu.Unlock()
		return transition.ErrTransitionInProgress
	}
	wasDirty := e.view.Dirty
	mutate(&e.view)
	e.view.Dirty = e.view.Content != e.savedContent || e.view.Title != e.savedTitle
	v := e.view
	gen := e.ctrl.Current().Generation
	// Drafted under the lock so a switch cannot rebind the key in between.
	if contentChanged {
		if _, err := e.binding.Commit(ctx, v.Content); err != nil {
			e.logger.Warn("failed to persist draft", "doc_id", docID, "error", err)
		}
	}
	e.mu.Unlock()

	e.emit(v)
	if v.Dirty != wasDirty {
		e.notifyDirty(docID, v.Dirty)
	}
	e.saver.Schedule(autosave.Request{DocID: docID, Title: v.Title, Content: v.Content, Generation: gen})
	return nil
}

// autoSave is the scheduler's save callback.
func (e *Editor) autoSave(ctx context.Context, req autosave.Request) error {
	summary, err := e.backend.SaveContent(ctx, req.DocID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Info("autosave target is gone", "doc_id", req.DocID)
			return nil
		}
		return err
	}

	e.mu.Lock()
	if cur := e.ctrl.Current(); cur.Generation != req.Generation || cur.DocID != req.DocID {
		e.mu.Unlock()
		e.logger.Debug("discarding stale autosave result", "doc_id", req.DocID, "generation", req.Generation)
		return nil
	}
	e.savedTitle = req.Title
	e.savedContent = req.Content
	e.view.LastSavedAt = summary.UpdatedAt
	e.document.Title = summary.Title
	e.document.Content = req.Content
	e.document.UpdatedAt = summary.UpdatedAt
	wasDirty := e.view.Dirty
	e.view.Dirty = e.view.Content != e.savedContent || e.view.Title != e.savedTitle
	e.cache.Put(e.owner(), req.DocID, doccache.Entry{
		Document:    e.document,
		Title:       req.Title,
		Content:     req.Content,
		LastSavedAt: summary.UpdatedAt,
	})
	v := e.view
	e.mu.Unlock()

	e.emit(v)
	if v.Dirty != wasDirty {
		e.notifyDirty(req.DocID, v.Dirty)
	}
	if e.hooks.OnSaved != nil {
		e.hooks.OnSaved(req.DocID, req.Title, false)
	}
	return nil
}

// SaveVersion records an explicit version of the live document under title.
// Blank and placeholder titles are rejected; no default is substituted.
func (e *Editor) SaveVersion(ctx context.Context, title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" || docsystem.IsPlaceholderTitle(title) {
		return 0, &domain.ValidationError{Message: "enter a title before saving a version"}
	}

	e.mu.Lock()
	docID := e.view.DocID
	if docID == "" {
		e.mu.Unlock()
		return 0, ErrNoDocument
	}
	if !e.ctrl.LoadedFor(docID) {
		e.mu.Unlock()
		return 0, transition.ErrTransitionInProgress
	}
	content := e.view.Content
	gen := e.ctrl.Current().Generation
	e.mu.Unlock()

	e.saver.Cancel()
	res, err := e.backend.SaveVersion(ctx, docID, title, content)
	if err != nil {
		return 0, fmt.Errorf("save version: %w", err)
	}

	if err := e.drafts.Clear(ctx, docID); err != nil {
		e.logger.Warn("failed to clear draft", "doc_id", docID, "error", err)
	}

	doc := docsystem.Document{ID: docID}
	if res.Document != nil {
		doc = *res.Document
	}
	doc.Content = content
	e.cache.Put(e.owner(), docID, doccache.Entry{
		Document:    doc,
		Title:       title,
		Content:     content,
		LastSavedAt: doc.UpdatedAt,
	})

	e.mu.Lock()
	var v View
	current := e.ctrl.Current().Generation == gen
	if current {
		e.document = doc
		e.savedTitle = title
		e.savedContent = content
		e.view.Title = title
		e.view.LastSavedAt = doc.UpdatedAt
		e.view.Dirty = e.view.Content != content
		v = e.view
	}
	e.mu.Unlock()

	if current {
		e.emit(v)
		e.notifyDirty(docID, v.Dirty)
	}
	if e.hooks.OnSaved != nil {
		e.hooks.OnSaved(docID, title, true)
	}
	return res.VersionID, nil
}

// RetitleExternally applies a rename made outside the editor to the live document.
func (e *Editor) RetitleExternally(docID, title string) {
	e.mu.Lock()
	if e.view.DocID != docID || !e.ctrl.LoadedFor(docID) {
		e.mu.Unlock()
		return
	}
	if e.view.Title == e.savedTitle {
		e.view.Title = title
	}
	e.savedTitle = title
	t := title
	e.document.Title = &t
	v := e.view
	e.mu.Unlock()
	e.emit(v)
}

// Flush runs a pending auto-save now.
func (e *Editor) Flush() bool {
	return e.saver.Flush()
}

// Close saves any pending edit and returns the editor to idle.
func (e *Editor) Close(_ context.Context) {
	e.saver.Flush()

	e.mu.Lock()
	e.saver.Cancel()
	e.ctrl.Reset()
	e.binding.Reset()
	e.view = View{State: transition.Idle, Epoch: e.view.Epoch + 1}
	e.savedTitle, e.savedContent = "", ""
	e.document = docsystem.Document{}
	v := e.view
	e.mu.Unlock()
	e.emit(v)
}

// View returns the current view.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// DocID returns the id of the selected document, loaded or not.
func (e *Editor) DocID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.DocID
}

// AutoSavePending reports whether an auto-save is waiting to fire.
func (e *Editor) AutoSavePending() bool {
	return e.saver.Pending()
}

// emit forwards v to OnView, dropping views from an epoch that has already
// been superseded.
func (e *Editor) emit(v View) {
	if e.hooks.OnView == nil {
		return
	}
	e.emitMu.Lock()
	defer e.emitMu.Unlock()
	if v.Epoch < e.lastEpoch {
		return
	}
	e.lastEpoch = v.Epoch
	e.hooks.OnView(v)
}

func (e *Editor) notifyDirty(docID string, dirty bool) {
	if e.hooks.OnDirty != nil {
		e.hooks.OnDirty(docID, dirty)
	}
}
