// Package tabs tracks the open editor tabs and which one is focused.
package tabs

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"prompthub/internal/id"
)

// StateKey is the local store key of the persisted tab strip.
const StateKey = "tabs:state"

var (
	// ErrConfirmClose is returned when closing a new, unsaved document without force.
	ErrConfirmClose = errors.New("tab holds an unsaved new document")
	// ErrTabNotFound is returned for unknown tab ids.
	ErrTabNotFound = errors.New("tab not found")
)

// Kind is what a tab shows.
type Kind string

const (
	KindDocument  Kind = "document"
	KindDashboard Kind = "dashboard"
	KindSettings  Kind = "settings"
	KindProfile   Kind = "profile"
)

// singleton kinds have at most one tab each.
func (k Kind) singleton() bool {
	return k == KindDashboard || k == KindSettings || k == KindProfile
}

// Tab is one entry of the tab strip.
type Tab struct {
	ID            string `json:"id"`
	Kind          Kind   `json:"type"`
	DocumentID    string `json:"document_id,omitempty"`
	FolderID      string `json:"folder_id,omitempty"`
	Title         string `json:"title"`
	IsDirty       bool   `json:"is_dirty"`
	IsPreview     bool   `json:"is_preview"`
	IsNewDocument bool   `json:"is_new_document"`
}

// OpenRequest describes a tab to open.
type OpenRequest struct {
	Kind        Kind
	DocumentID  string
	FolderID    string
	Title       string
	Preview     bool
	NewDocument bool
}

// Selection is the folder and document implied by the focused tab.
type Selection struct {
	FolderID   string
	DocumentID string
}

// Persister stores the tab strip between runs.
type Persister interface {
	GetJSON(key string, dest any) (bool, error)
	SetJSON(key string, value any) error
}

type persistedState struct {
	OwnerID     string `json:"owner_id,omitempty"`
	Tabs        []Tab  `json:"tabs"`
	ActiveTabID string `json:"activeTabId"`
}

// Coordinator owns the tab strip.
type Coordinator struct {
	store  Persister
	logger *slog.Logger

	mu       sync.Mutex
	owner    string
	tabs     []Tab
	activeID string
}

// New creates an empty coordinator. store may be nil to disable persistence.
func New(store Persister, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{store: store, logger: logger}
}

// SetOwner sets the user the strip belongs to. Restore ignores a strip saved
// for anyone else.
func (c *Coordinator) SetOwner(ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = ownerID
}

// Restore loads the persisted tab strip. A missing or unreadable blob, or one
// saved by another user, leaves the strip empty.
func (c *Coordinator) Restore() error {
	if c.store == nil {
		return nil
	}
	var st persistedState
	ok, err := c.store.GetJSON(StateKey, &st)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tabs = nil
	c.activeID = ""
	if !ok {
		return nil
	}
	if st.OwnerID != c.owner {
		c.logger.Debug("ignoring tabs saved by another user")
		return nil
	}
	for _, t := range st.Tabs {
		if t.ID == "" || (t.Kind == KindDocument && t.DocumentID == "") {
			continue
		}
		c.tabs = append(c.tabs, t)
	}
	if c.indexLocked(st.ActiveTabID) >= 0 {
		c.activeID = st.ActiveTabID
	} else if len(c.tabs) > 0 {
		c.activeID = c.tabs[len(c.tabs)-1].ID
	}
	return nil
}

// Open focuses an existing tab for the request or opens a new one. A preview
// replaces the current preview tab.
func (c *Coordinator) Open(req OpenRequest) Tab {
	if req.Kind == "" {
		req.Kind = KindDocument
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.persistLocked()

	if req.Kind == KindDocument && req.DocumentID != "" {
		for i, t := range c.tabs {
			if t.Kind != KindDocument || t.DocumentID != req.DocumentID {
				continue
			}
			if !t.IsPreview || req.Preview {
				c.activeID = t.ID
				return t
			}
			// Opening a previewed document for real keeps its tab.
			c.tabs[i].IsPreview = false
			c.activeID = t.ID
			return c.tabs[i]
		}
	}
	if req.Kind.singleton() {
		for _, t := range c.tabs {
			if t.Kind == req.Kind {
				c.activeID = t.ID
				return t
			}
		}
	}

	if req.Preview {
		c.tabs = slices.DeleteFunc(c.tabs, func(t Tab) bool { return t.IsPreview })
	}

	tab := Tab{
		ID:            id.MustGenerate(id.PrefixTab),
		Kind:          req.Kind,
		DocumentID:    req.DocumentID,
		FolderID:      req.FolderID,
		Title:         req.Title,
		IsPreview:     req.Preview,
		IsNewDocument: req.NewDocument,
	}
	c.tabs = append(c.tabs, tab)
	c.activeID = tab.ID
	return tab
}

// Activate focuses tabID.
func (c *Coordinator) Activate(tabID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(tabID) < 0 {
		return ErrTabNotFound
	}
	c.activeID = tabID
	c.persistLocked()
	return nil
}

// ShouldConfirmClose reports whether closing tabID would discard a new, unsaved document.
func (c *Coordinator) ShouldConfirmClose(tabID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(tabID)
	return i >= 0 && c.tabs[i].IsNewDocument && c.tabs[i].IsDirty
}

// Close removes tabID. Without force, a new dirty document returns
// ErrConfirmClose and stays open. Closing the focused tab focuses the tab
// that slides into its position, or the new last tab.
func (c *Coordinator) Close(tabID string, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(tabID)
	if i < 0 {
		return ErrTabNotFound
	}
	if !force && c.tabs[i].IsNewDocument && c.tabs[i].IsDirty {
		return ErrConfirmClose
	}
	c.closeAtLocked(i)
	c.persistLocked()
	return nil
}

// CloseByDocument force-closes every tab showing docID and returns their ids.
func (c *Coordinator) CloseByDocument(docID string) []string {
	return c.closeWhere(func(t Tab) bool {
		return t.Kind == KindDocument && t.DocumentID == docID
	})
}

// Prune force-closes document tabs whose document is not in valid and
// returns the closed tab ids.
func (c *Coordinator) Prune(valid []string) []string {
	keep := make(map[string]struct{}, len(valid))
	for _, v := range valid {
		keep[v] = struct{}{}
	}
	return c.closeWhere(func(t Tab) bool {
		if t.Kind != KindDocument {
			return false
		}
		_, ok := keep[t.DocumentID]
		return !ok
	})
}

func (c *Coordinator) closeWhere(match func(Tab) bool) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var closed []string
	for i := 0; i < len(c.tabs); {
		if match(c.tabs[i]) {
			closed = append(closed, c.tabs[i].ID)
			c.closeAtLocked(i)
			continue
		}
		i++
	}
	if len(closed) > 0 {
		c.persistLocked()
	}
	return closed
}

// Reset empties the in-memory strip on logout. The persisted blob is kept
// for the owner's next sign-in.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tabs = nil
	c.activeID = ""
}

// Promote turns a preview tab into a permanent one.
func (c *Coordinator) Promote(tabID string) error {
	return c.update(tabID, func(t *Tab) { t.IsPreview = false })
}

// SetDirty records whether the tab has unsaved edits. Editing promotes a preview.
func (c *Coordinator) SetDirty(tabID string, dirty bool) error {
	return c.update(tabID, func(t *Tab) {
		t.IsDirty = dirty
		if dirty {
			t.IsPreview = false
		}
	})
}

// SetTitle changes the tab label.
func (c *Coordinator) SetTitle(tabID, title string) error {
	return c.update(tabID, func(t *Tab) { t.Title = title })
}

// MarkSaved clears the dirty and new flags after an explicit save.
func (c *Coordinator) MarkSaved(tabID string) error {
	return c.update(tabID, func(t *Tab) {
		t.IsDirty = false
		t.IsNewDocument = false
	})
}

// RetitleDocument sets the label of every tab showing docID.
func (c *Coordinator) RetitleDocument(docID, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for i := range c.tabs {
		if c.tabs[i].Kind == KindDocument && c.tabs[i].DocumentID == docID && c.tabs[i].Title != title {
			c.tabs[i].Title = title
			changed = true
		}
	}
	if changed {
		c.persistLocked()
	}
}

// ReplaceDocumentID points tabs at newID instead of oldID. Used when a
// placeholder document gets its server id.
func (c *Coordinator) ReplaceDocumentID(oldID, newID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for i := range c.tabs {
		if c.tabs[i].Kind == KindDocument && c.tabs[i].DocumentID == oldID {
			c.tabs[i].DocumentID = newID
			changed = true
		}
	}
	if changed {
		c.persistLocked()
	}
}

// Reorder arranges tabs in the given id order. Unknown ids are ignored and
// tabs not mentioned keep their relative order at the end.
func (c *Coordinator) Reorder(tabIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]Tab, 0, len(c.tabs))
	placed := make(map[string]bool, len(tabIDs))
	for _, tid := range tabIDs {
		if i := c.indexLocked(tid); i >= 0 && !placed[tid] {
			next = append(next, c.tabs[i])
			placed[tid] = true
		}
	}
	for _, t := range c.tabs {
		if !placed[t.ID] {
			next = append(next, t)
		}
	}
	c.tabs = next
	c.persistLocked()
}

// Active returns the focused tab.
func (c *Coordinator) Active() (Tab, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(c.activeID)
	if i < 0 {
		return Tab{}, false
	}
	return c.tabs[i], true
}

// Get returns tabID.
func (c *Coordinator) Get(tabID string) (Tab, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(tabID)
	if i < 0 {
		return Tab{}, false
	}
	return c.tabs[i], true
}

// ForDocument returns the first tab showing docID.
func (c *Coordinator) ForDocument(docID string) (Tab, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tabs {
		if t.Kind == KindDocument && t.DocumentID == docID {
			return t, true
		}
	}
	return Tab{}, false
}

// Tabs returns the strip in display order.
func (c *Coordinator) Tabs() []Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tabs)
}

// Selection derives the active folder and document from the focused tab.
func (c *Coordinator) Selection() Selection {
	t, ok := c.Active()
	if !ok || t.Kind != KindDocument {
		return Selection{}
	}
	return Selection{FolderID: t.FolderID, DocumentID: t.DocumentID}
}

// DocumentIDs lists the documents shown by open tabs.
func (c *Coordinator) DocumentIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for _, t := range c.tabs {
		if t.Kind == KindDocument && !slices.Contains(ids, t.DocumentID) {
			ids = append(ids, t.DocumentID)
		}
	}
	return ids
}

func (c *Coordinator) update(tabID string, fn func(*Tab)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(tabID)
	if i < 0 {
		return ErrTabNotFound
	}
	fn(&c.tabs[i])
	c.persistLocked()
	return nil
}

func (c *Coordinator) closeAtLocked(i int) {
	closedID := c.tabs[i].ID
	c.tabs = slices.Delete(c.tabs, i, i+1)
	if c.activeID != closedID {
		return
	}
	if len(c.tabs) == 0 {
		c.activeID = ""
		return
	}
	c.activeID = c.tabs[min(i, len(c.tabs)-1)].ID
}

func (c *Coordinator) indexLocked(tabID string) int {
	if tabID == "" {
		return -1
	}
	return slices.IndexFunc(c.tabs, func(t Tab) bool { return t.ID == tabID })
}

func (c *Coordinator) persistLocked() {
	if c.store == nil {
		return
	}
	st := persistedState{OwnerID: c.owner, Tabs: c.tabs, ActiveTabID: c.activeID}
	if st.Tabs == nil {
		st.Tabs = []Tab{}
	}
	if err := c.store.SetJSON(StateKey, st); err != nil {
		c.logger.Warn("failed to persist tabs", "error", err)
	}
}
