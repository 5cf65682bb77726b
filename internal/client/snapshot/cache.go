// Package snapshot mirrors the user's folder tree and per-folder document
// listings. It is filled by one bulk fetch and then patched by each mutation.
package snapshot

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"prompthub/internal/domain/models/docsystem"
)

const rootKey = ""

// Cache is the in-memory workspace snapshot. Reads never fail; they return
// empty slices for unknown keys. Use HasSnapshot to tell "not loaded" from
// "loaded and empty".
type Cache struct {
	mu sync.RWMutex

	loadedAt        time.Time
	folders         map[string]docsystem.Folder
	foldersByParent map[string][]docsystem.Folder
	bucketOf        map[string]string
	docsByFolder    map[string][]docsystem.DocumentSummary
	docs            map[string]docsystem.DocumentSummary
	roots           []docsystem.Folder
}

// New creates an empty, unloaded cache.
func New() *Cache {
	c := &Cache{}
	c.resetLocked()
	return c
}

func (c *Cache) resetLocked() {
	c.loadedAt = time.Time{}
	c.folders = make(map[string]docsystem.Folder)
	c.foldersByParent = make(map[string][]docsystem.Folder)
	c.bucketOf = make(map[string]string)
	c.docsByFolder = make(map[string][]docsystem.DocumentSummary)
	c.docs = make(map[string]docsystem.DocumentSummary)
	c.roots = nil
}

// Hydrate replaces the cache contents with snap.
func (c *Cache) Hydrate(snap docsystem.WorkspaceSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.loadedAt = snap.LoadedAt
	if c.loadedAt.IsZero() {
		c.loadedAt = time.Now().UTC()
	}

	for _, f := range snap.Folders {
		c.folders[f.ID] = f
	}
	for _, f := range snap.Folders {
		key := c.parentKeyLocked(f)
		c.foldersByParent[key] = append(c.foldersByParent[key], f)
		c.bucketOf[f.ID] = key
	}
	for key := range c.foldersByParent {
		sortFolders(c.foldersByParent[key])
	}
	c.roots = c.foldersByParent[rootKey]

	for _, d := range snap.Documents {
		c.docs[d.ID] = d
		if d.FolderID == "" {
			continue
		}
		c.docsByFolder[d.FolderID] = append(c.docsByFolder[d.FolderID], d)
	}
	for key := range c.docsByFolder {
		sortDocuments(c.docsByFolder[key])
	}
}

// Reset empties the cache and marks it unloaded.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// HasSnapshot reports whether Hydrate has run since the last Reset.
func (c *Cache) HasSnapshot() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.loadedAt.IsZero()
}

// LoadedAt returns when the hydrating snapshot was taken.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// RootFolders returns top-level folders sorted by name. Folders whose parent
// is not in the snapshot are listed here too.
func (c *Cache) RootFolders() []docsystem.Folder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneOrEmpty(c.roots)
}

// Children returns the sorted subfolders of parentID.
func (c *Cache) Children(parentID string) []docsystem.Folder {
	if parentID == rootKey {
		return []docsystem.Folder{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneOrEmpty(c.foldersByParent[parentID])
}

// DocumentsIn returns the documents of folderID sorted by title.
func (c *Cache) DocumentsIn(folderID string) []docsystem.DocumentSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneOrEmpty(c.docsByFolder[folderID])
}

// Document looks up a document summary by id.
func (c *Cache) Document(id string) (docsystem.DocumentSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.docs[id]
	return d, ok
}

// Folder looks up a folder by id.
func (c *Cache) Folder(id string) (docsystem.Folder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.folders[id]
	return f, ok
}

// UpsertFolder adds or replaces f, moving it if its parent changed. Root-listed
// folders waiting for f as their parent move under it.
func (c *Cache) UpsertFolder(f docsystem.Folder) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.folders[f.ID] = f
	c.placeFolderLocked(f)

	for _, orphan := range c.foldersByParent[rootKey] {
		if orphan.ParentID != nil && *orphan.ParentID == f.ID {
			c.placeFolderLocked(orphan)
		}
	}
}

// placeFolderLocked moves f into the bucket of its parent, out of whichever
// bucket held it before.
func (c *Cache) placeFolderLocked(f docsystem.Folder) {
	key := c.parentKeyLocked(f)
	if c.isAncestorLocked(f.ID, key) {
		key = rootKey
	}
	if oldKey, ok := c.bucketOf[f.ID]; ok && oldKey != key {
		c.foldersByParent[oldKey] = removeFolder(c.foldersByParent[oldKey], f.ID)
		c.refreshRootsLocked(oldKey)
	}
	bucket := append(removeFolder(c.foldersByParent[key], f.ID), f)
	sortFolders(bucket)
	c.foldersByParent[key] = bucket
	c.bucketOf[f.ID] = key
	c.refreshRootsLocked(key)
}

// isAncestorLocked reports whether ancestorID is folderID or sits above it.
func (c *Cache) isAncestorLocked(ancestorID, folderID string) bool {
	seen := map[string]bool{}
	for cur := folderID; cur != rootKey && !seen[cur]; cur = c.bucketOf[cur] {
		if cur == ancestorID {
			return true
		}
		seen[cur] = true
	}
	return false
}

// RemoveFolder drops folder id with every descendant folder and their
// document listings. It returns the ids of the documents that were pruned.
func (c *Cache) RemoveFolder(id string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.folders[id]; !ok {
		return nil
	}
	key := c.bucketOf[id]
	c.foldersByParent[key] = removeFolder(c.foldersByParent[key], id)

	var pruned []string
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, child := range c.foldersByParent[cur] {
			queue = append(queue, child.ID)
		}
		for _, d := range c.docsByFolder[cur] {
			pruned = append(pruned, d.ID)
			delete(c.docs, d.ID)
		}
		delete(c.foldersByParent, cur)
		delete(c.docsByFolder, cur)
		delete(c.folders, cur)
		delete(c.bucketOf, cur)
	}

	c.refreshRootsLocked(key)
	return pruned
}

// Subtree returns folder id, its descendant folders and every document listed
// under them, parents before children.
func (c *Cache) Subtree(id string) ([]docsystem.Folder, []docsystem.DocumentSummary) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	root, ok := c.folders[id]
	if !ok {
		return nil, nil
	}
	folders := []docsystem.Folder{root}
	var docs []docsystem.DocumentSummary
	for i := 0; i < len(folders); i++ {
		cur := folders[i].ID
		folders = append(folders, c.foldersByParent[cur]...)
		docs = append(docs, c.docsByFolder[cur]...)
	}
	return folders, docs
}

// UpsertDocument adds or replaces d in its folder's listing, moving it if
// its folder changed.
func (c *Cache) UpsertDocument(d docsystem.DocumentSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.docs[d.ID]; ok && old.FolderID != d.FolderID && old.FolderID != "" {
		c.docsByFolder[old.FolderID] = removeDocument(c.docsByFolder[old.FolderID], d.ID)
	}
	c.docs[d.ID] = d
	if d.FolderID == "" {
		return
	}
	bucket := append(removeDocument(c.docsByFolder[d.FolderID], d.ID), d)
	sortDocuments(bucket)
	c.docsByFolder[d.FolderID] = bucket
}

// RenameDocument changes the title of a cached document. It reports whether
// the document was known.
func (c *Cache) RenameDocument(id string, title *string) bool {
	c.mu.Lock()
	d, ok := c.docs[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	d.Title = title
	c.UpsertDocument(d)
	return true
}

// RemoveDocument drops document id.
func (c *Cache) RemoveDocument(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.docs[id]
	if !ok {
		return
	}
	delete(c.docs, id)
	if d.FolderID != "" {
		c.docsByFolder[d.FolderID] = removeDocument(c.docsByFolder[d.FolderID], id)
	}
}

// SetDocumentsForFolder replaces the listing of folderID. Documents that
// were listed under another folder leave that listing.
func (c *Cache) SetDocumentsForFolder(folderID string, docs []docsystem.DocumentSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, old := range c.docsByFolder[folderID] {
		delete(c.docs, old.ID)
	}
	bucket := make([]docsystem.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		if old, ok := c.docs[d.ID]; ok && old.FolderID != "" && old.FolderID != folderID {
			c.docsByFolder[old.FolderID] = removeDocument(c.docsByFolder[old.FolderID], d.ID)
		}
		d.FolderID = folderID
		c.docs[d.ID] = d
		bucket = append(bucket, d)
	}
	sortDocuments(bucket)
	c.docsByFolder[folderID] = bucket
}

// parentKeyLocked returns the bucket a folder lives in. Unknown parents map to the root.
func (c *Cache) parentKeyLocked(f docsystem.Folder) string {
	if f.ParentID == nil || *f.ParentID == "" || *f.ParentID == f.ID {
		return rootKey
	}
	if _, ok := c.folders[*f.ParentID]; !ok {
		return rootKey
	}
	return *f.ParentID
}

func (c *Cache) refreshRootsLocked(changedKey string) {
	if changedKey == rootKey {
		c.roots = c.foldersByParent[rootKey]
	}
}

func sortFolders(fs []docsystem.Folder) {
	slices.SortStableFunc(fs, func(a, b docsystem.Folder) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

func sortDocuments(ds []docsystem.DocumentSummary) {
	slices.SortStableFunc(ds, func(a, b docsystem.DocumentSummary) int {
		at, bt := titleKey(a), titleKey(b)
		return cmp.Or(
			cmp.Compare(strings.ToLower(at), strings.ToLower(bt)),
			cmp.Compare(at, bt),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

func titleKey(d docsystem.DocumentSummary) string {
	if d.Title == nil {
		return ""
	}
	return *d.Title
}

func removeFolder(fs []docsystem.Folder, id string) []docsystem.Folder {
	return slices.DeleteFunc(slices.Clone(fs), func(f docsystem.Folder) bool { return f.ID == id })
}

func removeDocument(ds []docsystem.DocumentSummary, id string) []docsystem.DocumentSummary {
	return slices.DeleteFunc(slices.Clone(ds), func(d docsystem.DocumentSummary) bool { return d.ID == id })
}

func cloneOrEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return []T{}
	}
	return slices.Clone(s)
}
