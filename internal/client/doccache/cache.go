// Package doccache holds the last known state of each opened document so a
// tab switch can render without a round trip.
package doccache

import (
	"log/slog"
	"sync"
	"time"

	"prompthub/internal/domain/models/docsystem"
)

// Entry is what the cache remembers about one document.
type Entry struct {
	OwnerID     string
	Document    docsystem.Document
	Title       string
	Content     string
	LastSavedAt time.Time
}

// Cache maps document ids to entries. Every entry is tagged with the user it
// was loaded for and is never served to anyone else.
type Cache struct {
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty cache.
func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		logger:  logger,
		entries: make(map[string]Entry),
	}
}

// Get returns the entry for docID when it belongs to ownerID. An entry owned by
// someone else is dropped.
func (c *Cache) Get(ownerID, docID string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[docID]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if ownerID == "" || e.OwnerID != ownerID {
		c.mu.Lock()
		if cur, still := c.entries[docID]; still && cur.OwnerID == e.OwnerID {
			delete(c.entries, docID)
		}
		c.mu.Unlock()
		c.logger.Warn("discarding cache entry owned by another user", "doc_id", docID)
		return Entry{}, false
	}
	return e, true
}

// Put stores e for docID, overwriting any previous entry.
func (c *Cache) Put(ownerID, docID string, e Entry) {
	e.OwnerID = ownerID
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[docID] = e
}

// Delete forgets docID.
func (c *Cache) Delete(docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, docID)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
