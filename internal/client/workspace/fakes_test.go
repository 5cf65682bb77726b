package workspace

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"prompthub/internal/client/api"
	"prompthub/internal/client/autosave"
	"prompthub/internal/domain"
	"prompthub/internal/domain/models"
	"prompthub/internal/domain/models/docsystem"
)

const testOwner = "user-1"

func ptr[T any](v T) *T { return &v }

// fakeBackend is an in-memory Backend. GetDocument blocks on a gate channel
// when one is registered for the document.
type fakeBackend struct {
	mu        sync.Mutex
	token     string
	docs      map[string]docsystem.Document
	folders   map[string]docsystem.Folder
	gates     map[string]chan struct{}
	saves     []autosave.Request
	saveAuth  []string
	versions  []string
	nextID    int
	failNext  error
	validated [][]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		docs:    map[string]docsystem.Document{},
		folders: map[string]docsystem.Folder{},
		gates:   map[string]chan struct{}{},
	}
}

func (b *fakeBackend) addFolder(id, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.folders[id] = docsystem.Folder{ID: id, OwnerID: testOwner, Name: name}
}

func (b *fakeBackend) addDoc(id, folderID, title, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[id] = docsystem.Document{
		ID: id, OwnerID: testOwner, FolderID: folderID,
		Title: ptr(title), Content: content, UpdatedAt: time.Unix(1000, 0).UTC(),
	}
}

// block makes GetDocument(id) wait until the returned func is called.
func (b *fakeBackend) block(id string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[id] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (b *fakeBackend) failOnce(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}

func (b *fakeBackend) takeFailure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.failNext
	b.failNext = nil
	return err
}

func (b *fakeBackend) savedContent() []autosave.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]autosave.Request(nil), b.saves...)
}

func (b *fakeBackend) saveTokens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.saveAuth...)
}

func (b *fakeBackend) doc(id string) (docsystem.Document, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.docs[id]
	return d, ok
}

func (b *fakeBackend) currentToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func notFound() error { return &domain.NotFoundError{Message: "not found"} }

func (b *fakeBackend) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func (b *fakeBackend) Snapshot(context.Context) (*docsystem.WorkspaceSnapshot, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := &docsystem.WorkspaceSnapshot{Folders: []docsystem.Folder{}, Documents: []docsystem.DocumentSummary{}}
	for _, f := range b.folders {
		snap.Folders = append(snap.Folders, f)
	}
	for _, d := range b.docs {
		snap.Documents = append(snap.Documents, d.Summary())
	}
	return snap, nil
}

func (b *fakeBackend) Tree(context.Context) (*docsystem.TreeNode, error) {
	return &docsystem.TreeNode{}, nil
}

func (b *fakeBackend) Dashboard(context.Context) (*docsystem.DashboardMetrics, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &docsystem.DashboardMetrics{TotalFolders: len(b.folders), TotalDocuments: len(b.docs)}, nil
}

func (b *fakeBackend) Profile(context.Context) (*models.Profile, error) {
	return &models.Profile{Email: "a@example.com"}, nil
}

func (b *fakeBackend) UpdateDisplayName(_ context.Context, name *string) (*models.Profile, error) {
	return &models.Profile{Email: "a@example.com", DisplayName: name}, nil
}

func (b *fakeBackend) ListDocuments(_ context.Context, folderID string) ([]docsystem.DocumentSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []docsystem.DocumentSummary{}
	for _, d := range b.docs {
		if d.FolderID == folderID {
			out = append(out, d.Summary())
		}
	}
	return out, nil
}

func (b *fakeBackend) CreateFolder(_ context.Context, name string, parentID *string) (*docsystem.Folder, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	f := docsystem.Folder{ID: fmt.Sprintf("f%d", b.nextID), OwnerID: testOwner, ParentID: parentID, Name: name}
	b.folders[f.ID] = f
	return &f, nil
}

func (b *fakeBackend) RenameFolder(_ context.Context, id, name string) (*docsystem.Folder, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.folders[id]
	if !ok {
		return nil, notFound()
	}
	f.Name = name
	b.folders[id] = f
	return &f, nil
}

func (b *fakeBackend) DeleteFolder(_ context.Context, id string) (*docsystem.FolderDeletion, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.folders[id]; !ok {
		return nil, notFound()
	}
	del := &docsystem.FolderDeletion{FolderIDs: []string{id}, DocumentIDs: []string{}}
	delete(b.folders, id)
	for docID, d := range b.docs {
		if d.FolderID == id {
			del.DocumentIDs = append(del.DocumentIDs, docID)
			delete(b.docs, docID)
		}
	}
	sort.Strings(del.DocumentIDs)
	return del, nil
}

func (b *fakeBackend) GetDocument(ctx context.Context, id string) (*docsystem.Document, error) {
	b.mu.Lock()
	gate := b.gates[id]
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.docs[id]
	if !ok {
		return nil, notFound()
	}
	return &d, nil
}

func (b *fakeBackend) CreateDocument(_ context.Context, folderID string, title *string, content string) (*docsystem.Document, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	d := docsystem.Document{
		ID: fmt.Sprintf("d%d", b.nextID), OwnerID: testOwner, FolderID: folderID,
		Title: title, Content: content, UpdatedAt: time.Unix(2000, 0).UTC(),
	}
	b.docs[d.ID] = d
	return &d, nil
}

func (b *fakeBackend) RenameDocument(_ context.Context, id, title string) (*docsystem.Document, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.docs[id]
	if !ok {
		return nil, notFound()
	}
	d.Title = ptr(title)
	b.docs[id] = d
	return &d, nil
}

func (b *fakeBackend) DeleteDocument(_ context.Context, id string) error {
	if err := b.takeFailure(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.docs[id]; !ok {
		return notFound()
	}
	delete(b.docs, id)
	return nil
}

func (b *fakeBackend) SaveContent(_ context.Context, id, title, content string) (*docsystem.DocumentSummary, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.docs[id]
	if !ok {
		return nil, notFound()
	}
	b.saves = append(b.saves, autosave.Request{DocID: id, Title: title, Content: content})
	b.saveAuth = append(b.saveAuth, b.token)
	d.Content = content
	if strings.TrimSpace(title) != "" {
		d.Title = ptr(title)
	}
	d.UpdatedAt = d.UpdatedAt.Add(time.Second)
	b.docs[id] = d
	s := d.Summary()
	return &s, nil
}

func (b *fakeBackend) SaveVersion(_ context.Context, id, title, content string) (*api.SaveVersionResult, error) {
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.docs[id]
	if !ok {
		return nil, notFound()
	}
	d.Title = ptr(title)
	d.Content = content
	d.UpdatedAt = d.UpdatedAt.Add(time.Minute)
	b.docs[id] = d
	b.versions = append(b.versions, id+":"+title)
	return &api.SaveVersionResult{VersionID: int64(len(b.versions)), Document: &d}, nil
}

func (b *fakeBackend) ListVersions(_ context.Context, id string) ([]docsystem.Version, error) {
	return []docsystem.Version{}, nil
}

func (b *fakeBackend) GetVersion(_ context.Context, id string, versionID int64) (*docsystem.VersionContent, error) {
	return nil, notFound()
}

func (b *fakeBackend) ValidateDocuments(_ context.Context, ids []string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validated = append(b.validated, append([]string(nil), ids...))
	out := []string{}
	for _, id := range ids {
		if _, ok := b.docs[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// fakeAuth accepts one password and records the order of sign-outs. Emails
// missing from userIDs sign in as testOwner.
type fakeAuth struct {
	mu        sync.Mutex
	userIDs   map[string]string
	signOuts  []string
	onSignOut func()
}

func (a *fakeAuth) SignIn(_ context.Context, email, password string) (*api.Session, error) {
	if password != "secret" {
		return nil, &domain.UnauthorizedError{Message: "invalid login credentials"}
	}
	userID := testOwner
	if id, ok := a.userIDs[email]; ok {
		userID = id
	}
	return &api.Session{
		AccessToken: "token-" + email,
		User:        api.User{ID: userID, Email: email},
	}, nil
}

func (a *fakeAuth) SignOut(_ context.Context, token string) error {
	if a.onSignOut != nil {
		a.onSignOut()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signOuts = append(a.signOuts, token)
	return nil
}

// memDrafts is a DraftStore that counts writes per key.
type memDrafts struct {
	mu     sync.Mutex
	data   map[string]string
	writes map[string]int
}

func newMemDrafts() *memDrafts {
	return &memDrafts{data: map[string]string{}, writes: map[string]int{}}
}

func (m *memDrafts) Read(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memDrafts) Write(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.writes[key]++
	return nil
}

func (m *memDrafts) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memDrafts) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string]string{}
	return nil
}

func (m *memDrafts) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memDrafts) writeCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}

// fakeClock hands out timers that only fire from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) autosave.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target && (next == nil || t.at < next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

// viewLog records every emitted view.
type viewLog struct {
	mu    sync.Mutex
	views []View
}

func (l *viewLog) add(v View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.views = append(l.views, v)
}

func (l *viewLog) all() []View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]View(nil), l.views...)
}
