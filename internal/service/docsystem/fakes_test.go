package docsystem

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"prompthub/internal/domain"
	models "prompthub/internal/domain/models/docsystem"
	"prompthub/internal/domain/repositories"
	docsysSvc "prompthub/internal/domain/services/docsystem"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type storedDoc struct {
	doc    models.Document
	base   string
	origin string
}

// memStore backs the fake repositories with maps.
type memStore struct {
	mu       sync.Mutex
	folders  map[string]models.Folder
	docs     map[string]*storedDoc
	versions []models.Version
	clock    time.Time
}

func newMemStore() *memStore {
	return &memStore{
		folders: map[string]models.Folder{},
		docs:    map[string]*storedDoc{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type fakeDocRepo struct{ m *memStore }
type fakeFolderRepo struct{ m *memStore }
type fakeVersionRepo struct{ m *memStore }
type fakeTx struct{}

func (fakeTx) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

func (r fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.folders[doc.FolderID]; !ok {
		return notFound("folder", doc.FolderID)
	}
	doc.ID = uuid.NewString()
	doc.CreatedAt = r.m.tick()
	doc.UpdatedAt = doc.CreatedAt
	r.m.docs[doc.ID] = &storedDoc{doc: *doc, base: doc.Content, origin: doc.Content}
	return nil
}

func (r fakeDocRepo) get(id, ownerID string) (*storedDoc, error) {
	d, ok := r.m.docs[id]
	if !ok || d.doc.OwnerID != ownerID {
		return nil, notFound("document", id)
	}
	return d, nil
}

func (r fakeDocRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, err := r.get(id, ownerID)
	if err != nil {
		return nil, err
	}
	doc := d.doc
	return &doc, nil
}

func (r fakeDocRepo) GetByTitle(ctx context.Context, folderID, title, ownerID string) (*models.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, d := range r.m.docs {
		if d.doc.FolderID == folderID && d.doc.OwnerID == ownerID && strings.EqualFold(d.doc.TitleOrEmpty(), title) {
			doc := d.doc
			return &doc, nil
		}
	}
	return nil, notFound("document", title)
}

func (r fakeDocRepo) GetBaseContent(ctx context.Context, id, ownerID string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, err := r.get(id, ownerID)
	if err != nil {
		return "", err
	}
	return d.base, nil
}

func (r fakeDocRepo) UpdateContent(ctx context.Context, id, ownerID string, title *string, content string) (*models.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, err := r.get(id, ownerID)
	if err != nil {
		return nil, err
	}
	d.doc.Content = content
	if title != nil {
		t := *title
		d.doc.Title = &t
	}
	d.doc.UpdatedAt = r.m.tick()
	doc := d.doc
	return &doc, nil
}

func (r fakeDocRepo) CommitVersion(ctx context.Context, id, ownerID, title, content string) (*models.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, err := r.get(id, ownerID)
	if err != nil {
		return nil, err
	}
	d.doc.Title = &title
	d.doc.Content = content
	d.base = content
	d.doc.UpdatedAt = r.m.tick()
	doc := d.doc
	return &doc, nil
}

func (r fakeDocRepo) Rename(ctx context.Context, id, ownerID string, title *string) (*models.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, err := r.get(id, ownerID)
	if err != nil {
		return nil, err
	}
	d.doc.Title = title
	d.doc.UpdatedAt = r.m.tick()
	doc := d.doc
	return &doc, nil
}

func (r fakeDocRepo) Delete(ctx context.Context, id, ownerID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, err := r.get(id, ownerID); err != nil {
		return err
	}
	delete(r.m.docs, id)
	return nil
}

func (r fakeDocRepo) summaries(filter func(models.Document) bool) []models.DocumentSummary {
	out := []models.DocumentSummary{}
	for _, d := range r.m.docs {
		if filter(d.doc) {
			out = append(out, d.doc.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayTitle()) < strings.ToLower(out[j].DisplayTitle())
	})
	return out
}

func (r fakeDocRepo) ListByFolder(ctx context.Context, folderID, ownerID string) ([]models.DocumentSummary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.summaries(func(d models.Document) bool { return d.FolderID == folderID && d.OwnerID == ownerID }), nil
}

func (r fakeDocRepo) ListSummaries(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.summaries(func(d models.Document) bool { return d.OwnerID == ownerID }), nil
}

func (r fakeDocRepo) ExistingIDs(ctx context.Context, ids []string, ownerID string) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []string{}
	for _, id := range ids {
		if d, ok := r.m.docs[id]; ok && d.doc.OwnerID == ownerID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r fakeDocRepo) ListRecent(ctx context.Context, ownerID string, limit int) ([]models.DocumentSummary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	all := r.summaries(func(d models.Document) bool { return d.OwnerID == ownerID })
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r fakeDocRepo) Count(ctx context.Context, ownerID string) (int, error) {
	s, _ := r.ListSummaries(ctx, ownerID)
	return len(s), nil
}

func (r fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if folder.ParentID != nil {
		if _, ok := r.m.folders[*folder.ParentID]; !ok {
			return notFound("folder", *folder.ParentID)
		}
	}
	folder.ID = uuid.NewString()
	folder.CreatedAt = r.m.tick()
	folder.UpdatedAt = folder.CreatedAt
	r.m.folders[folder.ID] = *folder
	return nil
}

func (r fakeFolderRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, notFound("folder", id)
	}
	return &f, nil
}

func (r fakeFolderRepo) GetByName(ctx context.Context, parentID *string, name, ownerID string) (*models.Folder, error) {
	children, _ := r.ListChildren(ctx, parentID, ownerID)
	for _, f := range children {
		if strings.EqualFold(f.Name, name) {
			return &f, nil
		}
	}
	return nil, notFound("folder", name)
}

func (r fakeFolderRepo) Rename(ctx context.Context, id, ownerID, name string) (*models.Folder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, notFound("folder", id)
	}
	f.Name = name
	r.m.folders[id] = f
	return &f, nil
}

func (r fakeFolderRepo) Delete(ctx context.Context, id, ownerID string) (*models.FolderDeletion, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, notFound("folder", id)
	}
	del := &models.FolderDeletion{FolderIDs: []string{}, DocumentIDs: []string{}}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		del.FolderIDs = append(del.FolderIDs, cur)
		for fid, child := range r.m.folders {
			if child.ParentID != nil && *child.ParentID == cur {
				queue = append(queue, fid)
			}
		}
	}
	for _, fid := range del.FolderIDs {
		delete(r.m.folders, fid)
		for did, d := range r.m.docs {
			if d.doc.FolderID == fid {
				del.DocumentIDs = append(del.DocumentIDs, did)
				delete(r.m.docs, did)
			}
		}
	}
	return del, nil
}

func (r fakeFolderRepo) ListChildren(ctx context.Context, parentID *string, ownerID string) ([]models.Folder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Folder{}
	for _, f := range r.m.folders {
		if f.OwnerID != ownerID {
			continue
		}
		if (parentID == nil && f.ParentID == nil) || (parentID != nil && f.ParentID != nil && *parentID == *f.ParentID) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r fakeFolderRepo) GetAll(ctx context.Context, ownerID string) ([]models.Folder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Folder{}
	for _, f := range r.m.folders {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r fakeFolderRepo) Count(ctx context.Context, ownerID string) (int, error) {
	all, _ := r.GetAll(ctx, ownerID)
	return len(all), nil
}

func (r fakeVersionRepo) Create(ctx context.Context, v *models.Version) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v.ID = int64(len(r.m.versions) + 1)
	v.CreatedAt = r.m.tick()
	r.m.versions = append(r.m.versions, *v)
	return nil
}

func (r fakeVersionRepo) ListByDocument(ctx context.Context, documentID string) ([]models.Version, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Version{}
	for _, v := range r.m.versions {
		if v.DocumentID == documentID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r fakeVersionRepo) GetOriginContent(ctx context.Context, documentID string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.docs[documentID]
	if !ok {
		return "", notFound("document", documentID)
	}
	return d.origin, nil
}

func (r fakeVersionRepo) Count(ctx context.Context, ownerID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, v := range r.m.versions {
		if d, ok := r.m.docs[v.DocumentID]; ok && d.doc.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// testServices bundles the services under test over one memStore.
type testServices struct {
	store     *memStore
	documents docsysSvc.DocumentService
	folders   docsysSvc.FolderService
	workspace docsysSvc.WorkspaceService
	tree      docsysSvc.TreeService
}

func newTestServices() *testServices {
	m := newMemStore()
	docRepo := fakeDocRepo{m}
	folderRepo := fakeFolderRepo{m}
	versionRepo := fakeVersionRepo{m}
	validator := NewResourceValidator(folderRepo, docRepo)
	logger := discardLogger()

	return &testServices{
		store:     m,
		documents: NewDocumentService(docRepo, versionRepo, fakeTx{}, validator, logger),
		folders:   NewFolderService(folderRepo, docRepo, validator, logger),
		workspace: NewWorkspaceService(folderRepo, docRepo, versionRepo, logger),
		tree:      NewTreeService(folderRepo, docRepo, logger),
	}
}
