package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/sorteio-admin/internal/model"
)

// MemoryRepository keeps documents in process memory. Besides backing the
// "memory" store backend it lets callers inject failures and count writes.
type MemoryRepository struct { // implements DocumentRepository
	mu sync.Mutex

	docs      map[string]*model.ProcessDocument
	order     []string
	selection *model.PublishedSelection

	fail   error
	writes int
	scans  int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		docs: make(map[string]*model.ProcessDocument),
	}
}

// SetFailure makes every following call return err until it is cleared with nil.
func (m *MemoryRepository) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Writes returns how many successful writes (Put, UpdateAreas, PutSelection) happened.
func (m *MemoryRepository) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Scans returns how many times ListAll was called.
func (m *MemoryRepository) Scans() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scans
}

// Delete removes a document. Nothing in the admin flow deletes processes; this
// exists to simulate documents vanishing from the store.
func (m *MemoryRepository) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return
	}
	delete(m.docs, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func copyDocument(doc *model.ProcessDocument) *model.ProcessDocument {
	c := *doc
	c.Areas = model.CloneAreas(doc.Areas)
	return &c
}

func (m *MemoryRepository) ListAll(ctx context.Context) ([]model.ProcessDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scans++
	if m.fail != nil {
		return nil, m.fail
	}

	docs := make([]model.ProcessDocument, 0, len(m.order))
	for _, id := range m.order {
		docs = append(docs, *copyDocument(m.docs[id]))
	}
	return docs, nil
}

func (m *MemoryRepository) GetByKey(ctx context.Context, name model.ProcessName) (*model.ProcessDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return nil, m.fail
	}

	for _, id := range m.order {
		if doc := m.docs[id]; doc.Name == name {
			return copyDocument(doc), nil
		}
	}
	return nil, fmt.Errorf("process %q: %w", name, ErrDocumentNotFound)
}

func (m *MemoryRepository) Put(ctx context.Context, doc *model.ProcessDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}

	_, hash, err := encodeAreas(doc.Areas)
	if err != nil {
		return err
	}
	doc.AreasHash = hash

	stored := copyDocument(doc)
	stored.ModifiedDate = time.Now().UTC()
	if prev, ok := m.docs[doc.ID]; ok {
		stored.CreatedDate = prev.CreatedDate
	} else {
		if stored.CreatedDate.IsZero() {
			stored.CreatedDate = stored.ModifiedDate
		}
		m.order = append(m.order, doc.ID)
	}
	m.docs[doc.ID] = stored
	m.writes++
	return nil
}

func (m *MemoryRepository) UpdateAreas(ctx context.Context, id string, areas []model.Area) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}

	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("process id %q: %w", id, ErrDocumentNotFound)
	}

	_, hash, err := encodeAreas(areas)
	if err != nil {
		return err
	}
	doc.Areas = model.CloneAreas(areas)
	doc.AreasHash = hash
	doc.ModifiedDate = time.Now().UTC()
	m.writes++
	return nil
}

func (m *MemoryRepository) PutSelection(ctx context.Context, sel *model.PublishedSelection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}

	c := *sel
	c.Areas = model.CloneAreas(sel.Areas)
	m.selection = &c
	m.writes++
	return nil
}

func (m *MemoryRepository) GetSelection(ctx context.Context) (*model.PublishedSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return nil, m.fail
	}
	if m.selection == nil {
		return nil, fmt.Errorf("selection: %w", ErrDocumentNotFound)
	}

	c := *m.selection
	c.Areas = model.CloneAreas(m.selection.Areas)
	return &c, nil
}

func (m *MemoryRepository) Close() error {
	return nil
}
