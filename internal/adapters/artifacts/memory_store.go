package artifacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/ports"

	"github.com/google/uuid"
)

// ErrReleased is returned when a handle is released more than once.
var ErrReleased = errors.New("artifact already released")

// MemoryStore keeps rendered documents in process memory and serves them by
// id until their handle is released.
type MemoryStore struct {
	baseURL string

	mu   sync.RWMutex
	docs map[string]domain.Document

	created  int
	released int
}

// NewMemoryStore builds a store whose handle URLs are baseURL + "/artifacts/" + id.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		docs:    make(map[string]domain.Document),
	}
}

func (s *MemoryStore) Create(ctx context.Context, doc domain.Document) (ports.ArtifactHandle, error) {
	if len(doc.Body) == 0 {
		return nil, errors.New("create artifact: empty document")
	}
	if doc.ContentType == "" {
		doc.ContentType = domain.DefaultDocumentContentType
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.docs[id] = doc
	s.created++
	s.mu.Unlock()

	return &memoryHandle{store: s, id: id}, nil
}

// Get returns the document for a live handle id.
func (s *MemoryStore) Get(id string) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Outstanding is the number of documents not yet released.
func (s *MemoryStore) Outstanding() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Stats returns how many handles were created and released over the store's lifetime.
func (s *MemoryStore) Stats() (created, released int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created, s.released
}

func (s *MemoryStore) release(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("release artifact %s: %w", id, ErrReleased)
	}
	delete(s.docs, id)
	s.released++
	return nil
}

type memoryHandle struct {
	store *MemoryStore
	id    string
}

func (h *memoryHandle) ID() string { return h.id }

func (h *memoryHandle) URL() string { return h.store.baseURL + "/artifacts/" + h.id }

func (h *memoryHandle) Release(ctx context.Context) error { return h.store.release(h.id) }

var _ ports.ArtifactStore = (*MemoryStore)(nil)
