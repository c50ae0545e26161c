package store

import (
	"fmt"
	"sync"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// MemoryStore is an in-process MetadataStore for tests and embedding.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*sprocc.BuildMetadata
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*sprocc.BuildMetadata)}
}

func (s *MemoryStore) Load(routine string) (*sprocc.BuildMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.records[routine]
	if !ok {
		return nil, nil
	}
	copied := *meta
	return &copied, nil
}

func (s *MemoryStore) Save(meta *sprocc.BuildMetadata) error {
	if meta == nil {
		return fmt.Errorf("metadata cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *meta
	s.records[meta.Routine] = &copied
	return nil
}

var _ sprocc.MetadataStore = (*MemoryStore)(nil)
