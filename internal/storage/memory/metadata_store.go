package memory

import (
	"context"
	"sync"

	"stacks-wallet-core/internal/domain"
	"stacks-wallet-core/internal/storage"
)

// MetadataStore is an in-memory implementation of storage.MetadataStore.
type MetadataStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FungibleMeta
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{data: make(map[string]*domain.FungibleMeta)}
}

// Compile-time interface check.
var _ storage.MetadataStore = (*MetadataStore)(nil)

// Get retrieves cached metadata. Returns ErrNotFound if not cached.
func (s *MetadataStore) Get(_ context.Context, key domain.MetaKey) (*domain.FungibleMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.data[key.String()]
	if !exists {
		return nil, storage.ErrNotFound
	}

	metaCopy := *m
	return &metaCopy, nil
}

// Put caches metadata for a key, replacing any previous value.
func (s *MetadataStore) Put(_ context.Context, key domain.MetaKey, meta *domain.FungibleMeta) error {
	if meta == nil || key.ContractAddress == "" || key.ContractName == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metaCopy := *meta
	s.data[key.String()] = &metaCopy
	return nil
}
