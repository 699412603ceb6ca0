package storage

import (
	"context"

	"stacks-wallet-core/internal/domain"
)

// MetadataStore is the persistent fungible token metadata cache. Metadata
// is immutable per (contract, network) key, so Put is an idempotent upsert:
// replaying a fetch result is harmless.
type MetadataStore interface {
	// Get retrieves cached metadata. Returns ErrNotFound if not cached.
	Get(ctx context.Context, key domain.MetaKey) (*domain.FungibleMeta, error)

	// Put caches metadata for a key, replacing any previous value.
	Put(ctx context.Context, key domain.MetaKey, meta *domain.FungibleMeta) error
}
