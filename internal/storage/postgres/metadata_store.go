package postgres

import (
	"context"
	"fmt"

	"stacks-wallet-core/internal/domain"
	"stacks-wallet-core/internal/storage"
)

// MetadataStore implements storage.MetadataStore using PostgreSQL.
type MetadataStore struct {
	pool *Pool
}

// NewMetadataStore creates a new MetadataStore.
func NewMetadataStore(pool *Pool) *MetadataStore {
	return &MetadataStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MetadataStore = (*MetadataStore)(nil)

// Get retrieves cached metadata. Returns ErrNotFound if not cached.
func (s *MetadataStore) Get(ctx context.Context, key domain.MetaKey) (*domain.FungibleMeta, error) {
	query := `
		SELECT name, symbol, decimals, is_transferable, fetched_at
		FROM fungible_token_metadata
		WHERE contract_address = $1 AND contract_name = $2 AND network_url = $3
	`

	row := s.pool.QueryRow(ctx, query, key.ContractAddress, key.ContractName, key.NetworkURL)

	var m domain.FungibleMeta
	err := row.Scan(&m.Name, &m.Symbol, &m.Decimals, &m.IsTransferable, &m.FetchedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get fungible metadata: %w", err)
	}
	return &m, nil
}

// Put caches metadata for a key. Metadata is immutable, so conflicting
// inserts simply overwrite with the fresher fetch.
func (s *MetadataStore) Put(ctx context.Context, key domain.MetaKey, meta *domain.FungibleMeta) error {
	if meta == nil || key.ContractAddress == "" || key.ContractName == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO fungible_token_metadata (
			contract_address, contract_name, network_url,
			name, symbol, decimals, is_transferable, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (contract_address, contract_name, network_url)
		DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			decimals = EXCLUDED.decimals,
			is_transferable = EXCLUDED.is_transferable,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := s.pool.Exec(ctx, query,
		key.ContractAddress,
		key.ContractName,
		key.NetworkURL,
		meta.Name,
		meta.Symbol,
		meta.Decimals,
		meta.IsTransferable,
		meta.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("put fungible metadata: %w", err)
	}
	return nil
}
