// Package enrichment attaches fungible token contract metadata to asset
// records. Metadata is immutable per (contract, network), so it is cached
// persistently and concurrent fetches for the same contract coalesce.
package enrichment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"stacks-wallet-core/internal/domain"
	"stacks-wallet-core/internal/stacksapi"
	"stacks-wallet-core/internal/storage"
)

// inflight tracks one in-progress metadata fetch shared between callers.
type inflight struct {
	done chan struct{}
	meta *domain.FungibleMeta
	err  error
}

// Enricher resolves metadata through a persistent cache with a network
// fallback and decorates asset records with the result.
type Enricher struct {
	store      storage.MetadataStore
	source     stacksapi.MetadataSource
	networkURL string
	logger     zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]*inflight
}

// New creates an Enricher bound to one network.
func New(store storage.MetadataStore, source stacksapi.MetadataSource, networkURL string, logger zerolog.Logger) *Enricher {
	return &Enricher{
		store:      store,
		source:     source,
		networkURL: networkURL,
		logger:     logger.With().Str("component", "enrichment").Logger(),
		inFlight:   make(map[string]*inflight),
	}
}

// GetMeta returns metadata for a fungible token contract, from cache when
// present, otherwise fetched and cached. Concurrent calls for the same
// contract share one fetch.
func (e *Enricher) GetMeta(ctx context.Context, contractAddress, contractName string) (*domain.FungibleMeta, error) {
	key := domain.MetaKey{
		ContractAddress: contractAddress,
		ContractName:    contractName,
		NetworkURL:      e.networkURL,
	}

	if meta, err := e.store.Get(ctx, key); err == nil {
		return meta, nil
	}

	e.mu.Lock()
	if f, ok := e.inFlight[key.String()]; ok {
		e.mu.Unlock()
		select {
		case <-f.done:
			return f.meta, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &inflight{done: make(chan struct{})}
	e.inFlight[key.String()] = f
	e.mu.Unlock()

	f.meta, f.err = e.fetchAndStore(ctx, key)
	close(f.done)

	e.mu.Lock()
	delete(e.inFlight, key.String())
	e.mu.Unlock()

	return f.meta, f.err
}

func (e *Enricher) fetchAndStore(ctx context.Context, key domain.MetaKey) (*domain.FungibleMeta, error) {
	meta, err := e.source.GetFungibleMeta(ctx, key.ContractAddress, key.ContractName)
	if err != nil {
		return nil, err
	}
	if meta.FetchedAt == 0 {
		meta.FetchedAt = time.Now().UnixMilli()
	}

	if err := e.store.Put(ctx, key, meta); err != nil {
		// Cache write failure is not fatal, the metadata is still usable.
		e.logger.Debug().Err(err).
			Str("contract", key.ContractAddress+"."+key.ContractName).
			Msg("failed to cache metadata")
	}
	return meta, nil
}

// EnrichAsset attaches metadata to a fungible asset record. Native and
// non-fungible records pass through unchanged. A metadata fetch failure
// leaves the record unchanged and reports no error: the token still shows
// up in balances, just without transfer support.
func (e *Enricher) EnrichAsset(ctx context.Context, rec domain.AssetRecord) (domain.AssetRecord, error) {
	if rec.Kind != domain.AssetKindFungible {
		return rec, nil
	}

	meta, err := e.GetMeta(ctx, rec.ContractAddress, rec.ContractName)
	if err != nil {
		e.logger.Debug().Err(err).
			Str("contract", rec.IdentityKey()).
			Msg("metadata fetch failed")
		return rec, nil
	}

	rec.Meta = meta
	if meta.Name != "" {
		rec.DisplayName = meta.Name
	}
	canTransfer := meta.IsTransferable != nil && *meta.IsTransferable
	rec.Transferable = canTransfer
	rec.HasMemoSupport = canTransfer
	return rec, nil
}

// EnrichAll enriches every record in a slice, preserving order.
func (e *Enricher) EnrichAll(ctx context.Context, recs []domain.AssetRecord) ([]domain.AssetRecord, error) {
	out := make([]domain.AssetRecord, len(recs))
	for i, rec := range recs {
		enriched, err := e.EnrichAsset(ctx, rec)
		if err != nil {
			return nil, err
		}
		out[i] = enriched
	}
	return out, nil
}
