// Package accountstate exposes the derived views of one account's holdings:
// enriched asset lists, reconciled fungible and NFT positions and the native
// token summary. Balance fetches are reactive inputs; everything else is a
// memoized derivation over them, so repeated reads between refreshes do no
// network work and recompute nothing.
package accountstate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stacks-wallet-core/internal/assets"
	"stacks-wallet-core/internal/domain"
	"stacks-wallet-core/internal/enrichment"
	"stacks-wallet-core/internal/reactive"
	"stacks-wallet-core/internal/stacksapi"
)

// AccountState tracks one principal on one network.
type AccountState struct {
	principal string
	enricher  *enrichment.Enricher

	graph      *reactive.Graph
	anchored   *reactive.AsyncInput[*domain.BalancesResponse]
	unanchored *reactive.AsyncInput[*domain.BalancesResponse]

	anchoredAssets   *reactive.Derived[[]domain.AssetRecord]
	unanchoredAssets *reactive.Derived[[]domain.AssetRecord]
	fungible         *reactive.Derived[[]domain.AssetRecord]
	nft              *reactive.Derived[[]domain.AssetRecord]
}

// New wires the reactive nodes for a principal. The enricher may be nil, in
// which case records are served without metadata.
func New(source stacksapi.BalancesSource, enricher *enrichment.Enricher, principal string) *AccountState {
	g := reactive.NewGraph()

	s := &AccountState{
		principal: principal,
		enricher:  enricher,
		graph:     g,
	}

	s.anchored = reactive.NewAsyncInput(g, func(ctx context.Context) (*domain.BalancesResponse, error) {
		return source.GetAnchoredBalances(ctx, principal)
	})
	s.unanchored = reactive.NewAsyncInput(g, func(ctx context.Context) (*domain.BalancesResponse, error) {
		return source.GetUnanchoredBalances(ctx, principal)
	})

	s.anchoredAssets = reactive.NewDerived(g, func() ([]domain.AssetRecord, error) {
		resp, ok := s.anchored.Peek()
		if !ok {
			return nil, nil
		}
		return assets.Transform(resp)
	}, s.anchored)

	s.unanchoredAssets = reactive.NewDerived(g, func() ([]domain.AssetRecord, error) {
		resp, ok := s.unanchored.Peek()
		if !ok {
			return nil, nil
		}
		return assets.Transform(resp)
	}, s.unanchored)

	s.fungible = reactive.NewDerived(g, func() ([]domain.AssetRecord, error) {
		if s.anchoredAssets.Peek() == nil {
			return nil, nil
		}
		return assets.Merge(s.anchoredAssets.Peek(), s.unanchoredAssets.Peek(), domain.AssetKindFungible), nil
	}, s.anchoredAssets, s.unanchoredAssets)

	s.nft = reactive.NewDerived(g, func() ([]domain.AssetRecord, error) {
		if s.anchoredAssets.Peek() == nil {
			return nil, nil
		}
		return assets.MergeNft(s.anchoredAssets.Peek(), s.unanchoredAssets.Peek()), nil
	}, s.anchoredAssets, s.unanchoredAssets)

	return s
}

// All returns every asset of the account from the anchored view, enriched
// with fungible token metadata.
func (s *AccountState) All(ctx context.Context) ([]domain.AssetRecord, error) {
	if err := s.anchored.Resolve(ctx); err != nil {
		return nil, fmt.Errorf("resolve anchored balances: %w", err)
	}
	records, err := s.anchoredAssets.Value()
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, records)
}

// Transferable returns the assets a transaction can be drafted for: the
// native token plus every fungible token whose contract implements the
// transfer trait.
func (s *AccountState) Transferable(ctx context.Context) ([]domain.AssetRecord, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AssetRecord, 0, len(all))
	for _, rec := range all {
		if rec.Kind == domain.AssetKindNative || rec.Transferable {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ByIdentifier looks up one asset by its on-chain identifier, or the native
// sentinel. The second return is false when the account does not hold it.
func (s *AccountState) ByIdentifier(ctx context.Context, id string) (domain.AssetRecord, bool, error) {
	key := id
	if id != domain.NativeAssetKey {
		parsed, err := assets.ParseAssetIdentifier(id)
		if err != nil {
			return domain.AssetRecord{}, false, err
		}
		key = parsed.ContractAddress + "." + parsed.ContractName
	}

	all, err := s.All(ctx)
	if err != nil {
		return domain.AssetRecord{}, false, err
	}
	for _, rec := range all {
		if rec.IdentityKey() == key {
			return rec, true, nil
		}
	}
	return domain.AssetRecord{}, false, nil
}

// FungibleTokens returns the reconciled fungible positions: anchored
// balances with the pending view's raw balance attached as PendingDelta.
func (s *AccountState) FungibleTokens(ctx context.Context) ([]domain.AssetRecord, error) {
	if err := s.resolveBoth(ctx); err != nil {
		return nil, err
	}
	records, err := s.fungible.Value()
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, records)
}

// NftHoldings returns the reconciled non-fungible counts.
func (s *AccountState) NftHoldings(ctx context.Context) ([]domain.AssetRecord, error) {
	if err := s.resolveBoth(ctx); err != nil {
		return nil, err
	}
	return s.nft.Value()
}

// STXToken returns the native holding with spendable amounts: the confirmed
// balance minus locked, and the pending view's balance minus locked as the
// amount the position settles to.
func (s *AccountState) STXToken(ctx context.Context) (domain.AssetRecord, error) {
	if err := s.resolveBoth(ctx); err != nil {
		return domain.AssetRecord{}, err
	}

	anchoredResp, _ := s.anchored.Get()
	unanchoredResp, _ := s.unanchored.Get()

	available, err := assets.AvailableSTX(anchoredResp)
	if err != nil {
		return domain.AssetRecord{}, err
	}
	pending := decimal.Decimal{}
	if unanchoredResp != nil {
		pending, err = assets.AvailableSTX(unanchoredResp)
		if err != nil {
			return domain.AssetRecord{}, err
		}
	}

	return domain.AssetRecord{
		Kind:           domain.AssetKindNative,
		DisplayName:    "Stacks Token",
		Subtitle:       "STX",
		Balance:        available,
		PendingDelta:   pending,
		Transferable:   true,
		HasMemoSupport: true,
	}, nil
}

// Refresh discards both balance views so the next read refetches. Driven by
// websocket address-transaction notifications or an explicit user refresh.
func (s *AccountState) Refresh() {
	s.anchored.Invalidate()
	s.unanchored.Invalidate()
}

func (s *AccountState) resolveBoth(ctx context.Context) error {
	if err := s.anchored.Resolve(ctx); err != nil {
		return fmt.Errorf("resolve anchored balances: %w", err)
	}
	if err := s.unanchored.Resolve(ctx); err != nil {
		return fmt.Errorf("resolve unanchored balances: %w", err)
	}
	return nil
}

func (s *AccountState) enrich(ctx context.Context, records []domain.AssetRecord) ([]domain.AssetRecord, error) {
	if s.enricher == nil {
		return records, nil
	}
	return s.enricher.EnrichAll(ctx, records)
}
