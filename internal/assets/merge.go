package assets

import (
	"math/big"

	"github.com/shopspring/decimal"

	"stacks-wallet-core/internal/domain"
)

// Merge reconciles the anchored and unanchored views of an account's assets
// into one list, filtered to records of kind.
//
// Every anchored record seeds the result with PendingDelta zero. Unanchored
// records then either fill in the PendingDelta of an existing entry (the raw
// unanchored balance, not a difference) or, for assets only visible in the
// pending view, append a new entry with a zero confirmed balance. The two
// views may lag, lead or disagree with each other; no key present in either
// input is ever dropped.
//
// Result order: anchored records in input order, then pending-only records
// in the order first observed in unanchored. Go maps do not keep insertion
// order, so an explicit key slice tracks it.
func Merge(anchored, unanchored []domain.AssetRecord, kind domain.AssetKind) []domain.AssetRecord {
	merged := make(map[string]*domain.AssetRecord, len(anchored))
	order := make([]string, 0, len(anchored))

	for _, rec := range anchored {
		if rec.Kind != kind {
			continue
		}
		entry := rec
		entry.PendingDelta = decimal.Decimal{}
		key := entry.IdentityKey()
		if _, exists := merged[key]; exists {
			continue
		}
		merged[key] = &entry
		order = append(order, key)
	}

	for _, rec := range unanchored {
		if rec.Kind != kind {
			continue
		}
		key := rec.IdentityKey()
		if match, exists := merged[key]; exists {
			match.PendingDelta = rec.Balance
			continue
		}
		if rec.Balance.IsZero() {
			// Zero in the pending view and absent from the confirmed
			// view: no transferable asset, nothing to synthesize.
			continue
		}
		entry := rec
		entry.PendingDelta = rec.Balance
		entry.Balance = decimal.Decimal{}
		merged[key] = &entry
		order = append(order, key)
	}

	result := make([]domain.AssetRecord, 0, len(order))
	for _, key := range order {
		result = append(result, *merged[key])
	}
	return result
}

// MergeNft reconciles non-fungible holdings the same two-pass way, over
// arbitrary-precision counts instead of decimal balances.
func MergeNft(anchored, unanchored []domain.AssetRecord) []domain.AssetRecord {
	merged := make(map[string]*domain.AssetRecord, len(anchored))
	order := make([]string, 0, len(anchored))

	for _, rec := range anchored {
		if rec.Kind != domain.AssetKindNonFungible {
			continue
		}
		entry := rec
		entry.PendingCount = big.NewInt(0)
		key := entry.IdentityKey()
		if _, exists := merged[key]; exists {
			continue
		}
		merged[key] = &entry
		order = append(order, key)
	}

	for _, rec := range unanchored {
		if rec.Kind != domain.AssetKindNonFungible {
			continue
		}
		key := rec.IdentityKey()
		if match, exists := merged[key]; exists {
			match.PendingCount = cloneCount(rec.Count)
			continue
		}
		if rec.Count == nil || rec.Count.Sign() == 0 {
			continue
		}
		entry := rec
		entry.PendingCount = cloneCount(rec.Count)
		entry.Count = big.NewInt(0)
		entry.Balance = decimal.Decimal{}
		merged[key] = &entry
		order = append(order, key)
	}

	result := make([]domain.AssetRecord, 0, len(order))
	for _, key := range order {
		result = append(result, *merged[key])
	}
	return result
}

func cloneCount(n *big.Int) *big.Int {
	if n == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(n)
}
