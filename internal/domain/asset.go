package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// AssetKind discriminates the three classes of holdings an account can have.
type AssetKind string

const (
	AssetKindNative      AssetKind = "native"
	AssetKindFungible    AssetKind = "fungible"
	AssetKindNonFungible AssetKind = "non-fungible"
)

// String returns the string representation of AssetKind.
func (k AssetKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a valid value.
func (k AssetKind) IsValid() bool {
	return k == AssetKindNative || k == AssetKindFungible || k == AssetKindNonFungible
}

// NativeAssetKey is the identity key of the chain's base asset. The native
// asset has no contract principal, so it needs a sentinel.
const NativeAssetKey = "native"

// AssetRecord is one holding of an account, merged across the anchored and
// unanchored balance views.
//
// Balance is always the anchored (confirmed) amount. PendingDelta carries the
// unanchored view's raw balance for the same asset: the amount the holding
// settles to once pending activity confirms. It is deliberately not a
// computed difference.
type AssetRecord struct {
	Kind            AssetKind
	ContractAddress string // empty for native
	ContractName    string // empty for native
	DisplayName     string
	Subtitle        string

	Balance      decimal.Decimal
	PendingDelta decimal.Decimal

	// NFT counts. Arbitrary precision: high-volume contracts overflow int64.
	Count         *big.Int
	PendingCount  *big.Int
	TotalSent     *big.Int
	TotalReceived *big.Int

	// Set by enrichment; zero values until metadata is known.
	Meta           *FungibleMeta
	Transferable   bool
	HasMemoSupport bool
}

// IdentityKey uniquely identifies an asset across both balance views.
func (a *AssetRecord) IdentityKey() string {
	if a.Kind == AssetKindNative {
		return NativeAssetKey
	}
	return a.ContractAddress + "." + a.ContractName
}
