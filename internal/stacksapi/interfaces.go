// Package stacksapi talks to a Stacks node's HTTP API and websocket feed.
// Collaborator interfaces live here so the balance and draft layers can be
// tested against stubs.
package stacksapi

import (
	"context"
	"errors"

	"stacks-wallet-core/internal/domain"
)

// ErrFeeEstimation reports that the fee endpoint failed or returned no
// usable estimations. Callers fall back to the simulated fee schedule.
var ErrFeeEstimation = errors.New("fee estimation unavailable")

// BalancesSource fetches the two balance views of an account.
type BalancesSource interface {
	// GetAnchoredBalances returns balances from confirmed chain state only.
	GetAnchoredBalances(ctx context.Context, principal string) (*domain.BalancesResponse, error)

	// GetUnanchoredBalances returns balances including mempool effects.
	GetUnanchoredBalances(ctx context.Context, principal string) (*domain.BalancesResponse, error)
}

// NonceSource resolves the next usable nonce of an account.
type NonceSource interface {
	GetNextNonce(ctx context.Context, principal string) (uint64, error)
}

// FeeSource estimates fees for a serialized payload.
type FeeSource interface {
	// EstimateFees returns estimation rows in microSTX. Returns
	// ErrFeeEstimation when the node cannot estimate.
	EstimateFees(ctx context.Context, payloadHex string, estimatedLen int) (*domain.FeeEstimations, error)
}

// MetadataSource fetches fungible token contract metadata.
type MetadataSource interface {
	GetFungibleMeta(ctx context.Context, contractAddress, contractName string) (*domain.FungibleMeta, error)
}
