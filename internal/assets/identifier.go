// Package assets holds the pure balance computations: transforming raw
// balance responses into asset records and reconciling the anchored and
// unanchored views into one list.
package assets

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedIdentifier reports an on-chain asset identifier that does not
// match the "address.contract::asset" shape. Failing here protects the rest
// of the pipeline from indexing wrong substrings.
var ErrMalformedIdentifier = errors.New("malformed asset identifier")

// AssetIdentifier is a parsed on-chain asset identifier.
type AssetIdentifier struct {
	ContractAddress string
	ContractName    string
	AssetName       string
}

// ParseAssetIdentifier splits "address.contract::asset" into its parts.
// Returns ErrMalformedIdentifier when either separator is missing or a part
// is empty.
func ParseAssetIdentifier(raw string) (AssetIdentifier, error) {
	contractID, assetName, ok := strings.Cut(raw, "::")
	if !ok || assetName == "" {
		return AssetIdentifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, raw)
	}
	address, name, ok := strings.Cut(contractID, ".")
	if !ok || address == "" || name == "" {
		return AssetIdentifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, raw)
	}
	return AssetIdentifier{
		ContractAddress: address,
		ContractName:    name,
		AssetName:       assetName,
	}, nil
}
