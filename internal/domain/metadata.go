package domain

// FungibleMeta is contract metadata for a fungible token. Immutable once
// fetched for a given (contract, network) pair, so it may be cached forever.
// Corresponds to the fungible_token_metadata table in PostgreSQL.
type FungibleMeta struct {
	Name     string
	Symbol   string
	Decimals int

	// IsTransferable reports whether the contract implements the transfer
	// trait. nil means the trait check did not complete; callers must treat
	// that as non-transferable.
	IsTransferable *bool

	FetchedAt int64 // Unix timestamp in milliseconds
}

// MetaKey identifies a metadata cache entry. The network URL is part of the
// key: the same principal can resolve to different contracts per network.
type MetaKey struct {
	ContractAddress string
	ContractName    string
	NetworkURL      string
}

// String renders the key in "address.name@network" form, used as the
// storage primary key.
func (k MetaKey) String() string {
	return k.ContractAddress + "." + k.ContractName + "@" + k.NetworkURL
}
