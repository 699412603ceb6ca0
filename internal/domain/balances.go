package domain

// BalancesResponse mirrors the Stacks API address balances payload. Amounts
// arrive as decimal strings; parsing to decimals happens in the snapshot
// transformer so a malformed payload fails there, in one place.
type BalancesResponse struct {
	STX              STXBalance                   `json:"stx"`
	FungibleTokens   map[string]FungibleBalance   `json:"fungible_tokens"`
	NonFungibleCount map[string]NonFungibleCounts `json:"non_fungible_tokens"`
}

// STXBalance is the native token section of a balances response.
type STXBalance struct {
	Balance       string `json:"balance"`
	Locked        string `json:"locked"`
	TotalSent     string `json:"total_sent"`
	TotalReceived string `json:"total_received"`
}

// FungibleBalance is one fungible token entry, keyed in the response by the
// on-chain identifier "address.contract::asset".
type FungibleBalance struct {
	Balance       string `json:"balance"`
	TotalSent     string `json:"total_sent"`
	TotalReceived string `json:"total_received"`
}

// NonFungibleCounts is one non-fungible token entry.
type NonFungibleCounts struct {
	Count         string `json:"count"`
	TotalSent     string `json:"total_sent"`
	TotalReceived string `json:"total_received"`
}
