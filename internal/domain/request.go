package domain

import "github.com/shopspring/decimal"

// PayloadKind discriminates the transaction payloads the wallet can build.
type PayloadKind string

const (
	PayloadKindTokenTransfer PayloadKind = "token_transfer"
	PayloadKindContractCall  PayloadKind = "contract_call"
)

// IsValid checks if the payload kind is a valid value.
func (p PayloadKind) IsValid() bool {
	return p == PayloadKindTokenTransfer || p == PayloadKindContractCall
}

// PendingTransactionRequest is the transaction the user is building, owned
// exclusively by the active send flow. Amounts and fees are in user-facing
// display units (STX, or the token's own unit); conversion to the chain's
// base unit happens once, at the pipeline input boundary.
type PendingTransactionRequest struct {
	Kind      PayloadKind
	Recipient string
	Amount    decimal.Decimal
	AssetID   string // on-chain identifier of the selected asset, empty for STX
	Memo      string

	// Fee is nil until estimated or explicitly set by the user.
	Fee *decimal.Decimal

	// CustomNonce overrides the network-derived next nonce when set.
	CustomNonce *uint64

	// Contract call fields, unused for token transfers.
	ContractAddress string
	ContractName    string
	FunctionName    string

	Attachment []byte
}

// ClearAssetDependentFields resets amount and fee. Both are asset dependent
// (decimal scale and fee size change with the asset) so re-selecting an
// asset must not carry them over.
func (r *PendingTransactionRequest) ClearAssetDependentFields() {
	r.Amount = decimal.Decimal{}
	r.Fee = nil
}
