// Package txdraft builds unsigned transaction drafts from form state. The
// pipeline is staged: the request feeds nonce resolution, the nonce and fee
// feed draft construction, and each stage is a memoized reactive node so an
// edit only recomputes the stages downstream of what actually changed.
package txdraft

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"stacks-wallet-core/internal/codec"
	"stacks-wallet-core/internal/domain"
	"stacks-wallet-core/internal/reactive"
	"stacks-wallet-core/internal/stacksapi"
)

// Account identifies the sender: the principal and the compressed public
// key the spending condition commits to. Key custody lives elsewhere.
type Account struct {
	Principal    string
	PublicKeyHex string
}

// Draft is a fully resolved unsigned transaction ready for signing.
type Draft struct {
	Tx         *codec.Transaction
	Bytes      []byte
	Hex        string
	ByteLength int
	Fee        uint64 // microSTX
	Nonce      uint64
	Sponsored  bool
}

// payloadTemplate carries the serialized shape of the current request with
// placeholder fee and nonce, used for byte-length and fee estimation.
type payloadTemplate struct {
	payloadHex string
	byteLength int
}

// Pipeline derives an unsigned transaction draft from the pending request.
type Pipeline struct {
	nonceSource stacksapi.NonceSource
	feeSource   stacksapi.FeeSource
	logger      zerolog.Logger

	graph *reactive.Graph

	request       *reactive.Input[domain.PendingTransactionRequest]
	account       *reactive.Input[*Account]
	network       *reactive.Input[domain.Network]
	assetDecimals *reactive.Input[int]
	customNonce   *reactive.Input[*uint64]
	feeOverride   *reactive.Input[*uint64]

	fetchedNonce   *reactive.AsyncInput[uint64]
	feeEstimations *reactive.AsyncInput[*domain.FeeEstimations]

	template *reactive.Derived[*payloadTemplate]
	nonce    *reactive.Derived[*uint64]
	fee      *reactive.Derived[*uint64]
	draft    *reactive.Derived[*Draft]
}

// NewPipeline wires the draft stages for one sender on one network.
func NewPipeline(nonceSource stacksapi.NonceSource, feeSource stacksapi.FeeSource, account Account, network domain.Network, logger zerolog.Logger) *Pipeline {
	g := reactive.NewGraph()

	p := &Pipeline{
		nonceSource: nonceSource,
		feeSource:   feeSource,
		logger:      logger.With().Str("component", "txdraft").Logger(),
		graph:       g,
	}

	p.request = reactive.NewInput[domain.PendingTransactionRequest](g)
	p.account = reactive.NewInput[*Account](g)
	p.network = reactive.NewInput[domain.Network](g)
	p.assetDecimals = reactive.NewInput[int](g)
	p.customNonce = reactive.NewInput[*uint64](g)
	p.feeOverride = reactive.NewInput[*uint64](g)

	p.account.Set(&account)
	p.network.Set(network)
	p.assetDecimals.Set(microSTXDecimals)

	p.fetchedNonce = reactive.NewAsyncInput(g, func(ctx context.Context) (uint64, error) {
		acct := p.account.Get()
		if acct == nil {
			return 0, fmt.Errorf("no account selected")
		}
		return p.nonceSource.GetNextNonce(ctx, acct.Principal)
	})

	p.feeEstimations = reactive.NewAsyncInput(g, p.fetchFeeEstimations)

	p.template = reactive.NewDerived(g, p.computeTemplate,
		p.request, p.account, p.network, p.assetDecimals)

	p.nonce = reactive.NewDerived(g, func() (*uint64, error) {
		if custom := p.customNonce.Peek(); custom != nil {
			n := *custom
			return &n, nil
		}
		if fetched, ok := p.fetchedNonce.Peek(); ok {
			return &fetched, nil
		}
		return nil, nil
	}, p.customNonce, p.fetchedNonce)

	p.fee = reactive.NewDerived(g, func() (*uint64, error) {
		if override := p.feeOverride.Peek(); override != nil {
			f := *override
			return &f, nil
		}
		est, ok := p.feeEstimations.Peek()
		if !ok || est == nil || len(est.Estimations) == 0 {
			return nil, nil
		}
		middle := est.Estimations[len(est.Estimations)/2].Fee
		return &middle, nil
	}, p.feeOverride, p.feeEstimations)

	p.draft = reactive.NewDerived(g, p.computeDraft,
		p.request, p.account, p.network, p.assetDecimals, p.nonce, p.fee)

	return p
}

// SetRequest replaces the whole pending request. Fee and nonce overrides
// are taken from the request, so every downstream stage invalidates.
func (p *Pipeline) SetRequest(req domain.PendingTransactionRequest) {
	p.request.Set(req)
	p.customNonce.Set(req.CustomNonce)
	if req.Fee != nil {
		micro := stxToMicro(*req.Fee)
		p.feeOverride.Set(&micro)
	} else {
		p.feeOverride.Set(nil)
	}
	p.feeEstimations.Invalidate()
}

// Request returns the current pending request.
func (p *Pipeline) Request() domain.PendingTransactionRequest {
	return p.request.Get()
}

// SelectAsset switches the request to a different asset, clearing the
// asset-dependent amount and fee fields.
func (p *Pipeline) SelectAsset(rec domain.AssetRecord, assetID string) {
	req := p.request.Get()
	req.AssetID = assetID
	if rec.Kind == domain.AssetKindNative {
		req.AssetID = ""
	}
	req.ContractAddress = rec.ContractAddress
	req.ContractName = rec.ContractName
	req.ClearAssetDependentFields()
	p.request.Set(req)
	p.feeOverride.Set(nil)

	decimals := microSTXDecimals
	if rec.Kind == domain.AssetKindFungible && rec.Meta != nil {
		decimals = rec.Meta.Decimals
	}
	p.assetDecimals.Set(decimals)
	p.feeEstimations.Invalidate()
}

// SetFee sets an explicit fee in STX. Conversion to microSTX happens here,
// once; only the draft stage recomputes.
func (p *Pipeline) SetFee(stx decimal.Decimal) {
	micro := stxToMicro(stx)
	p.feeOverride.Set(&micro)
}

// ClearFee removes the explicit fee so estimation takes over again.
func (p *Pipeline) ClearFee() {
	p.feeOverride.Set(nil)
}

// SetCustomNonce overrides the network-derived nonce. nil restores it.
func (p *Pipeline) SetCustomNonce(n *uint64) {
	p.customNonce.Set(n)
}

// Nonce resolves and returns the effective nonce: the custom override when
// set, else the fetched next nonce.
func (p *Pipeline) Nonce(ctx context.Context) (*uint64, error) {
	if p.customNonce.Get() == nil {
		if err := p.fetchedNonce.Resolve(ctx); err != nil {
			return nil, fmt.Errorf("resolve nonce: %w", err)
		}
	}
	return p.nonce.Value()
}

// Fee resolves and returns the effective fee in microSTX: the explicit fee
// when set, else the middle estimation row, else nil while estimation is
// still pending and no byte length is known yet.
func (p *Pipeline) Fee(ctx context.Context) (*uint64, error) {
	if p.feeOverride.Get() == nil {
		if err := p.feeEstimations.Resolve(ctx); err != nil {
			return nil, fmt.Errorf("resolve fee estimations: %w", err)
		}
	}
	return p.fee.Value()
}

// Draft resolves all stages and returns the unsigned transaction draft.
// (nil, nil) means the inputs are not yet complete enough to form one.
func (p *Pipeline) Draft(ctx context.Context) (*Draft, error) {
	if _, err := p.Nonce(ctx); err != nil {
		return nil, err
	}
	if _, err := p.Fee(ctx); err != nil {
		return nil, err
	}
	return p.draft.Value()
}

// fetchFeeEstimations estimates against the node and falls back to the
// simulated schedule when the estimator fails or returns nothing usable.
func (p *Pipeline) fetchFeeEstimations(ctx context.Context) (*domain.FeeEstimations, error) {
	tmpl, err := p.template.Value()
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		// Request cannot form a payload yet; nothing to estimate. The
		// next request edit invalidates this input and refetches.
		return nil, nil
	}

	est, err := p.feeSource.EstimateFees(ctx, tmpl.payloadHex, tmpl.byteLength)
	if err != nil || est == nil || len(est.Estimations) == 0 {
		if err != nil {
			p.logger.Debug().Err(err).Msg("fee estimation failed, using simulated schedule")
		}
		return SimulatedFeeEstimations(tmpl.byteLength), nil
	}
	return ApplyFeeMaxValues(est), nil
}

// computeTemplate serializes the current request with placeholder fee and
// nonce. nil when the request cannot form a payload yet.
func (p *Pipeline) computeTemplate() (*payloadTemplate, error) {
	req := p.request.Peek()
	acct := p.account.Peek()
	if acct == nil {
		return nil, nil
	}

	payload := p.buildPayload(req, p.assetDecimals.Peek())
	if payload == nil {
		return nil, nil
	}

	tx, err := codec.BuildUnsignedTransaction(payload, 0, 0, acct.PublicKeyHex, p.network.Peek())
	if err != nil {
		return nil, nil
	}
	raw, err := tx.Serialize()
	if err != nil {
		return nil, nil
	}
	payloadHex, err := tx.SerializePayloadHex()
	if err != nil {
		return nil, nil
	}
	return &payloadTemplate{payloadHex: payloadHex, byteLength: len(raw)}, nil
}

// computeDraft assembles the final unsigned transaction once every stage
// has resolved. A structurally invalid request yields no draft and no
// error; validation reports the field problem at submit time.
func (p *Pipeline) computeDraft() (*Draft, error) {
	req := p.request.Peek()
	acct := p.account.Peek()
	if acct == nil {
		return nil, nil
	}
	noncePtr := p.nonce.Peek()
	feePtr := p.fee.Peek()
	if noncePtr == nil || feePtr == nil {
		return nil, nil
	}

	payload := p.buildPayload(req, p.assetDecimals.Peek())
	if payload == nil {
		return nil, nil
	}

	tx, err := codec.BuildUnsignedTransaction(payload, *feePtr, *noncePtr, acct.PublicKeyHex, p.network.Peek())
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	raw, err := tx.Serialize()
	if err != nil {
		return nil, nil
	}
	hexForm, err := tx.SerializeHex()
	if err != nil {
		return nil, nil
	}

	return &Draft{
		Tx:         tx,
		Bytes:      raw,
		Hex:        hexForm,
		ByteLength: len(raw),
		Fee:        tx.Fee(),
		Nonce:      tx.NonceValue(),
		Sponsored:  tx.IsSponsored(),
	}, nil
}

// buildPayload constructs the wire payload for the request kind. nil means
// the request cannot form a valid payload: missing fields or, for contract
// calls, a contract address that fails c32check decoding.
func (p *Pipeline) buildPayload(req domain.PendingTransactionRequest, decimals int) codec.Payload {
	switch req.Kind {
	case domain.PayloadKindTokenTransfer:
		if req.Recipient == "" || !codec.ValidateStacksAddress(req.Recipient) {
			return nil
		}
		amount := req.Amount.Shift(int32(decimals))
		if !amount.IsInteger() || amount.Sign() <= 0 {
			return nil
		}
		return &codec.TokenTransferPayload{
			Recipient: req.Recipient,
			Amount:    uint64(amount.IntPart()),
			Memo:      req.Memo,
		}
	case domain.PayloadKindContractCall:
		if !codec.ValidateStacksAddress(req.ContractAddress) {
			return nil
		}
		if req.ContractName == "" || req.FunctionName == "" {
			return nil
		}
		return &codec.ContractCallPayload{
			ContractAddress: req.ContractAddress,
			ContractName:    req.ContractName,
			FunctionName:    req.FunctionName,
		}
	default:
		return nil
	}
}

// Recompute counters for the three stages, used to assert invalidation
// granularity.
func (p *Pipeline) NonceRecomputes() uint64 { return p.nonce.Recomputes() }
func (p *Pipeline) FeeRecomputes() uint64   { return p.fee.Recomputes() }
func (p *Pipeline) DraftRecomputes() uint64 { return p.draft.Recomputes() }
