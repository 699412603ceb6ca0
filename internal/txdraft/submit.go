package txdraft

import (
	"context"
	"fmt"

	"stacks-wallet-core/internal/codec"
	"stacks-wallet-core/internal/domain"
)

// ValidationError is a user-facing problem with one request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmitStatus is the outcome of a submission attempt.
type SubmitStatus string

const (
	// SubmitReady carries a draft that can go straight to signing.
	SubmitReady SubmitStatus = "ready"

	// SubmitHighFeeConfirmationRequired carries a valid draft whose fee
	// exceeds the confirmation threshold; the caller must confirm before
	// proceeding.
	SubmitHighFeeConfirmationRequired SubmitStatus = "high_fee_confirmation_required"

	// SubmitValidationFailed carries field errors and no draft.
	SubmitValidationFailed SubmitStatus = "validation_failed"
)

// SubmitResult is the gated outcome of Submit.
type SubmitResult struct {
	Status SubmitStatus
	Draft  *Draft
	Errors []ValidationError
}

// Validate checks the request fields. Errors are collected, not
// short-circuited, so a form can surface all of them at once.
func (p *Pipeline) Validate() []ValidationError {
	req := p.request.Get()
	decimals := p.assetDecimals.Get()

	var errs []ValidationError

	switch req.Kind {
	case domain.PayloadKindTokenTransfer:
		if req.Recipient == "" {
			errs = append(errs, ValidationError{Field: "recipient", Message: "recipient is required"})
		} else if !codec.ValidateStacksAddress(req.Recipient) {
			errs = append(errs, ValidationError{Field: "recipient", Message: "not a valid Stacks address"})
		}
		if req.Amount.Sign() <= 0 {
			errs = append(errs, ValidationError{Field: "amount", Message: "amount must be positive"})
		} else if req.Amount.Exponent() < 0 && int(-req.Amount.Exponent()) > decimals {
			errs = append(errs, ValidationError{
				Field:   "amount",
				Message: fmt.Sprintf("amount has more than %d decimal places", decimals),
			})
		}
		if len(req.Memo) > codec.MemoMaxLength {
			errs = append(errs, ValidationError{
				Field:   "memo",
				Message: fmt.Sprintf("memo exceeds %d bytes", codec.MemoMaxLength),
			})
		}
	case domain.PayloadKindContractCall:
		if !codec.ValidateStacksAddress(req.ContractAddress) {
			errs = append(errs, ValidationError{Field: "contractAddress", Message: "not a valid Stacks address"})
		}
		if req.ContractName == "" {
			errs = append(errs, ValidationError{Field: "contractName", Message: "contract name is required"})
		}
		if req.FunctionName == "" {
			errs = append(errs, ValidationError{Field: "functionName", Message: "function name is required"})
		}
	default:
		errs = append(errs, ValidationError{Field: "kind", Message: "unknown payload kind"})
	}

	return errs
}

// Submit runs validation and the high-fee gate over the resolved draft.
// Validation errors take precedence: the fee check only applies to a clean
// form. A fee strictly above the threshold requires confirmation; at or
// below it the draft is ready.
func (p *Pipeline) Submit(ctx context.Context) (*SubmitResult, error) {
	if errs := p.Validate(); len(errs) > 0 {
		return &SubmitResult{Status: SubmitValidationFailed, Errors: errs}, nil
	}

	draft, err := p.Draft(ctx)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("draft not resolved")
	}

	if microToSTX(draft.Fee).GreaterThan(HighFeeThresholdSTX) {
		return &SubmitResult{Status: SubmitHighFeeConfirmationRequired, Draft: draft}, nil
	}
	return &SubmitResult{Status: SubmitReady, Draft: draft}, nil
}
