package txdraft

import (
	"github.com/shopspring/decimal"

	"stacks-wallet-core/internal/domain"
)

// microSTXPerSTX converts between the display unit and the chain base unit.
const microSTXDecimals = 6

// HighFeeThresholdSTX is the fee above which submission routes through an
// explicit confirmation instead of going out directly.
var HighFeeThresholdSTX = decimal.NewFromInt(5)

// Simulated fee floors in microSTX, one per estimation tier. A tiny
// transaction still needs a plausible fee to get mined.
var simulatedFeeFloors = [3]uint64{250, 500, 750}

// Fee ceilings in microSTX applied to every estimation row. Node estimators
// under mempool pressure return fees nobody should pay unprompted.
var feeMaxValues = [3]uint64{500_000, 750_000, 2_000_000}

// SimulatedFeeEstimations is the deterministic fallback schedule used when
// the node cannot estimate: three tiers derived purely from the serialized
// transaction byte length.
func SimulatedFeeEstimations(byteLength int) *domain.FeeEstimations {
	base := uint64(byteLength)
	tiers := [3]uint64{
		base,
		base + base/4,
		base + base/2,
	}
	est := &domain.FeeEstimations{EstimatedLen: uint64(byteLength)}
	for i, fee := range tiers {
		if fee < simulatedFeeFloors[i] {
			fee = simulatedFeeFloors[i]
		}
		est.Estimations = append(est.Estimations, domain.FeeEstimation{Fee: fee})
	}
	return est
}

// ApplyFeeMaxValues caps each estimation row at its tier ceiling. Rows
// beyond the third tier use the highest ceiling.
func ApplyFeeMaxValues(est *domain.FeeEstimations) *domain.FeeEstimations {
	if est == nil {
		return nil
	}
	capped := &domain.FeeEstimations{
		CostScalar:   est.CostScalar,
		EstimatedLen: est.EstimatedLen,
	}
	for i, row := range est.Estimations {
		max := feeMaxValues[len(feeMaxValues)-1]
		if i < len(feeMaxValues) {
			max = feeMaxValues[i]
		}
		if row.Fee > max {
			row.Fee = max
		}
		capped.Estimations = append(capped.Estimations, row)
	}
	return capped
}

// stxToMicro converts a display-unit STX amount to microSTX, truncating any
// precision beyond the chain's six decimals.
func stxToMicro(stx decimal.Decimal) uint64 {
	return uint64(stx.Shift(microSTXDecimals).IntPart())
}

// microToSTX converts microSTX back to the display unit.
func microToSTX(micro uint64) decimal.Decimal {
	return decimal.New(int64(micro), -microSTXDecimals)
}
