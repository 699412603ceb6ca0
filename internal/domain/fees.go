package domain

// FeeEstimation is one row of a fee estimation response, in microSTX.
type FeeEstimation struct {
	Fee     uint64 `json:"fee"`
	FeeRate uint64 `json:"fee_rate"`
}

// FeeEstimations is the fee estimator response for a serialized payload.
type FeeEstimations struct {
	Estimations  []FeeEstimation `json:"estimations"`
	CostScalar   uint64          `json:"cost_scalar,omitempty"`
	EstimatedLen uint64          `json:"estimated_len,omitempty"`
}
