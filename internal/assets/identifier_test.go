package assets

import (
	"errors"
	"testing"
)

func TestParseAssetIdentifier(t *testing.T) {
	id, err := ParseAssetIdentifier("SP2C2YFP12AJZB4M.token-contract::my-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.ContractAddress != "SP2C2YFP12AJZB4M" {
		t.Errorf("expected contract address SP2C2YFP12AJZB4M, got %q", id.ContractAddress)
	}
	if id.ContractName != "token-contract" {
		t.Errorf("expected contract name token-contract, got %q", id.ContractName)
	}
	if id.AssetName != "my-token" {
		t.Errorf("expected asset name my-token, got %q", id.AssetName)
	}
}

func TestParseAssetIdentifier_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing asset separator", "SP2C2YFP12AJZB4M.token-contract"},
		{"missing dot", "SP2C2YFP12AJZB4M::my-token"},
		{"empty", ""},
		{"empty asset name", "SP2C2YFP12AJZB4M.token-contract::"},
		{"empty contract name", "SP2C2YFP12AJZB4M.::my-token"},
		{"empty address", ".token-contract::my-token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAssetIdentifier(tc.raw)
			if !errors.Is(err, ErrMalformedIdentifier) {
				t.Errorf("expected ErrMalformedIdentifier for %q, got %v", tc.raw, err)
			}
		})
	}
}
