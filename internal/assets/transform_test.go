package assets

import (
	"errors"
	"reflect"
	"testing"

	"stacks-wallet-core/internal/domain"
)

func sampleResponse() *domain.BalancesResponse {
	return &domain.BalancesResponse{
		STX: domain.STXBalance{Balance: "5000000", Locked: "1000000"},
		FungibleTokens: map[string]domain.FungibleBalance{
			"SP2C2YFP12AJZB4M.token-contract::my-token": {Balance: "100"},
			"SP1ABCDEF.other::coin":                     {Balance: "7"},
		},
		NonFungibleCount: map[string]domain.NonFungibleCounts{
			"SP1ABCDEF.punks::punk": {Count: "2", TotalSent: "1", TotalReceived: "3"},
		},
	}
}

func TestTransform_ShapeAndOrder(t *testing.T) {
	records, err := Transform(sampleResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	if records[0].Kind != domain.AssetKindNative {
		t.Errorf("expected native record first, got %s", records[0].Kind)
	}
	// Raw balance preserved: locked subtraction is AvailableSTX's job.
	if got := records[0].Balance.String(); got != "5000000" {
		t.Errorf("expected raw stx balance 5000000, got %s", got)
	}

	// Fungible entries in sorted identifier order.
	if records[1].IdentityKey() != "SP1ABCDEF.other" {
		t.Errorf("expected SP1ABCDEF.other second, got %s", records[1].IdentityKey())
	}
	if records[2].IdentityKey() != "SP2C2YFP12AJZB4M.token-contract" {
		t.Errorf("expected SP2C2YFP12AJZB4M.token-contract third, got %s", records[2].IdentityKey())
	}
	if records[2].DisplayName != "my-token" {
		t.Errorf("expected display name my-token, got %q", records[2].DisplayName)
	}

	nftRec := records[3]
	if nftRec.Kind != domain.AssetKindNonFungible {
		t.Fatalf("expected non-fungible record last, got %s", nftRec.Kind)
	}
	if nftRec.Count.String() != "2" || nftRec.TotalSent.String() != "1" || nftRec.TotalReceived.String() != "3" {
		t.Errorf("nft counts wrong: count=%s sent=%s received=%s",
			nftRec.Count, nftRec.TotalSent, nftRec.TotalReceived)
	}
}

func TestTransform_Idempotent(t *testing.T) {
	first, err := Transform(sampleResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Transform(sampleResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("transform is not deterministic over the same response")
	}
}

func TestTransform_SkipsZeroBalances(t *testing.T) {
	resp := sampleResponse()
	resp.FungibleTokens["SP9ZERO.empty::nothing"] = domain.FungibleBalance{Balance: "0"}
	resp.NonFungibleCount["SP9ZERO.gone::none"] = domain.NonFungibleCounts{Count: "0"}

	records, err := Transform(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rec := range records {
		if rec.ContractAddress == "SP9ZERO" {
			t.Errorf("zero-balance entry %s should have been skipped", rec.IdentityKey())
		}
	}
}

func TestTransform_MalformedIdentifierFailsFast(t *testing.T) {
	resp := sampleResponse()
	resp.FungibleTokens["SP2C2YFP12AJZB4M.token-contract"] = domain.FungibleBalance{Balance: "1"}

	_, err := Transform(resp)
	if !errors.Is(err, ErrMalformedIdentifier) {
		t.Errorf("expected ErrMalformedIdentifier, got %v", err)
	}
}

func TestTransform_NilResponse(t *testing.T) {
	records, err := Transform(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records != nil {
		t.Errorf("expected nil records for nil response, got %v", records)
	}
}

func TestAvailableSTX(t *testing.T) {
	available, err := AvailableSTX(sampleResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := available.String(); got != "4000000" {
		t.Errorf("expected 4000000, got %s", got)
	}
}
