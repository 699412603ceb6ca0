package assets

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/shopspring/decimal"

	"stacks-wallet-core/internal/domain"
)

// Transform converts a raw balances response into normalized asset records:
// the native record first, then fungible entries, then non-fungible entries.
// Map entries are visited in sorted identifier order so the output is
// deterministic for a given response.
//
// Balances are kept raw; the locked amount is not subtracted here (see
// AvailableSTX). Entries that are zero in the response are skipped, they
// convey no holding.
func Transform(resp *domain.BalancesResponse) ([]domain.AssetRecord, error) {
	if resp == nil {
		return nil, nil
	}

	stxBalance, err := parseAmount(resp.STX.Balance, "stx.balance")
	if err != nil {
		return nil, err
	}

	records := []domain.AssetRecord{{
		Kind:        domain.AssetKindNative,
		DisplayName: "Stacks Token",
		Subtitle:    "STX",
		Balance:     stxBalance,
	}}

	for _, id := range sortedKeys(resp.FungibleTokens) {
		entry := resp.FungibleTokens[id]
		parsed, err := ParseAssetIdentifier(id)
		if err != nil {
			return nil, err
		}
		balance, err := parseAmount(entry.Balance, id)
		if err != nil {
			return nil, err
		}
		if balance.IsZero() {
			continue
		}
		records = append(records, domain.AssetRecord{
			Kind:            domain.AssetKindFungible,
			ContractAddress: parsed.ContractAddress,
			ContractName:    parsed.ContractName,
			DisplayName:     parsed.AssetName,
			Subtitle:        abbreviateAddress(parsed.ContractAddress) + "." + parsed.ContractName,
			Balance:         balance,
		})
	}

	for _, id := range sortedKeys(resp.NonFungibleCount) {
		entry := resp.NonFungibleCount[id]
		parsed, err := ParseAssetIdentifier(id)
		if err != nil {
			return nil, err
		}
		count, err := parseCount(entry.Count, id)
		if err != nil {
			return nil, err
		}
		if count.Sign() == 0 {
			continue
		}
		totalSent, err := parseCount(entry.TotalSent, id)
		if err != nil {
			return nil, err
		}
		totalReceived, err := parseCount(entry.TotalReceived, id)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.AssetRecord{
			Kind:            domain.AssetKindNonFungible,
			ContractAddress: parsed.ContractAddress,
			ContractName:    parsed.ContractName,
			DisplayName:     parsed.AssetName,
			Subtitle:        abbreviateAddress(parsed.ContractAddress) + "." + parsed.ContractName,
			Balance:         decimal.NewFromBigInt(count, 0),
			Count:           count,
			TotalSent:       totalSent,
			TotalReceived:   totalReceived,
		})
	}

	return records, nil
}

// AvailableSTX is the spendable native balance: confirmed balance minus the
// locked (stacked) amount.
func AvailableSTX(resp *domain.BalancesResponse) (decimal.Decimal, error) {
	balance, err := parseAmount(resp.STX.Balance, "stx.balance")
	if err != nil {
		return decimal.Decimal{}, err
	}
	locked, err := parseAmount(resp.STX.Locked, "stx.locked")
	if err != nil {
		return decimal.Decimal{}, err
	}
	return balance.Sub(locked), nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse balance %s: %w", field, err)
	}
	return d, nil
}

func parseCount(raw, field string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("parse count %s: invalid integer %q", field, raw)
	}
	return n, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// abbreviateAddress shortens a principal for display subtitles.
func abbreviateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:5] + "…" + address[len(address)-5:]
}
