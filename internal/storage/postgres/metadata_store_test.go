package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stacks-wallet-core/internal/domain"
	"stacks-wallet-core/internal/storage"
)

func boolPtr(b bool) *bool { return &b }

func TestMetadataStorePutGet(t *testing.T) {
	pool := setupTestDB(t)
	store := NewMetadataStore(pool)
	ctx := context.Background()

	key := domain.MetaKey{
		ContractAddress: "SP2C2YFP12AJZB4MABJBAJ55XECVS7E4PMMZ89YZR",
		ContractName:    "arkadiko-token",
		NetworkURL:      "https://api.mainnet.hiro.so",
	}
	meta := &domain.FungibleMeta{
		Name:           "Arkadiko",
		Symbol:         "DIKO",
		Decimals:       6,
		IsTransferable: boolPtr(true),
		FetchedAt:      time.Now().Unix(),
	}

	require.NoError(t, store.Put(ctx, key, meta))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, meta.Name, got.Name)
	require.Equal(t, meta.Symbol, got.Symbol)
	require.Equal(t, meta.Decimals, got.Decimals)
	require.NotNil(t, got.IsTransferable)
	require.True(t, *got.IsTransferable)
	require.Equal(t, meta.FetchedAt, got.FetchedAt)
}

func TestMetadataStoreGetNotFound(t *testing.T) {
	pool := setupTestDB(t)
	store := NewMetadataStore(pool)

	_, err := store.Get(context.Background(), domain.MetaKey{
		ContractAddress: "SP000000000000000000002Q6VF78",
		ContractName:    "missing",
		NetworkURL:      "https://api.mainnet.hiro.so",
	})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMetadataStoreUpsert(t *testing.T) {
	pool := setupTestDB(t)
	store := NewMetadataStore(pool)
	ctx := context.Background()

	key := domain.MetaKey{
		ContractAddress: "SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE",
		ContractName:    "token",
		NetworkURL:      "https://api.mainnet.hiro.so",
	}

	require.NoError(t, store.Put(ctx, key, &domain.FungibleMeta{
		Name:     "Old Name",
		Symbol:   "OLD",
		Decimals: 0,
	}))
	require.NoError(t, store.Put(ctx, key, &domain.FungibleMeta{
		Name:           "New Name",
		Symbol:         "NEW",
		Decimals:       8,
		IsTransferable: boolPtr(false),
		FetchedAt:      42,
	}))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "New Name", got.Name)
	require.Equal(t, "NEW", got.Symbol)
	require.Equal(t, 8, got.Decimals)
	require.NotNil(t, got.IsTransferable)
	require.False(t, *got.IsTransferable)
	require.Equal(t, int64(42), got.FetchedAt)
}

func TestMetadataStoreNetworkIsolation(t *testing.T) {
	pool := setupTestDB(t)
	store := NewMetadataStore(pool)
	ctx := context.Background()

	mainnet := domain.MetaKey{
		ContractAddress: "SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE",
		ContractName:    "token",
		NetworkURL:      "https://api.mainnet.hiro.so",
	}
	testnet := mainnet
	testnet.NetworkURL = "https://api.testnet.hiro.so"

	require.NoError(t, store.Put(ctx, mainnet, &domain.FungibleMeta{Symbol: "MAIN"}))

	_, err := store.Get(ctx, testnet)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Put(ctx, testnet, &domain.FungibleMeta{Symbol: "TEST"}))

	gotMain, err := store.Get(ctx, mainnet)
	require.NoError(t, err)
	require.Equal(t, "MAIN", gotMain.Symbol)

	gotTest, err := store.Get(ctx, testnet)
	require.NoError(t, err)
	require.Equal(t, "TEST", gotTest.Symbol)
}

func TestMetadataStoreInvalidInput(t *testing.T) {
	pool := setupTestDB(t)
	store := NewMetadataStore(pool)
	ctx := context.Background()

	err := store.Put(ctx, domain.MetaKey{
		ContractAddress: "SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE",
		ContractName:    "token",
	}, nil)
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Put(ctx, domain.MetaKey{}, &domain.FungibleMeta{Symbol: "X"})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
