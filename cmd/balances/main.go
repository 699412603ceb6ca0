// Command balances prints the reconciled asset holdings of a Stacks
// account: confirmed balances, pending amounts from the mempool view and
// NFT counts. With --watch it keeps running and refreshes on address
// transaction notifications from the node's websocket feed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stacks-wallet-core/internal/accountstate"
	"stacks-wallet-core/internal/config"
	"stacks-wallet-core/internal/domain"
	"stacks-wallet-core/internal/enrichment"
	"stacks-wallet-core/internal/log"
	"stacks-wallet-core/internal/stacksapi"
	"stacks-wallet-core/internal/storage"
	"stacks-wallet-core/internal/storage/memory"
	"stacks-wallet-core/internal/storage/migrations"
	pgstore "stacks-wallet-core/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	principal := flag.String("principal", "", "Stacks address to inspect")
	apiURL := flag.String("api-url", cfg.APIURL, "Stacks node API base URL")
	wsURL := flag.String("ws-url", cfg.WSURL, "Stacks node websocket URL")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL DSN for the metadata cache (empty for in-memory)")
	watch := flag.Bool("watch", false, "Keep running and refresh on address transactions")
	asJSON := flag.Bool("json", false, "Print records as JSON")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error")

	flag.Parse()

	logger := log.New(*logLevel)

	if *principal == "" {
		logger.Fatal().Msg("--principal is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var metaStore storage.MetadataStore = memory.NewMetadataStore()
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		metaStore = pgstore.NewMetadataStore(pool)
	}

	client := stacksapi.NewClient(*apiURL, stacksapi.WithLogger(logger))
	enricher := enrichment.New(metaStore, client, *apiURL, logger)
	state := accountstate.New(client, enricher, *principal)

	if err := printBalances(ctx, state, *asJSON); err != nil {
		logger.Fatal().Err(err).Msg("fetch balances")
	}

	if !*watch {
		return
	}

	ws, err := stacksapi.NewWSClient(ctx, *wsURL, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect websocket")
	}
	defer ws.Close()

	notifications, err := ws.SubscribeAddressTransactions(ctx, *principal)
	if err != nil {
		logger.Fatal().Err(err).Msg("subscribe to address transactions")
	}
	logger.Info().Str("principal", *principal).Msg("watching for address transactions")

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			logger.Info().Str("txid", n.TxID).Str("status", n.TxStatus).Msg("address transaction")
			state.Refresh()
			if err := printBalances(ctx, state, *asJSON); err != nil {
				logger.Error().Err(err).Msg("refresh balances")
			}
		}
	}
}

func printBalances(ctx context.Context, state *accountstate.AccountState, asJSON bool) error {
	stx, err := state.STXToken(ctx)
	if err != nil {
		return err
	}
	fungible, err := state.FungibleTokens(ctx)
	if err != nil {
		return err
	}
	nfts, err := state.NftHoldings(ctx)
	if err != nil {
		return err
	}

	records := append([]domain.AssetRecord{stx}, fungible...)
	records = append(records, nfts...)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, rec := range records {
		switch rec.Kind {
		case domain.AssetKindNonFungible:
			fmt.Printf("%-12s %-40s count=%s pending=%s\n",
				rec.Kind, rec.DisplayName, rec.Count, rec.PendingCount)
		default:
			fmt.Printf("%-12s %-40s balance=%s pending=%s\n",
				rec.Kind, rec.DisplayName, rec.Balance, rec.PendingDelta)
		}
	}
	return nil
}
