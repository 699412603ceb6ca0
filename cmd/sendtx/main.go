// Command sendtx drafts an unsigned Stacks transaction from form-style
// inputs: it resolves the nonce, estimates or accepts a fee, validates the
// request and prints the serialized transaction ready for signing. High
// fees require an explicit --confirm-high-fee.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"stacks-wallet-core/internal/config"
	"stacks-wallet-core/internal/domain"
	"stacks-wallet-core/internal/log"
	"stacks-wallet-core/internal/stacksapi"
	"stacks-wallet-core/internal/txdraft"
)

func main() {
	cfg := config.Load()

	principal := flag.String("principal", "", "Sender Stacks address")
	publicKey := flag.String("public-key", "", "Sender compressed public key, hex")
	recipient := flag.String("recipient", "", "Recipient Stacks address")
	amount := flag.String("amount", "", "Amount in STX")
	memo := flag.String("memo", "", "Transfer memo, up to 34 bytes")
	feeFlag := flag.String("fee", "", "Explicit fee in STX (empty to estimate)")
	nonceFlag := flag.Int64("nonce", -1, "Custom nonce (-1 to fetch the next nonce)")
	networkName := flag.String("network", cfg.Network, "Network: mainnet or testnet")
	apiURL := flag.String("api-url", cfg.APIURL, "Stacks node API base URL")
	confirmHighFee := flag.Bool("confirm-high-fee", false, "Proceed even when the fee exceeds the confirmation threshold")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error")

	flag.Parse()

	logger := log.New(*logLevel)

	for name, v := range map[string]string{
		"principal":  *principal,
		"public-key": *publicKey,
		"recipient":  *recipient,
		"amount":     *amount,
	} {
		if v == "" {
			logger.Fatal().Msgf("--%s is required", name)
		}
	}

	network := domain.Mainnet()
	if *networkName == "testnet" {
		network = domain.Testnet()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := stacksapi.NewClient(*apiURL, stacksapi.WithLogger(logger))

	pipeline := txdraft.NewPipeline(client, client,
		txdraft.Account{Principal: *principal, PublicKeyHex: *publicKey},
		network, logger)

	req := domain.PendingTransactionRequest{
		Kind:      domain.PayloadKindTokenTransfer,
		Recipient: *recipient,
		Memo:      *memo,
	}

	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid --amount")
	}
	req.Amount = amt

	if *feeFlag != "" {
		fee, err := decimal.NewFromString(*feeFlag)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid --fee")
		}
		req.Fee = &fee
	}
	if *nonceFlag >= 0 {
		n := uint64(*nonceFlag)
		req.CustomNonce = &n
	}

	pipeline.SetRequest(req)

	result, err := pipeline.Submit(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("build draft")
	}

	switch result.Status {
	case txdraft.SubmitValidationFailed:
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "invalid %s\n", e.Error())
		}
		os.Exit(1)
	case txdraft.SubmitHighFeeConfirmationRequired:
		if !*confirmHighFee {
			fmt.Fprintf(os.Stderr, "fee of %d microSTX exceeds the high-fee threshold; rerun with --confirm-high-fee\n",
				result.Draft.Fee)
			os.Exit(1)
		}
	}

	draft := result.Draft
	txid, err := draft.Tx.TxID()
	if err != nil {
		logger.Fatal().Err(err).Msg("compute txid")
	}

	fmt.Printf("network:  %s\n", network.Name)
	fmt.Printf("nonce:    %d\n", draft.Nonce)
	fmt.Printf("fee:      %d microSTX\n", draft.Fee)
	fmt.Printf("bytes:    %d\n", draft.ByteLength)
	fmt.Printf("txid:     %s\n", txid)
	fmt.Printf("unsigned: %s\n", draft.Hex)
}
