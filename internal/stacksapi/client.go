package stacksapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"stacks-wallet-core/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client implements the collaborator interfaces over the Stacks node HTTP
// API with retry and exponential backoff.
type Client struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	log         zerolog.Logger
}

// Interface checks.
var (
	_ BalancesSource = (*Client)(nil)
	_ NonceSource    = (*Client)(nil)
	_ FeeSource      = (*Client)(nil)
	_ MetadataSource = (*Client)(nil)
)

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a Stacks API client for the node at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAnchoredBalances returns the confirmed-only balance view.
func (c *Client) GetAnchoredBalances(ctx context.Context, principal string) (*domain.BalancesResponse, error) {
	var resp domain.BalancesResponse
	path := fmt.Sprintf("/extended/v1/address/%s/balances", url.PathEscape(principal))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get anchored balances: %w", err)
	}
	return &resp, nil
}

// GetUnanchoredBalances returns the mempool-inclusive balance view.
func (c *Client) GetUnanchoredBalances(ctx context.Context, principal string) (*domain.BalancesResponse, error) {
	var resp domain.BalancesResponse
	path := fmt.Sprintf("/extended/v1/address/%s/balances?unanchored=true", url.PathEscape(principal))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get unanchored balances: %w", err)
	}
	return &resp, nil
}

// nonceResponse is the shape of /extended/v1/address/{principal}/nonces.
type nonceResponse struct {
	LastExecutedTxNonce *uint64 `json:"last_executed_tx_nonce"`
	PossibleNextNonce   uint64  `json:"possible_next_nonce"`
}

// GetNextNonce resolves the next usable nonce for an account.
func (c *Client) GetNextNonce(ctx context.Context, principal string) (uint64, error) {
	var resp nonceResponse
	path := fmt.Sprintf("/extended/v1/address/%s/nonces", url.PathEscape(principal))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, fmt.Errorf("get next nonce: %w", err)
	}
	return resp.PossibleNextNonce, nil
}

// feeRequest is the body of POST /v2/fees/transaction.
type feeRequest struct {
	TransactionPayload string `json:"transaction_payload"`
	EstimatedLen       int    `json:"estimated_len,omitempty"`
}

// EstimateFees asks the node for fee estimations for a serialized payload.
// Any transport failure, non-2xx status or empty estimation list resolves
// to ErrFeeEstimation so callers can engage the simulated fallback.
func (c *Client) EstimateFees(ctx context.Context, payloadHex string, estimatedLen int) (*domain.FeeEstimations, error) {
	body := feeRequest{TransactionPayload: payloadHex, EstimatedLen: estimatedLen}
	var resp domain.FeeEstimations
	if err := c.do(ctx, http.MethodPost, "/v2/fees/transaction", body, &resp); err != nil {
		c.log.Debug().Err(err).Msg("fee estimation request failed")
		return nil, fmt.Errorf("%w: %v", ErrFeeEstimation, err)
	}
	if len(resp.Estimations) == 0 {
		return nil, fmt.Errorf("%w: node returned no estimations", ErrFeeEstimation)
	}
	return &resp, nil
}

// ftMetadataResponse is the shape of the token metadata endpoint.
type ftMetadataResponse struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// contractInterfaceResponse is the subset of the contract interface used
// for transfer trait detection.
type contractInterfaceResponse struct {
	Functions []struct {
		Name   string `json:"name"`
		Access string `json:"access"`
	} `json:"functions"`
}

// GetFungibleMeta fetches contract metadata and derives the transfer trait.
// The trait check is best effort: when the interface endpoint fails, the
// metadata is returned with IsTransferable nil (unknown), never an error.
func (c *Client) GetFungibleMeta(ctx context.Context, contractAddress, contractName string) (*domain.FungibleMeta, error) {
	var metaResp ftMetadataResponse
	path := fmt.Sprintf("/extended/v1/tokens/%s.%s/ft/metadata",
		url.PathEscape(contractAddress), url.PathEscape(contractName))
	if err := c.do(ctx, http.MethodGet, path, nil, &metaResp); err != nil {
		return nil, fmt.Errorf("get fungible metadata: %w", err)
	}

	meta := &domain.FungibleMeta{
		Name:      metaResp.Name,
		Symbol:    metaResp.Symbol,
		Decimals:  metaResp.Decimals,
		FetchedAt: time.Now().UnixMilli(),
	}

	var ifaceResp contractInterfaceResponse
	ifacePath := fmt.Sprintf("/v2/contracts/interface/%s/%s",
		url.PathEscape(contractAddress), url.PathEscape(contractName))
	if err := c.do(ctx, http.MethodGet, ifacePath, nil, &ifaceResp); err != nil {
		c.log.Debug().Err(err).
			Str("contract", contractAddress+"."+contractName).
			Msg("transfer trait check failed, leaving trait unknown")
		return meta, nil
	}

	transferable := false
	for _, fn := range ifaceResp.Functions {
		if fn.Name == "transfer" && fn.Access == "public" {
			transferable = true
			break
		}
	}
	meta.IsTransferable = &transferable
	return meta, nil
}

// do performs one HTTP call with retries and exponential backoff. Client
// errors (4xx) are not retried; transport errors, 429 and 5xx are.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.log.Debug().Int("attempt", attempt).Str("path", path).Msg("retrying request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		var reader io.Reader
		if reqBody != nil {
			reader = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
			continue
		case resp.StatusCode != http.StatusOK:
			// Client errors are contract violations, retrying cannot help.
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
