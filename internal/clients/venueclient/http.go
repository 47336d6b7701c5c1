package venueclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/clients/client"
	"github.com/stakevault/stake-settlement/internal/config"
)

const (
	accountPath         = "/v1/account"
	depositAndStakePath = "/v1/deposit-and-stake"
	stakePath           = "/v1/stake"
	unstakePath         = "/v1/unstake"
	unstakeAllPath      = "/v1/unstake-all"
	withdrawAllPath     = "/v1/withdraw-all"
)

// HTTPClient talks JSON to a venue adapter. Only reads are retried: a
// mutation that timed out may still have been applied.
type HTTPClient struct {
	httpClient *http.Client
	cfg        *config.VenueConfig
}

func NewHTTPClient(cfg *config.VenueConfig) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

func (c *HTTPClient) GetBaseURL() string {
	return strings.TrimRight(c.cfg.URL, "/")
}

func (c *HTTPClient) GetDefaultRequestTimeout() time.Duration {
	return c.cfg.Timeout
}

func (c *HTTPClient) GetHttpClient() *http.Client {
	return c.httpClient
}

func (c *HTTPClient) GetAccount(ctx context.Context) (*Account, error) {
	call := func() (*Account, error) {
		opts := &client.HttpClientOptions{
			Path:         accountPath,
			TemplatePath: accountPath,
		}
		return client.SendRequest[emptyRequest, Account](ctx, c, http.MethodGet, opts, nil)
	}

	account, err := clientCallWithRetry(ctx, call, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue account: %w", err)
	}
	return account, nil
}

func (c *HTTPClient) DepositAndStake(ctx context.Context, amount sdkmath.Uint) error {
	return c.post(ctx, depositAndStakePath, &amountRequest{Amount: amount})
}

func (c *HTTPClient) Stake(ctx context.Context, amount sdkmath.Uint) error {
	return c.post(ctx, stakePath, &amountRequest{Amount: amount})
}

func (c *HTTPClient) Unstake(ctx context.Context, amount sdkmath.Uint) error {
	return c.post(ctx, unstakePath, &amountRequest{Amount: amount})
}

func (c *HTTPClient) UnstakeAll(ctx context.Context) error {
	return c.post(ctx, unstakeAllPath, &amountRequest{})
}

func (c *HTTPClient) WithdrawAll(ctx context.Context) error {
	return c.post(ctx, withdrawAllPath, &amountRequest{})
}

func (c *HTTPClient) post(ctx context.Context, path string, body *amountRequest) error {
	if body.Amount == (sdkmath.Uint{}) {
		body = nil
	}
	opts := &client.HttpClientOptions{
		Path:         path,
		TemplatePath: path,
	}
	if _, err := client.SendRequest[amountRequest, emptyResponse](ctx, c, http.MethodPost, opts, body); err != nil {
		return fmt.Errorf("venue call %s failed: %w", path, err)
	}
	return nil
}

func clientCallWithRetry[T any](
	ctx context.Context,
	call retry.RetryableFuncWithData[*T],
	cfg *config.VenueConfig,
) (*T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !client.IsClientError(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call the staking venue")
		}))
	if err != nil {
		return nil, err
	}
	return result, nil
}
