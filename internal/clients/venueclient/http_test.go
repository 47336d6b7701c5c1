package venueclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakevault/stake-settlement/internal/clients/venueclient"
	"github.com/stakevault/stake-settlement/internal/config"
	"github.com/stakevault/stake-settlement/internal/types"
)

func newTestClient(url string) *venueclient.HTTPClient {
	return venueclient.NewHTTPClient(&config.VenueConfig{
		Kind:          config.VenueKindHTTP,
		URL:           url,
		Timeout:       time.Second,
		MaxRetryTimes: 3,
		RetryInterval: time.Millisecond,
	})
}

func TestHTTPClient_GetAccount(t *testing.T) {
	t.Run("decodes balances", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/account", r.URL.Path)
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte(`{"staked_balance":"1000000000000000000000000","unstaked_balance":"5","can_withdraw":true}`))
		}))
		defer srv.Close()

		acc, err := newTestClient(srv.URL).GetAccount(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "1000000000000000000000000", acc.Staked.String())
		assert.Equal(t, "5", acc.Unstaked.String())
		assert.True(t, acc.CanWithdraw)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"staked_balance":"1","unstaked_balance":"0","can_withdraw":false}`))
		}))
		defer srv.Close()

		acc, err := newTestClient(srv.URL).GetAccount(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "1", acc.Staked.String())
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "unknown account", http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GetAccount(t.Context())
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())

		var typed *types.Error
		require.ErrorAs(t, err, &typed)
		assert.Equal(t, types.NotFound, typed.ErrorCode)
	})

	t.Run("missing balances read as zero", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		acc, err := newTestClient(srv.URL).GetAccount(t.Context())
		require.NoError(t, err)
		v := acc.ToVenueBalance()
		assert.True(t, v.Staked.IsZero())
		assert.True(t, v.Unstaked.IsZero())
	})
}

func TestHTTPClient_Mutations(t *testing.T) {
	t.Run("sends amount", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/deposit-and-stake", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).DepositAndStake(t.Context(), sdkmath.NewUint(42))
		require.NoError(t, err)
		assert.Equal(t, "42", got["amount"])
	})

	t.Run("is not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Unstake(t.Context(), sdkmath.NewUint(1))
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("withdraw all without body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/withdraw-all", r.URL.Path)
			assert.Empty(t, r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		require.NoError(t, newTestClient(srv.URL).WithdrawAll(t.Context()))
	})
}
