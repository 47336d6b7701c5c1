package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/observability/metrics"
	"github.com/stakevault/stake-settlement/internal/types"
)

type BaseClient interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() time.Duration
	GetHttpClient() *http.Client
}

type HttpClientOptions struct {
	Timeout time.Duration
	Path    string
	// TemplatePath labels the request in metrics so path parameters do not
	// blow up the label cardinality.
	TemplatePath string
	Headers      map[string]string
}

// maxErrorBodySize bounds how much of a failed response body ends up in errors.
const maxErrorBodySize = 1024

// SendRequest sends a JSON request and decodes a JSON response into R. A non
// 2xx response is returned as a *types.Error carrying the response status.
func SendRequest[I any, R any](
	ctx context.Context, client BaseClient, method string, opts *HttpClientOptions, input *I,
) (*R, error) {
	timeout := client.GetDefaultRequestTimeout()
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if input != nil {
		payload, err := json.Marshal(input)
		if err != nil {
			return nil, types.NewInternalServiceError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	url := client.GetBaseURL() + opts.Path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if input != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	metricsRecorder := metrics.StartClientRequestDurationTimer(client.GetBaseURL(), method, opts.TemplatePath)

	resp, err := client.GetHttpClient().Do(req)
	if err != nil {
		metricsRecorder(0)
		return nil, types.NewError(http.StatusServiceUnavailable, types.VenueUnavailable, fmt.Errorf("request to %s failed: %w", opts.TemplatePath, err))
	}
	defer resp.Body.Close()
	metricsRecorder(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		log.Ctx(ctx).Debug().
			Str("path", opts.TemplatePath).
			Int("status", resp.StatusCode).
			Msg("client request returned non-success status")
		return nil, types.NewErrorWithMsg(
			resp.StatusCode, errorCodeForStatus(resp.StatusCode),
			fmt.Sprintf("%s %s returned status %d: %s", method, opts.TemplatePath, resp.StatusCode, bytes.TrimSpace(msg)),
		)
	}

	var result R
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			return &result, nil
		}
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to decode response from %s: %w", opts.TemplatePath, err))
	}
	return &result, nil
}

func errorCodeForStatus(status int) types.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return types.NotFound
	case status == http.StatusConflict:
		return types.Conflict
	case status == http.StatusForbidden:
		return types.Forbidden
	case status >= 400 && status < 500:
		return types.BadRequest
	default:
		return types.VenueUnavailable
	}
}

// IsClientError reports whether err is a 4xx response. Those are not worth
// retrying.
func IsClientError(err error) bool {
	var e *types.Error
	return errors.As(err, &e) && e.StatusCode >= 400 && e.StatusCode < 500
}
