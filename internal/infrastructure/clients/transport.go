package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/pkg/config"
)

// APIError is a non-2xx response from the payment API.
type APIError struct {
	StatusCode int
	Message    string
	ErrorType  string
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment api error (status %d): %s", e.StatusCode, e.Message)
}

// ClientError reports whether the caller can correct the request.
func (e *APIError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

type requestOptions struct {
	token      *oauth2.Token
	idempotent bool
	query      url.Values
}

// transport carries the shared request loop of the auth and payment clients.
type transport struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger
}

func newTransport(cfg config.PaymentAPIConfig, logger zerolog.Logger) *transport {
	return &transport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryBackoffBase,
		logger:     logger,
	}
}

// do sends one request and returns the raw 2xx body. Only idempotent
// requests are retried, on network errors, 429 and 5xx.
func (t *transport) do(ctx context.Context, method, endpoint string, body interface{}, opts requestOptions) ([]byte, error) {
	fullURL := t.baseURL + endpoint
	if len(opts.query) > 0 {
		fullURL += "?" + opts.query.Encode()
	}

	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	attempts := 1
	if opts.idempotent {
		attempts += t.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(calculateBackoff(attempt-1, t.retryDelay)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if opts.token != nil {
			opts.token.SetAuthHeader(req)
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			t.logger.Warn().Err(err).Int("attempt", attempt+1).Str("endpoint", endpoint).Msg("Payment API request failed")
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return nil, fmt.Errorf("failed to read response body: %w", readErr)
			}
			return respBody, nil
		}

		apiErr := newAPIError(resp.StatusCode, respBody)
		if shouldRetryStatusCode(resp.StatusCode) {
			lastErr = apiErr
			t.logger.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Str("endpoint", endpoint).Msg("Payment API server error")
			continue
		}
		return nil, apiErr
	}

	if attempts > 1 {
		t.logger.Error().Err(lastErr).Str("endpoint", endpoint).Int("max_retries", t.maxRetries).Msg("Payment API request failed after all retries")
	}
	return nil, lastErr
}

func shouldRetryStatusCode(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return time.Duration(float64(base) * math.Pow(2, float64(attempt)))
}

// newAPIError unwraps the message in the order error, message,
// data.meta.message, raw body.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if json.Valid(body) {
		apiErr.Body = json.RawMessage(body)
	}

	var envelope struct {
		Error     json.RawMessage `json:"error"`
		Message   string          `json:"message"`
		ErrorType string          `json:"errorType"`
		Data      struct {
			Meta struct {
				Message string `json:"message"`
			} `json:"meta"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.ErrorType = envelope.ErrorType
		apiErr.Message = errorMessage(envelope.Error)
		if apiErr.Message == "" {
			apiErr.Message = envelope.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = envelope.Data.Meta.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

// decodeData unmarshals the data member of a {data: ...} envelope.
func decodeData(body []byte, out interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: missing data", domain.ErrInvalidUpstreamResponse)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}
	return nil
}

// IsAPIError unwraps err into an APIError.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
