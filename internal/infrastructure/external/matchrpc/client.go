// Package matchrpc implements the remote match scoring backend.
// The hosted matching service exposes the ranking formula as an RPC;
// this client satisfies the same backend interface as the in-process
// ranker, so deployments can run either.
package matchrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
	"github.com/cybermatch/cybermatch-hub/pkg/circuitbreaker"
	"github.com/cybermatch/cybermatch-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the match RPC client.
type ClientConfig struct {
	// BaseURL is the matching service base URL.
	BaseURL string

	// APIKey is the service key sent as a Bearer token.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client calls the remote get_matches procedure.
// It implements query.Backend.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a new match RPC client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger,
		retrier: retry.New(
			retry.WithMaxAttempts(3),
			retry.WithInitialDelay(200*time.Millisecond),
			retry.WithMaxDelay(5*time.Second),
		),
		breaker: circuitbreaker.MatchServiceBreaker(func(name string, from, to circuitbreaker.State) {
			config.Logger.Warn("match service circuit state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		}),
	}
}

// Matches implements query.Backend by delegating scoring to the service.
// Transport failures surface as shared.ErrMatchRPCUnavailable so callers
// can fall back or degrade.
func (c *Client) Matches(ctx context.Context, seeker *profile.Seeker, filter profile.CandidateFilter, opts matching.RankOptions) (matching.MatchResultList, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	request := GetMatchesRequestDTO{
		SeekerID:  seeker.ID.String(),
		Threshold: opts.Threshold,
		Limit:     opts.Limit,
		Location:  filter.Location,
		NameQuery: filter.NameQuery,
	}

	var rows []MatchRowDTO
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			return c.call(ctx, "/rpc/get_matches", request, &rows)
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return nil, shared.ErrMatchRPCUnavailable
		}
		return nil, fmt.Errorf("matchrpc: get_matches: %w", err)
	}

	return ToMatchResults(rows), nil
}

// IsHealthy checks if the matching service is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP plumbing
// ─────────────────────────────────────────────────────────────────────────────

// call performs a single RPC request. Server-side failures come back as
// retry.Retryable; client-side mistakes as retry.Permanent.
func (c *Client) call(ctx context.Context, path string, body interface{}, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return retry.Retryable(statusError(resp.StatusCode, respBody))
	}
	if resp.StatusCode >= 400 {
		return retry.Permanent(statusError(resp.StatusCode, respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return retry.Permanent(fmt.Errorf("unmarshal response: %w", err))
		}
	}

	return nil
}

func statusError(status int, body []byte) error {
	var apiErr APIErrorDTO
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return &apiErr
	}
	return fmt.Errorf("api error: status %d: %s", status, strings.TrimSpace(string(body)))
}
