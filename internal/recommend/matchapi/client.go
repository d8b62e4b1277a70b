// Package matchapi provides a client for the external country scoring API.
package matchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/wheretolive/wheretolive/internal/provider/resilience"
	"github.com/wheretolive/wheretolive/internal/recommend"
)

const (
	// ProviderName identifies this recommendation provider.
	ProviderName = "matchapi"

	// DefaultBaseURL is the hosted scoring service base URL.
	DefaultBaseURL = "https://project-ics-10-apr-600927923332.europe-west1.run.app"

	// recommendPath is the fixed endpoint path suffix.
	recommendPath = "/recommend-countries"

	// DefaultTimeout bounds the wait for a scoring response.
	DefaultTimeout = 30 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the scoring API client.
type ClientConfig struct {
	// BaseURL overrides the default scoring service endpoint (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a circuit-breaking client with retries disabled:
	// every failed submission is terminal and requires a new user action.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 30s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a country scoring API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	registry   *resilience.Registry
	logger     zerolog.Logger
}

// NewClient creates a new scoring API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.MaxRetries = 0 // failures are terminal per submission
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		registry:   cfg.Registry,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// BaseURL returns the configured scoring service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Recommend sends the preferences to the scoring service and returns the
// ranked matches. An empty slice means no country satisfied the criteria.
func (c *Client) Recommend(ctx context.Context, prefs recommend.Preferences) ([]recommend.CountryMatch, error) {
	body, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("marshaling preferences: %w", err)
	}

	url := c.baseURL + recommendPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("climate", string(prefs.ClimatePreference)).
		Int("climate_importance", prefs.ClimateImportance).
		Bool("has_budget", prefs.MaxMonthlyBudget != nil).
		Msg("requesting country recommendations")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		mapped := c.mapTransportError(err)
		c.recordFailure(mapped)
		return nil, mapped
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		mapped := &recommend.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "failed to read scoring service response",
			Err:      recommend.ErrUnavailable,
		}
		c.recordFailure(mapped)
		return nil, mapped
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		mapped := &recommend.Error{
			Provider: ProviderName,
			Code:     "HTTP_" + strconv.Itoa(resp.StatusCode),
			Message:  fmt.Sprintf("received a %d status code from the recommendation service", resp.StatusCode),
			Err:      recommend.ErrBadStatus,
		}
		c.recordFailure(mapped)
		return nil, mapped
	}

	matches, err := parseMatches(respBody)
	if err != nil {
		mapped := &recommend.Error{
			Provider: ProviderName,
			Code:     "MALFORMED",
			Message:  "received an unexpected response from the recommendation service",
			Raw:      string(respBody),
			Err:      recommend.ErrMalformedResponse,
		}
		c.recordFailure(mapped)
		return nil, mapped
	}

	if c.registry != nil {
		c.registry.RecordSuccess(ProviderName)
	}

	c.logger.Debug().
		Int("match_count", len(matches)).
		Msg("received country recommendations")

	return matches, nil
}

// mapTransportError converts low-level transport failures to the domain
// error taxonomy the pages render from.
func (c *Client) mapTransportError(err error) *recommend.Error {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return &recommend.Error{
			Provider: ProviderName,
			Code:     "CIRCUIT_OPEN",
			Message:  "recommendation service is temporarily unavailable",
			Err:      recommend.ErrCannotConnect,
		}
	case isTimeout(err):
		return &recommend.Error{
			Provider: ProviderName,
			Code:     "TIMEOUT",
			Message:  "the request to the recommendation service took too long",
			Err:      recommend.ErrTimeout,
		}
	case isConnectFailure(err):
		return &recommend.Error{
			Provider: ProviderName,
			Code:     "CONNECT_FAILED",
			Message:  "unable to connect to the recommendation service",
			Err:      recommend.ErrCannotConnect,
		}
	default:
		return &recommend.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  fmt.Sprintf("an unexpected network error occurred (%v)", err),
			Err:      recommend.ErrUnavailable,
		}
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(ProviderName, err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectFailure(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// parseMatches decodes the service payload. The expected shape is a JSON
// array of objects; anything else is malformed. Score values may be numeric
// or the literal string "N/A", both normalized here and never re-checked
// downstream.
func parseMatches(body []byte) ([]recommend.CountryMatch, error) {
	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	// json.Unmarshal accepts a literal null without error; only a real
	// array (possibly empty) is a valid payload.
	if raw == nil {
		return nil, errors.New("payload is not a JSON array")
	}

	matches := make([]recommend.CountryMatch, 0, len(raw))
	for i, item := range raw {
		country, _ := item["country"].(string)
		if country == "" {
			country = fmt.Sprintf("Unknown Country %d", i+1)
		}

		factors := make(map[recommend.FactorKey]recommend.Score, len(recommend.FactorOrder))
		for _, key := range recommend.FactorOrder {
			factors[key] = scoreFrom(item[string(key)+"_match_score"])
		}

		matches = append(matches, recommend.CountryMatch{
			Country:    country,
			Similarity: scoreFrom(item["similarity_score"]),
			Factors:    factors,
		})
	}

	return matches, nil
}

// scoreFrom normalizes a dynamically-typed score value. Missing values and
// the "N/A" sentinel become zero.
func scoreFrom(v any) recommend.Score {
	switch val := v.(type) {
	case float64:
		return recommend.Score(val)
	case string:
		if val == "N/A" {
			return 0
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return recommend.Score(f)
	default:
		return 0
	}
}
