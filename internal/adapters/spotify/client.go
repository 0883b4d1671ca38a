// Package spotify fetches playlist metadata and audio features from the
// Spotify Web API.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/resonance/internal/core/ports"
	"github.com/ewilliams-labs/resonance/internal/logging"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// audioFeaturesBatchSize is the maximum number of ids the
	// /audio-features endpoint accepts per call.
	audioFeaturesBatchSize = 100
	// audioFeaturesConcurrency bounds parallel batch requests.
	audioFeaturesConcurrency = 4
)

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[*http.Response]
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// Config holds the credentials and transport tuning for NewClient.
type Config struct {
	ClientID          string
	ClientSecret      string
	BaseURL           string
	TokenURL          string
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Option customizes a Client.
type Option func(*Client)

// WithRetry sets the attempt budget and the base delay of the exponential
// backoff.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseBackoff = baseBackoff
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewClient builds a client that authenticates with the OAuth2
// client-credentials flow. The token source refreshes tokens on demand.
func NewClient(ctx context.Context, cfg Config) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	oauth := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := oauth.Client(ctx)
	httpClient.Timeout = 30 * time.Second

	return NewClientWithBaseURL(httpClient, baseURL,
		WithRetry(cfg.MaxRetries, cfg.RetryBackoff),
		WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
	)
}

// NewClientWithBaseURL builds a client around an already-authorized HTTP
// client. Tests point it at an httptest server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxRetries:  defaultMaxRetries,
		baseBackoff: time.Duration(defaultBackoffMs) * time.Millisecond,
		breaker:     newBreaker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newBreaker opens after 5 consecutive failed attempts and probes again
// after 30 seconds.
func newBreaker() *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "spotify-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}
