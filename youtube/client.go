// Package youtube provides the Data API v3 backed entry source and sink
// for the playlist curation engine.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ytcurator/retry"
)

// defaultRPS limits Data API calls; the quota cost of one curation run is
// small, the limiter just keeps bursts polite.
const defaultRPS = 4

// Client wraps a YouTube Data API service with service-account auth, a
// token-bucket rate limiter and retry configuration shared by the source
// and sink.
type Client struct {
	service  *youtube.Service
	limiter  *rate.Limiter
	retryCfg retry.Config
	log      *zap.Logger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// CredentialsFile is the path to a Google service-account JSON key.
	CredentialsFile string
	// RPS caps Data API requests per second; 0 uses the default.
	RPS float64
	// Retry overrides the backoff configuration; zero value uses defaults.
	Retry retry.Config
	// Logger receives structured logs; nil disables logging.
	Logger *zap.Logger
}

// NewClient builds an authenticated Data API client from a service-account
// key file.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.CredentialsFile == "" {
		return nil, fmt.Errorf("credentials file required")
	}

	key, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(key, youtube.YoutubeScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return newClient(service, opts), nil
}

// NewClientWithService wraps an already constructed service. Tests use this
// with an httptest-backed service.
func NewClientWithService(service *youtube.Service, opts ClientOptions) *Client {
	return newClient(service, opts)
}

func newClient(service *youtube.Service, opts ClientOptions) *Client {
	rps := opts.RPS
	if rps <= 0 {
		rps = defaultRPS
	}
	cfg := opts.Retry
	if cfg.MaxRetries == 0 && cfg.InitialBackoff == 0 {
		cfg = retry.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		service:  service,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		retryCfg: cfg,
		log:      log,
	}
}

// call waits for the rate limiter and runs fn under the retry policy.
// Quota errors that survive the retries are tagged with ErrRateLimited.
func (c *Client) call(ctx context.Context, fn func(context.Context) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := retry.Do(ctx, c.retryCfg, apiErrorClassifier, fn)
	if rateLimited(err) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return err
}

// rateLimited reports whether err is a Data API quota rejection, either a
// 429 or the rateLimitExceeded flavor of 403.
func rateLimited(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	return gerr.Code == http.StatusForbidden && strings.Contains(gerr.Error(), "rateLimitExceeded")
}

// apiErrorClassifier determines if a Data API error is retryable.
// Identity errors (bad request, not found, auth) are permanent; rate
// limits and server errors are retried.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return false
		case http.StatusTooManyRequests:
			return true
		case http.StatusForbidden:
			// 403 covers both permission denial and per-minute rate limits.
			return strings.Contains(gerr.Error(), "rateLimitExceeded")
		}
		return gerr.Code >= 500
	}

	// Transport-level errors default to retryable.
	return true
}
