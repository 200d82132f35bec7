package bigcommerce

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bigcommerce-sdk/pkg/config"
)

const (
	DefaultHost = "api.bigcommerce.com"

	headerAuthToken = "X-Auth-Token"
)

var ErrMissingCredentials = errors.New("missing store hash or access token")

// Client calls one store. It holds no per-call state and is safe for concurrent use.
type Client struct {
	HTTPClient  *http.Client
	Host        string
	StoreHash   string
	AccessToken string

	// Limiter, when set, throttles calls client-side. Calls wait on the caller's context.
	Limiter *rate.Limiter
	Logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.Logger = l }
}

// WithRateLimit allows rps requests per second with a burst of one.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New builds a client for the configured store.
func New(cfg config.BigCommerceConfig, opts ...Option) Client {
	c := Client{
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		Host:        cfg.Host,
		StoreHash:   cfg.StoreHash,
		AccessToken: cfg.AccessToken,
	}
	WithRateLimit(cfg.RateLimit)(&c)
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ForStore returns a copy of c bound to another store, sharing its HTTP client.
func (c Client) ForStore(storeHash, accessToken string) Client {
	c.StoreHash = storeHash
	c.AccessToken = accessToken
	return c
}

func (c Client) baseURL() string {
	host := strings.TrimSuffix(strings.TrimSpace(c.Host), "/")
	if host == "" {
		host = DefaultHost
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return host + "/stores/" + c.StoreHash + "/"
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
