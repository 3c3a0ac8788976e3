// Package farmapi is a client for the shrimp-farm management REST API.
// Reads go through an in-memory response cache with request
// deduplication; mutations bypass the cache and invalidate the entries
// they make stale.
package farmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/aquatrack/farmclient/cache"
)

// DefaultTTL bounds how long a cached response is trusted when the
// caller does not override it.
const DefaultTTL = 30 * time.Second

// Client calls the farm backend. Construct isolated instances with New;
// there is no shared global state, so tests can run side by side.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	tokens  oauth2.TokenSource
	log     zerolog.Logger

	store      *cache.Store // nil means caching disabled
	defaultTTL time.Duration
	flight     singleflight.Group
}

// CacheOptions tune caching for a single call. A nil *CacheOptions
// means method-based defaults.
type CacheOptions struct {
	// NoCache bypasses the cache for this call; the response is not
	// stored either.
	NoCache bool

	// TTL overrides the client default for the entry stored by this
	// call. Zero keeps the default.
	TTL time.Duration

	// Strategy overrides the method-based default.
	Strategy Strategy

	// InvalidatePatterns are cleared from the cache after this call
	// succeeds. Patterns are literal keys or prefix wildcards such as
	// "/api/ponds*".
	InvalidatePatterns []string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenSource makes the client attach bearer tokens to every
// request.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithCache enables response caching backed by store. defaultTTL
// applies to entries whose call did not set its own TTL; zero falls
// back to DefaultTTL.
func WithCache(store *cache.Store, defaultTTL time.Duration) Option {
	return func(c *Client) {
		c.store = store
		if defaultTTL > 0 {
			c.defaultTTL = defaultTTL
		}
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	c := &Client{
		http:       http.DefaultClient,
		baseURL:    u,
		log:        zerolog.Nop(),
		defaultTTL: DefaultTTL,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Call performs a request against the backend and returns the raw JSON
// body. Strategy selection, caching, deduplication and invalidation all
// happen here; the typed endpoint methods are thin wrappers.
func (c *Client) Call(ctx context.Context, method, apiPath string, params map[string]string, body any, opts *CacheOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &CacheOptions{}
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	strategy := opts.Strategy
	if strategy == StrategyDefault {
		strategy = defaultStrategy(method)
	}
	if c.store == nil || opts.NoCache {
		strategy = NetworkOnly
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	key := cache.Key(method, apiPath, params, payload)

	var (
		raw json.RawMessage
		err error
	)
	switch strategy {
	case CacheFirst:
		if cached, ok := c.store.Get(key); ok {
			c.log.Debug().Str("key", key).Msg("cache hit")
			return cached, nil
		}
		raw, err = c.fetchShared(ctx, key, method, apiPath, params, payload, ttl)

	case NetworkFirst:
		raw, err = c.fetchShared(ctx, key, method, apiPath, params, payload, ttl)
		if err != nil && recoverable(err) {
			if cached, ok := c.store.Get(key); ok {
				c.log.Warn().Str("key", key).Err(err).Msg("network failed, serving cached value")
				return cached, nil
			}
		}

	default: // NetworkOnly
		raw, err = c.do(ctx, method, apiPath, params, payload)
	}
	if err != nil {
		return nil, err
	}

	if c.store != nil && len(opts.InvalidatePatterns) > 0 {
		removed := c.store.Delete(cache.ParsePatterns(opts.InvalidatePatterns)...)
		c.log.Debug().Strs("patterns", opts.InvalidatePatterns).Int("removed", removed).Msg("cache invalidated")
	}
	return raw, nil
}

// ClearCache removes matching entries; with no patterns it clears
// everything. It reports how many entries were removed.
func (c *Client) ClearCache(patterns ...string) int {
	if c.store == nil {
		return 0
	}
	return c.store.Delete(cache.ParsePatterns(patterns)...)
}

// CacheStats returns hit/miss counters for the client's store.
func (c *Client) CacheStats() cache.Stats {
	if c.store == nil {
		return cache.Stats{}
	}
	return c.store.Stats()
}

// fetchShared collapses concurrent identical requests into a single
// network call; every waiter gets the same body or the same error. The
// in-flight registration is made before the request is issued and
// always cleared when it settles, so a failed call never blocks
// retries. The successful response is stored before waiters are
// released.
func (c *Client) fetchShared(ctx context.Context, key, method, apiPath string, params map[string]string, payload []byte, ttl time.Duration) (json.RawMessage, error) {
	v, err, shared := c.flight.Do(key, func() (any, error) {
		// The call is shared by every waiter, so one caller's
		// cancellation must not abort it for the rest.
		raw, err := c.do(context.WithoutCancel(ctx), method, apiPath, params, payload)
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			c.store.Set(key, raw, ttl)
		}
		return raw, nil
	})
	if shared {
		c.log.Debug().Str("key", key).Msg("request coalesced with in-flight call")
	}
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// do issues one HTTP request and returns the validated JSON body.
// Errors are never cached.
func (c *Client) do(ctx context.Context, method, apiPath string, params map[string]string, payload []byte) (json.RawMessage, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, apiPath)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("fetch access token: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: u.String(), Err: err}
	}

	c.log.Debug().
		Str("method", method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        u.String(),
			Body:       bodySnippet(raw),
		}
	}

	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, &ParseError{URL: u.String(), Err: errors.New("invalid JSON")}
	}
	return raw, nil
}

// getJSON runs a cached GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, apiPath string, params map[string]string, opts *CacheOptions, out any) error {
	raw, err := c.Call(ctx, "GET", apiPath, params, nil, opts)
	if err != nil {
		return err
	}
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{URL: apiPath, Err: err}
	}
	return nil
}

// mutate runs a write request, invalidates the given patterns on
// success and decodes any response body into out.
func (c *Client) mutate(ctx context.Context, method, apiPath string, body any, invalidate []string, out any) error {
	raw, err := c.Call(ctx, method, apiPath, nil, body, &CacheOptions{InvalidatePatterns: invalidate})
	if err != nil {
		return err
	}
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{URL: apiPath, Err: err}
	}
	return nil
}

// recoverable reports whether a NetworkFirst call may fall back to the
// cache for this error. Encoding and token errors are caller problems
// and propagate as-is.
func recoverable(err error) bool {
	var ne *NetworkError
	var he *HTTPError
	return errors.As(err, &ne) || errors.As(err, &he)
}
