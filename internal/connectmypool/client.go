package connectmypool

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://www.connectmypool.com.au"

	// The cloud throttles poolconfig/poolstatus to roughly one call per
	// minute per pool; calling faster returns failure code 6.
	MinPollInterval = 60 * time.Second

	// After an accepted action the cloud allows rapid polling for five
	// minutes, so callers can watch the action take effect.
	fastPollWindow = 300 * time.Second

	requestTimeout = 30 * time.Second
)

// Client talks to the ConnectMyPool cloud API for a single pool. It caches
// poolconfig/poolstatus replies around the server-side read throttle and
// serializes actions so overlapping writes never interleave on the wire.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration

	// now is swapped out in tests.
	now func() time.Time

	mu            sync.Mutex
	configCache   *configEntry
	statusCache   *statusEntry
	fastPollUntil time.Time

	// actionMu serializes PerformAction for the lifetime of each call.
	actionMu sync.Mutex
}

type configEntry struct {
	config    *Config
	fetchedAt time.Time
}

type statusEntry struct {
	status    *Status
	fetchedAt time.Time
}

// Option tweaks client construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom TLS).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollInterval overrides the cache freshness window. Values below the
// cloud's observed throttle are clamped to MinPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d < MinPollInterval {
			d = MinPollInterval
		}
		c.pollInterval = d
	}
}

// WithClock injects a time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
		pollInterval: MinPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL reports the configured endpoint, for diagnostics.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetConfig fetches the pool topology. Unless force is set, a cached reply
// younger than the poll interval is returned without a network call.
// Throttle errors are masked with the stale cache when one exists.
func (c *Client) GetConfig(ctx context.Context, poolAPICode string, force bool) (*Config, error) {
	c.mu.Lock()
	if entry := c.configCache; !force && !c.fastPollActiveLocked() && entry != nil &&
		c.now().Sub(entry.fetchedAt) < c.pollInterval {
		c.mu.Unlock()
		cacheHits.WithLabelValues("poolconfig").Inc()
		return entry.config, nil
	}
	c.mu.Unlock()

	payload, err := c.post(ctx, "/api/poolconfig", map[string]any{
		"pool_api_code": poolAPICode,
	})
	if err != nil {
		if _, throttled := err.(*ThrottleError); throttled {
			c.mu.Lock()
			entry := c.configCache
			c.mu.Unlock()
			if entry != nil {
				throttleMasked.WithLabelValues("poolconfig").Inc()
				return entry.config, nil
			}
		}
		return nil, err
	}

	cfg := &Config{Raw: payload}
	if err := decodePayload(payload, cfg); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.configCache = &configEntry{config: cfg, fetchedAt: c.now()}
	c.mu.Unlock()
	return cfg, nil
}

// GetStatus fetches live state, with the same cache policy as GetConfig.
// scale is ScaleCelsius or ScaleFahrenheit.
func (c *Client) GetStatus(ctx context.Context, poolAPICode string, scale int, force bool) (*Status, error) {
	c.mu.Lock()
	if entry := c.statusCache; !force && !c.fastPollActiveLocked() && entry != nil &&
		c.now().Sub(entry.fetchedAt) < c.pollInterval {
		c.mu.Unlock()
		cacheHits.WithLabelValues("poolstatus").Inc()
		return entry.status, nil
	}
	c.mu.Unlock()

	payload, err := c.post(ctx, "/api/poolstatus", map[string]any{
		"pool_api_code":     poolAPICode,
		"temperature_scale": scale,
	})
	if err != nil {
		if _, throttled := err.(*ThrottleError); throttled {
			c.mu.Lock()
			entry := c.statusCache
			c.mu.Unlock()
			if entry != nil {
				throttleMasked.WithLabelValues("poolstatus").Inc()
				return entry.status, nil
			}
		}
		return nil, err
	}

	status := &Status{Raw: payload}
	if err := decodePayload(payload, status); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.statusCache = &statusEntry{status: status, fetchedAt: c.now()}
	c.mu.Unlock()
	return status, nil
}

// CachedStatus returns the last successful status reply, if any.
func (c *Client) CachedStatus() *Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.statusCache == nil {
		return nil
	}
	return c.statusCache.status
}

// ActionRequest is a single /api/poolaction command.
type ActionRequest struct {
	PoolAPICode      string
	ActionCode       int
	DeviceNumber     int
	Value            string
	TemperatureScale int
	WaitForExecution bool
}

// PerformAction issues a command. At most one action is in flight per
// client; concurrent callers queue on the action lock. A success opens the
// fast-poll window so follow-up status reads bypass the cache freshness
// check. Errors are never masked here.
func (c *Client) PerformAction(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	actionsInFlight.Inc()
	defer actionsInFlight.Dec()

	payload, err := c.post(ctx, "/api/poolaction", map[string]any{
		"pool_api_code":      req.PoolAPICode,
		"action_code":        req.ActionCode,
		"device_number":      req.DeviceNumber,
		"value":              req.Value,
		"temperature_scale":  req.TemperatureScale,
		"wait_for_execution": req.WaitForExecution,
	})
	if err != nil {
		actionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	c.mu.Lock()
	c.fastPollUntil = c.now().Add(fastPollWindow)
	c.mu.Unlock()
	actionsTotal.WithLabelValues("ok").Inc()

	result := &ActionResult{Raw: payload}
	if err := decodePayload(payload, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetActionStatus looks up the result of an asynchronous action.
func (c *Client) GetActionStatus(ctx context.Context, poolAPICode string, actionNumber int) (*ActionResult, error) {
	payload, err := c.post(ctx, "/api/poolactionstatus", map[string]any{
		"pool_api_code": poolAPICode,
		"action_number": actionNumber,
	})
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Raw: payload}
	if err := decodePayload(payload, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) fastPollActiveLocked() bool {
	return c.now().Before(c.fastPollUntil)
}

// post sends a JSON body and returns the normalized response object. The
// cloud occasionally wraps responses in a single-element array; that is
// unwrapped before the failure classifier runs.
func (c *Client) post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	endpoint := strings.TrimPrefix(path, "/api/")
	requestsTotal.WithLabelValues(endpoint).Inc()

	data, err := json.Marshal(body)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &TransportError{
			Op:  path,
			Err: fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &TransportError{Op: path, Err: fmt.Errorf("decode body: %w", err)}
	}

	if list, ok := payload.([]any); ok {
		if len(list) > 0 {
			payload = list[0]
		} else {
			payload = map[string]any{}
		}
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, &TransportError{Op: path, Err: fmt.Errorf("unexpected payload type %T", payload)}
	}

	if err := classify(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// decodePayload round-trips the normalized map into a typed struct so
// undocumented fields survive in Raw while known ones get real types.
func decodePayload(payload map[string]any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &TransportError{Op: "decode", Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: "decode", Err: err}
	}
	return nil
}

// StableID derives a short identifier from the pool API code for topics,
// metric labels, and logs. The raw code is a credential and must not leak
// into any of those.
func StableID(poolAPICode string) string {
	sum := sha1.Sum([]byte(poolAPICode))
	return hex.EncodeToString(sum[:])[:12]
}
