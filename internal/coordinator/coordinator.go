// Package coordinator runs the periodic status refresh loop and fans
// successful snapshots out to subscribers (MQTT bridge, metrics).
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/joshp123/gopool/internal/connectmypool"
)

// Health mirrors what the last refresh attempt learned about the pool.
type Health string

const (
	HealthStarting     Health = "STARTING"
	HealthHealthy      Health = "HEALTHY"
	HealthThrottled    Health = "THROTTLED"
	HealthNotConnected Health = "NOT_CONNECTED"
	HealthError        Health = "ERROR"
)

const refreshTimeout = 45 * time.Second

// Coordinator polls pool status on a fixed interval and after actions.
type Coordinator struct {
	client      *connectmypool.Client
	poolAPICode string
	scale       int
	interval    time.Duration
	settleDelay time.Duration
	log         *zap.Logger

	mu              sync.Mutex
	listeners       []func(*connectmypool.Status)
	healthListeners []func(Health, string)
	health          Health
	healthMessage   string
	lastSuccess     time.Time

	kick chan struct{}
}

type Options struct {
	PoolAPICode      string
	TemperatureScale int
	Interval         time.Duration
	SettleDelay      time.Duration
	Logger           *zap.Logger
}

func New(client *connectmypool.Client, opts Options) *Coordinator {
	if opts.Interval <= 0 {
		opts.Interval = connectmypool.MinPollInterval
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = connectmypool.DefaultSettleDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Coordinator{
		client:      client,
		poolAPICode: opts.PoolAPICode,
		scale:       opts.TemperatureScale,
		interval:    opts.Interval,
		settleDelay: opts.SettleDelay,
		log:         opts.Logger,
		health:      HealthStarting,
		kick:        make(chan struct{}, 1),
	}
}

// Subscribe registers a callback invoked with every successful snapshot.
// Callbacks run on the coordinator goroutine and should return quickly.
func (c *Coordinator) Subscribe(fn func(*connectmypool.Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// SubscribeHealth registers a callback invoked after every refresh
// attempt with the resulting health state.
func (c *Coordinator) SubscribeHealth(fn func(Health, string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthListeners = append(c.healthListeners, fn)
}

// Health reports the current state and a human-readable detail.
func (c *Coordinator) Health() (Health, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health, c.healthMessage
}

// LastStatus returns the most recent successful snapshot, if any.
func (c *Coordinator) LastStatus() *connectmypool.Status {
	return c.client.CachedStatus()
}

// RequestRefresh schedules a forced refresh after the settle delay. Called
// by the controller after actions; extra requests while one is pending
// coalesce.
func (c *Coordinator) RequestRefresh() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Run polls until the context is cancelled. The first refresh happens
// immediately.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.refresh(ctx, false)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh(ctx, false)
		case <-c.kick:
			timer := time.NewTimer(c.settleDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			c.refresh(ctx, true)
		}
	}
}

func (c *Coordinator) refresh(ctx context.Context, force bool) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	status, err := c.client.GetStatus(ctx, c.poolAPICode, c.scale, force)
	if err != nil {
		health, result := classifyRefreshError(err)
		refreshTotal.WithLabelValues(result).Inc()
		refreshSuccess.Set(0)
		c.log.Warn("status refresh failed",
			zap.String("health", string(health)), zap.Error(err))

		c.mu.Lock()
		c.health = health
		c.healthMessage = err.Error()
		healthListeners := make([]func(Health, string), len(c.healthListeners))
		copy(healthListeners, c.healthListeners)
		c.mu.Unlock()
		for _, fn := range healthListeners {
			fn(health, err.Error())
		}
		return
	}

	refreshTotal.WithLabelValues("ok").Inc()
	refreshSuccess.Set(1)
	now := time.Now()
	lastSuccessTimestamp.Set(float64(now.Unix()))

	c.mu.Lock()
	c.health = HealthHealthy
	c.healthMessage = ""
	c.lastSuccess = now
	listeners := make([]func(*connectmypool.Status), len(c.listeners))
	copy(listeners, c.listeners)
	healthListeners := make([]func(Health, string), len(c.healthListeners))
	copy(healthListeners, c.healthListeners)
	c.mu.Unlock()

	for _, fn := range healthListeners {
		fn(HealthHealthy, "")
	}
	for _, fn := range listeners {
		fn(status)
	}
}

// classifyRefreshError buckets refresh failures the way the UI needs to
// distinguish them: throttled and not-connected are transient and keep the
// last snapshot visible; everything else is a generic failure.
func classifyRefreshError(err error) (Health, string) {
	var throttle *connectmypool.ThrottleError
	if errors.As(err, &throttle) {
		return HealthThrottled, "throttled"
	}
	var notConnected *connectmypool.NotConnectedError
	if errors.As(err, &notConnected) {
		return HealthNotConnected, "not_connected"
	}
	var auth *connectmypool.AuthError
	if errors.As(err, &auth) {
		return HealthError, "auth"
	}
	return HealthError, "error"
}
