package connectmypool

import (
	"context"
	"time"
)

const (
	// DefaultCycleAttempts bounds the cycle loop. Channels advertise up to
	// six modes, so six cycles visit every one of them when the controller
	// supports the full set.
	DefaultCycleAttempts = 6

	// DefaultSettleDelay gives the cloud a moment to apply an action
	// before the forced status re-read.
	DefaultSettleDelay = time.Second
)

// CycleRequest drives a cycle-only device toward a desired mode. The
// server picks the next mode in an order the API doesn't expose, so the
// only way to know a cycle landed is to re-read status.
type CycleRequest struct {
	PoolAPICode      string
	ActionCode       int
	DeviceNumber     int
	Desired          int
	TemperatureScale int
	WaitForExecution bool

	// MaxAttempts defaults to DefaultCycleAttempts, SettleDelay to
	// DefaultSettleDelay.
	MaxAttempts int
	SettleDelay time.Duration
}

// CycleToMode cycles until currentMode reports the desired mode, up to the
// attempt bound. Already being in the desired mode is a no-op. Action or
// read errors abort immediately; only bound exhaustion becomes
// *UnreachableModeError.
func (c *Client) CycleToMode(ctx context.Context, req CycleRequest, currentMode func(*Status) (int, bool)) error {
	if req.ActionCode == 0 {
		req.ActionCode = ActionCycleChannel
	}
	if req.MaxAttempts <= 0 {
		req.MaxAttempts = DefaultCycleAttempts
	}
	if req.SettleDelay <= 0 {
		req.SettleDelay = DefaultSettleDelay
	}

	status := c.CachedStatus()
	if status == nil {
		var err error
		status, err = c.GetStatus(ctx, req.PoolAPICode, req.TemperatureScale, false)
		if err != nil {
			return err
		}
	}

	if mode, ok := currentMode(status); ok && mode == req.Desired {
		return nil
	}

	for attempt := 0; attempt < req.MaxAttempts; attempt++ {
		_, err := c.PerformAction(ctx, ActionRequest{
			PoolAPICode:      req.PoolAPICode,
			ActionCode:       req.ActionCode,
			DeviceNumber:     req.DeviceNumber,
			TemperatureScale: req.TemperatureScale,
			WaitForExecution: req.WaitForExecution,
		})
		if err != nil {
			return err
		}

		if err := sleepCtx(ctx, req.SettleDelay); err != nil {
			return err
		}

		status, err = c.GetStatus(ctx, req.PoolAPICode, req.TemperatureScale, true)
		if err != nil {
			return err
		}
		if mode, ok := currentMode(status); ok && mode == req.Desired {
			return nil
		}
	}

	return &UnreachableModeError{
		DeviceNumber: req.DeviceNumber,
		Desired:      req.Desired,
		Attempts:     req.MaxAttempts,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
