// Package pool exposes device-level operations on top of the raw
// ConnectMyPool client: heater and solar setpoints, valve and lighting
// modes, and the cycle-until-it-sticks handling for channels, which the
// cloud only lets us advance one mode at a time.
package pool

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/joshp123/gopool/internal/connectmypool"
)

// channelOnOffAttempts is deliberately above the six advertised channel
// modes: controllers with a reduced mode set still get a fair shot at
// landing on (or off) within one full lap.
const channelOnOffAttempts = 8

// HeaterMode is the user-facing heater state.
type HeaterMode string

const (
	HeaterOff  HeaterMode = "off"
	HeaterHeat HeaterMode = "heat"
	HeaterCool HeaterMode = "cool"
)

// Controller binds a client to one pool's credentials and topology.
type Controller struct {
	client *connectmypool.Client
	config *connectmypool.Config

	poolAPICode   string
	scale         int
	wait          bool
	settleDelay   time.Duration
	cycleAttempts int

	log *zap.Logger

	// requestRefresh asks the coordinator for a settle-delayed forced
	// refresh after an accepted action. Nil for one-shot CLI use.
	requestRefresh func()
}

type Options struct {
	PoolAPICode      string
	TemperatureScale int
	WaitForExecution bool
	SettleDelay      time.Duration
	CycleAttempts    int
	RequestRefresh   func()
	Logger           *zap.Logger
}

func NewController(client *connectmypool.Client, config *connectmypool.Config, opts Options) *Controller {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = connectmypool.DefaultSettleDelay
	}
	if opts.CycleAttempts <= 0 {
		opts.CycleAttempts = connectmypool.DefaultCycleAttempts
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		client:         client,
		config:         config,
		poolAPICode:    opts.PoolAPICode,
		scale:          opts.TemperatureScale,
		wait:           opts.WaitForExecution,
		settleDelay:    opts.SettleDelay,
		cycleAttempts:  opts.CycleAttempts,
		requestRefresh: opts.RequestRefresh,
		log:            opts.Logger,
	}
}

// Config returns the topology the controller was built with.
func (c *Controller) Config() *connectmypool.Config {
	return c.config
}

// SetChannelMode cycles the channel until it reports the desired mode.
func (c *Controller) SetChannelMode(ctx context.Context, channel, mode int) error {
	if _, ok := connectmypool.ChannelModeLabels[mode]; !ok {
		return fmt.Errorf("unsupported channel mode %d", mode)
	}
	c.log.Debug("cycling channel toward mode",
		zap.Int("channel", channel), zap.Int("mode", mode))
	err := c.client.CycleToMode(ctx, c.cycleRequest(channel, mode), channelMode(channel))
	if err == nil {
		c.notifyRefresh()
	}
	return err
}

// TurnChannelOn cycles until the channel leaves Off. Auto and the speed
// modes all count as on, so one cycle usually does it.
func (c *Controller) TurnChannelOn(ctx context.Context, channel int) error {
	err := c.cycleChannelUntil(ctx, channel, func(mode int) bool {
		return mode != connectmypool.ChannelOff
	})
	if err != nil {
		return fmt.Errorf("channel %d did not reach a running mode: %w", channel, err)
	}
	c.notifyRefresh()
	return nil
}

// TurnChannelOff cycles until the channel reports Off.
func (c *Controller) TurnChannelOff(ctx context.Context, channel int) error {
	err := c.cycleChannelUntil(ctx, channel, func(mode int) bool {
		return mode == connectmypool.ChannelOff
	})
	if err != nil {
		return fmt.Errorf("channel %d did not reach off: %w", channel, err)
	}
	c.notifyRefresh()
	return nil
}

// cycleChannelUntil is the looser cousin of CycleToMode: it accepts any
// mode matching the predicate rather than one exact value, with a wider
// bound since the target set is wider too.
func (c *Controller) cycleChannelUntil(ctx context.Context, channel int, done func(int) bool) error {
	status := c.client.CachedStatus()
	if status == nil {
		var err error
		status, err = c.client.GetStatus(ctx, c.poolAPICode, c.scale, false)
		if err != nil {
			return err
		}
	}

	readMode := channelMode(channel)
	if mode, ok := readMode(status); ok && done(mode) {
		return nil
	}

	for attempt := 0; attempt < channelOnOffAttempts; attempt++ {
		if _, err := c.client.PerformAction(ctx, connectmypool.ActionRequest{
			PoolAPICode:      c.poolAPICode,
			ActionCode:       connectmypool.ActionCycleChannel,
			DeviceNumber:     channel,
			TemperatureScale: c.scale,
			WaitForExecution: c.wait,
		}); err != nil {
			return err
		}

		timer := time.NewTimer(c.settleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		var err error
		status, err = c.client.GetStatus(ctx, c.poolAPICode, c.scale, true)
		if err != nil {
			return err
		}
		if mode, ok := readMode(status); ok && done(mode) {
			return nil
		}
	}

	return &connectmypool.UnreachableModeError{
		DeviceNumber: channel,
		Desired:      -1,
		Attempts:     channelOnOffAttempts,
	}
}

func (c *Controller) cycleRequest(device, desired int) connectmypool.CycleRequest {
	return connectmypool.CycleRequest{
		PoolAPICode:      c.poolAPICode,
		ActionCode:       connectmypool.ActionCycleChannel,
		DeviceNumber:     device,
		Desired:          desired,
		TemperatureScale: c.scale,
		WaitForExecution: c.wait,
		MaxAttempts:      c.cycleAttempts,
		SettleDelay:      c.settleDelay,
	}
}

func channelMode(number int) func(*connectmypool.Status) (int, bool) {
	return func(s *connectmypool.Status) (int, bool) {
		ch := s.Channel(number)
		if ch == nil {
			return 0, false
		}
		return ch.Mode, true
	}
}

// do issues a direct-set action and nudges the coordinator afterwards.
func (c *Controller) do(ctx context.Context, actionCode, device int, value string) error {
	_, err := c.client.PerformAction(ctx, connectmypool.ActionRequest{
		PoolAPICode:      c.poolAPICode,
		ActionCode:       actionCode,
		DeviceNumber:     device,
		Value:            value,
		TemperatureScale: c.scale,
		WaitForExecution: c.wait,
	})
	if err != nil {
		return err
	}
	c.notifyRefresh()
	return nil
}

func (c *Controller) notifyRefresh() {
	if c.requestRefresh != nil {
		c.requestRefresh()
	}
}

// SetValveMode sets a valve to Off/Auto/On directly.
func (c *Controller) SetValveMode(ctx context.Context, valve, mode int) error {
	if _, ok := connectmypool.TriModeLabels[mode]; !ok {
		return fmt.Errorf("unsupported valve mode %d", mode)
	}
	return c.do(ctx, connectmypool.ActionSetValveMode, valve, fmt.Sprintf("%d", mode))
}

// SetLightingZoneMode sets a lighting zone to Off/Auto/On directly.
func (c *Controller) SetLightingZoneMode(ctx context.Context, zone, mode int) error {
	if _, ok := connectmypool.TriModeLabels[mode]; !ok {
		return fmt.Errorf("unsupported lighting zone mode %d", mode)
	}
	return c.do(ctx, connectmypool.ActionSetLightMode, zone, fmt.Sprintf("%d", mode))
}

// TurnLightOn switches a zone on, optionally applying a color effect.
func (c *Controller) TurnLightOn(ctx context.Context, zone int, effect string) error {
	if err := c.do(ctx, connectmypool.ActionSetLightMode, zone, fmt.Sprintf("%d", connectmypool.TriOn)); err != nil {
		return err
	}
	if effect == "" {
		return nil
	}
	color, err := c.ResolveColor(zone, effect)
	if err != nil {
		return err
	}
	return c.do(ctx, connectmypool.ActionSetLightColor, zone, fmt.Sprintf("%d", color))
}

// TurnLightOff switches a zone off.
func (c *Controller) TurnLightOff(ctx context.Context, zone int) error {
	return c.do(ctx, connectmypool.ActionSetLightMode, zone, fmt.Sprintf("%d", connectmypool.TriOff))
}

// SetLightColor applies a color by number on a color-capable zone.
func (c *Controller) SetLightColor(ctx context.Context, zone, color int) error {
	zc := c.lightingZone(zone)
	if zc == nil {
		return fmt.Errorf("unknown lighting zone %d", zone)
	}
	if !zc.ColorEnabled {
		return fmt.Errorf("lighting zone %d does not support colors", zone)
	}
	return c.do(ctx, connectmypool.ActionSetLightColor, zone, fmt.Sprintf("%d", color))
}

// ResolveColor maps a color name from the pool config to its number.
func (c *Controller) ResolveColor(zone int, name string) (int, error) {
	zc := c.lightingZone(zone)
	if zc == nil {
		return 0, fmt.Errorf("unknown lighting zone %d", zone)
	}
	if !zc.ColorEnabled {
		return 0, fmt.Errorf("lighting zone %d does not support colors", zone)
	}
	for _, color := range zc.ColorsAvailable {
		if color.ColorName == name {
			return color.ColorNumber, nil
		}
	}
	return 0, fmt.Errorf("unknown color %q for lighting zone %d", name, zone)
}

// SyncLightColors fires the multi-zone color resync action.
func (c *Controller) SyncLightColors(ctx context.Context, zone int) error {
	return c.do(ctx, connectmypool.ActionLightSync, zone, "")
}

func (c *Controller) lightingZone(number int) *connectmypool.LightingZoneConfig {
	for i := range c.config.LightingZones {
		if c.config.LightingZones[i].LightingZoneNumber == number {
			return &c.config.LightingZones[i]
		}
	}
	return nil
}

// SetHeaterMode sets a heater off, heating, or cooling. Cooling needs the
// heat/cool selection feature and is sequenced as select-then-enable, the
// order the controller expects.
func (c *Controller) SetHeaterMode(ctx context.Context, heater int, mode HeaterMode) error {
	switch mode {
	case HeaterOff:
		return c.do(ctx, connectmypool.ActionSetHeaterMode, heater, "0")
	case HeaterHeat:
		if c.config.HeatCoolSelectionEnabled {
			if err := c.do(ctx, connectmypool.ActionSetHeatCool, heater, fmt.Sprintf("%d", connectmypool.SelectionHeating)); err != nil {
				return err
			}
		}
		return c.do(ctx, connectmypool.ActionSetHeaterMode, heater, "1")
	case HeaterCool:
		if !c.config.HeatCoolSelectionEnabled {
			return fmt.Errorf("cooling is not enabled for this pool")
		}
		if err := c.do(ctx, connectmypool.ActionSetHeatCool, heater, fmt.Sprintf("%d", connectmypool.SelectionCooling)); err != nil {
			return err
		}
		return c.do(ctx, connectmypool.ActionSetHeaterMode, heater, "1")
	default:
		return fmt.Errorf("unsupported heater mode %q", mode)
	}
}

// SetHeaterSetpoint sets the heater target temperature. The cloud only
// accepts integer setpoints, applied to the pool or spa target depending
// on the current pool/spa selection.
func (c *Controller) SetHeaterSetpoint(ctx context.Context, heater int, temperature float64) error {
	value := int(math.Round(temperature))
	return c.do(ctx, connectmypool.ActionSetHeaterSetTemp, heater, fmt.Sprintf("%d", value))
}

// SetSolarMode sets a solar system to Off/Auto/On.
func (c *Controller) SetSolarMode(ctx context.Context, solar, mode int) error {
	if _, ok := connectmypool.TriModeLabels[mode]; !ok {
		return fmt.Errorf("unsupported solar mode %d", mode)
	}
	return c.do(ctx, connectmypool.ActionSetSolarMode, solar, fmt.Sprintf("%d", mode))
}

// SetSolarSetpoint sets the solar target temperature (integer, like the
// heater setpoint).
func (c *Controller) SetSolarSetpoint(ctx context.Context, solar int, temperature float64) error {
	value := int(math.Round(temperature))
	return c.do(ctx, connectmypool.ActionSetSolarSetTemp, solar, fmt.Sprintf("%d", value))
}

// SetPoolSpa selects pool or spa operation.
func (c *Controller) SetPoolSpa(ctx context.Context, selection int) error {
	if _, ok := connectmypool.PoolSpaLabels[selection]; !ok {
		return fmt.Errorf("unsupported pool/spa selection %d", selection)
	}
	if !c.config.PoolSpaSelectionEnabled {
		return fmt.Errorf("pool/spa selection is not enabled for this pool")
	}
	return c.do(ctx, connectmypool.ActionSetPoolSpa, 0, fmt.Sprintf("%d", selection))
}

// SetHeatCool selects heating or cooling for heat pump setups.
func (c *Controller) SetHeatCool(ctx context.Context, selection int) error {
	if _, ok := connectmypool.HeatCoolLabels[selection]; !ok {
		return fmt.Errorf("unsupported heat/cool selection %d", selection)
	}
	if !c.config.HeatCoolSelectionEnabled {
		return fmt.Errorf("heat/cool selection is not enabled for this pool")
	}
	return c.do(ctx, connectmypool.ActionSetHeatCool, 0, fmt.Sprintf("%d", selection))
}

// ActivateFavourite runs a favourite program by number. The "none" slot
// (255) cannot be requested; the controller offers no clear action.
func (c *Controller) ActivateFavourite(ctx context.Context, favourite int) error {
	if favourite == connectmypool.FavouriteNone {
		return fmt.Errorf("the controller has no explicit clear-favourite action")
	}
	for _, fav := range c.config.Favourites {
		if fav.FavouriteNumber == favourite {
			return c.do(ctx, connectmypool.ActionSetActiveFavourite, favourite, "")
		}
	}
	return fmt.Errorf("unknown favourite %d", favourite)
}
