// Package bridge mirrors pool state onto MQTT and turns command topics
// into pool actions. Topics are keyed by a hashed pool id, never the raw
// API code.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joshp123/gopool/internal/config"
	"github.com/joshp123/gopool/internal/connectmypool"
	"github.com/joshp123/gopool/internal/coordinator"
	"github.com/joshp123/gopool/internal/pool"
)

// commandTimeout bounds a single command dispatch. Channel cycling can
// take several action round-trips, so this is generous.
const commandTimeout = 3 * time.Minute

// Bridge connects one pool to one MQTT broker.
type Bridge struct {
	mc     *mqttClient
	ctrl   *pool.Controller
	log    *zap.Logger
	prefix string
}

// New connects to the broker and prepares the topic tree for the pool
// identified by poolID (a StableID, not the API code).
func New(cfg config.MQTTConfig, poolID string, ctrl *pool.Controller, log *zap.Logger) (*Bridge, error) {
	if log == nil {
		log = zap.NewNop()
	}
	prefix := cfg.TopicPrefix + "/" + poolID

	mc, err := newMQTTClient(cfg, prefix+"/availability")
	if err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &Bridge{
		mc:     mc,
		ctrl:   ctrl,
		log:    log,
		prefix: prefix,
	}, nil
}

// Start subscribes the command topics for every device in the pool config
// and announces availability.
func (b *Bridge) Start() error {
	cfg := b.ctrl.Config()

	for _, ch := range cfg.Channels {
		n := ch.ChannelNumber
		if err := b.command(fmt.Sprintf("channel/%d/mode/set", n), b.setChannelMode(n)); err != nil {
			return err
		}
		if err := b.command(fmt.Sprintf("channel/%d/power/set", n), b.setChannelPower(n)); err != nil {
			return err
		}
	}
	for _, v := range cfg.Valves {
		n := v.ValveNumber
		if err := b.command(fmt.Sprintf("valve/%d/mode/set", n), b.setValveMode(n)); err != nil {
			return err
		}
	}
	for _, lz := range cfg.LightingZones {
		n := lz.LightingZoneNumber
		if err := b.command(fmt.Sprintf("light/%d/power/set", n), b.setLightPower(n)); err != nil {
			return err
		}
		if err := b.command(fmt.Sprintf("light/%d/mode/set", n), b.setLightMode(n)); err != nil {
			return err
		}
		if err := b.command(fmt.Sprintf("light/%d/sync", n), b.syncLight(n)); err != nil {
			return err
		}
		if lz.ColorEnabled {
			if err := b.command(fmt.Sprintf("light/%d/effect/set", n), b.setLightEffect(n)); err != nil {
				return err
			}
		}
	}
	for _, h := range cfg.Heaters {
		n := h.HeaterNumber
		if err := b.command(fmt.Sprintf("heater/%d/mode/set", n), b.setHeaterMode(n)); err != nil {
			return err
		}
		if err := b.command(fmt.Sprintf("heater/%d/setpoint/set", n), b.setHeaterSetpoint(n)); err != nil {
			return err
		}
	}
	for _, s := range cfg.SolarSystems {
		n := s.SolarNumber
		if err := b.command(fmt.Sprintf("solar/%d/mode/set", n), b.setSolarMode(n)); err != nil {
			return err
		}
		if err := b.command(fmt.Sprintf("solar/%d/setpoint/set", n), b.setSolarSetpoint(n)); err != nil {
			return err
		}
	}
	if cfg.PoolSpaSelectionEnabled {
		if err := b.command("pool_spa/set", b.setPoolSpa()); err != nil {
			return err
		}
	}
	if cfg.HeatCoolSelectionEnabled {
		if err := b.command("heat_cool/set", b.setHeatCool()); err != nil {
			return err
		}
	}
	if len(cfg.Favourites) > 0 {
		if err := b.command("favourite/set", b.setFavourite()); err != nil {
			return err
		}
	}

	return b.mc.publish(b.prefix+"/availability", []byte("online"), true)
}

// Close announces the pool offline and drops the broker connection.
func (b *Bridge) Close() {
	_ = b.mc.publish(b.prefix+"/availability", []byte("offline"), true)
	b.mc.disconnect()
}

// PublishStatus mirrors a snapshot to the retained status topic. Wired as
// a coordinator subscriber.
func (b *Bridge) PublishStatus(status *connectmypool.Status) {
	payload, err := json.Marshal(status)
	if err != nil {
		b.log.Error("marshal status", zap.Error(err))
		return
	}
	if err := b.mc.publish(b.prefix+"/status", payload, true); err != nil {
		b.log.Warn("publish status", zap.Error(err))
	}
}

// PublishHealth mirrors coordinator health to its retained topic.
func (b *Bridge) PublishHealth(health coordinator.Health, message string) {
	payload, _ := json.Marshal(map[string]string{
		"state":   string(health),
		"message": message,
	})
	if err := b.mc.publish(b.prefix+"/health", payload, true); err != nil {
		b.log.Warn("publish health", zap.Error(err))
	}
}

// command subscribes a handler that runs off the paho callback goroutine.
// Handler errors are logged and published, never fatal.
func (b *Bridge) command(suffix string, handler func(context.Context, string) error) error {
	topic := b.prefix + "/" + suffix
	return b.mc.subscribe(topic, func(payload []byte) {
		value := strings.TrimSpace(string(payload))
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := handler(ctx, value); err != nil {
				b.log.Warn("command failed",
					zap.String("topic", suffix), zap.String("payload", value), zap.Error(err))
				errPayload, _ := json.Marshal(map[string]string{
					"topic":   suffix,
					"payload": value,
					"error":   err.Error(),
				})
				_ = b.mc.publish(b.prefix+"/error", errPayload, false)
				return
			}
			b.log.Debug("command ok", zap.String("topic", suffix), zap.String("payload", value))
		}()
	})
}

func (b *Bridge) setChannelMode(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		mode, err := parseMode(value, connectmypool.ChannelModeLabels)
		if err != nil {
			return err
		}
		return b.ctrl.SetChannelMode(ctx, n, mode)
	}
}

func (b *Bridge) setChannelPower(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		on, err := parseOnOff(value)
		if err != nil {
			return err
		}
		if on {
			return b.ctrl.TurnChannelOn(ctx, n)
		}
		return b.ctrl.TurnChannelOff(ctx, n)
	}
}

func (b *Bridge) setValveMode(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		mode, err := parseMode(value, connectmypool.TriModeLabels)
		if err != nil {
			return err
		}
		return b.ctrl.SetValveMode(ctx, n, mode)
	}
}

func (b *Bridge) setLightPower(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		on, err := parseOnOff(value)
		if err != nil {
			return err
		}
		if on {
			return b.ctrl.TurnLightOn(ctx, n, "")
		}
		return b.ctrl.TurnLightOff(ctx, n)
	}
}

func (b *Bridge) setLightMode(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		mode, err := parseMode(value, connectmypool.TriModeLabels)
		if err != nil {
			return err
		}
		return b.ctrl.SetLightingZoneMode(ctx, n, mode)
	}
}

func (b *Bridge) setLightEffect(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		color, err := b.ctrl.ResolveColor(n, value)
		if err != nil {
			return err
		}
		return b.ctrl.SetLightColor(ctx, n, color)
	}
}

func (b *Bridge) syncLight(n int) func(context.Context, string) error {
	return func(ctx context.Context, _ string) error {
		return b.ctrl.SyncLightColors(ctx, n)
	}
}

func (b *Bridge) setHeaterMode(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		switch strings.ToLower(value) {
		case "off":
			return b.ctrl.SetHeaterMode(ctx, n, pool.HeaterOff)
		case "heat", "on":
			return b.ctrl.SetHeaterMode(ctx, n, pool.HeaterHeat)
		case "cool":
			return b.ctrl.SetHeaterMode(ctx, n, pool.HeaterCool)
		default:
			return fmt.Errorf("unsupported heater mode %q", value)
		}
	}
}

func (b *Bridge) setHeaterSetpoint(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		temp, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid setpoint %q", value)
		}
		return b.ctrl.SetHeaterSetpoint(ctx, n, temp)
	}
}

func (b *Bridge) setSolarMode(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		mode, err := parseMode(value, connectmypool.TriModeLabels)
		if err != nil {
			return err
		}
		return b.ctrl.SetSolarMode(ctx, n, mode)
	}
}

func (b *Bridge) setSolarSetpoint(n int) func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		temp, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid setpoint %q", value)
		}
		return b.ctrl.SetSolarSetpoint(ctx, n, temp)
	}
}

func (b *Bridge) setPoolSpa() func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		sel, err := parseMode(value, connectmypool.PoolSpaLabels)
		if err != nil {
			return err
		}
		return b.ctrl.SetPoolSpa(ctx, sel)
	}
}

func (b *Bridge) setHeatCool() func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		sel, err := parseMode(value, connectmypool.HeatCoolLabels)
		if err != nil {
			return err
		}
		return b.ctrl.SetHeatCool(ctx, sel)
	}
}

func (b *Bridge) setFavourite() func(context.Context, string) error {
	return func(ctx context.Context, value string) error {
		if n, err := strconv.Atoi(value); err == nil {
			return b.ctrl.ActivateFavourite(ctx, n)
		}
		for _, fav := range b.ctrl.Config().Favourites {
			if strings.EqualFold(fav.Name, value) {
				return b.ctrl.ActivateFavourite(ctx, fav.FavouriteNumber)
			}
		}
		return fmt.Errorf("unknown favourite %q", value)
	}
}

// parseMode accepts either the numeric mode or its label, case
// insensitively.
func parseMode(value string, labels map[int]string) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		if _, ok := labels[n]; ok {
			return n, nil
		}
		return 0, fmt.Errorf("unsupported mode %d", n)
	}
	for mode, label := range labels {
		if strings.EqualFold(label, value) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unsupported mode %q", value)
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", value)
	}
}
