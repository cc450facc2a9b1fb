package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/joshp123/gopool/internal/connectmypool"
)

type recordedAction struct {
	Code   int
	Device int
	Value  string
}

// poolServer is a minimal fake cloud: it records actions, advances channel
// modes on cycle actions, and serves a static-ish status.
type poolServer struct {
	t *testing.T

	mu          sync.Mutex
	actions     []recordedAction
	channelMode int
	modeCount   int

	server *httptest.Server
}

func newPoolServer(t *testing.T, modeCount int) *poolServer {
	t.Helper()
	ps := &poolServer{t: t, modeCount: modeCount}
	ps.server = httptest.NewServer(http.HandlerFunc(ps.handle))
	t.Cleanup(ps.server.Close)
	return ps
}

func (ps *poolServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/poolaction":
		ps.mu.Lock()
		action := recordedAction{
			Code:   int(req["action_code"].(float64)),
			Device: int(req["device_number"].(float64)),
			Value:  req["value"].(string),
		}
		ps.actions = append(ps.actions, action)
		if action.Code == connectmypool.ActionCycleChannel && ps.modeCount > 0 {
			ps.channelMode = (ps.channelMode + 1) % ps.modeCount
		}
		ps.mu.Unlock()
		_, _ = io.WriteString(w, `{"action_number": 1}`)
	case "/api/poolstatus":
		ps.mu.Lock()
		mode := ps.channelMode
		ps.mu.Unlock()
		fmt.Fprintf(w, `{"temperature":26.0,"channels":[{"channel_number":1,"mode":%d}]}`, mode)
	default:
		ps.t.Errorf("unexpected path: %s", r.URL.Path)
	}
}

func (ps *poolServer) recorded() []recordedAction {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]recordedAction, len(ps.actions))
	copy(out, ps.actions)
	return out
}

func newTestController(t *testing.T, ps *poolServer, cfg *connectmypool.Config) *Controller {
	t.Helper()
	client := connectmypool.NewClient(ps.server.URL)
	return NewController(client, cfg, Options{
		PoolAPICode: "abc123",
		SettleDelay: time.Millisecond,
	})
}

func TestSetHeaterModeCoolSequencing(t *testing.T) {
	ps := newPoolServer(t, 0)
	ctrl := newTestController(t, ps, &connectmypool.Config{
		Heaters:                  []connectmypool.HeaterConfig{{HeaterNumber: 1}},
		HeatCoolSelectionEnabled: true,
	})

	if err := ctrl.SetHeaterMode(context.Background(), 1, HeaterCool); err != nil {
		t.Fatalf("SetHeaterMode cool: %v", err)
	}

	actions := ps.recorded()
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %+v", actions)
	}
	if actions[0].Code != connectmypool.ActionSetHeatCool || actions[0].Value != "0" {
		t.Fatalf("expected heat/cool select first, got %+v", actions[0])
	}
	if actions[1].Code != connectmypool.ActionSetHeaterMode || actions[1].Value != "1" {
		t.Fatalf("expected heater enable second, got %+v", actions[1])
	}
}

func TestSetHeaterModeCoolRequiresFeature(t *testing.T) {
	ps := newPoolServer(t, 0)
	ctrl := newTestController(t, ps, &connectmypool.Config{
		Heaters: []connectmypool.HeaterConfig{{HeaterNumber: 1}},
	})

	if err := ctrl.SetHeaterMode(context.Background(), 1, HeaterCool); err == nil {
		t.Fatalf("expected error for disabled cooling")
	}
	if actions := ps.recorded(); len(actions) != 0 {
		t.Fatalf("no actions should be issued, got %+v", actions)
	}
}

func TestSetHeaterSetpointRoundsToInteger(t *testing.T) {
	ps := newPoolServer(t, 0)
	ctrl := newTestController(t, ps, &connectmypool.Config{})

	if err := ctrl.SetHeaterSetpoint(context.Background(), 1, 29.6); err != nil {
		t.Fatalf("SetHeaterSetpoint: %v", err)
	}

	actions := ps.recorded()
	if len(actions) != 1 || actions[0].Code != connectmypool.ActionSetHeaterSetTemp || actions[0].Value != "30" {
		t.Fatalf("unexpected actions: %+v", actions)
	}
}

func TestSetChannelModeCycles(t *testing.T) {
	ps := newPoolServer(t, 3)
	ctrl := newTestController(t, ps, &connectmypool.Config{
		Channels: []connectmypool.ChannelConfig{{ChannelNumber: 1}},
	})

	if err := ctrl.SetChannelMode(context.Background(), 1, 2); err != nil {
		t.Fatalf("SetChannelMode: %v", err)
	}

	actions := ps.recorded()
	if len(actions) != 2 {
		t.Fatalf("expected 2 cycle actions, got %+v", actions)
	}
	for _, action := range actions {
		if action.Code != connectmypool.ActionCycleChannel {
			t.Fatalf("expected only cycle actions, got %+v", actions)
		}
	}
}

func TestTurnChannelOnAcceptsAuto(t *testing.T) {
	// Mode count 2 means the channel alternates Off and Auto; Auto must
	// satisfy turn-on.
	ps := newPoolServer(t, 2)
	ctrl := newTestController(t, ps, &connectmypool.Config{
		Channels: []connectmypool.ChannelConfig{{ChannelNumber: 1}},
	})

	if err := ctrl.TurnChannelOn(context.Background(), 1); err != nil {
		t.Fatalf("TurnChannelOn: %v", err)
	}
	if actions := ps.recorded(); len(actions) != 1 {
		t.Fatalf("expected 1 cycle, got %+v", actions)
	}
}

func TestTurnChannelOffCyclesFullLap(t *testing.T) {
	ps := newPoolServer(t, 3)
	ps.channelMode = 1
	ctrl := newTestController(t, ps, &connectmypool.Config{
		Channels: []connectmypool.ChannelConfig{{ChannelNumber: 1}},
	})

	if err := ctrl.TurnChannelOff(context.Background(), 1); err != nil {
		t.Fatalf("TurnChannelOff: %v", err)
	}
	if actions := ps.recorded(); len(actions) != 2 {
		t.Fatalf("expected 2 cycles back to off, got %+v", actions)
	}
}

func TestActivateFavouriteValidation(t *testing.T) {
	ps := newPoolServer(t, 0)
	ctrl := newTestController(t, ps, &connectmypool.Config{
		Favourites: []connectmypool.Favourite{{FavouriteNumber: 2, Name: "All Auto"}},
	})
	ctx := context.Background()

	if err := ctrl.ActivateFavourite(ctx, 9); err == nil {
		t.Fatalf("expected error for unknown favourite")
	}
	if err := ctrl.ActivateFavourite(ctx, connectmypool.FavouriteNone); err == nil {
		t.Fatalf("expected error for the none slot")
	}
	if err := ctrl.ActivateFavourite(ctx, 2); err != nil {
		t.Fatalf("ActivateFavourite: %v", err)
	}

	actions := ps.recorded()
	if len(actions) != 1 || actions[0].Code != connectmypool.ActionSetActiveFavourite || actions[0].Device != 2 {
		t.Fatalf("unexpected actions: %+v", actions)
	}
}

func TestResolveColor(t *testing.T) {
	cfg := &connectmypool.Config{
		LightingZones: []connectmypool.LightingZoneConfig{{
			LightingZoneNumber: 1,
			ColorEnabled:       true,
			ColorsAvailable: []connectmypool.Color{
				{ColorNumber: 3, ColorName: "Ocean Blue"},
			},
		}, {
			LightingZoneNumber: 2,
		}},
	}
	ps := newPoolServer(t, 0)
	ctrl := newTestController(t, ps, cfg)

	color, err := ctrl.ResolveColor(1, "Ocean Blue")
	if err != nil || color != 3 {
		t.Fatalf("ResolveColor: %d, %v", color, err)
	}
	if _, err := ctrl.ResolveColor(1, "Magenta"); err == nil {
		t.Fatalf("expected unknown color error")
	}
	if _, err := ctrl.ResolveColor(2, "Ocean Blue"); err == nil {
		t.Fatalf("expected color-disabled error")
	}
}

func TestControllerErrorsPropagate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"failure_code": 7, "failure_description": "Pool not connected"}`)
	}))
	defer server.Close()

	client := connectmypool.NewClient(server.URL)
	ctrl := NewController(client, &connectmypool.Config{}, Options{
		PoolAPICode: "abc123",
		SettleDelay: time.Millisecond,
	})

	err := ctrl.SetValveMode(context.Background(), 1, connectmypool.TriAuto)
	var notConnected *connectmypool.NotConnectedError
	if !errors.As(err, &notConnected) {
		t.Fatalf("expected NotConnectedError, got %v", err)
	}
}
