package connectmypool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// cycleServer fakes a controller whose channel 1 advances modes 0→1→2→0
// on every cycle action.
func cycleServer(t *testing.T, modeCount int, cycles *int32) *httptest.Server {
	t.Helper()
	var mode int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/poolaction":
			atomic.AddInt32(cycles, 1)
			atomic.StoreInt32(&mode, (atomic.LoadInt32(&mode)+1)%int32(modeCount))
			_, _ = io.WriteString(w, `{"action_number": 1}`)
		case "/api/poolstatus":
			fmt.Fprintf(w, `{"channels":[{"channel_number":1,"mode":%d}]}`, atomic.LoadInt32(&mode))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
}

func channelMode(number int) func(*Status) (int, bool) {
	return func(s *Status) (int, bool) {
		ch := s.Channel(number)
		if ch == nil {
			return 0, false
		}
		return ch.Mode, true
	}
}

func TestCycleToModeReachesTarget(t *testing.T) {
	var cycles int32
	server := cycleServer(t, 3, &cycles)
	defer server.Close()

	client := NewClient(server.URL)
	err := client.CycleToMode(context.Background(), CycleRequest{
		PoolAPICode:  "abc123",
		DeviceNumber: 1,
		Desired:      2,
		SettleDelay:  time.Millisecond,
	}, channelMode(1))
	if err != nil {
		t.Fatalf("CycleToMode: %v", err)
	}
	if got := atomic.LoadInt32(&cycles); got != 2 {
		t.Fatalf("expected exactly 2 cycle actions, got %d", got)
	}
}

func TestCycleToModeNoOpWhenAlreadyThere(t *testing.T) {
	var cycles int32
	server := cycleServer(t, 3, &cycles)
	defer server.Close()

	client := NewClient(server.URL)
	err := client.CycleToMode(context.Background(), CycleRequest{
		PoolAPICode:  "abc123",
		DeviceNumber: 1,
		Desired:      0,
		SettleDelay:  time.Millisecond,
	}, channelMode(1))
	if err != nil {
		t.Fatalf("CycleToMode: %v", err)
	}
	if got := atomic.LoadInt32(&cycles); got != 0 {
		t.Fatalf("expected no cycle actions, got %d", got)
	}
}

func TestCycleToModeExhaustsBound(t *testing.T) {
	var cycles int32
	server := cycleServer(t, 3, &cycles)
	defer server.Close()

	client := NewClient(server.URL)
	err := client.CycleToMode(context.Background(), CycleRequest{
		PoolAPICode:  "abc123",
		DeviceNumber: 1,
		Desired:      5, // never reported by a 3-mode cycle
		MaxAttempts:  4,
		SettleDelay:  time.Millisecond,
	}, channelMode(1))

	var unreachable *UnreachableModeError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableModeError, got %v", err)
	}
	if unreachable.Desired != 5 || unreachable.Attempts != 4 {
		t.Fatalf("unexpected error detail: %+v", unreachable)
	}
	if got := atomic.LoadInt32(&cycles); got != 4 {
		t.Fatalf("expected exactly 4 cycle actions, got %d", got)
	}
}

func TestCycleToModePropagatesActionErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/poolstatus":
			_, _ = io.WriteString(w, `{"channels":[{"channel_number":1,"mode":0}]}`)
		case "/api/poolaction":
			_, _ = io.WriteString(w, `{"failure_code": 7, "failure_description": "Pool not connected"}`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.CycleToMode(context.Background(), CycleRequest{
		PoolAPICode:  "abc123",
		DeviceNumber: 1,
		Desired:      2,
		SettleDelay:  time.Millisecond,
	}, channelMode(1))

	var notConnected *NotConnectedError
	if !errors.As(err, &notConnected) {
		t.Fatalf("mid-loop errors must propagate, got %v", err)
	}
}
