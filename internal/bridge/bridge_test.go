package bridge

import (
	"testing"

	"github.com/joshp123/gopool/internal/connectmypool"
)

func TestParseModeAcceptsNumbersAndLabels(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"0", connectmypool.ChannelOff},
		{"1", connectmypool.ChannelAuto},
		{"auto", connectmypool.ChannelAuto},
		{"Low Speed", connectmypool.ChannelLowSpeed},
		{"on", connectmypool.ChannelOn},
	}
	for _, tt := range tests {
		got, err := parseMode(tt.value, connectmypool.ChannelModeLabels)
		if err != nil {
			t.Errorf("parseMode(%q): %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMode(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseModeRejectsUnknown(t *testing.T) {
	if _, err := parseMode("42", connectmypool.ChannelModeLabels); err == nil {
		t.Error("expected error for out-of-range mode")
	}
	if _, err := parseMode("warp", connectmypool.ChannelModeLabels); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestParseOnOff(t *testing.T) {
	for _, v := range []string{"on", "ON", "true", "1"} {
		got, err := parseOnOff(v)
		if err != nil || !got {
			t.Errorf("parseOnOff(%q) = %v, %v, want true", v, got, err)
		}
	}
	for _, v := range []string{"off", "false", "0"} {
		got, err := parseOnOff(v)
		if err != nil || got {
			t.Errorf("parseOnOff(%q) = %v, %v, want false", v, got, err)
		}
	}
	if _, err := parseOnOff("maybe"); err == nil {
		t.Error("expected error for ambiguous payload")
	}
}
