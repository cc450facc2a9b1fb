package coordinator

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/gopool/internal/connectmypool"
)

func TestSnapshotCollectorExportsLastStatus(t *testing.T) {
	temp := 27.5
	setTemp := 30
	status := &connectmypool.Status{
		Temperature: &temp,
		Heaters:     []connectmypool.HeaterStatus{{HeaterNumber: 1, Mode: 1, SetTemperature: &setTemp}},
		Channels:    []connectmypool.ChannelStatus{{ChannelNumber: 2, Mode: connectmypool.ChannelAuto}},
	}

	registry := prometheus.NewPedanticRegistry()
	registry.MustRegister(NewSnapshotCollector("abcdef123456", func() *connectmypool.Status {
		return status
	}))

	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}

	values := map[string]float64{}
	pools := map[string]string{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			values[fam.GetName()] = m.GetGauge().GetValue()
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "pool" {
					pools[fam.GetName()] = lp.GetValue()
				}
			}
		}
	}

	if got := values["gopool_water_temperature"]; got != temp {
		t.Errorf("water temperature = %v, want %v", got, temp)
	}
	if got := values["gopool_heater_set_temperature"]; got != float64(setTemp) {
		t.Errorf("heater set temperature = %v, want %v", got, setTemp)
	}
	if got := values["gopool_channel_mode"]; got != float64(connectmypool.ChannelAuto) {
		t.Errorf("channel mode = %v, want %v", got, connectmypool.ChannelAuto)
	}
	for name, pool := range pools {
		if pool != "abcdef123456" {
			t.Errorf("%s pool label = %q, want hashed id", name, pool)
		}
	}
}

func TestSnapshotCollectorEmptyBeforeFirstRefresh(t *testing.T) {
	registry := prometheus.NewPedanticRegistry()
	registry.MustRegister(NewSnapshotCollector("abcdef123456", func() *connectmypool.Status {
		return nil
	}))

	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 0 {
		t.Errorf("expected no metrics before the first snapshot, got %d families", len(families))
	}
}
