package coordinator

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/gopool/internal/connectmypool"
)

var (
	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopool_refresh_total",
			Help: "Status refresh attempts by result",
		},
		[]string{"result"},
	)
	refreshSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gopool_refresh_success",
			Help: "Last refresh success (1=ok, 0=error)",
		},
	)
	lastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gopool_last_refresh_success_timestamp_seconds",
			Help: "Last successful refresh timestamp (epoch seconds)",
		},
	)
)

// MetricsCollectors exposes the refresh loop collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		refreshTotal,
		refreshSuccess,
		lastSuccessTimestamp,
	}
}

// SnapshotCollector exports the last status snapshot as gauges, labeled by
// the hashed pool id. It reads the cache only; a Prometheus scrape must
// never spend the cloud's read budget.
type SnapshotCollector struct {
	poolID string
	last   func() *connectmypool.Status

	waterTemperature *prometheus.Desc
	poolSpaSelection *prometheus.Desc
	activeFavourite  *prometheus.Desc
	heaterMode       *prometheus.Desc
	heaterSetTemp    *prometheus.Desc
	channelMode      *prometheus.Desc
	valveMode        *prometheus.Desc
	lightingZoneMode *prometheus.Desc
	solarMode        *prometheus.Desc
	solarSetTemp     *prometheus.Desc
}

func NewSnapshotCollector(poolID string, last func() *connectmypool.Status) *SnapshotCollector {
	pool := []string{"pool"}
	return &SnapshotCollector{
		poolID: poolID,
		last:   last,
		waterTemperature: prometheus.NewDesc("gopool_water_temperature",
			"Water temperature in the configured scale", pool, nil),
		poolSpaSelection: prometheus.NewDesc("gopool_pool_spa_selection",
			"Current selection (0=spa, 1=pool)", pool, nil),
		activeFavourite: prometheus.NewDesc("gopool_active_favourite",
			"Active favourite number (255=none)", pool, nil),
		heaterMode: prometheus.NewDesc("gopool_heater_mode",
			"Heater mode", []string{"pool", "heater"}, nil),
		heaterSetTemp: prometheus.NewDesc("gopool_heater_set_temperature",
			"Heater set temperature for the current pool/spa selection", []string{"pool", "heater"}, nil),
		channelMode: prometheus.NewDesc("gopool_channel_mode",
			"Channel mode (0=off, 1=auto, 2=on, 3-5=speeds)", []string{"pool", "channel"}, nil),
		valveMode: prometheus.NewDesc("gopool_valve_mode",
			"Valve mode (0=off, 1=auto, 2=on)", []string{"pool", "valve"}, nil),
		lightingZoneMode: prometheus.NewDesc("gopool_lighting_zone_mode",
			"Lighting zone mode (0=off, 1=auto, 2=on)", []string{"pool", "zone"}, nil),
		solarMode: prometheus.NewDesc("gopool_solar_mode",
			"Solar mode (0=off, 1=auto, 2=on)", []string{"pool", "solar"}, nil),
		solarSetTemp: prometheus.NewDesc("gopool_solar_set_temperature",
			"Solar set temperature", []string{"pool", "solar"}, nil),
	}
}

func (c *SnapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.waterTemperature
	ch <- c.poolSpaSelection
	ch <- c.activeFavourite
	ch <- c.heaterMode
	ch <- c.heaterSetTemp
	ch <- c.channelMode
	ch <- c.valveMode
	ch <- c.lightingZoneMode
	ch <- c.solarMode
	ch <- c.solarSetTemp
}

func (c *SnapshotCollector) Collect(ch chan<- prometheus.Metric) {
	status := c.last()
	if status == nil {
		return
	}

	if status.Temperature != nil {
		ch <- prometheus.MustNewConstMetric(c.waterTemperature,
			prometheus.GaugeValue, *status.Temperature, c.poolID)
	}
	ch <- prometheus.MustNewConstMetric(c.poolSpaSelection,
		prometheus.GaugeValue, float64(status.PoolOrSpa()), c.poolID)
	if status.ActiveFavourite != nil {
		ch <- prometheus.MustNewConstMetric(c.activeFavourite,
			prometheus.GaugeValue, float64(*status.ActiveFavourite), c.poolID)
	}

	for _, h := range status.Heaters {
		n := strconv.Itoa(h.HeaterNumber)
		ch <- prometheus.MustNewConstMetric(c.heaterMode,
			prometheus.GaugeValue, float64(h.Mode), c.poolID, n)
		setTemp := h.SetTemperature
		if status.PoolOrSpa() == connectmypool.SelectionSpa && h.SpaSetTemperature != nil {
			setTemp = h.SpaSetTemperature
		}
		if setTemp != nil {
			ch <- prometheus.MustNewConstMetric(c.heaterSetTemp,
				prometheus.GaugeValue, float64(*setTemp), c.poolID, n)
		}
	}
	for _, dev := range status.Channels {
		ch <- prometheus.MustNewConstMetric(c.channelMode,
			prometheus.GaugeValue, float64(dev.Mode), c.poolID, strconv.Itoa(dev.ChannelNumber))
	}
	for _, dev := range status.Valves {
		ch <- prometheus.MustNewConstMetric(c.valveMode,
			prometheus.GaugeValue, float64(dev.Mode), c.poolID, strconv.Itoa(dev.ValveNumber))
	}
	for _, dev := range status.LightingZones {
		ch <- prometheus.MustNewConstMetric(c.lightingZoneMode,
			prometheus.GaugeValue, float64(dev.Mode), c.poolID, strconv.Itoa(dev.LightingZoneNumber))
	}
	for _, dev := range status.SolarSystems {
		n := strconv.Itoa(dev.SolarNumber)
		ch <- prometheus.MustNewConstMetric(c.solarMode,
			prometheus.GaugeValue, float64(dev.Mode), c.poolID, n)
		if dev.SetTemperature != nil {
			ch <- prometheus.MustNewConstMetric(c.solarSetTemp,
				prometheus.GaugeValue, float64(*dev.SetTemperature), c.poolID, n)
		}
	}
}
