package connectmypool

// Config is the static pool topology from /api/poolconfig. Raw keeps the
// full payload for fields the guide doesn't document.
type Config struct {
	Heaters                  []HeaterConfig       `json:"heaters"`
	Channels                 []ChannelConfig      `json:"channels"`
	Valves                   []ValveConfig        `json:"valves"`
	LightingZones            []LightingZoneConfig `json:"lighting_zones"`
	SolarSystems             []SolarConfig        `json:"solar_systems"`
	Favourites               []Favourite          `json:"favourites"`
	PoolSpaSelectionEnabled  bool                 `json:"pool_spa_selection_enabled"`
	HeatCoolSelectionEnabled bool                 `json:"heat_cool_selection_enabled"`

	Raw map[string]any `json:"-"`
}

type HeaterConfig struct {
	HeaterNumber int    `json:"heater_number"`
	Name         string `json:"name"`
}

type ChannelConfig struct {
	ChannelNumber int    `json:"channel_number"`
	Name          string `json:"name"`
	Function      string `json:"function"`
}

type ValveConfig struct {
	ValveNumber int    `json:"valve_number"`
	Name        string `json:"name"`
}

type LightingZoneConfig struct {
	LightingZoneNumber int     `json:"lighting_zone_number"`
	Name               string  `json:"name"`
	ColorEnabled       bool    `json:"color_enabled"`
	ColorsAvailable    []Color `json:"colors_available"`
}

type Color struct {
	ColorNumber int    `json:"color_number"`
	ColorName   string `json:"color_name"`
}

type SolarConfig struct {
	SolarNumber int    `json:"solar_number"`
	Name        string `json:"name"`
}

type Favourite struct {
	FavouriteNumber int    `json:"favourite_number"`
	Name            string `json:"name"`
}

// Status is the live state from /api/poolstatus.
type Status struct {
	Temperature       *float64             `json:"temperature"`
	PoolSpaSelection  *int                 `json:"pool_spa_selection"`
	HeatCoolSelection *int                 `json:"heat_cool_selection"`
	ActiveFavourite   *int                 `json:"active_favourite"`
	Heaters           []HeaterStatus       `json:"heaters"`
	Channels          []ChannelStatus      `json:"channels"`
	Valves            []ValveStatus        `json:"valves"`
	LightingZones     []LightingZoneStatus `json:"lighting_zones"`
	SolarSystems      []SolarStatus        `json:"solar_systems"`

	Raw map[string]any `json:"-"`
}

type HeaterStatus struct {
	HeaterNumber      int  `json:"heater_number"`
	Mode              int  `json:"mode"`
	SetTemperature    *int `json:"set_temperature"`
	SpaSetTemperature *int `json:"spa_set_temperature"`
}

type ChannelStatus struct {
	ChannelNumber int `json:"channel_number"`
	Mode          int `json:"mode"`
}

type ValveStatus struct {
	ValveNumber int `json:"valve_number"`
	Mode        int `json:"mode"`
}

type LightingZoneStatus struct {
	LightingZoneNumber int  `json:"lighting_zone_number"`
	Mode               int  `json:"mode"`
	Color              *int `json:"color"`
}

type SolarStatus struct {
	SolarNumber    int  `json:"solar_number"`
	Mode           int  `json:"mode"`
	SetTemperature *int `json:"set_temperature"`
}

// Heater returns the heater with the given number, or nil.
func (s *Status) Heater(number int) *HeaterStatus {
	for i := range s.Heaters {
		if s.Heaters[i].HeaterNumber == number {
			return &s.Heaters[i]
		}
	}
	return nil
}

// Channel returns the channel with the given number, or nil.
func (s *Status) Channel(number int) *ChannelStatus {
	for i := range s.Channels {
		if s.Channels[i].ChannelNumber == number {
			return &s.Channels[i]
		}
	}
	return nil
}

// Valve returns the valve with the given number, or nil.
func (s *Status) Valve(number int) *ValveStatus {
	for i := range s.Valves {
		if s.Valves[i].ValveNumber == number {
			return &s.Valves[i]
		}
	}
	return nil
}

// LightingZone returns the lighting zone with the given number, or nil.
func (s *Status) LightingZone(number int) *LightingZoneStatus {
	for i := range s.LightingZones {
		if s.LightingZones[i].LightingZoneNumber == number {
			return &s.LightingZones[i]
		}
	}
	return nil
}

// Solar returns the solar system with the given number, or nil.
func (s *Status) Solar(number int) *SolarStatus {
	for i := range s.SolarSystems {
		if s.SolarSystems[i].SolarNumber == number {
			return &s.SolarSystems[i]
		}
	}
	return nil
}

// PoolOrSpa reports the current pool/spa selection, defaulting to Pool
// when the controller doesn't report one.
func (s *Status) PoolOrSpa() int {
	if s.PoolSpaSelection == nil {
		return SelectionPool
	}
	return *s.PoolSpaSelection
}

// ActionResult is the acknowledgement from /api/poolaction or
// /api/poolactionstatus. The cloud's ack shape is loosely documented, so
// the raw payload rides along.
type ActionResult struct {
	ActionNumber *int `json:"action_number"`
	Status       *int `json:"status"`

	Raw map[string]any `json:"-"`
}
