package connectmypool

// Action codes per the ConnectMyPool Home Automation Integration Guide.
const (
	ActionCycleChannel       = 1
	ActionSetValveMode       = 2
	ActionSetPoolSpa         = 3
	ActionSetHeaterMode      = 4
	ActionSetHeaterSetTemp   = 5
	ActionSetLightMode       = 6
	ActionSetLightColor      = 7
	ActionSetActiveFavourite = 8
	ActionSetSolarMode       = 9
	ActionSetSolarSetTemp    = 10
	ActionLightSync          = 11
	ActionSetHeatCool        = 12
)

const (
	failureCodeThrottled    = 6
	failureCodeNotConnected = 7
)

// Temperature scales accepted by /api/poolstatus and /api/poolaction.
const (
	ScaleCelsius    = 0
	ScaleFahrenheit = 1
)

// Channel modes. Channels only support cycling (action 1); the cloud
// advances to the next supported mode in an order it does not document.
const (
	ChannelOff         = 0
	ChannelAuto        = 1
	ChannelOn          = 2
	ChannelLowSpeed    = 3
	ChannelMediumSpeed = 4
	ChannelHighSpeed   = 5
)

// Tri-modes used by valves, lighting zones, and solar systems.
const (
	TriOff  = 0
	TriAuto = 1
	TriOn   = 2
)

// Pool/Spa selection values.
const (
	SelectionSpa  = 0
	SelectionPool = 1
)

// Heat/Cool selection values.
const (
	SelectionCooling = 0
	SelectionHeating = 1
)

// FavouriteNone is reported as active_favourite when no favourite is
// running. There is no action to set it explicitly.
const FavouriteNone = 255

var ChannelModeLabels = map[int]string{
	ChannelOff:         "Off",
	ChannelAuto:        "Auto",
	ChannelOn:          "On",
	ChannelLowSpeed:    "Low Speed",
	ChannelMediumSpeed: "Medium Speed",
	ChannelHighSpeed:   "High Speed",
}

var TriModeLabels = map[int]string{
	TriOff:  "Off",
	TriAuto: "Auto",
	TriOn:   "On",
}

var PoolSpaLabels = map[int]string{
	SelectionSpa:  "Spa",
	SelectionPool: "Pool",
}

var HeatCoolLabels = map[int]string{
	SelectionCooling: "Cooling",
	SelectionHeating: "Heating",
}
