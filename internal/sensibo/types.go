package sensibo

import "encoding/json"

// DeviceSummary is the minimal pod record returned by the bulk listing call.
type DeviceSummary struct {
	ID string `json:"id"`
}

// Room is the room a pod is installed in.
type Room struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// ConnectionStatus reports whether the pod is reachable by the Sensibo cloud.
type ConnectionStatus struct {
	IsAlive  bool   `json:"isAlive"`
	LastSeen *Stamp `json:"lastSeen,omitempty"`
}

// Stamp is a timestamp as reported by the API.
type Stamp struct {
	Time       string  `json:"time"`
	SecondsAgo float64 `json:"secondsAgo"`
}

// DeviceDetail is the full pod record returned by GET /pods/{id}.
type DeviceDetail struct {
	ID                 string            `json:"id"`
	Room               Room              `json:"room"`
	ACState            *ACState          `json:"acState,omitempty"`
	ConnectionStatus   *ConnectionStatus `json:"connectionStatus,omitempty"`
	RemoteCapabilities json.RawMessage   `json:"remoteCapabilities,omitempty"`
}

// ACState is a partial air-conditioner state. Nil and empty fields are
// omitted from the request so the API keeps its own values for them.
type ACState struct {
	On                *bool  `json:"on,omitempty"`
	Mode              string `json:"mode,omitempty"`
	FanLevel          string `json:"fanLevel,omitempty"`
	TargetTemperature *int   `json:"targetTemperature,omitempty"`
	TemperatureUnit   string `json:"temperatureUnit,omitempty"`
	Swing             string `json:"swing,omitempty"`
}

// acStateRequest is the body of POST /pods/{id}/acStates.
type acStateRequest struct {
	ACState ACState `json:"acState"`
}

// envelope is the common response wrapper of the v2 API.
type envelope struct {
	Status string          `json:"status"`
	Reason string          `json:"reason,omitempty"`
	Result json.RawMessage `json:"result"`
}
