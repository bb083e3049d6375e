package domain

// Result is the normalized response shape every operation returns
// regardless of which transport served it.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Device in a tailnet, as reported by the control-plane API.
type Device struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Hostname      string   `json:"hostname"`
	Addresses     []string `json:"addresses"`
	OS            string   `json:"os"`
	ClientVersion string   `json:"clientVersion,omitempty"`
	Authorized    bool     `json:"authorized"`
	Online        bool     `json:"online"`
	Tags          []string `json:"tags,omitempty"`
}

// DeviceRoutes is the control plane's per-device route state.
type DeviceRoutes struct {
	Advertised []string `json:"advertisedRoutes"`
	Enabled    []string `json:"enabledRoutes"`
}
