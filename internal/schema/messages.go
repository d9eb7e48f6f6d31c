package schema

// ActionData and ActionConfig are the two recognized message actions.
const (
	ActionData   = "data"
	ActionConfig = "config"
)

// Kind tags the variant carried by a classified Message.
type Kind int

const (
	// KindTelemetry marks a beacon batch message.
	KindTelemetry Kind = iota
	// KindConfigStatus marks a datalogger configuration-status message.
	KindConfigStatus
)

// Message is the closed two-variant union produced by Registry.Classify.
// Exactly one of Telemetry or ConfigStatus is non-nil, matching Kind; the
// variant is resolved once here and never re-inspected downstream.
type Message struct {
	Kind         Kind
	Telemetry    *TelemetryMessage
	ConfigStatus *ConfigStatusMessage
}

// Action returns the declared action of whichever variant is present.
func (m *Message) Action() string {
	if m.Telemetry != nil {
		return m.Telemetry.Action
	}
	if m.ConfigStatus != nil {
		return m.ConfigStatus.Action
	}
	return ""
}

// TelemetryMessage is a batch of beacon readings relayed by one datalogger.
type TelemetryMessage struct {
	Action     string         `json:"action"`
	Version    int            `json:"version"`
	Datalogger DataloggerInfo `json:"datalogger"`
	Dataset    []Reading      `json:"dataset"`
}

// DataloggerInfo identifies the datalogger declaring a telemetry batch.
type DataloggerInfo struct {
	ID       string `json:"id"`
	Type     string `json:"type,omitempty"`
	Network  string `json:"network,omitempty"`
	Protocol string `json:"protocol,omitempty"`
}

// Reading is one observed device beacon inside a telemetry batch.
// Timestamp and StartTime are epoch milliseconds on the wire; absent
// Timestamp means "use ingestion time".
type Reading struct {
	Device    DeviceInfo      `json:"device"`
	Payload   string          `json:"payload"`
	Network   *ReadingNetwork `json:"network,omitempty"`
	Timestamp *float64        `json:"timestamp,omitempty"`
	StartTime *float64        `json:"starttime,omitempty"`
}

// DeviceInfo identifies the device a reading was observed from.
type DeviceInfo struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// ReadingNetwork carries optional protocol/signal metadata of a reading.
type ReadingNetwork struct {
	Protocol string         `json:"protocol,omitempty"`
	Name     string         `json:"name,omitempty"`
	Signal   *ReadingSignal `json:"signal,omitempty"`
}

// ReadingSignal holds signal strength metadata.
type ReadingSignal struct {
	RSSI float64 `json:"rssi"`
}

// ConfigStatusMessage is a datalogger's report of its own wifi, software and
// configuration state, sent on connect.
type ConfigStatusMessage struct {
	Action          string               `json:"action"`
	FirstConnection bool                 `json:"firstconnection"`
	Datalogger      StatusDataloggerInfo `json:"datalogger"`
	Config          ReportedConfig       `json:"config"`
	Filter          FilterRules          `json:"filter"`
}

// StatusDataloggerInfo identifies the reporting datalogger and its wifi state.
type StatusDataloggerInfo struct {
	ID   string     `json:"id"`
	Wifi WifiStatus `json:"wifi"`
}

// WifiStatus holds the datalogger's reported wifi link state.
type WifiStatus struct {
	IP      string `json:"ip"`
	Quality string `json:"quality"`
}

// ReportedConfig is the configuration the device believes it is running.
type ReportedConfig struct {
	ConfigNumber         int          `json:"configNumber"`
	Mode                 Mode         `json:"mode"`
	MQTT                 MQTTEndpoint `json:"mqtt"`
	Status               string       `json:"status"`
	ConfigUpdatedAt      string       `json:"configUpdatedAt"`
	FirstPhoneConfigDone string       `json:"firstPhoneConfigDone"`
	Software             Software     `json:"software"`
}

// Mode groups the device operating modes.
type Mode struct {
	RegularUse RegularUse `json:"regularuse"`
}

// RegularUse holds the scan/send intervals of the regular operating mode.
type RegularUse struct {
	ScanInterval float64 `json:"scaninterval"`
	SendInterval float64 `json:"sendinterval"`
}

// MQTTEndpoint is the broker endpoint the device reports publishing to.
type MQTTEndpoint struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// Software holds the device software status.
type Software struct {
	Version string `json:"version"`
}

// FilterRules are the beacon filter rules reported by the device, by MAC
// address and by UUID. Bounds and value lists may be empty strings/lists.
type FilterRules struct {
	ByMac  FilterRule `json:"byMac"`
	ByUuid FilterRule `json:"byUuid"`
}

// FilterRule is either an explicit allow-list or an inclusive range with
// optional open bounds.
type FilterRule struct {
	ByRange FilterRange `json:"byRange"`
	ByValue []string    `json:"byValue,omitempty"`
}

// FilterRange holds the optional inclusive bounds of a range filter.
type FilterRange struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}
