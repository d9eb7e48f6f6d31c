package publish

import (
	"time"

	"ble-gateway-backend/internal/model"
)

// ConfigMessage is the outbound configuration document published to a
// datalogger. Every field is always present: devices expect well-typed
// values, so unset lists become empty arrays and unset bounds empty strings,
// never null.
type ConfigMessage struct {
	Config ConfigBody `json:"config"`
}

// ConfigBody mirrors the datalogger's full server-side configuration.
type ConfigBody struct {
	ConfigNumber    int          `json:"configNumber"`
	Software        SoftwareBody `json:"software"`
	Status          string       `json:"status"`
	ConfigUpdatedAt string       `json:"configUpdatedAt"`
	Filter          FilterBody   `json:"filter"`
	MQTT            MQTTBody     `json:"mqtt"`
	Mode            ModeBody     `json:"mode"`
}

// SoftwareBody names the software version the device should run.
type SoftwareBody struct {
	Version string `json:"version"`
}

// FilterBody carries the flattened beacon filter rules.
type FilterBody struct {
	ByMacByValue     []string `json:"byMacByValue"`
	ByMacByRangeMin  string   `json:"byMacByRangeMin"`
	ByMacByRangeMax  string   `json:"byMacByRangeMax"`
	ByUuidByValue    []string `json:"byUuidByValue"`
	ByUuidByRangeMin string   `json:"byUuidByRangeMin"`
	ByUuidByRangeMax string   `json:"byUuidByRangeMax"`
}

// MQTTBody is the broker endpoint the device should publish to.
type MQTTBody struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// ModeBody groups the operating mode settings.
type ModeBody struct {
	RegularUse RegularUseBody `json:"regularUse"`
}

// RegularUseBody holds the scan/send intervals of the regular mode.
type RegularUseBody struct {
	ScanInterval float64 `json:"scaninterval"`
	SendInterval float64 `json:"sendinterval"`
}

// BuildConfigMessage assembles the outbound configuration document from a
// datalogger's stored state.
func BuildConfigMessage(dl *model.Datalogger) *ConfigMessage {
	msg := &ConfigMessage{
		Config: ConfigBody{
			ConfigNumber: dl.ConfigNumber,
			Software:     SoftwareBody{Version: dl.SoftwareVersion},
			Status:       dl.Status,
			Filter: FilterBody{
				ByMacByValue:     dl.FilterByMacByValue,
				ByMacByRangeMin:  dl.FilterByMacByRangeMin,
				ByMacByRangeMax:  dl.FilterByMacByRangeMax,
				ByUuidByValue:    dl.FilterByUuidByValue,
				ByUuidByRangeMin: dl.FilterByUuidByRangeMin,
				ByUuidByRangeMax: dl.FilterByUuidByRangeMax,
			},
			MQTT: MQTTBody{Address: dl.Address, Port: dl.Port},
			Mode: ModeBody{
				RegularUse: RegularUseBody{
					ScanInterval: dl.ScanInterval,
					SendInterval: dl.SendInterval,
				},
			},
		},
	}

	if !dl.Timestamp.IsZero() {
		msg.Config.ConfigUpdatedAt = dl.Timestamp.UTC().Format(time.RFC3339)
	}

	// nil slices would marshal as null, which devices cannot digest.
	if msg.Config.Filter.ByMacByValue == nil {
		msg.Config.Filter.ByMacByValue = []string{}
	}
	if msg.Config.Filter.ByUuidByValue == nil {
		msg.Config.Filter.ByUuidByValue = []string{}
	}

	return msg
}
