package model

import "time"

// Datalogger lifecycle status values.
const (
	StatusNew    = "new"
	StatusActive = "active"
)

// Datalogger represents a field gateway device relaying BLE beacon data.
// The document id is the device serial reported by the datalogger itself.
type Datalogger struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Team         string    `bson:"team" json:"team"`
	Status       string    `bson:"status" json:"status"`
	Type         string    `bson:"type" json:"type"`
	Note         string    `bson:"note" json:"note"`
	ConfigNumber int       `bson:"configNumber" json:"configNumber"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`

	// Last state reported by the device itself.
	Address                string    `bson:"address,omitempty" json:"address,omitempty"`
	Port                   int       `bson:"port,omitempty" json:"port,omitempty"`
	CurrentConfigTimestamp time.Time `bson:"currentConfigTimestamp,omitempty" json:"currentConfigTimestamp,omitempty"`
	CurrentSoftwareVersion string    `bson:"currentSoftwareVersion,omitempty" json:"currentSoftwareVersion,omitempty"`

	// Configuration authored on the server side and pushed down to the device.
	SoftwareVersion string  `bson:"softwareVersion,omitempty" json:"softwareVersion,omitempty"`
	ScanInterval    float64 `bson:"scaninterval,omitempty" json:"scaninterval,omitempty"`
	SendInterval    float64 `bson:"sendinterval,omitempty" json:"sendinterval,omitempty"`

	FilterByMacByValue     []string `bson:"filterByMacByValue,omitempty" json:"filterByMacByValue,omitempty"`
	FilterByMacByRangeMin  string   `bson:"filterByMacByRangeMin,omitempty" json:"filterByMacByRangeMin,omitempty"`
	FilterByMacByRangeMax  string   `bson:"filterByMacByRangeMax,omitempty" json:"filterByMacByRangeMax,omitempty"`
	FilterByUuidByValue    []string `bson:"filterByUuidByValue,omitempty" json:"filterByUuidByValue,omitempty"`
	FilterByUuidByRangeMin string   `bson:"filterByUuidByRangeMin,omitempty" json:"filterByUuidByRangeMin,omitempty"`
	FilterByUuidByRangeMax string   `bson:"filterByUuidByRangeMax,omitempty" json:"filterByUuidByRangeMax,omitempty"`
}

// NewDatalogger builds the self-registration document for a datalogger seen
// for the first time. ConfigNumber starts at 0 so any server-side
// configuration outranks what the device booted with.
func NewDatalogger(id string, now time.Time) *Datalogger {
	return &Datalogger{
		ID:           id,
		Name:         id,
		Team:         "",
		Status:       StatusNew,
		Type:         "ble",
		Note:         "New BLE Datalogger",
		ConfigNumber: 0,
		Timestamp:    now,
	}
}
