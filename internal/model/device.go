package model

// GenericDeviceType is assigned to sensor tags that have never been
// registered: the store, not the payload, decides a device's type.
const GenericDeviceType = "btgeneric"

// Device represents a sensor tag whose beacons are relayed by a datalogger.
type Device struct {
	ID   string `bson:"_id" json:"id"`
	Type string `bson:"type" json:"type"`
}

// EmbeddedDevice is the device sub-document stored inside each measurement.
// The declaring datalogger is denormalized here at write time for query
// convenience; it is the last-seen gateway, not a foreign key.
type EmbeddedDevice struct {
	ID         string              `bson:"id" json:"id"`
	Type       string              `bson:"type" json:"type"`
	Datalogger *EmbeddedDatalogger `bson:"datalogger,omitempty" json:"datalogger,omitempty"`
}

// EmbeddedDatalogger is the datalogger descriptor carried by telemetry
// messages and embedded into measurement documents.
type EmbeddedDatalogger struct {
	ID       string `bson:"id" json:"id"`
	Type     string `bson:"type,omitempty" json:"type,omitempty"`
	Network  string `bson:"network,omitempty" json:"network,omitempty"`
	Protocol string `bson:"protocol,omitempty" json:"protocol,omitempty"`
}
