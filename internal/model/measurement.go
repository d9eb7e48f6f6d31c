package model

import "time"

// Measurement is one persisted beacon reading. Documents are append-only:
// re-ingesting the same batch inserts new records, there is no deduplication.
type Measurement struct {
	Device    EmbeddedDevice  `bson:"device" json:"device"`
	Payload   string          `bson:"payload" json:"payload"`
	Network   *ReadingNetwork `bson:"network,omitempty" json:"network,omitempty"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
	StartTime *time.Time      `bson:"starttime,omitempty" json:"starttime,omitempty"`
}

// ReadingNetwork carries the optional signal/protocol metadata of a reading.
type ReadingNetwork struct {
	Protocol string         `bson:"protocol,omitempty" json:"protocol,omitempty"`
	Name     string         `bson:"name,omitempty" json:"name,omitempty"`
	Signal   *ReadingSignal `bson:"signal,omitempty" json:"signal,omitempty"`
}

// ReadingSignal holds signal strength metadata.
type ReadingSignal struct {
	RSSI float64 `bson:"rssi" json:"rssi"`
}
