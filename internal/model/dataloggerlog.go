package model

import "time"

// DataloggerLog is one append-only activity trail entry for a datalogger.
type DataloggerLog struct {
	Datalogger string    `bson:"datalogger" json:"datalogger"`
	Status     string    `bson:"status" json:"status"`
	Message    string    `bson:"message,omitempty" json:"message,omitempty"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}
