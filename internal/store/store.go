package store

import (
	"context"
	"time"

	"ble-gateway-backend/internal/model"
)

// ConfigUpdate is the reduced record merged onto a datalogger document when
// the device reports its configuration status. Applied as a partial $set
// overlay, never a full replace.
type ConfigUpdate struct {
	Address                string
	Port                   int
	CurrentConfigTimestamp time.Time
	CurrentSoftwareVersion string
}

// Store defines the document store operations used by the gateway.
// Find methods return (nil, nil) when no document matches.
type Store interface {
	FindDevice(ctx context.Context, id string) (*model.Device, error)
	InsertMeasurement(ctx context.Context, m *model.Measurement) error

	FindDatalogger(ctx context.Context, id string) (*model.Datalogger, error)
	InsertDatalogger(ctx context.Context, dl *model.Datalogger) error
	UpdateDataloggerConfig(ctx context.Context, id string, upd ConfigUpdate) error

	// AppendActivity inserts one activity-log entry and then bumps the
	// datalogger's timestamp to the entry's timestamp. A zero ts means "now".
	AppendActivity(ctx context.Context, dataloggerID, status, message string, ts time.Time) error
	ListActivity(ctx context.Context, dataloggerID string, limit int) ([]model.DataloggerLog, error)
}
