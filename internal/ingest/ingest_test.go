package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ble-gateway-backend/internal/model"
	"ble-gateway-backend/internal/schema"
	"ble-gateway-backend/internal/store"
)

// mockStore is a mock implementation of the store.Store interface. It
// records writes under a mutex because readings are persisted concurrently.
type mockStore struct {
	mu sync.Mutex

	FindDeviceFunc        func(ctx context.Context, id string) (*model.Device, error)
	InsertMeasurementFunc func(ctx context.Context, m *model.Measurement) error

	findDeviceCalls int
	measurements    []*model.Measurement
	activities      []model.DataloggerLog
}

func (m *mockStore) FindDevice(ctx context.Context, id string) (*model.Device, error) {
	m.mu.Lock()
	m.findDeviceCalls++
	m.mu.Unlock()
	if m.FindDeviceFunc != nil {
		return m.FindDeviceFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStore) InsertMeasurement(ctx context.Context, measurement *model.Measurement) error {
	if m.InsertMeasurementFunc != nil {
		if err := m.InsertMeasurementFunc(ctx, measurement); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.measurements = append(m.measurements, measurement)
	return nil
}

func (m *mockStore) FindDatalogger(ctx context.Context, id string) (*model.Datalogger, error) {
	return nil, nil
}

func (m *mockStore) InsertDatalogger(ctx context.Context, dl *model.Datalogger) error {
	return nil
}

func (m *mockStore) UpdateDataloggerConfig(ctx context.Context, id string, upd store.ConfigUpdate) error {
	return nil
}

func (m *mockStore) AppendActivity(ctx context.Context, dataloggerID, status, message string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, model.DataloggerLog{
		Datalogger: dataloggerID,
		Status:     status,
		Message:    message,
		Timestamp:  ts,
	})
	return nil
}

func (m *mockStore) ListActivity(ctx context.Context, dataloggerID string, limit int) ([]model.DataloggerLog, error) {
	return nil, nil
}

func millis(t time.Time) *float64 {
	v := float64(t.UnixMilli())
	return &v
}

func batchMessage(readings ...schema.Reading) *schema.TelemetryMessage {
	return &schema.TelemetryMessage{
		Action:     schema.ActionData,
		Version:    1,
		Datalogger: schema.DataloggerInfo{ID: "AA:BB:CC:DD:EE:FF", Type: "ble", Network: "wifi", Protocol: "mqtt"},
		Dataset:    readings,
	}
}

func TestIngestPersistsEveryReading(t *testing.T) {
	s := &mockStore{}
	ing := New(s)

	observed := time.Date(2023, 11, 14, 12, 0, 0, 0, time.UTC)
	msg := batchMessage(
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-1"}, Payload: "aa", Timestamp: millis(observed)},
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-2"}, Payload: "bb", Timestamp: millis(observed), StartTime: millis(observed.Add(-time.Minute))},
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-3"}, Payload: "cc"},
	)

	before := time.Now().UTC()
	ing.Ingest(context.Background(), msg)
	after := time.Now().UTC()

	require.Len(t, s.measurements, 3)
	require.Len(t, s.activities, 1)

	activity := s.activities[0]
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", activity.Datalogger)
	assert.Equal(t, "Sent measurements", activity.Status)
	assert.Equal(t, "3 measurements saved", activity.Message)

	byDevice := make(map[string]*model.Measurement)
	for _, m := range s.measurements {
		byDevice[m.Device.ID] = m
	}

	// Explicit wire timestamps are preserved.
	assert.True(t, byDevice["tag-1"].Timestamp.Equal(observed))
	require.NotNil(t, byDevice["tag-2"].StartTime)
	assert.True(t, byDevice["tag-2"].StartTime.Equal(observed.Add(-time.Minute)))

	// A reading without a timestamp gets ingestion time.
	saved := byDevice["tag-3"].Timestamp
	assert.False(t, saved.Before(before))
	assert.False(t, saved.After(after))

	// The declaring datalogger is embedded in every record.
	for _, m := range s.measurements {
		require.NotNil(t, m.Device.Datalogger)
		assert.Equal(t, "AA:BB:CC:DD:EE:FF", m.Device.Datalogger.ID)
		assert.Equal(t, "ble", m.Device.Datalogger.Type)
	}
}

func TestIngestSingularSummary(t *testing.T) {
	s := &mockStore{}
	ing := New(s)

	ing.Ingest(context.Background(), batchMessage(
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-1"}, Payload: "aa"},
	))

	require.Len(t, s.activities, 1)
	assert.Equal(t, "Sent measurement", s.activities[0].Status)
	assert.Equal(t, "1 measurement saved", s.activities[0].Message)
}

func TestIngestEmptyBatch(t *testing.T) {
	s := &mockStore{}
	ing := New(s)

	ing.Ingest(context.Background(), batchMessage())

	assert.Empty(t, s.measurements)
	require.Len(t, s.activities, 1)
	assert.Equal(t, "Sent measurement", s.activities[0].Status)
	assert.Equal(t, "0 measurement saved", s.activities[0].Message)
}

func TestIngestUnknownDeviceGetsGenericType(t *testing.T) {
	s := &mockStore{} // FindDevice returns nil: device never registered
	ing := New(s)

	ing.Ingest(context.Background(), batchMessage(
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-x", Type: "spoofed-type"}, Payload: "aa"},
	))

	require.Len(t, s.measurements, 1)
	assert.Equal(t, model.GenericDeviceType, s.measurements[0].Device.Type,
		"payload-supplied type must not survive for unregistered devices")
}

func TestIngestKnownDeviceTypeIsStoreAuthoritative(t *testing.T) {
	s := &mockStore{
		FindDeviceFunc: func(ctx context.Context, id string) (*model.Device, error) {
			return &model.Device{ID: id, Type: "ruuvitag"}, nil
		},
	}
	ing := New(s)

	msg := batchMessage(
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-1", Type: "spoofed-type"}, Payload: "aa"},
	)
	ing.Ingest(context.Background(), msg)

	require.Len(t, s.measurements, 1)
	assert.Equal(t, "ruuvitag", s.measurements[0].Device.Type)

	// The resolved type is cached: a second batch does not hit the store.
	ing.Ingest(context.Background(), msg)
	require.Len(t, s.measurements, 2)
	assert.Equal(t, 1, s.findDeviceCalls)
	assert.Equal(t, "ruuvitag", s.measurements[1].Device.Type)
}

func TestIngestIsolatesFailedReadings(t *testing.T) {
	s := &mockStore{
		InsertMeasurementFunc: func(ctx context.Context, m *model.Measurement) error {
			if m.Device.ID == "tag-2" {
				return errors.New("store unavailable")
			}
			return nil
		},
	}
	ing := New(s)

	ing.Ingest(context.Background(), batchMessage(
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-1"}, Payload: "aa"},
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-2"}, Payload: "bb"},
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-3"}, Payload: "cc"},
	))

	// One bad record must not block its siblings, and the batch log still
	// summarizes the full batch.
	require.Len(t, s.measurements, 2)
	require.Len(t, s.activities, 1)
	assert.Equal(t, "3 measurements saved", s.activities[0].Message)
}

// Re-ingesting an identical batch doubles the records: there is no
// deduplication and that is the intended behavior.
func TestIngestDoesNotDeduplicate(t *testing.T) {
	s := &mockStore{}
	ing := New(s)

	msg := batchMessage(
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-1"}, Payload: "aa"},
		schema.Reading{Device: schema.DeviceInfo{ID: "tag-2"}, Payload: "bb"},
	)
	ing.Ingest(context.Background(), msg)
	ing.Ingest(context.Background(), msg)

	assert.Len(t, s.measurements, 4)
	assert.Len(t, s.activities, 2)
}
