// Package ingest persists validated telemetry batches: one measurement per
// beacon reading plus one activity-log entry summarizing the batch.
package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"ble-gateway-backend/internal/model"
	"ble-gateway-backend/internal/schema"
	"ble-gateway-backend/internal/store"
)

// Ingestor writes telemetry batches to the document store.
type Ingestor struct {
	store       store.Store
	deviceTypes *cache.Cache
}

// New creates a telemetry ingestor. Resolved device types are cached so a
// chatty datalogger does not trigger one device lookup per beacon.
func New(s store.Store) *Ingestor {
	return &Ingestor{
		store:       s,
		deviceTypes: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Ingest persists every reading of the batch and appends one summarizing
// activity-log entry. Readings are handled concurrently and in isolation:
// a failed reading is logged and dropped without affecting its siblings.
// An empty batch is valid and still produces a zero-count log entry.
func (ing *Ingestor) Ingest(ctx context.Context, msg *schema.TelemetryMessage) {
	var wg sync.WaitGroup
	for i := range msg.Dataset {
		wg.Add(1)
		go func(reading schema.Reading) {
			defer wg.Done()
			ing.saveReading(ctx, &msg.Datalogger, reading)
		}(msg.Dataset[i])
	}
	wg.Wait()

	status, message := batchSummary(len(msg.Dataset))
	if err := ing.store.AppendActivity(ctx, msg.Datalogger.ID, status, message, time.Now().UTC()); err != nil {
		log.Printf("Error adding batch log for datalogger %s: %v", msg.Datalogger.ID, err)
		return
	}
	log.Printf("Datalogger %s: %s", msg.Datalogger.ID, message)
}

// batchSummary builds the activity status and message for a batch of n
// readings. Plural only above one: a zero-entry batch reads "0 measurement
// saved".
func batchSummary(n int) (status, message string) {
	if n > 1 {
		return "Sent measurements", fmt.Sprintf("%d measurements saved", n)
	}
	return "Sent measurement", fmt.Sprintf("%d measurement saved", n)
}

func (ing *Ingestor) saveReading(ctx context.Context, dl *schema.DataloggerInfo, reading schema.Reading) {
	timestamp := time.Now().UTC()
	if reading.Timestamp != nil {
		timestamp = time.UnixMilli(int64(*reading.Timestamp)).UTC()
	}
	var startTime *time.Time
	if reading.StartTime != nil {
		t := time.UnixMilli(int64(*reading.StartTime)).UTC()
		startTime = &t
	}

	deviceType, err := ing.resolveDeviceType(ctx, reading.Device.ID)
	if err != nil {
		log.Printf("Error resolving device %s: %v", reading.Device.ID, err)
		return
	}

	measurement := &model.Measurement{
		Device: model.EmbeddedDevice{
			ID:   reading.Device.ID,
			Type: deviceType,
			Datalogger: &model.EmbeddedDatalogger{
				ID:       dl.ID,
				Type:     dl.Type,
				Network:  dl.Network,
				Protocol: dl.Protocol,
			},
		},
		Payload:   reading.Payload,
		Timestamp: timestamp,
		StartTime: startTime,
	}
	if reading.Network != nil {
		measurement.Network = &model.ReadingNetwork{
			Protocol: reading.Network.Protocol,
			Name:     reading.Network.Name,
		}
		if reading.Network.Signal != nil {
			measurement.Network.Signal = &model.ReadingSignal{RSSI: reading.Network.Signal.RSSI}
		}
	}

	if err := ing.store.InsertMeasurement(ctx, measurement); err != nil {
		log.Printf("Error saving measurement for device %s: %v", reading.Device.ID, err)
		return
	}
	log.Printf("Measurement saved for device %s", reading.Device.ID)
}

// resolveDeviceType returns the store's type for a device, or the generic
// sentinel when the device has never been registered. The type attribute is
// store-authoritative: whatever the payload declared is ignored. Only
// positive lookups are cached so unknown devices keep resolving against the
// store.
func (ing *Ingestor) resolveDeviceType(ctx context.Context, id string) (string, error) {
	if cached, found := ing.deviceTypes.Get(id); found {
		return cached.(string), nil
	}

	device, err := ing.store.FindDevice(ctx, id)
	if err != nil {
		return "", err
	}
	if device == nil {
		return model.GenericDeviceType, nil
	}
	ing.deviceTypes.Set(id, device.Type, cache.DefaultExpiration)
	return device.Type, nil
}
