package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ble-gateway-backend/internal/model"
)

// Collection names used by the gateway.
const (
	CollectionDevices        = "devices"
	CollectionMeasurements   = "measurements"
	CollectionDataloggers    = "dataloggers"
	CollectionDataloggerLogs = "dataloggerlogs"
)

// mongoStore implements the Store interface on a Mongo database.
type mongoStore struct {
	db *mongo.Database
}

// NewMongoStore creates a new Mongo-backed store.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{db: db}
}

// FindDevice looks a device up by its identifier.
func (s *mongoStore) FindDevice(ctx context.Context, id string) (*model.Device, error) {
	var device model.Device
	err := s.db.Collection(CollectionDevices).FindOne(ctx, bson.M{"_id": id}).Decode(&device)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find device %s: %w", id, err)
	}
	return &device, nil
}

// InsertMeasurement appends one beacon reading document.
func (s *mongoStore) InsertMeasurement(ctx context.Context, m *model.Measurement) error {
	if _, err := s.db.Collection(CollectionMeasurements).InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to insert measurement for device %s: %w", m.Device.ID, err)
	}
	return nil
}

// FindDatalogger looks a datalogger up by its identifier.
func (s *mongoStore) FindDatalogger(ctx context.Context, id string) (*model.Datalogger, error) {
	var dl model.Datalogger
	err := s.db.Collection(CollectionDataloggers).FindOne(ctx, bson.M{"_id": id}).Decode(&dl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find datalogger %s: %w", id, err)
	}
	return &dl, nil
}

// InsertDatalogger registers a datalogger document.
func (s *mongoStore) InsertDatalogger(ctx context.Context, dl *model.Datalogger) error {
	if _, err := s.db.Collection(CollectionDataloggers).InsertOne(ctx, dl); err != nil {
		return fmt.Errorf("failed to insert datalogger %s: %w", dl.ID, err)
	}
	return nil
}

// UpdateDataloggerConfig merges the device-reported endpoint and software
// status onto the datalogger document. Fields outside the overlay keep
// their stored values.
func (s *mongoStore) UpdateDataloggerConfig(ctx context.Context, id string, upd ConfigUpdate) error {
	set := bson.M{
		"address":                upd.Address,
		"port":                   upd.Port,
		"currentConfigTimestamp": upd.CurrentConfigTimestamp,
		"currentSoftwareVersion": upd.CurrentSoftwareVersion,
	}
	err := s.db.Collection(CollectionDataloggers).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}).
		Err()
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to update datalogger %s config: %w", id, err)
	}
	return nil
}

// AppendActivity inserts an activity-log entry and bumps the datalogger's
// timestamp to the log time. A missing datalogger document does not fail
// the append; the entry itself is still recorded.
func (s *mongoStore) AppendActivity(ctx context.Context, dataloggerID, status, message string, ts time.Time) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	entry := model.DataloggerLog{
		Datalogger: dataloggerID,
		Status:     status,
		Message:    message,
		Timestamp:  ts,
	}
	if _, err := s.db.Collection(CollectionDataloggerLogs).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert activity log for datalogger %s: %w", dataloggerID, err)
	}

	err := s.db.Collection(CollectionDataloggers).
		FindOneAndUpdate(ctx, bson.M{"_id": dataloggerID}, bson.M{"$set": bson.M{"timestamp": ts}}).
		Err()
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to update datalogger %s timestamp: %w", dataloggerID, err)
	}
	return nil
}

// ListActivity returns the most recent activity-log entries for a
// datalogger, newest first.
func (s *mongoStore) ListActivity(ctx context.Context, dataloggerID string, limit int) ([]model.DataloggerLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.db.Collection(CollectionDataloggerLogs).
		Find(ctx, bson.M{"datalogger": dataloggerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity for datalogger %s: %w", dataloggerID, err)
	}
	defer cursor.Close(ctx)

	var entries []model.DataloggerLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode activity for datalogger %s: %w", dataloggerID, err)
	}
	return entries, nil
}
