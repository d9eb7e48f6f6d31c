package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ble-gateway-backend/internal/model"
	"ble-gateway-backend/internal/store"
)

// mockStore is a mock implementation of the store.Store interface.
type mockStore struct {
	FindDataloggerFunc func(ctx context.Context, id string) (*model.Datalogger, error)
	ListActivityFunc   func(ctx context.Context, dataloggerID string, limit int) ([]model.DataloggerLog, error)
}

func (m *mockStore) FindDatalogger(ctx context.Context, id string) (*model.Datalogger, error) {
	return m.FindDataloggerFunc(ctx, id)
}

func (m *mockStore) ListActivity(ctx context.Context, dataloggerID string, limit int) ([]model.DataloggerLog, error) {
	return m.ListActivityFunc(ctx, dataloggerID, limit)
}

func (m *mockStore) FindDevice(ctx context.Context, id string) (*model.Device, error) { return nil, nil }
func (m *mockStore) InsertMeasurement(ctx context.Context, mm *model.Measurement) error {
	return nil
}
func (m *mockStore) InsertDatalogger(ctx context.Context, dl *model.Datalogger) error { return nil }
func (m *mockStore) UpdateDataloggerConfig(ctx context.Context, id string, upd store.ConfigUpdate) error {
	return nil
}
func (m *mockStore) AppendActivity(ctx context.Context, dataloggerID, status, message string, ts time.Time) error {
	return nil
}

func setupDataloggerRouter(s store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	handler := NewHandler(s)
	r.GET("/api/dataloggers/:id", handler.GetDatalogger)
	r.GET("/api/dataloggers/:id/logs", handler.GetDataloggerLogs)
	return r
}

func TestGetDatalogger(t *testing.T) {
	s := &mockStore{
		FindDataloggerFunc: func(ctx context.Context, id string) (*model.Datalogger, error) {
			if id == "AABBCCDDEEFF" {
				return &model.Datalogger{ID: id, Status: model.StatusActive, ConfigNumber: 5}, nil
			}
			return nil, nil
		},
	}
	router := setupDataloggerRouter(s)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dataloggers/AABBCCDDEEFF", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var dl model.Datalogger
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dl))
	assert.Equal(t, "AABBCCDDEEFF", dl.ID)
	assert.Equal(t, 5, dl.ConfigNumber)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/dataloggers/UNKNOWN", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDataloggerLogs(t *testing.T) {
	var gotLimit int
	s := &mockStore{
		ListActivityFunc: func(ctx context.Context, dataloggerID string, limit int) ([]model.DataloggerLog, error) {
			gotLimit = limit
			return []model.DataloggerLog{
				{Datalogger: dataloggerID, Status: "Connected", Timestamp: time.Now().UTC()},
			}, nil
		},
	}
	router := setupDataloggerRouter(s)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dataloggers/AABBCCDDEEFF/logs", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultLogLimit, gotLimit)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/dataloggers/AABBCCDDEEFF/logs?limit=10000", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxLogLimit, gotLimit)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/dataloggers/AABBCCDDEEFF/logs?limit=abc", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
