// Package schema classifies inbound gateway payloads against the two
// structural message shapes the protocol allows: telemetry batches and
// configuration-status reports. The shapes share no required fields
// (dataset vs firstconnection/config/filter), so a payload matches at most
// one of them.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaMismatch is returned when a payload is well-formed JSON but
// matches neither message schema.
var ErrSchemaMismatch = errors.New("payload matches neither message schema")

const telemetrySchema = `{
	"type": "object",
	"required": ["action", "datalogger", "dataset"],
	"properties": {
		"action": {"type": "string"},
		"version": {"type": "number"},
		"datalogger": {
			"type": "object",
			"required": ["id"],
			"properties": {
				"id": {"type": "string"},
				"type": {"type": "string"},
				"network": {"type": "string"},
				"protocol": {"type": "string"}
			}
		},
		"dataset": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["device", "payload"],
				"properties": {
					"device": {
						"type": "object",
						"required": ["id"],
						"properties": {
							"id": {"type": "string"},
							"type": {"type": "string"}
						}
					},
					"payload": {"type": "string"},
					"network": {
						"type": "object",
						"properties": {
							"protocol": {"type": "string"},
							"name": {"type": "string"},
							"signal": {
								"type": "object",
								"properties": {"rssi": {"type": "number"}}
							}
						}
					},
					"timestamp": {"type": "number"},
					"starttime": {"type": "number"}
				}
			}
		}
	}
}`

const configStatusSchema = `{
	"type": "object",
	"required": ["action", "firstconnection", "datalogger", "config", "filter"],
	"properties": {
		"action": {"type": "string"},
		"firstconnection": {"type": "boolean"},
		"datalogger": {
			"type": "object",
			"required": ["id", "wifi"],
			"properties": {
				"id": {"type": "string"},
				"wifi": {
					"type": "object",
					"required": ["ip", "quality"],
					"properties": {
						"ip": {"type": "string"},
						"quality": {"type": "string"}
					}
				}
			}
		},
		"config": {
			"type": "object",
			"required": ["configNumber", "mode", "mqtt", "status", "configUpdatedAt", "firstPhoneConfigDone", "software"],
			"properties": {
				"configNumber": {"type": "number"},
				"mode": {
					"type": "object",
					"required": ["regularuse"],
					"properties": {
						"regularuse": {
							"type": "object",
							"required": ["scaninterval", "sendinterval"],
							"properties": {
								"scaninterval": {"type": "number"},
								"sendinterval": {"type": "number"}
							}
						}
					}
				},
				"mqtt": {
					"type": "object",
					"required": ["address", "port"],
					"properties": {
						"address": {"type": "string"},
						"port": {"type": "number"}
					}
				},
				"status": {"type": "string"},
				"configUpdatedAt": {"type": "string"},
				"firstPhoneConfigDone": {"type": "string"},
				"software": {
					"type": "object",
					"required": ["version"],
					"properties": {"version": {"type": "string"}}
				}
			}
		},
		"filter": {
			"type": "object",
			"required": ["byMac", "byUuid"],
			"properties": {
				"byMac": {"$ref": "#/definitions/filterRule"},
				"byUuid": {"$ref": "#/definitions/filterRule"}
			}
		}
	},
	"definitions": {
		"filterRule": {
			"type": "object",
			"required": ["byRange"],
			"properties": {
				"byRange": {
					"type": "object",
					"properties": {
						"min": {"type": "string"},
						"max": {"type": "string"}
					}
				},
				"byValue": {
					"type": "array",
					"items": {"type": "string"}
				}
			}
		}
	}
}`

// Registry holds the two compiled payload schemas.
type Registry struct {
	telemetry    *gojsonschema.Schema
	configStatus *gojsonschema.Schema
}

// NewRegistry compiles both schemas. A compilation failure is a programming
// error and only happens if the embedded schema documents are broken.
func NewRegistry() (*Registry, error) {
	telemetry, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(telemetrySchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile telemetry schema: %w", err)
	}
	configStatus, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(configStatusSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile config-status schema: %w", err)
	}
	return &Registry{telemetry: telemetry, configStatus: configStatus}, nil
}

// Classify validates a decoded JSON document against both schemas and
// returns the matching variant with unknown fields stripped, or
// ErrSchemaMismatch if neither shape fits. doc must be valid JSON.
func (r *Registry) Classify(doc []byte) (*Message, error) {
	loader := gojsonschema.NewBytesLoader(doc)

	if result, err := r.configStatus.Validate(loader); err == nil && result.Valid() {
		var msg ConfigStatusMessage
		if err := json.Unmarshal(doc, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode config-status message: %w", err)
		}
		return &Message{Kind: KindConfigStatus, ConfigStatus: &msg}, nil
	}

	if result, err := r.telemetry.Validate(loader); err == nil && result.Valid() {
		var msg TelemetryMessage
		if err := json.Unmarshal(doc, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode telemetry message: %w", err)
		}
		if msg.Version == 0 {
			msg.Version = 1
		}
		return &Message{Kind: KindTelemetry, Telemetry: &msg}, nil
	}

	return nil, ErrSchemaMismatch
}
