// Package router turns raw transport payloads into pipeline calls. It is a
// pure dispatch layer: malformed, unclassifiable or misrouted messages are
// dropped with a log line and never propagated upward.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"unicode/utf8"

	"ble-gateway-backend/internal/schema"
)

// TelemetryHandler consumes validated telemetry batches.
type TelemetryHandler interface {
	Ingest(ctx context.Context, msg *schema.TelemetryMessage)
}

// ConfigHandler consumes validated configuration-status reports.
type ConfigHandler interface {
	Reconcile(ctx context.Context, msg *schema.ConfigStatusMessage)
}

// Router classifies inbound payloads and dispatches them by action.
type Router struct {
	registry  *schema.Registry
	telemetry TelemetryHandler
	config    ConfigHandler
}

// New creates a router over the given registry and pipelines.
func New(registry *schema.Registry, telemetry TelemetryHandler, config ConfigHandler) *Router {
	return &Router{
		registry:  registry,
		telemetry: telemetry,
		config:    config,
	}
}

// Handle processes one inbound payload. It never returns an error: delivery
// is at-most-once and a dropped message is dropped for good.
func (r *Router) Handle(ctx context.Context, payload []byte) {
	if !utf8.Valid(payload) {
		log.Printf("Dropping message: payload is not valid UTF-8")
		return
	}
	if !json.Valid(payload) {
		log.Printf("Dropping message: payload is not valid JSON")
		return
	}

	msg, err := r.registry.Classify(payload)
	if err != nil {
		if errors.Is(err, schema.ErrSchemaMismatch) {
			log.Printf("Dropping message: payload matches neither message schema")
		} else {
			log.Printf("Dropping message: %v", err)
		}
		return
	}

	switch msg.Action() {
	case schema.ActionData:
		if msg.Telemetry == nil {
			log.Printf("Dropping message: action %q on a non-telemetry payload", msg.Action())
			return
		}
		r.telemetry.Ingest(ctx, msg.Telemetry)
	case schema.ActionConfig:
		if msg.ConfigStatus == nil {
			log.Printf("Dropping message: action %q on a non-config payload", msg.Action())
			return
		}
		log.Printf("Received config status from datalogger %s", msg.ConfigStatus.Datalogger.ID)
		r.config.Reconcile(ctx, msg.ConfigStatus)
	default:
		log.Printf("Unknown action %q; dropping message", msg.Action())
	}
}
