// Package publish reacts to configuration-push jobs by building the
// canonical outbound configuration document and publishing it to the
// datalogger's topic.
package publish

import (
	"context"
	"encoding/json"
	"log"

	"ble-gateway-backend/internal/model"
)

// MessagePublisher defines the transport publish operation used by the pool.
type MessagePublisher interface {
	Publish(topic string, qos byte, retain bool, payload []byte) error
}

// WorkerPool manages a pool of workers pushing configuration documents down
// to dataloggers. Jobs carry the fresh store document captured at dispatch
// time; no response or ack correlation is tracked beyond transport delivery.
type WorkerPool struct {
	size      int
	jobs      chan *model.Datalogger
	publisher MessagePublisher
	qos       byte
}

// NewWorkerPool creates a new configuration-push worker pool.
func NewWorkerPool(size, queueSize int, publisher MessagePublisher, qos byte) *WorkerPool {
	return &WorkerPool{
		size:      size,
		jobs:      make(chan *model.Datalogger, queueSize),
		publisher: publisher,
		qos:       qos,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Config publisher worker %d started", id)
	for {
		select {
		case dl := <-wp.jobs:
			wp.pushConfig(dl)
		case <-ctx.Done():
			log.Printf("Config publisher worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a configuration push for a datalogger.
func (wp *WorkerPool) Dispatch(dl *model.Datalogger) {
	wp.jobs <- dl
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan *model.Datalogger {
	return wp.jobs
}

// pushConfig builds and publishes one configuration document. Delivery is
// at-least-once (acknowledged publish, no retention); failures are logged
// and never retried here.
func (wp *WorkerPool) pushConfig(dl *model.Datalogger) {
	log.Printf("Datalogger %s: config updating", dl.ID)

	payload, err := json.Marshal(BuildConfigMessage(dl))
	if err != nil {
		log.Printf("Error encoding config for datalogger %s: %v", dl.ID, err)
		return
	}

	if err := wp.publisher.Publish(dl.ID, wp.qos, false, payload); err != nil {
		log.Printf("Error publishing config to datalogger %s: %v", dl.ID, err)
		return
	}
	log.Printf("Config sent to datalogger %s", dl.ID)
}
