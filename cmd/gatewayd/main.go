package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ble-gateway-backend/config"
	"ble-gateway-backend/internal/api"
	"ble-gateway-backend/internal/db"
	"ble-gateway-backend/internal/ingest"
	"ble-gateway-backend/internal/mqttclient"
	"ble-gateway-backend/internal/publish"
	"ble-gateway-backend/internal/reconcile"
	"ble-gateway-backend/internal/router"
	"ble-gateway-backend/internal/schema"
	"ble-gateway-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	log.Printf("configuration loaded successfully from %s", configPath)

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the document store
	database, err := db.Init(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatalf("failed to initialize document store: %v", err)
	}
	appStore := store.NewMongoStore(database)
	log.Println("data store initialized")

	// Compile the payload schemas
	registry, err := schema.NewRegistry()
	if err != nil {
		log.Fatalf("failed to compile payload schemas: %v", err)
	}

	// Wire transport, pipelines and the config publisher pool. The MQTT
	// client doubles as the publish transport, so it is created first and
	// the router is attached before connecting.
	client := mqttclient.New(ctx, &cfg.MQTT, appStore)

	pool := publish.NewWorkerPool(cfg.Publisher.PoolSize, cfg.Publisher.QueueSize,
		client, byte(cfg.MQTT.PublishQoS))
	pool.Start(ctx)

	ingestor := ingest.New(appStore)
	reconciler := reconcile.New(appStore, pool)
	client.SetRouter(router.New(registry, ingestor, reconciler))

	if err := client.Connect(); err != nil {
		log.Fatalf("failed to connect to broker: %v", err)
	}

	// Initialize the operations API
	apiRouter := api.NewRouter(appStore, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiRouter,
	}

	// Start the server in a goroutine
	go func() {
		log.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	log.Println("Shutdown signal received, stopping services...")

	// Stop accepting new inbound work, then drain.
	client.Close()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server Shutdown: %v", err)
	}
	if err := database.Client().Disconnect(shutdownCtx); err != nil {
		log.Printf("Error disconnecting from document store: %v", err)
	}

	log.Println("Gateway gracefully stopped")
}
