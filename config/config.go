package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Publisher PublisherConfig `yaml:"publisher"`
}

// ServerConfig holds the operations API configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// MQTTConfig holds the broker connection and topic layout.
type MQTTConfig struct {
	BrokerURL      string `yaml:"broker_url"`
	ClientID       string `yaml:"client_id"`
	UplinkTopic    string `yaml:"uplink_topic"`
	PresencePrefix string `yaml:"presence_prefix"`
	PublishQoS     int    `yaml:"publish_qos"`
}

// MongoConfig holds the document store connection configuration.
type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// PublisherConfig holds the configuration-push worker pool settings.
type PublisherConfig struct {
	PoolSize  int `yaml:"pool_size"`
	QueueSize int `yaml:"queue_size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.MQTT.BrokerURL == "" {
		cfg.MQTT.BrokerURL = "tcp://localhost:8989"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "ble-gateway-backend"
	}
	if cfg.MQTT.UplinkTopic == "" {
		cfg.MQTT.UplinkTopic = "datalogger/up"
	}
	if cfg.MQTT.PresencePrefix == "" {
		cfg.MQTT.PresencePrefix = "datalogger/presence"
	}
	if cfg.MQTT.PublishQoS < 0 || cfg.MQTT.PublishQoS > 2 {
		log.Printf("mqtt.publish_qos %d is out of range; defaulting to 1", cfg.MQTT.PublishQoS)
		cfg.MQTT.PublishQoS = 1
	}

	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "iotfactory"
	}
	if cfg.Mongo.TimeoutSeconds <= 0 {
		cfg.Mongo.TimeoutSeconds = 10
	}
	cfg.Mongo.Timeout = time.Duration(cfg.Mongo.TimeoutSeconds) * time.Second

	if cfg.Publisher.PoolSize <= 0 {
		log.Printf("publisher.pool_size is not set or invalid; defaulting to 1")
		cfg.Publisher.PoolSize = 1
	}
	if cfg.Publisher.QueueSize <= 0 {
		cfg.Publisher.QueueSize = cfg.Publisher.PoolSize
	}

	return &cfg, nil
}
