// Package mqttclient owns the broker connection: it feeds inbound uplink
// payloads to the message router, tracks datalogger presence, and exposes
// the publish operation used for configuration pushes.
package mqttclient

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"ble-gateway-backend/config"
	"ble-gateway-backend/internal/model"
	"ble-gateway-backend/internal/router"
	"ble-gateway-backend/internal/store"
)

// Presence payloads published by dataloggers on their presence topic. The
// "unsubscribed" state doubles as the device's LWT payload.
const (
	presenceSubscribed   = "subscribed"
	presenceUnsubscribed = "unsubscribed"
)

// dataloggerIDLength is the length of a valid datalogger serial; presence
// announcements with any other id length never self-register.
const dataloggerIDLength = 12

// Client wraps the paho MQTT client with the gateway's subscriptions.
type Client struct {
	cfg    *config.MQTTConfig
	mc     mqtt.Client
	router *router.Router
	store  store.Store
	ctx    context.Context
}

// New creates a client. Subscriptions are (re-)established on every
// successful connect so they survive broker reconnects.
//
// The router is attached with SetRouter before Connect: the client is also
// the publish transport of the config pipeline, which sits behind the
// router, so it has to exist first.
func New(ctx context.Context, cfg *config.MQTTConfig, s store.Store) *Client {
	c := &Client{cfg: cfg, store: s, ctx: ctx}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("Broker connection lost: %v", err)
	})
	c.mc = mqtt.NewClient(opts)
	return c
}

// SetRouter attaches the message router consuming uplink payloads.
func (c *Client) SetRouter(r *router.Router) {
	c.router = r
}

// Connect establishes the broker connection.
func (c *Client) Connect() error {
	token := c.mc.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to broker %s: %w", c.cfg.BrokerURL, err)
	}
	log.Println("Gateway transport is up and running")
	return nil
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (c *Client) Close() {
	c.mc.Disconnect(250)
}

// Publish sends a payload with the requested QoS and waits for the
// transport acknowledgement.
func (c *Client) Publish(topic string, qos byte, retain bool, payload []byte) error {
	token := c.mc.Publish(topic, qos, retain, payload)
	token.Wait()
	return token.Error()
}

func (c *Client) onConnect(mc mqtt.Client) {
	log.Println("Connected to broker")

	if token := mc.Subscribe(c.cfg.UplinkTopic, 1, c.onUplink); token.Wait() && token.Error() != nil {
		log.Printf("Error subscribing to uplink topic %s: %v", c.cfg.UplinkTopic, token.Error())
	}

	presenceFilter := c.cfg.PresencePrefix + "/+"
	if token := mc.Subscribe(presenceFilter, 1, c.onPresence); token.Wait() && token.Error() != nil {
		log.Printf("Error subscribing to presence topic %s: %v", presenceFilter, token.Error())
	}
}

// onUplink hands one inbound payload to the router. Each message runs in
// its own goroutine: messages are independent and nothing orders them.
func (c *Client) onUplink(_ mqtt.Client, m mqtt.Message) {
	if c.router == nil {
		log.Printf("Dropping uplink message: no router attached")
		return
	}
	payload := append([]byte(nil), m.Payload()...)
	go c.router.Handle(c.ctx, payload)
}

func (c *Client) onPresence(_ mqtt.Client, m mqtt.Message) {
	topic := m.Topic()
	id := topic[strings.LastIndex(topic, "/")+1:]
	state := string(m.Payload())
	go c.handlePresence(id, state)
}

func (c *Client) handlePresence(id, state string) {
	switch state {
	case presenceSubscribed:
		log.Printf("Datalogger %s subscribed to its topic", id)
		c.registerDatalogger(id)
	case presenceUnsubscribed:
		log.Printf("Datalogger %s unsubscribed from its topic", id)
		if err := c.store.AppendActivity(c.ctx, id, "Disconnected", "", time.Time{}); err != nil {
			log.Printf("Error adding \"Disconnected\" log for datalogger %s: %v", id, err)
			return
		}
		log.Printf("Log \"Disconnected\" for datalogger %s added", id)
	default:
		log.Printf("Unknown presence state %q from datalogger %s", state, id)
	}
}

// registerDatalogger self-registers a datalogger on its first subscription.
func (c *Client) registerDatalogger(id string) {
	dl, err := c.store.FindDatalogger(c.ctx, id)
	if err != nil {
		log.Printf("Error looking up datalogger %s: %v", id, err)
		return
	}
	if dl != nil || len(id) != dataloggerIDLength {
		return
	}

	if err := c.store.InsertDatalogger(c.ctx, model.NewDatalogger(id, time.Now().UTC())); err != nil {
		log.Printf("Error registering new datalogger %s: %v", id, err)
		return
	}
	log.Printf("New datalogger : %s", id)
}
