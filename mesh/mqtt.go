package mesh

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ResolveMQTTConfig applies environment overrides (MQTT_BROKER,
// MQTT_CLIENT_ID, MQTT_USERNAME, MQTT_PASSWORD, MQTT_PUBLISH_PREFIX) on top
// of the config file values and fills defaults.
func ResolveMQTTConfig(cfg MQTTConfig) MQTTConfig {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("MQTT_PUBLISH_PREFIX"); v != "" {
		cfg.PublishPrefix = v
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "beaconmesh"
	}
	if cfg.PublishPrefix == "" {
		cfg.PublishPrefix = "beaconmesh"
	}
	return cfg
}

// NewMQTTClientOptions builds paho client options for the given settings
func NewMQTTClientOptions(cfg MQTTConfig) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("[MQTT] connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("[MQTT] connection interrupted (%v), auto-reconnect will retry", err)
	})
	return opts
}

// ConnectMQTT creates a client from cfg and connects it, retrying with
// exponential backoff until it succeeds or ctx is done.
// An empty broker disables MQTT and returns a nil client.
func ConnectMQTT(ctx context.Context, cfg MQTTConfig) (mqtt.Client, error) {
	cfg = ResolveMQTTConfig(cfg)
	if cfg.Broker == "" {
		log.Println("[MQTT] disabled: no broker configured")
		return nil, nil
	}
	client := mqtt.NewClient(NewMQTTClientOptions(cfg))
	if err := connectWithRetry(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// connectWithRetry attempts to connect to the MQTT broker with exponential backoff
func connectWithRetry(ctx context.Context, client mqtt.Client) error {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("[MQTT] connecting to broker...")

		token := client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("[MQTT] successfully connected to broker")
				return nil
			}
			log.Printf("[MQTT] connection failed: %v", token.Error())
		} else {
			log.Println("[MQTT] connection timeout")
		}

		log.Printf("[MQTT] retrying connection in %v...", retryDelay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("connecting to MQTT broker: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}
