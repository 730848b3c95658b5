package mesh

import (
	"context"
	"errors"
	"testing"
)

func TestResolveMQTTConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{"MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_USERNAME", "MQTT_PASSWORD", "MQTT_PUBLISH_PREFIX"} {
			t.Setenv(k, "")
		}
		got := ResolveMQTTConfig(MQTTConfig{})
		if got.Broker != "" {
			t.Errorf("Broker = %q, want empty", got.Broker)
		}
		if got.ClientID != "beaconmesh" || got.PublishPrefix != "beaconmesh" {
			t.Errorf("defaults = %+v", got)
		}
	})

	t.Run("file values kept", func(t *testing.T) {
		for _, k := range []string{"MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_USERNAME", "MQTT_PASSWORD", "MQTT_PUBLISH_PREFIX"} {
			t.Setenv(k, "")
		}
		in := MQTTConfig{Broker: "tcp://file:1883", ClientID: "file-id", PublishPrefix: "file"}
		if got := ResolveMQTTConfig(in); got != in {
			t.Errorf("got %+v, want %+v", got, in)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("MQTT_BROKER", "tcp://env:1883")
		t.Setenv("MQTT_CLIENT_ID", "env-id")
		t.Setenv("MQTT_USERNAME", "user")
		t.Setenv("MQTT_PASSWORD", "secret")
		t.Setenv("MQTT_PUBLISH_PREFIX", "env")

		got := ResolveMQTTConfig(MQTTConfig{Broker: "tcp://file:1883", ClientID: "file-id"})
		want := MQTTConfig{Broker: "tcp://env:1883", ClientID: "env-id", Username: "user", Password: "secret", PublishPrefix: "env"}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})
}

func TestNewMQTTClientOptions(t *testing.T) {
	opts := NewMQTTClientOptions(MQTTConfig{Broker: "tcp://localhost:1883", ClientID: "test", Username: "u", Password: "p"})
	if len(opts.Servers) != 1 || opts.Servers[0].Host != "localhost:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "test" || opts.Username != "u" || opts.Password != "p" {
		t.Errorf("identity = %q/%q/%q", opts.ClientID, opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.ConnectRetry {
		t.Error("reconnect should be enabled")
	}
}

func TestConnectMQTT_NoBroker(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")
	client, err := ConnectMQTT(t.Context(), MQTTConfig{})
	if err != nil || client != nil {
		t.Errorf("ConnectMQTT without broker = %v, %v; want nil, nil", client, err)
	}
}

func TestConnectWithRetry(t *testing.T) {
	client := NewMockClient()
	if err := connectWithRetry(t.Context(), client); err != nil {
		t.Fatalf("connectWithRetry: %v", err)
	}
	if !client.IsConnected() {
		t.Error("client should be connected")
	}
}

func TestConnectWithRetry_Cancelled(t *testing.T) {
	client := NewMockClient()
	client.SetConnectError(errors.New("refused"))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := connectWithRetry(ctx, client)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
