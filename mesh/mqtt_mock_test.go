package mesh

import (
	"errors"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var _ mqtt.Client = (*MockClient)(nil)

func TestMockClient_Connect(t *testing.T) {
	c := NewMockClient()
	if c.IsConnected() {
		t.Fatal("new mock should start disconnected")
	}

	if err := c.Connect().Error(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !c.IsConnected() || !c.IsConnectionOpen() {
		t.Error("mock should be connected after Connect")
	}

	c.Disconnect(0)
	if c.IsConnected() {
		t.Error("mock should be disconnected after Disconnect")
	}

	boom := errors.New("refused")
	c.SetConnectError(boom)
	if err := c.Connect().Error(); !errors.Is(err, boom) {
		t.Errorf("Connect err = %v, want %v", err, boom)
	}
	if c.IsConnected() {
		t.Error("failed Connect should leave mock disconnected")
	}
}

func TestMockClient_Publish(t *testing.T) {
	c := NewMockClient()

	if err := c.Publish("a", 0, false, "x").Error(); !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("publish while disconnected err = %v", err)
	}

	c.SetConnected(true)
	c.Publish("a", 0, false, "text")
	c.Publish("b", 2, true, []byte("bytes"))

	msgs := c.GetPublishedMessages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Topic != "a" || string(msgs[0].Payload) != "text" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].QoS != 2 || !msgs[1].Retain || string(msgs[1].Payload) != "bytes" {
		t.Errorf("second message = %+v", msgs[1])
	}

	// Returned slice is a copy.
	msgs[0].Topic = "changed"
	if c.GetPublishedMessages()[0].Topic != "a" {
		t.Error("GetPublishedMessages leaked internal state")
	}
}

func TestMockToken(t *testing.T) {
	tok := NewMockToken(nil)
	if !tok.Wait() || !tok.WaitTimeout(0) {
		t.Error("mock token should always be complete")
	}
	select {
	case <-tok.Done():
	default:
		t.Error("Done channel should be closed")
	}
}

func TestMockClient_PublishStall(t *testing.T) {
	c := NewMockClient()
	c.SetConnected(true)
	c.SetPublishStall(true)

	tok := c.Publish("a", 0, false, "x")
	if tok.WaitTimeout(0) {
		t.Error("stalled publish should not complete")
	}
	select {
	case <-tok.Done():
		t.Error("stalled token Done channel should stay open")
	default:
	}
	if len(c.GetPublishedMessages()) != 0 {
		t.Error("stalled publish should not be recorded")
	}
}
