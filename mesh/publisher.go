package mesh

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 2 * time.Second

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publication in time.
var ErrPublishTimeout = errors.New("publish not acknowledged")

// SummaryMessage is published to <prefix>/summary after each alignment run
type SummaryMessage struct {
	RunID            string `json:"runId"`
	ReferenceScanner int    `json:"referenceScanner"`
	Scanners         int    `json:"scanners"`
	BeaconCount      int    `json:"beaconCount"`
	MaxDistance      int    `json:"maxDistance"`
	Timestamp        int64  `json:"timestamp"`
}

// ScannerMessage is published to <prefix>/scanners/<id> for every scanner
type ScannerMessage struct {
	RunID string `json:"runId"`
	ScannerPose
	Timestamp int64 `json:"timestamp"`
}

// Publisher publishes alignment reports to MQTT
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
}

// NewPublisher creates a report publisher.
// If client is nil, publishing is disabled (for testing)
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "beaconmesh"
	}
	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           1,    // reports are infrequent; make sure they land
		retain:        true, // late subscribers get the latest result
	}
}

// PublishReport publishes the per-scanner poses followed by the summary
func (p *Publisher) PublishReport(rep *Report) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}
	now := time.Now().Unix()

	for _, pose := range rep.Scanners {
		topic := fmt.Sprintf("%s/scanners/%d", p.publishPrefix, pose.ID)
		msg := ScannerMessage{RunID: rep.RunID, ScannerPose: pose, Timestamp: now}
		if err := p.publishJSON(topic, msg); err != nil {
			return err
		}
	}

	summary := SummaryMessage{
		RunID:            rep.RunID,
		ReferenceScanner: rep.ReferenceScanner,
		Scanners:         len(rep.Scanners),
		BeaconCount:      rep.BeaconCount,
		MaxDistance:      rep.MaxDistance,
		Timestamp:        now,
	}
	if err := p.publishJSON(p.publishPrefix+"/summary", summary); err != nil {
		return err
	}

	log.Printf("[MQTT] Published report %s: %d scanners, %d beacons, max distance %d",
		rep.RunID, len(rep.Scanners), rep.BeaconCount, rep.MaxDistance)
	return nil
}

func (p *Publisher) publishJSON(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", topic, err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: %w", topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
