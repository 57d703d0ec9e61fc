package utils

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	kafkaWriter *kafka.Writer
	kafkaTopic  string
)

// GateEvent is published for every verification, approval and issuance so
// downstream consumers (notifications, dashboards) can react.
type GateEvent struct {
	Type       string                 `json:"type"` // e.g. GATE_VERIFIED, VISIT_APPROVED, PINS_ISSUED
	EstateID   string                 `json:"estate_id,omitempty"`
	ResidentID string                 `json:"resident_id,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// InitializeKafka sets up the shared producer. Missing broker config disables
// eventing rather than failing startup.
func InitializeKafka() {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		log.Println("⚠️ KAFKA_BROKERS not set, gate events disabled")
		return
	}

	kafkaTopic = os.Getenv("KAFKA_GATE_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "gate-events"
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(raw, ",")...),
		Topic:        kafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
	}
	log.Println("✅ Kafka producer ready, topic:", kafkaTopic)
}

// PublishGateEvent fires an event; failures are logged, never propagated,
// since eventing must not block the gate.
func PublishGateEvent(ev GateEvent) {
	if kafkaWriter == nil {
		return
	}
	ev.OccurredAt = time.Now()

	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("⚠️ Failed to marshal gate event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.EstateID),
		Value: data,
	})
	if err != nil {
		log.Printf("⚠️ Failed to publish gate event %s: %v", ev.Type, err)
	}
}

// NewGateEventReader builds a consumer for the gate events topic.
func NewGateEventReader(groupID string) *kafka.Reader {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		return nil
	}
	topic := os.Getenv("KAFKA_GATE_TOPIC")
	if topic == "" {
		topic = "gate-events"
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(raw, ","),
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
