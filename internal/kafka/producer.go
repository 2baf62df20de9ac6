package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event types published on the queue topic.
const (
	EventBookingSubmitted     = "booking_submitted"
	EventBookingStatusChanged = "booking_status_changed"
	EventDoctorEventAdded     = "doctor_event_added"
	EventDoctorEventDeleted   = "doctor_event_deleted"
)

// QueueEvent is the wire payload for every queue and calendar event.
type QueueEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id,omitempty"`
	Token       int       `json:"token,omitempty"`
	DoctorID    string    `json:"doctor_id"`
	PatientName string    `json:"patient_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Status      string    `json:"status,omitempty"`
	WaitMinutes int       `json:"wait_minutes,omitempty"`
	EventID     string    `json:"event_id,omitempty"`
	EventDate   string    `json:"event_date,omitempty"`
	EventType   string    `json:"event_type,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	log     zerolog.Logger
}

func NewProducer(brokers []string, log zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		log:     log.With().Str("component", "kafka_producer").Logger(),
	}
}

// Publish writes payload as JSON. Messages keyed by the same value land on the
// same partition, so per-doctor ordering holds when keyed by doctor.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug().Str("topic", topic).Str("key", key).Msg("published")
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.log.Info().Int("partitions", len(partitions)).Msg("connected to kafka")
	return nil
}
