package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingRequestedEvent is published for downstream consumers (CRM,
// archive) of booking requests.
type BookingRequestedEvent struct {
	Type      string    `json:"type"`
	Reference string    `json:"reference"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ReplyTo   string    `json:"reply_to,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaNotifier struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		now: time.Now,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, msg Notification) error {
	event := BookingRequestedEvent{
		Type:      "booking_requested",
		Reference: msg.Reference,
		Title:     msg.Title,
		Content:   msg.Content,
		ReplyTo:   msg.ReplyTo,
		CreatedAt: n.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := n.writer.WriteMessages(ctx, kafka.Message{Key: []byte(msg.Reference), Value: data}); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
