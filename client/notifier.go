package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type EventType string

const (
	LeaderboardPublished EventType = "leaderboard.published"
	RegistrationReviewed EventType = "registration.reviewed"
)

type NotificationEvent struct {
	Type          EventType   `json:"type"`
	CompetitionId string      `json:"competition_id"`
	Key           string      `json:"key"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// KafkaNotifier hands events to downstream consumers such as the mailer.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) Notify(ctx context.Context, event *NotificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  event.Timestamp,
	})
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, event *NotificationEvent) error {
	return nil
}
