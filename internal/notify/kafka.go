package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultTopic = "cart.notifications"

// Kafka publishes notifications to a topic keyed by session id so a toast
// service can push them to the right browser tab. The writer is async.
type Kafka struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafka(brokers []string, topic string, log *zap.Logger) *Kafka {
	k := &Kafka{log: log}
	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   k.completion,
	}
	return k
}

func (k *Kafka) completion(msgs []kafka.Message, err error) {
	if err != nil {
		k.log.Warn("publish notification failed", zap.Error(err), zap.Int("messages", len(msgs)))
	}
}

// ForSession binds the publisher to one session's key.
func (k *Kafka) ForSession(sessionID string) *KafkaSession {
	return &KafkaSession{k: k, sessionID: sessionID}
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

type KafkaSession struct {
	k         *Kafka
	sessionID string
}

func (s *KafkaSession) Error(ctx context.Context, msg string) {
	n := newNotification(s.sessionID, msg)

	data, err := json.Marshal(n)
	if err != nil {
		s.k.log.Warn("encode notification failed", zap.Error(err))
		return
	}

	err = s.k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(s.sessionID),
		Value: data,
		Time:  n.At,
	})
	if err != nil {
		s.k.log.Warn("enqueue notification failed", zap.Error(err), zap.String("session_id", s.sessionID))
	}
}
