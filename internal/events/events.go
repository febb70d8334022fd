// Package events carries domain events between the score dispatcher and
// its projections over watermill.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TopicScoreRecorded is published once per persisted exercise resolution.
const TopicScoreRecorded = "score.recorded"

// Drivers accepted by Config.Driver.
const (
	DriverGoChannel = "gochannel"
	DriverKafka     = "kafka"
)

// ScoreRecorded describes one resolved exercise and the user's totals
// after it was applied.
type ScoreRecorded struct {
	EventID            string    `json:"event_id"`
	UID                string    `json:"uid"`
	Username           string    `json:"username"`
	SessionID          string    `json:"session_id,omitempty"`
	ExerciseID         string    `json:"exercise_id"`
	Topic              string    `json:"topic"`
	Difficulty         string    `json:"difficulty"`
	Points             int       `json:"points"`
	Exercises          int       `json:"exercises"`
	TotalScore         int       `json:"total_score"`
	CompletedExercises int       `json:"completed_exercises"`
	At                 time.Time `json:"at"`
}

// Config selects the pub/sub backend.
type Config struct {
	Driver        string
	KafkaBrokers  []string
	ConsumerGroup string
}

// Publisher publishes and subscribes to domain events. With the gochannel
// driver both sides share one in-process bus.
type Publisher struct {
	pub    message.Publisher
	sub    message.Subscriber
	shared bool
	logger watermill.LoggerAdapter
}

// NewPublisher builds a publisher for cfg.Driver. An empty driver means
// gochannel.
func NewPublisher(cfg Config, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch strings.ToLower(cfg.Driver) {
	case "", DriverGoChannel:
		// Publish returns once the subscriber has acked, so one publisher's
		// events reach handlers in publish order.
		bus := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		}, logger)
		return &Publisher{pub: bus, sub: bus, shared: true, logger: logger}, nil

	case DriverKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka driver needs at least one broker")
		}
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		group := cfg.ConsumerGroup
		if group == "" {
			group = "mathdrill"
		}
		sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:       cfg.KafkaBrokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: group,
		}, logger)
		if err != nil {
			pub.Close()
			return nil, fmt.Errorf("create kafka subscriber: %w", err)
		}
		return &Publisher{pub: pub, sub: sub, logger: logger}, nil
	}
	return nil, fmt.Errorf("unknown event driver %q", cfg.Driver)
}

// PublishScore publishes ev on TopicScoreRecorded. A missing event ID or
// timestamp is filled in.
func (p *Publisher) PublishScore(ctx context.Context, ev ScoreRecorded) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal score event: %w", err)
	}

	msg := message.NewMessage(ev.EventID, payload)
	msg.Metadata.Set("event_type", TopicScoreRecorded)
	msg.Metadata.Set("uid", ev.UID)
	msg.SetContext(ctx)

	if err := p.pub.Publish(TopicScoreRecorded, msg); err != nil {
		return fmt.Errorf("publish score event: %w", err)
	}
	return nil
}

// ScoreHandler consumes one decoded score event.
type ScoreHandler func(ctx context.Context, ev ScoreRecorded) error

// Subscribe starts delivering score events to h until ctx is cancelled or
// the publisher is closed. Handler failures are logged and the message is
// acknowledged; projections can be rebuilt from the store.
func (p *Publisher) Subscribe(ctx context.Context, h ScoreHandler) error {
	msgs, err := p.sub.Subscribe(ctx, TopicScoreRecorded)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicScoreRecorded, err)
	}

	go func() {
		for msg := range msgs {
			var ev ScoreRecorded
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logrus.WithError(err).WithField("message_id", msg.UUID).Warn("Dropping malformed score event")
				msg.Ack()
				continue
			}
			if err := h(msg.Context(), ev); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"event_id": ev.EventID,
					"uid":      ev.UID,
				}).Error("Score event handler failed")
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close shuts down both sides of the bus.
func (p *Publisher) Close() error {
	if err := p.pub.Close(); err != nil {
		return err
	}
	if !p.shared {
		return p.sub.Close()
	}
	return nil
}
