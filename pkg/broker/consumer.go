package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venueledger/pkg/logger"

	"github.com/IBM/sarama"
)

// Handler processes one decoded ledger event
type Handler func(ctx context.Context, event Event) error

type ConsumerConfig struct {
	Brokers      []string
	GroupID      string
	Topics       []string
	OffsetOldest bool
	MaxRetries   int
	RetryBackoff time.Duration
}

// KafkaConsumer reads ledger events back off the topic through a consumer group
type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler *groupHandler
}

func NewKafkaConsumer(cfg ConsumerConfig, handler Handler) (*KafkaConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if cfg.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaConsumer{
		group:   group,
		topics:  cfg.Topics,
		handler: newGroupHandler(handler, cfg.MaxRetries, cfg.RetryBackoff),
	}, nil
}

// Run consumes until ctx is cancelled. Rebalances end a Consume call, so
// it is re-entered in a loop.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			logger.GetDefault().Error("consumer group error", "error", err)
		}
	}()

	for {
		if err := c.group.Consume(ctx, c.topics, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			logger.GetDefault().Error("consume failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	handle     Handler
	maxRetries int
	backoff    time.Duration
}

func newGroupHandler(handle Handler, maxRetries int, backoff time.Duration) *groupHandler {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &groupHandler{handle: handle, maxRetries: maxRetries, backoff: backoff}
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.process(session.Context(), message); err != nil {
				logger.GetDefault().Error("ledger event dropped",
					"topic", message.Topic,
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err,
				)
			}
			// a poison message must not stall the partition
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) process(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal ledger event: %w", err)
	}

	for attempt := 0; ; attempt++ {
		err := h.handle(ctx, event)
		if err == nil {
			return nil
		}
		if attempt == h.maxRetries {
			return fmt.Errorf("ledger event %s failed after %d attempts: %w", event.ID, attempt+1, err)
		}

		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
