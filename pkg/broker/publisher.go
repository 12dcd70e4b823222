package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"venueledger/pkg/logger"

	"github.com/google/uuid"
)

// Ledger event types
const (
	TypeTicketOrderCreated       = "ticket.order.created"
	TypeTicketOrderStatusChanged = "ticket.order.status_changed"
	TypeTicketCheckedIn          = "ticket.checked_in"
	TypeTableAssigned            = "table.assigned"
	TypeReservationStatusChanged = "reservation.status_changed"
	TypeDayClosed                = "day.closed"
)

const (
	DriverNone  = "none"
	DriverKafka = "kafka"
	DriverAMQP  = "amqp"
)

// Event is the envelope written to the broker after a ledger transaction commits.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEvent(eventType, key string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers ledger events to a broker
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Config selects and configures the publisher
type Config struct {
	Driver       string
	Brokers      []string
	Topic        string
	ClientID     string
	AMQPURL      string
	AMQPExchange string
}

// New builds the publisher for cfg.Driver
func New(cfg Config) (Publisher, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverNone:
		return NewLogPublisher(logger.GetDefault()), nil
	case DriverKafka:
		return NewKafkaPublisher(cfg)
	case DriverAMQP:
		return NewAMQPPublisher(cfg)
	default:
		return nil, fmt.Errorf("unknown broker driver %q", cfg.Driver)
	}
}

// Notify publishes and logs failures. The ledger write has already
// committed, so delivery problems never fail the caller.
func Notify(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.GetDefault().LogPublishFailure(ctx, event.Type, err)
	}
}

// LogPublisher writes events to the application log only
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(l *logger.Logger) *LogPublisher {
	return &LogPublisher{log: l}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.log.DebugContext(ctx, "ledger event",
		"event_id", event.ID,
		"type", event.Type,
		"key", event.Key,
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
