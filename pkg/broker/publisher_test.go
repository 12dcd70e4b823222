package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestKafkaPublisherSendsEnvelope(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got Event
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != TypeDayClosed || got.Key != "2024-03-01" {
			return fmt.Errorf("unexpected envelope %+v", got)
		}
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "venue.ledger")
	evt := NewEvent(TypeDayClosed, "2024-03-01", map[string]string{"status": "closed"})

	if err := p.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestKafkaPublisherReturnsSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "venue.ledger")
	err := p.Publish(context.Background(), NewEvent(TypeTableAssigned, "r-1", nil))
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("err = %v, want ErrOutOfBrokers", err)
	}
	_ = p.Close()
}

func TestNewSelectsDriver(t *testing.T) {
	p, err := New(Config{Driver: "none"})
	if err != nil {
		t.Fatalf("New(none): %v", err)
	}
	if _, ok := p.(*LogPublisher); !ok {
		t.Fatalf("publisher = %T, want *LogPublisher", p)
	}

	if _, err := New(Config{Driver: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestToPublishing(t *testing.T) {
	evt := NewEvent(TypeTicketCheckedIn, "order-1", map[string]int{"slot_no": 1})
	pub, err := toPublishing(evt)
	if err != nil {
		t.Fatalf("toPublishing: %v", err)
	}
	if pub.MessageId != evt.ID || pub.Type != TypeTicketCheckedIn || pub.ContentType != "application/json" {
		t.Fatalf("publishing = %+v", pub)
	}
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}
func (f *failingPublisher) Close() error { return nil }

func TestNotifySwallowsFailures(t *testing.T) {
	f := &failingPublisher{}
	Notify(context.Background(), f, NewEvent(TypeTicketOrderCreated, "o-1", nil))
	Notify(context.Background(), nil, NewEvent(TypeTicketOrderCreated, "o-1", nil))
	if f.calls != 1 {
		t.Fatalf("calls = %d, want 1", f.calls)
	}
}
