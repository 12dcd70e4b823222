package brokertest

import (
	"context"
	"sync"

	"venueledger/pkg/broker"
)

// Recorder is an in-memory broker.Publisher for tests
type Recorder struct {
	mu     sync.Mutex
	events []broker.Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event broker.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Types returns the recorded event types in publish order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

func (r *Recorder) Events() []broker.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]broker.Event(nil), r.events...)
}
