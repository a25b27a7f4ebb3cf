// Package events publishes domain notifications about checkouts and form
// submissions.
package events

import (
	"context"
	"log/slog"
	"sync"
)

const (
	TopicCheckoutStarted   = "checkout.started"
	TopicCheckoutCompleted = "checkout.completed"
	TopicFormSubmitted     = "form.submitted"
)

// Event is a notification keyed by the entity it concerns.
type Event struct {
	Topic      string
	Key        string
	Attributes map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	args := make([]any, 0, 4+2*len(event.Attributes))
	args = append(args, "topic", event.Topic, "key", event.Key)
	for k, v := range event.Attributes {
		args = append(args, k, v)
	}
	p.logger.DebugContext(ctx, "event::"+event.Topic, args...)
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Topics returns the topics of recorded events in publish order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Topic)
	}
	return out
}
