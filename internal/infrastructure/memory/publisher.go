package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
)

// Publisher records every published event. Setting Err makes Publish fail
// without recording.
type Publisher struct {
	mu     sync.Mutex
	events []event.Event
	Err    error
}

func NewPublisher() *Publisher { return &Publisher{} }

func (p *Publisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, e)
	return nil
}

// Events returns a copy of what has been published so far.
func (p *Publisher) Events() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Event(nil), p.events...)
}

// Names lists the published event names in order.
func (p *Publisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventName()
	}
	return out
}

func (p *Publisher) Reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

var _ event.Publisher = (*Publisher)(nil)
