package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
)

// PublishChannel is what the publisher needs from a channel.
type PublishChannel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends domain events to a topic exchange, keyed by event name.
type Publisher struct {
	ch       PublishChannel
	exchange string
	timeout  time.Duration
}

func NewPublisher(ch PublishChannel, exchange string) (*Publisher, error) {
	if err := declareExchange(ch, exchange); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange, timeout: 5 * time.Second}, nil
}

func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	env := event.NewEnvelope(e)
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.ch.PublishWithContext(ctx,
		p.exchange,
		env.Name, // routing key = event name
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.ID,
			Type:         env.Name,
			Timestamp:    e.OccurredAt().Time(),
			Body:         b,
		},
	)
}

var _ event.Publisher = (*Publisher)(nil)
