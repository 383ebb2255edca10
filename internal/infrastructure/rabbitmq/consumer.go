package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the channel.
var ErrDeliveriesClosed = errors.New("rabbitmq: delivery channel closed")

// Handler processes one decoded event. Returning an error nacks the message;
// it is requeued once, then dropped.
type Handler func(ctx context.Context, e event.Event) error

type ConsumerConfig struct {
	Exchange   string
	Queue      string
	BindingKey string // defaults to "user.#"
	Prefetch   int
}

type Consumer struct {
	ch     Channel
	cfg    ConsumerConfig
	logger logrus.FieldLogger
}

// NewConsumer declares the exchange and a durable queue bound to it.
func NewConsumer(ch Channel, cfg ConsumerConfig, logger logrus.FieldLogger) (*Consumer, error) {
	if cfg.BindingKey == "" {
		cfg.BindingKey = "user.#"
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 16
	}
	if err := declareExchange(ch, cfg.Exchange); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(cfg.Queue, cfg.BindingKey, cfg.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}
	// Prefetch for fair dispatch
	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}
	return &Consumer{ch: ch, cfg: cfg, logger: logger}, nil
}

// Run consumes until ctx is cancelled or the broker closes the deliveries.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	msgs, err := c.ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	c.logger.WithField("queue", c.cfg.Queue).Info("event consumer listening")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.dispatch(ctx, msg, handle)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery, handle Handler) {
	log := c.logger.WithField("message_id", msg.MessageId).WithField("routing_key", msg.RoutingKey)

	var env event.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		log.WithError(err).Warn("bad message")
		_ = msg.Nack(false, false)
		return
	}
	e, err := env.Decode()
	if err != nil {
		log.WithError(err).Warn("undecodable event")
		_ = msg.Nack(false, false)
		return
	}
	if err := handle(ctx, e); err != nil {
		requeue := !msg.Redelivered
		log.WithError(err).WithField("requeue", requeue).Error("event handler failed")
		_ = msg.Nack(false, requeue)
		return
	}
	_ = msg.Ack(false)
}
