package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  []string
	bindings   []string
	prefetch   int
	published  []amqp.Publishing
	keys       []string
	deliveries chan amqp.Delivery
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery, 8)}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.exchanges = append(f.exchanges, name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	f.bindings = append(f.bindings, exchange+"->"+name+"@"+key)
	return nil
}

func (f *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	f.prefetch = prefetchCount
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _ string, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

type ackRecord struct {
	acked   bool
	nacked  bool
	requeue bool
}

type fakeAck struct {
	mu   sync.Mutex
	recs map[uint64]*ackRecord
	done chan uint64
}

func newFakeAck() *fakeAck {
	return &fakeAck{recs: map[uint64]*ackRecord{}, done: make(chan uint64, 8)}
}

func (a *fakeAck) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	a.recs[tag] = &ackRecord{acked: true}
	a.mu.Unlock()
	a.done <- tag
	return nil
}

func (a *fakeAck) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	a.recs[tag] = &ackRecord{nacked: true, requeue: requeue}
	a.mu.Unlock()
	a.done <- tag
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

func (a *fakeAck) get(tag uint64) ackRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.recs[tag]
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func registeredEvent(t *testing.T) event.Event {
	t.Helper()
	email, err := vo.NewEmail("bus@example.com")
	require.NoError(t, err)
	events := entity.Register(email).TakeEvents()
	require.Len(t, events, 1)
	return events[0]
}

func TestPublisher_Publish(t *testing.T) {
	ch := newFakeChannel()
	p, err := NewPublisher(ch, "user.events")
	require.NoError(t, err)
	assert.Equal(t, []string{"user.events:topic"}, ch.exchanges)

	e := registeredEvent(t)
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{event.NameRegistered}, ch.keys)
	msg := ch.published[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, event.NameRegistered, msg.Type)

	var env event.Envelope
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	assert.Equal(t, msg.MessageId, env.ID)
	decoded, err := env.Decode()
	require.NoError(t, err)
	assert.Equal(t, e, decoded)
}

func delivery(t *testing.T, ack amqp.Acknowledger, tag uint64, body []byte, redelivered bool) amqp.Delivery {
	t.Helper()
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body, Redelivered: redelivered}
}

func TestConsumer_Run(t *testing.T) {
	ch := newFakeChannel()
	c, err := NewConsumer(ch, ConsumerConfig{Exchange: "user.events", Queue: "user-events"}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"user.events->user-events@user.#"}, ch.bindings)
	assert.Equal(t, 16, ch.prefetch)

	good, err := json.Marshal(event.NewEnvelope(registeredEvent(t)))
	require.NoError(t, err)
	unknown, err := json.Marshal(event.Envelope{Name: "user.teleported"})
	require.NoError(t, err)

	ack := newFakeAck()
	var handled []string
	failOnce := true
	handler := func(_ context.Context, e event.Event) error {
		handled = append(handled, e.EventName())
		if failOnce {
			failOnce = false
			return errors.New("downstream unavailable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, handler) }()

	ch.deliveries <- delivery(t, ack, 1, []byte("{not json"), false)
	ch.deliveries <- delivery(t, ack, 2, unknown, false)
	ch.deliveries <- delivery(t, ack, 3, good, false)
	ch.deliveries <- delivery(t, ack, 4, good, true)
	for i := 0; i < 4; i++ {
		select {
		case <-ack.done:
		case <-time.After(2 * time.Second):
			t.Fatal("delivery not settled")
		}
	}
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, ackRecord{nacked: true}, ack.get(1))
	assert.Equal(t, ackRecord{nacked: true}, ack.get(2))
	assert.Equal(t, ackRecord{nacked: true, requeue: true}, ack.get(3))
	assert.Equal(t, ackRecord{acked: true}, ack.get(4))
	assert.Equal(t, []string{event.NameRegistered, event.NameRegistered}, handled)
}

func TestConsumer_ClosedDeliveries(t *testing.T) {
	ch := newFakeChannel()
	c, err := NewConsumer(ch, ConsumerConfig{Exchange: "x", Queue: "q", Prefetch: 4}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, ch.prefetch)

	close(ch.deliveries)
	err = c.Run(context.Background(), func(context.Context, event.Event) error { return nil })
	assert.ErrorIs(t, err, ErrDeliveriesClosed)
}
