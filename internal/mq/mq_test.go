package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeDeclarer struct {
	exchanges []string
	queues    map[string]amqp.Table
	bindings  []string
	failQueue string
}

func (d *fakeDeclarer) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	d.exchanges = append(d.exchanges, name+":"+kind)
	return nil
}

func (d *fakeDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if name == d.failQueue {
		return amqp.Queue{}, errors.New("access refused")
	}
	if d.queues == nil {
		d.queues = make(map[string]amqp.Table)
	}
	d.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (d *fakeDeclarer) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	d.bindings = append(d.bindings, exchange+"/"+key+"->"+name)
	return nil
}

func TestEnrichTopology_Declare(t *testing.T) {
	d := &fakeDeclarer{}
	if err := EnrichTopology().Declare(d); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	if len(d.exchanges) != 2 {
		t.Errorf("exchanges = %v", d.exchanges)
	}

	args, ok := d.queues[string(QueueEnrichRequests)]
	if !ok {
		t.Fatal("requests queue not declared")
	}
	if args["x-dead-letter-exchange"] != string(ExchangeDLQ) {
		t.Errorf("requests queue dlx = %v", args["x-dead-letter-exchange"])
	}
	if d.queues[string(QueueEnrichCompleted)] != nil {
		t.Error("completed queue must not have DLQ args")
	}

	want := []string{
		"enricher.enrich/requested->enrich.requests",
		"enricher.enrich/completed->enrich.completed",
		"enricher.dlq/requests->dlq.enrich.requests",
	}
	if len(d.bindings) != len(want) {
		t.Fatalf("bindings = %v", d.bindings)
	}
	for i := range want {
		if d.bindings[i] != want[i] {
			t.Errorf("binding[%d] = %q, want %q", i, d.bindings[i], want[i])
		}
	}
}

func TestEnrichTopology_DeclareError(t *testing.T) {
	d := &fakeDeclarer{failQueue: string(QueueEnrichCompleted)}

	err := EnrichTopology().Declare(d)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(d.bindings) != 0 {
		t.Error("bindings must not be declared after a queue failure")
	}
}

func TestParsePayload(t *testing.T) {
	msg := NewMessage(MessageTypeEnrichRequested, EnrichRequestedPayload{Pipeline: "job", ID: "j1", Source: SourceAPI})

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Message
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}

	payload, err := ParsePayload[EnrichRequestedPayload](&decoded)
	if err != nil {
		t.Fatalf("ParsePayload() error = %v", err)
	}
	if payload.Pipeline != "job" || payload.ID != "j1" || payload.Source != SourceAPI {
		t.Errorf("payload = %+v", payload)
	}
	if decoded.ID == "" || decoded.Type != MessageTypeEnrichRequested {
		t.Errorf("message = %+v", decoded)
	}
}

type fakeAcknowledger struct {
	mu       sync.Mutex
	acks     int
	nacks    int
	requeued bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeued = a.requeued || requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func newTestConsumer(handler Handler) *Consumer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConsumer(nil, logger, ConsumerConfig{Queue: QueueEnrichRequests, Handler: handler})
}

func delivery(t *testing.T, ack amqp.Acknowledger, msg *Message) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestConsumer_HandleDelivery(t *testing.T) {
	ctx := context.Background()
	msg := NewMessage(MessageTypeEnrichRequested, EnrichRequestedPayload{Pipeline: "job", ID: "j1"})

	t.Run("ack on success", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		var got *Message
		c := newTestConsumer(func(ctx context.Context, m *Message) error {
			got = m
			return nil
		})

		c.handleDelivery(ctx, delivery(t, ack, msg))

		if ack.acks != 1 || ack.nacks != 0 {
			t.Errorf("acks=%d nacks=%d", ack.acks, ack.nacks)
		}
		if got == nil || got.ID != msg.ID {
			t.Errorf("handler got %+v", got)
		}
	})

	t.Run("dead-letter on handler error", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		c := newTestConsumer(func(ctx context.Context, m *Message) error {
			return errors.New("boom")
		})

		c.handleDelivery(ctx, delivery(t, ack, msg))

		if ack.acks != 0 || ack.nacks != 1 || ack.requeued {
			t.Errorf("acks=%d nacks=%d requeue=%v", ack.acks, ack.nacks, ack.requeued)
		}
	})

	t.Run("dead-letter malformed body", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		called := false
		c := newTestConsumer(func(ctx context.Context, m *Message) error {
			called = true
			return nil
		})

		c.handleDelivery(ctx, amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

		if called {
			t.Error("handler must not be called")
		}
		if ack.nacks != 1 || ack.requeued {
			t.Errorf("nacks=%d requeue=%v", ack.nacks, ack.requeued)
		}
	})
}

func TestConsumer_ProcessDeliveries(t *testing.T) {
	ack := &fakeAcknowledger{}

	var mu sync.Mutex
	seen := 0
	c := newTestConsumer(func(ctx context.Context, m *Message) error {
		mu.Lock()
		seen++
		mu.Unlock()
		return nil
	})
	c.prefetch = 3

	deliveries := make(chan amqp.Delivery, 5)
	for range 5 {
		deliveries <- delivery(t, ack, NewMessage(MessageTypeEnrichRequested, nil))
	}
	close(deliveries)

	if err := c.processDeliveries(context.Background(), deliveries); err == nil {
		t.Fatal("expected closed channel error")
	}

	if seen != 5 || ack.acks != 5 {
		t.Errorf("seen=%d acks=%d", seen, ack.acks)
	}
}
