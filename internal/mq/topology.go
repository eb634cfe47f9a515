package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeEnrich Exchange = "enricher.enrich"
	ExchangeDLQ    Exchange = "enricher.dlq"
)

// Queues — имена очередей.
const (
	QueueEnrichRequests  Queue = "enrich.requests"
	QueueEnrichCompleted Queue = "enrich.completed"
	QueueDLQRequests     Queue = "dlq.enrich.requests"
)

// Routing keys.
const (
	RoutingKeyRequested   RoutingKey = "requested"
	RoutingKeyCompleted   RoutingKey = "completed"
	RoutingKeyDLQRequests RoutingKey = "requests"
)

type exchangeDecl struct {
	name Exchange
	kind string
}

type queueDecl struct {
	name Queue
	args amqp.Table
}

type bindingDecl struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
}

// Topology — полный набор объявлений RabbitMQ.
type Topology struct {
	exchanges []exchangeDecl
	queues    []queueDecl
	bindings  []bindingDecl
}

// EnrichTopology возвращает топологию обогащения.
func EnrichTopology() Topology {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQRequests),
	}

	return Topology{
		exchanges: []exchangeDecl{
			{ExchangeEnrich, amqp.ExchangeDirect},
			{ExchangeDLQ, amqp.ExchangeDirect},
		},
		queues: []queueDecl{
			// Отклонённые запросы уходят в DLQ, повторов нет
			{QueueEnrichRequests, dlqArgs},
			{QueueEnrichCompleted, nil},
			{QueueDLQRequests, nil},
		},
		bindings: []bindingDecl{
			{QueueEnrichRequests, RoutingKeyRequested, ExchangeEnrich},
			{QueueEnrichCompleted, RoutingKeyCompleted, ExchangeEnrich},
			{QueueDLQRequests, RoutingKeyDLQRequests, ExchangeDLQ},
		},
	}
}

// Declarer — часть *amqp.Channel, нужная для объявления топологии.
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// SetupTopology объявляет exchanges, queues и bindings обогащения.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		return EnrichTopology().Declare(ch)
	})
}

// Declare объявляет топологию через d.
func (t Topology) Declare(d Declarer) error {
	for _, ex := range t.exchanges {
		err := d.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	for _, q := range t.queues {
		_, err := d.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	for _, b := range t.bindings {
		err := d.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Enricher RabbitMQ Topology:

    enricher.enrich (direct)
    ├── enrich.requests [routing: requested]
    │       Publishers: API (async), Scheduler
    │       Consumer: Worker
    │       DLQ: dlq.enrich.requests
    └── enrich.completed [routing: completed]
            Publisher: Worker

    enricher.dlq (direct)
    └── dlq.enrich.requests [routing: requests]
            Manual processing
  `
}
