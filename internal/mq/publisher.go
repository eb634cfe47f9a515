package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Enricher/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeEnrichRequested MessageType = "enrich.requested"
	MessageTypeEnrichCompleted MessageType = "enrich.completed"
)

// Источники запросов обогащения.
const (
	SourceAPI       = "api"
	SourceScheduler = "scheduler"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// EnrichRequestedPayload — запрос на запуск пайплайна для записи.
type EnrichRequestedPayload struct {
	Pipeline string `json:"pipeline"`
	ID       string `json:"id"`
	Source   string `json:"source,omitempty"`
}

// EnrichCompletedPayload — итог запуска пайплайна.
type EnrichCompletedPayload struct {
	// RequestID — ID исходного сообщения enrich.requested.
	RequestID string          `json:"request_id"`
	RunID     string          `json:"run_id,omitempty"`
	Pipeline  string          `json:"pipeline"`
	Status    string          `json:"status"`
	Response  domain.Response `json:"response"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishEnrichRequested публикует запрос на обогащение записи.
// Потребитель: Worker. Возвращает ID сообщения.
func (p *Publisher) PublishEnrichRequested(ctx context.Context, payload EnrichRequestedPayload) (string, error) {
	msg := NewMessage(MessageTypeEnrichRequested, payload)
	if err := p.Publish(ctx, ExchangeEnrich, RoutingKeyRequested, msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// PublishEnrichCompleted публикует итог запуска пайплайна.
func (p *Publisher) PublishEnrichCompleted(ctx context.Context, payload EnrichCompletedPayload) error {
	return p.Publish(ctx, ExchangeEnrich, RoutingKeyCompleted, NewMessage(MessageTypeEnrichCompleted, payload))
}
