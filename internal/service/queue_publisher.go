// Package service holds outbound integrations that sit behind the
// engine's collaborator interfaces.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/mycinema/screening-engine/internal/queue"
)

// QueuePublisher publishes domain events to RabbitMQ.  It dials per
// publish: purchases are far rarer than browse traffic and a fresh
// connection keeps the publisher free of broken-channel state after a
// broker restart.  It satisfies the engine's Publisher interface.
type QueuePublisher struct {
	url string
	log *zap.Logger
}

// NewQueuePublisher builds a publisher for the given AMQP URL.
func NewQueuePublisher(url string, log *zap.Logger) *QueuePublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueuePublisher{url: url, log: log}
}

// PublishTicketPurchased sends the event to the ticket.purchased
// queue.  Messages are persistent so they survive broker restarts.
// Errors are logged and returned; the caller decides whether to care.
func (p *QueuePublisher) PublishTicketPurchased(ctx context.Context, ev queue.TicketPurchasedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.Error(err))
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", zap.Error(err))
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.TicketPurchasedQueue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq queue declare failed", zap.Error(err))
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queue.TicketPurchasedQueue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.Error(err))
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
