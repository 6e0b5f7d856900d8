// Package events publishes settlement facts to RabbitMQ for downstream
// consumers (commission payout, accounting exports). Publishing is
// best-effort: errors are returned so the caller can log and move on
// without interrupting the reconciliation flow.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits domain events to the message broker.
type Publisher interface {
	PublishPaymentReconciled(ctx context.Context, event models.PaymentReconciledEvent) error
}

// AMQPPublisher implements Publisher against RabbitMQ. Connections are
// opened per publish; settlement volume is low enough that holding a
// long-lived channel is not worth the reconnect handling.
type AMQPPublisher struct {
	URL   string
	Queue string
}

// NewAMQPPublisher returns a publisher writing to the given queue.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Queue: queue}
}

// PublishPaymentReconciled publishes the event to the configured queue.
// The queue is declared durable and messages are persistent, so settled
// commissions survive a broker restart.
func (p *AMQPPublisher) PublishPaymentReconciled(ctx context.Context, event models.PaymentReconciledEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("amqp: dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp: channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("amqp: queue declare failed: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("amqp: marshal event failed: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		return fmt.Errorf("amqp: publish failed: %w", err)
	}

	return nil
}
