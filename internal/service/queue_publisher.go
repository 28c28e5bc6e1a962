// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned so callers can decide how to degrade.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/julo-ch/www/internal/logging"
	"github.com/julo-ch/www/internal/mail"
	q "github.com/julo-ch/www/internal/queue"
)

// PublishContactSubmitted publishes a ContactSubmittedEvent to the
// "contact.submitted" queue. Messages are marked as persistent.
func PublishContactSubmitted(ctx context.Context, url string, event q.ContactSubmittedEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.ContactQueueName, // name
		true,               // durable
		false,              // autoDelete
		false,              // exclusive
		false,              // noWait
		nil,                // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	return ch.PublishWithContext(ctx,
		"",                 // default exchange
		q.ContactQueueName, // routing key = queue name
		false,              // mandatory
		false,              // immediate
		pub,
	)
}

// QueueSender is a mail.Sender that hands messages to the broker instead of
// talking SMTP inside the request.
type QueueSender struct {
	url string
	log logging.Logger
}

func NewQueueSender(url string, log logging.Logger) *QueueSender {
	return &QueueSender{url: url, log: log}
}

func (s *QueueSender) Send(ctx context.Context, m mail.Message) error {
	ev := q.ContactSubmittedEvent{Message: m, SubmittedAt: time.Now().UTC().Format(time.RFC3339)}
	if err := PublishContactSubmitted(ctx, s.url, ev); err != nil {
		s.log.Error(ctx, "rabbitmq: publish failed", "queue", q.ContactQueueName, "err", err)
		return err
	}
	return nil
}

var _ mail.Sender = (*QueueSender)(nil)
