// Package queue defines message payloads exchanged over the message broker
// and the consumer that acts on them.
package queue

import "github.com/julo-ch/www/internal/mail"

// ContactQueueName is the durable queue carrying contact form submissions.
const ContactQueueName = "contact.submitted"

// ContactSubmittedEvent is published when a visitor submits a valid contact
// form. It carries the complete message so the consumer never touches the
// database.
type ContactSubmittedEvent struct {
	Message     mail.Message `json:"message"`
	SubmittedAt string       `json:"submitted_at"`
}
