// Package mail delivers the contact form's messages.
package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/logging"
)

// ContactSubject is the subject line of every contact form message.
const ContactSubject = "Contact form input"

// Message is a plain-text mail whose From is the visitor who filled in the
// contact form.
type Message struct {
	FromName string `json:"from_name"`
	FromAddr string `json:"from_addr"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// Contact builds the message for a contact form submission.
func Contact(name, email, text, recipient string) Message {
	return Message{FromName: name, FromAddr: email, To: recipient, Subject: ContactSubject, Body: text}
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// ErrNoRecipient is returned when the site has no contact address set.
var ErrNoRecipient = errors.New("mail: no recipient configured")

// SMTPSender sends synchronously over SMTP.
type SMTPSender struct {
	cfg config.MailConfig
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender { return &SMTPSender{cfg: cfg} }

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg, err := s.build(m)
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(s.cfg.SMTPHost, s.options()...)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func (s *SMTPSender) options() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(s.cfg.SMTPPort), gomail.WithTLSPolicy(gomail.TLSOpportunistic)}
	if s.cfg.SMTPTLS {
		opts[1] = gomail.WithTLSPolicy(gomail.TLSMandatory)
	}
	if s.cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.SMTPUser),
			gomail.WithPassword(s.cfg.SMTPPass),
		)
	}
	return opts
}

// build maps a Message onto a go-mail message. The visitor is the From
// address; the configured From is used as envelope sender so relays
// accept the mail.
func (s *SMTPSender) build(m Message) (*gomail.Msg, error) {
	if m.To == "" {
		return nil, ErrNoRecipient
	}
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.FromName, m.FromAddr); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("mail: to: %w", err)
	}
	if s.cfg.From != "" {
		if err := msg.EnvelopeFrom(s.cfg.From); err != nil {
			return nil, fmt.Errorf("mail: envelope from: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return msg, nil
}

// LogSender only logs the message. It is the development default.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender { return &LogSender{log: log} }

func (s *LogSender) Send(ctx context.Context, m Message) error {
	s.log.Info(ctx, "mail", "from", m.FromAddr, "to", m.To, "subject", m.Subject, "bytes", len(m.Body))
	return nil
}
