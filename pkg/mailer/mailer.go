// Package mailer renders and delivers outbound email. Delivery is
// asynchronous: handlers enqueue and a background worker sends.
package mailer

import (
	"fmt"

	"soundlicense-backend/pkg/config"

	mail "github.com/wneessen/go-mail"
)

// Email is a fully rendered outbound message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one email synchronously.
type Sender interface {
	Send(email Email) error
}

// Queue accepts emails for background delivery. Enqueue never blocks the
// caller on delivery; failures are logged, not surfaced.
type Queue interface {
	Enqueue(email Email)
}

// SMTPSender delivers email over SMTP.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender builds a sender from configuration.
func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.MailFrom}, nil
}

func (s *SMTPSender) Send(email Email) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	if err := s.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// ChannelQueue buffers emails on a channel drained by one worker goroutine.
type ChannelQueue struct {
	ch     chan Email
	sender Sender
	done   chan struct{}
}

// NewChannelQueue starts the delivery worker.
func NewChannelQueue(sender Sender, size int) *ChannelQueue {
	if size <= 0 {
		size = 256
	}
	q := &ChannelQueue{
		ch:     make(chan Email, size),
		sender: sender,
		done:   make(chan struct{}),
	}
	go q.worker()
	return q
}

func (q *ChannelQueue) worker() {
	defer close(q.done)
	for email := range q.ch {
		if err := q.sender.Send(email); err != nil {
			fmt.Printf("[error] email to %s failed: %v\n", email.To, err)
		}
	}
}

// Enqueue hands an email to the worker. When the buffer is full the email
// is dropped with a log line rather than blocking the request.
func (q *ChannelQueue) Enqueue(email Email) {
	select {
	case q.ch <- email:
	default:
		fmt.Printf("[warn] mail queue full, dropping email to %s\n", email.To)
	}
}

// Close stops accepting email and waits for the worker to drain.
func (q *ChannelQueue) Close() {
	close(q.ch)
	<-q.done
}
