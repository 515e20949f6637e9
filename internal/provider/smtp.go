package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// smtpDialer is the subset of gomail.Dialer used here, extracted so tests can
// substitute a fake.
type smtpDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPProvider delivers mail through an SMTP relay. SMTP has no provider
// message id, so one is generated and stamped on the Message-ID header.
type SMTPProvider struct {
	dialer     smtpDialer
	senderName string
	newID      func() string
}

func NewSMTPProvider(host string, port int, username, password, senderName string) *SMTPProvider {
	return &SMTPProvider{
		dialer:     gomail.NewDialer(host, port, username, password),
		senderName: senderName,
		newID:      uuid.NewString,
	}
}

func (p *SMTPProvider) Send(ctx context.Context, mail Mail) (*SendResult, error) {
	if p == nil || p.dialer == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}
	if len(mail.To) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	messageID := p.newID()

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", mail.From, p.senderName)
	// Bcc keeps individual recipients hidden from each other on fan-out.
	msg.SetHeader("Bcc", mail.To...)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@followup>", messageID))
	msg.SetBody("text/html", mail.HTML)

	if err := p.dialer.DialAndSend(msg); err != nil {
		return nil, &TransportError{
			Message: fmt.Sprintf("smtp send to %d recipients failed", len(mail.To)),
			Cause:   err,
		}
	}

	return &SendResult{MessageID: messageID}, nil
}
