// Package provider holds the outbound mail transport port and its
// implementations. The dispatch engine treats providers as opaque: one call
// per dispatch with the full recipient set, success or TransportError back.
package provider

import "context"

// Mail is one outbound message to a resolved recipient set.
type Mail struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Provider is the mail transport port.
type Provider interface {
	Send(ctx context.Context, mail Mail) (*SendResult, error)
}

// SendResult stores provider call metadata for the delivery audit trail.
type SendResult struct {
	StatusCode int
	MessageID  string
}
