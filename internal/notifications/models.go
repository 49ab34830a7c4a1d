package notifications

import (
	"context"
	"time"
)

// EventCertificateIssued is the event type published after a successful issuance
const EventCertificateIssued = "certificate.issued"

// IssuanceEvent describes a certificate that has just been issued
type IssuanceEvent struct {
	Type             string    `json:"type"`
	ValidationNumber string    `json:"validation_number"`
	CertType         string    `json:"cert_type"`
	RecipientName    string    `json:"recipient_name"`
	ItemToProve      string    `json:"item_to_prove"`
	Language         string    `json:"language"`
	IssuedAt         time.Time `json:"issued_at"`
	ValidationURL    string    `json:"validation_url"`
}

// Publisher delivers issuance events to subscribers
type Publisher interface {
	PublishIssued(ctx context.Context, event IssuanceEvent) error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishIssued(ctx context.Context, event IssuanceEvent) error {
	return nil
}
