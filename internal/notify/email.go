package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/tundeajayi/esusu/internal/models"
)

// Ensure EmailSender implements Sender
var _ Sender = (*EmailSender)(nil)

// AddressLookup resolves a user ID to an email address. Account data lives
// outside the engine, so the lookup is injected.
type AddressLookup func(ctx context.Context, userID string) (string, error)

// EmailSender delivers notifications by email through Resend.
type EmailSender struct {
	client *resend.Client
	from   string
	lookup AddressLookup
}

// NewEmailSender creates an EmailSender with the given API key and sender
// address.
func NewEmailSender(apiKey, fromEmail string, lookup AddressLookup) *EmailSender {
	return &EmailSender{
		client: resend.NewClient(apiKey),
		from:   fromEmail,
		lookup: lookup,
	}
}

// Send emails the notification to its addressee.
func (e *EmailSender) Send(ctx context.Context, n *models.Notification) error {
	email, err := e.lookup(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve address for %s: %w", n.UserID, err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Esusu <%s>", e.from),
		To:      []string{email},
		Subject: n.Title,
		Text:    n.Body,
	}

	if _, err := e.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
