// Package notify creates notification records for engine state transitions
// and hands them to an outbound sender. Notifications are fire-and-forget:
// they run after the financial commit and their failures are logged, never
// propagated.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tundeajayi/esusu/internal/models"
	"github.com/tundeajayi/esusu/internal/storage"
)

// Sender pushes a notification to an external delivery channel (email, push).
// The engine does not depend on delivery succeeding.
type Sender interface {
	Send(ctx context.Context, n *models.Notification) error
}

// Notifier persists notification records and forwards them to a Sender.
type Notifier struct {
	store  storage.Store
	sender Sender
}

// New creates a Notifier. sender may be nil, in which case records are only
// persisted.
func New(store storage.Store, sender Sender) *Notifier {
	return &Notifier{store: store, sender: sender}
}

// ContributionDue notifies a member that a cycle contribution was created.
func (n *Notifier) ContributionDue(ctx context.Context, c *models.Contribution) {
	n.emit(ctx, &models.Notification{
		UserID:  c.UserID,
		GroupID: c.GroupID,
		Type:    models.NotifyContributionDue,
		Title:   "Contribution due",
		Body: fmt.Sprintf("Your contribution of %s for cycle %d is due on %s.",
			c.Amount, c.CycleNumber, c.DueDate.Format("Jan 2, 2006")),
	})
}

// PenaltyApplied notifies a member that a late-payment penalty was assessed.
func (n *Notifier) PenaltyApplied(ctx context.Context, p *models.Penalty) {
	n.emit(ctx, &models.Notification{
		UserID:  p.UserID,
		GroupID: p.GroupID,
		Type:    models.NotifyPenaltyApplied,
		Title:   "Late payment penalty",
		Body:    fmt.Sprintf("A penalty of %s was applied to your overdue contribution.", p.Amount),
	})
}

// PayoutReceived notifies the cycle's recipient.
func (n *Notifier) PayoutReceived(ctx context.Context, p *models.Payout) {
	n.emit(ctx, &models.Notification{
		UserID:  p.RecipientID,
		GroupID: p.GroupID,
		Type:    models.NotifyPayoutReceived,
		Title:   "Payout received",
		Body:    fmt.Sprintf("You received the cycle %d payout of %s.", p.CycleNumber, p.Amount),
	})
}

// GroupCompleted notifies every listed member that the rotation finished.
func (n *Notifier) GroupCompleted(ctx context.Context, groupID, groupName string, userIDs []string) {
	for _, userID := range userIDs {
		n.emit(ctx, &models.Notification{
			UserID:  userID,
			GroupID: groupID,
			Type:    models.NotifyGroupCompleted,
			Title:   "Group completed",
			Body:    fmt.Sprintf("The group %q has completed its rotation. Every member has received a payout.", groupName),
		})
	}
}

func (n *Notifier) emit(ctx context.Context, notification *models.Notification) {
	if err := n.store.CreateNotification(ctx, notification); err != nil {
		slog.Error("failed to persist notification",
			"type", notification.Type,
			"user_id", notification.UserID,
			"error", err,
		)
		return
	}
	if n.sender == nil {
		return
	}
	if err := n.sender.Send(ctx, notification); err != nil {
		slog.Warn("notification delivery failed",
			"type", notification.Type,
			"user_id", notification.UserID,
			"error", err,
		)
	}
}
