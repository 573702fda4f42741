package models

// NotificationType classifies which state transition produced a notification.
type NotificationType string

const (
	NotifyContributionDue NotificationType = "contribution_due"
	NotifyPenaltyApplied  NotificationType = "penalty_applied"
	NotifyPayoutReceived  NotificationType = "payout_received"
	NotifyGroupCompleted  NotificationType = "group_completed"
)

// Notification is a message record addressed to one user. The engine only
// creates the record; delivery belongs to an external collaborator and its
// failure never affects financial state.
type Notification struct {
	// ID is the unique identifier for the notification (UUID format).
	ID string

	// UserID is the addressee.
	UserID string

	// GroupID is the group the notification concerns.
	GroupID string

	// Type classifies the triggering transition.
	Type NotificationType

	// Title is the short subject line.
	Title string

	// Body is the message text.
	Body string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}
