// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tundeajayi/esusu/internal/models"
)

// Sentinel errors returned by Store implementations. Services match them
// with errors.Is to translate storage outcomes into engine semantics.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert loses to a uniqueness
	// constraint. For contributions and payouts this means "already
	// exists" and callers treat it as an idempotent no-op.
	ErrDuplicate = errors.New("already exists")

	// ErrGroupFull is returned by AddMember when the group has reached
	// its member limit.
	ErrGroupFull = errors.New("group is full")

	// ErrGroupNotJoinable is returned by AddMember when the group is not
	// in the forming state.
	ErrGroupNotJoinable = errors.New("group is not accepting members")
)

// Store defines the persistence operations the rotation engine needs.
// Implementations must provide atomic multi-statement transactions and the
// uniqueness constraints the engine's idempotency relies on:
// (group, cycle) for payouts, (group, user, cycle) for contributions, and
// (group, position) for members. Methods documented as atomic perform all
// their writes in a single transaction.
type Store interface {
	// CreateGroup persists a new group in the forming state.
	// Generates ID and CreatedAt if unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// AddMember joins a user to a forming group. Atomic: validates the
	// group state and capacity, assigns the next rotation position, and
	// increments the member count in one transaction. When the join
	// fills the group, the group transitions to active with StartDate
	// set to now, and activated is true. Concurrent joiners racing for
	// the same position are serialized by the (group, position)
	// constraint; the loser gets ErrDuplicate.
	AddMember(ctx context.Context, member *models.GroupMember, now time.Time) (activated bool, err error)

	// MarkDepositPaid records that a member has paid their security
	// deposit, making them eligible for contributions and payouts.
	MarkDepositPaid(ctx context.Context, groupID, userID string) error

	// ListEligibleMembers returns the group's active, deposit-paid
	// members ordered by ascending rotation position.
	ListEligibleMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error)

	// CountActiveMembers returns the number of members with status
	// active in the group.
	CountActiveMembers(ctx context.Context, groupID string) (int, error)

	// AdvanceGroupCycle increments the group's cycle counter by one.
	AdvanceGroupCycle(ctx context.Context, groupID string) error

	// CompleteGroup marks the group completed and records the end time.
	// Terminal: no further cycles or payouts follow.
	CompleteGroup(ctx context.Context, groupID string, endedAt time.Time) error

	// CreateContribution inserts a contribution obligation. Returns
	// ErrDuplicate when a row for (group, user, cycle) already exists.
	CreateContribution(ctx context.Context, c *models.Contribution) error

	// GetContribution retrieves a contribution by ID.
	GetContribution(ctx context.Context, contributionID string) (*models.Contribution, error)

	// MarkContributionPaid sets the contribution paid with the given
	// payment time and gateway reference. Returns changed=false when the
	// contribution was already paid (idempotent).
	MarkContributionPaid(ctx context.Context, contributionID string, paidAt time.Time, paymentRef string) (changed bool, err error)

	// ListCycleContributions returns all contributions for one group
	// cycle ordered by creation.
	ListCycleContributions(ctx context.Context, groupID string, cycle int) ([]*models.Contribution, error)

	// CycleContributionCounts returns the total and paid contribution
	// counts for one group cycle.
	CycleContributionCounts(ctx context.Context, groupID string, cycle int) (total, paid int, err error)

	// PaidContributionAmounts returns the amounts of the cycle's paid
	// contributions.
	PaidContributionAmounts(ctx context.Context, groupID string, cycle int) ([]decimal.Decimal, error)

	// ListOverdueContributions returns pending contributions of active
	// groups whose due date is before now.
	ListOverdueContributions(ctx context.Context, now time.Time) ([]*models.Contribution, error)

	// GetPayoutByCycle retrieves the payout recorded for a group cycle,
	// or ErrNotFound when the cycle has not been paid out.
	GetPayoutByCycle(ctx context.Context, groupID string, cycle int) (*models.Payout, error)

	// HasPayoutForRecipient reports whether the member has already
	// received a payout from the group.
	HasPayoutForRecipient(ctx context.Context, groupID, userID string) (bool, error)

	// CountPayouts returns the number of payouts recorded for the group.
	CountPayouts(ctx context.Context, groupID string) (int, error)

	// RecordPayout inserts the payout and its ledger transaction
	// atomically. Returns ErrDuplicate when a payout for (group, cycle),
	// (group, recipient), or the ledger reference already exists; in
	// that case neither row is written.
	RecordPayout(ctx context.Context, payout *models.Payout, entry *models.Transaction) error

	// HasLatePenalty reports whether a late_payment penalty already
	// exists for the contribution.
	HasLatePenalty(ctx context.Context, contributionID string) (bool, error)

	// ApplyPenalty inserts the penalty and its ledger transaction and
	// adds the amount to the contribution's penalty column, atomically.
	ApplyPenalty(ctx context.Context, penalty *models.Penalty, entry *models.Transaction) error

	// ListTransactions returns the group's ledger entries ordered by
	// creation time. The ledger is the reconciliation surface for
	// external reporting.
	ListTransactions(ctx context.Context, groupID string) ([]*models.Transaction, error)

	// CreateNotification persists a notification record. Called after
	// financial commits; failures are logged by callers, never
	// propagated into financial state.
	CreateNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications returns a user's notification records ordered by
	// creation time.
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)

	// Close releases any resources held by the store.
	Close() error
}
