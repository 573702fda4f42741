package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tundeajayi/esusu/internal/calculator"
	"github.com/tundeajayi/esusu/internal/metrics"
	"github.com/tundeajayi/esusu/internal/models"
	"github.com/tundeajayi/esusu/internal/notify"
	"github.com/tundeajayi/esusu/internal/storage"
)

// ErrNonPositivePayout signals a computed payout of zero or less, which is a
// logic error, never a silently accepted outcome.
var ErrNonPositivePayout = errors.New("computed payout is not positive")

// RotationService selects payout recipients and records cycle payouts.
type RotationService struct {
	store    storage.Store
	notifier *notify.Notifier
}

// NewRotationService creates a RotationService.
func NewRotationService(store storage.Store, notifier *notify.Notifier) *RotationService {
	return &RotationService{store: store, notifier: notifier}
}

// NextPayoutRecipient returns the first active, deposit-paid member in
// ascending position order without an existing payout, or nil when every
// member has been paid. Rotation order is strictly by position; contribution
// history never reorders or skips anyone.
func (s *RotationService) NextPayoutRecipient(ctx context.Context, groupID string) (*models.GroupMember, error) {
	members, err := s.store.ListEligibleMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		paid, err := s.store.HasPayoutForRecipient(ctx, groupID, member.UserID)
		if err != nil {
			return nil, err
		}
		if !paid {
			return member, nil
		}
	}
	return nil, nil
}

// CalculateCyclePayout computes the payout amount for a cycle from its paid
// contributions and the group's service fee. Zero when nothing is paid.
func (s *RotationService) CalculateCyclePayout(ctx context.Context, group *models.Group, cycle int) (decimal.Decimal, error) {
	amounts, err := s.store.PaidContributionAmounts(ctx, group.ID, cycle)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.CyclePayout(amounts, group.ServiceFeePercentage), nil
}

// ProcessCyclePayout records the payout for a completed cycle, at most once
// per (group, cycle). It returns false without error when the payout already
// exists or no recipient is eligible, and fails only on storage errors or a
// non-positive computed amount. On success the payout and its ledger entry
// are committed atomically, then the recipient is notified.
func (s *RotationService) ProcessCyclePayout(ctx context.Context, groupID string, cycle int) (bool, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	if group.Status != models.GroupActive {
		slog.Warn("skipping payout for inactive group", "group_id", groupID, "status", group.Status)
		return false, nil
	}

	if _, err := s.store.GetPayoutByCycle(ctx, groupID, cycle); err == nil {
		slog.Info("payout already processed", "group_id", groupID, "cycle", cycle)
		return false, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}

	recipient, err := s.NextPayoutRecipient(ctx, groupID)
	if err != nil {
		return false, err
	}
	if recipient == nil {
		slog.Warn("no eligible payout recipient", "group_id", groupID, "cycle", cycle)
		return false, nil
	}

	amount, err := s.CalculateCyclePayout(ctx, group, cycle)
	if err != nil {
		return false, err
	}
	if !amount.IsPositive() {
		return false, fmt.Errorf("group %s cycle %d: %w", groupID, cycle, ErrNonPositivePayout)
	}

	now := time.Now()
	payout := &models.Payout{
		GroupID:       groupID,
		CycleNumber:   cycle,
		RecipientID:   recipient.UserID,
		Amount:        amount,
		Status:        models.PayoutProcessed,
		ScheduledDate: calculator.CycleDueDate(group.StartDate, group.Frequency, cycle),
		ProcessedDate: &now,
	}
	entry := &models.Transaction{
		GroupID:     groupID,
		UserID:      recipient.UserID,
		Type:        models.TransactionPayout,
		Amount:      amount,
		Reference:   models.PayoutReference(groupID, cycle),
		Description: fmt.Sprintf("Cycle %d payout to position %d", cycle, recipient.Position),
	}

	err = s.store.RecordPayout(ctx, payout, entry)
	if errors.Is(err, storage.ErrDuplicate) {
		// A concurrent payment confirmation won the race; the payout
		// exists, so this call is a successful no-op.
		slog.Info("payout recorded by concurrent writer", "group_id", groupID, "cycle", cycle)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metrics.PayoutsProcessed.Inc()
	slog.Info("cycle payout processed",
		"group_id", groupID,
		"cycle", cycle,
		"recipient_id", recipient.UserID,
		"position", recipient.Position,
		"amount", amount,
	)
	s.notifier.PayoutReceived(ctx, payout)
	return true, nil
}
