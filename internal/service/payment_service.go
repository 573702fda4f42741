package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tundeajayi/esusu/internal/metrics"
	"github.com/tundeajayi/esusu/internal/storage"
)

// PaymentService handles confirmed contribution payments and drives the
// downstream chain: cycle-completion check, payout, and either group
// completion or cycle advance plus next-cycle scheduling.
type PaymentService struct {
	store     storage.Store
	groups    *GroupService
	rotation  *RotationService
	scheduler *SchedulerService
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(store storage.Store, groups *GroupService, rotation *RotationService, scheduler *SchedulerService) *PaymentService {
	return &PaymentService{
		store:     store,
		groups:    groups,
		rotation:  rotation,
		scheduler: scheduler,
	}
}

// ProcessContributionPayment marks the contribution paid and runs the cycle
// chain. A contribution that is already paid returns false with no side
// effects. Every downstream step is idempotent, so retrying the whole chain
// after a partial failure converges: payouts are never double-counted and
// contributions never duplicated.
//
// An error return after the payment was recorded means a downstream step
// failed; the payment itself stays committed and the next confirmation or
// retry completes the chain.
func (s *PaymentService) ProcessContributionPayment(ctx context.Context, contributionID, paymentRef string) (bool, error) {
	contribution, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return false, err
	}

	changed, err := s.store.MarkContributionPaid(ctx, contributionID, time.Now(), paymentRef)
	if err != nil {
		return false, err
	}
	if !changed {
		slog.Info("contribution already paid", "contribution_id", contributionID)
		return false, nil
	}

	metrics.ContributionsPaid.Inc()
	slog.Info("contribution paid",
		"contribution_id", contributionID,
		"group_id", contribution.GroupID,
		"cycle", contribution.CycleNumber,
		"payment_ref", paymentRef,
	)

	if err := s.runCycleChain(ctx, contribution.GroupID, contribution.CycleNumber); err != nil {
		return true, fmt.Errorf("payment recorded but cycle chain failed: %w", err)
	}
	return true, nil
}

// runCycleChain settles a cycle once its last contribution is paid.
func (s *PaymentService) runCycleChain(ctx context.Context, groupID string, cycle int) error {
	allPaid, err := s.groups.AreAllContributionsPaid(ctx, groupID, cycle)
	if err != nil {
		return err
	}
	if !allPaid {
		return nil
	}

	paidOut, err := s.rotation.ProcessCyclePayout(ctx, groupID, cycle)
	if err != nil {
		return err
	}
	if !paidOut {
		// Another confirmation settled the cycle concurrently and owns
		// the rest of the chain.
		return nil
	}

	complete, err := s.groups.ShouldCompleteGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if complete {
		return s.groups.CompleteGroup(ctx, groupID)
	}

	if err := s.groups.AdvanceCycle(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.scheduler.CreateCycleContributions(ctx, groupID, cycle+1); err != nil {
		return err
	}
	return nil
}
