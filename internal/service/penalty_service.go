package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tundeajayi/esusu/internal/calculator"
	"github.com/tundeajayi/esusu/internal/metrics"
	"github.com/tundeajayi/esusu/internal/models"
	"github.com/tundeajayi/esusu/internal/notify"
	"github.com/tundeajayi/esusu/internal/storage"
)

// PenaltyService assesses late-payment penalties on overdue contributions.
// It is driven by an external scheduler (cmd/penaltyscan); it never schedules
// itself.
type PenaltyService struct {
	store    storage.Store
	notifier *notify.Notifier
	cfg      calculator.PenaltyConfig
}

// NewPenaltyService creates a PenaltyService with the given penalty terms.
func NewPenaltyService(store storage.Store, notifier *notify.Notifier, cfg calculator.PenaltyConfig) *PenaltyService {
	return &PenaltyService{store: store, notifier: notifier, cfg: cfg}
}

// CheckAndApplyPenalties scans pending contributions of active groups that
// are past due and assesses the late fee on each, once. Re-running the scan
// is a no-op for contributions already penalized. A failure on one
// contribution is logged and the scan continues; the returned count is the
// number of penalties applied in this run.
func (s *PenaltyService) CheckAndApplyPenalties(ctx context.Context) (int, error) {
	now := time.Now()
	overdue, err := s.store.ListOverdueContributions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue contributions: %w", err)
	}

	applied := 0
	for _, contribution := range overdue {
		ok, err := s.applyPenalty(ctx, contribution, now)
		if err != nil {
			metrics.PenaltyScanErrors.Inc()
			slog.Error("failed to apply penalty",
				"contribution_id", contribution.ID,
				"group_id", contribution.GroupID,
				"error", err,
			)
			continue
		}
		if ok {
			applied++
		}
	}

	slog.Info("penalty scan finished", "overdue", len(overdue), "applied", applied)
	return applied, nil
}

// applyPenalty assesses one contribution's late fee. Returns false when the
// contribution is inside the grace period or already penalized.
func (s *PenaltyService) applyPenalty(ctx context.Context, c *models.Contribution, now time.Time) (bool, error) {
	daysLate := calculator.DaysLate(now, c.DueDate)
	amount := calculator.LatePenalty(c.Amount, daysLate, s.cfg)
	if !amount.IsPositive() {
		return false, nil
	}

	exists, err := s.store.HasLatePenalty(ctx, c.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	penalty := &models.Penalty{
		ID:             uuid.New().String(),
		GroupID:        c.GroupID,
		UserID:         c.UserID,
		ContributionID: c.ID,
		Amount:         amount,
		Reason:         models.PenaltyLatePayment,
		State:          models.PenaltyApplied,
	}
	entry := &models.Transaction{
		GroupID:     c.GroupID,
		UserID:      c.UserID,
		Type:        models.TransactionPenalty,
		Amount:      amount,
		Reference:   models.PenaltyReference(penalty.ID),
		Description: fmt.Sprintf("Late payment penalty, cycle %d, %d days late", c.CycleNumber, daysLate),
	}

	err = s.store.ApplyPenalty(ctx, penalty, entry)
	if errors.Is(err, storage.ErrDuplicate) {
		// A concurrent scan penalized this contribution first.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metrics.PenaltiesApplied.Inc()
	slog.Info("penalty applied",
		"contribution_id", c.ID,
		"user_id", c.UserID,
		"amount", amount,
		"days_late", daysLate,
	)
	s.notifier.PenaltyApplied(ctx, penalty)
	return true, nil
}
