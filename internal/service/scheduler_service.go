package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tundeajayi/esusu/internal/calculator"
	"github.com/tundeajayi/esusu/internal/metrics"
	"github.com/tundeajayi/esusu/internal/models"
	"github.com/tundeajayi/esusu/internal/notify"
	"github.com/tundeajayi/esusu/internal/storage"
)

// SchedulerService generates per-cycle contribution obligations.
type SchedulerService struct {
	store    storage.Store
	notifier *notify.Notifier
}

// NewSchedulerService creates a SchedulerService.
func NewSchedulerService(store storage.Store, notifier *notify.Notifier) *SchedulerService {
	return &SchedulerService{store: store, notifier: notifier}
}

// CreateCycleContributions inserts one pending contribution per active,
// deposit-paid member for the given 1-based cycle, with the due date derived
// from the group's start date and frequency. Creation is idempotent: members
// that already have a (group, user, cycle) row are skipped without a second
// notification. Returns false, without error, when the group is missing or
// not active or no member is eligible.
func (s *SchedulerService) CreateCycleContributions(ctx context.Context, groupID string, cycle int) (bool, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("cannot schedule contributions for missing group", "group_id", groupID)
			return false, nil
		}
		return false, err
	}
	if group.Status != models.GroupActive {
		slog.Warn("cannot schedule contributions for inactive group",
			"group_id", groupID, "status", group.Status)
		return false, nil
	}

	members, err := s.store.ListEligibleMembers(ctx, groupID)
	if err != nil {
		return false, err
	}
	if len(members) == 0 {
		slog.Warn("no eligible members to schedule", "group_id", groupID, "cycle", cycle)
		return false, nil
	}

	dueDate := calculator.CycleDueDate(group.StartDate, group.Frequency, cycle)
	serviceFee := group.ContributionAmount.
		Mul(decimal.NewFromInt(int64(group.ServiceFeePercentage))).
		Div(decimal.NewFromInt(100))

	created := 0
	for _, member := range members {
		contribution := &models.Contribution{
			GroupID:     groupID,
			UserID:      member.UserID,
			CycleNumber: cycle,
			Amount:      group.ContributionAmount,
			Status:      models.ContributionPending,
			DueDate:     dueDate,
			Penalty:     decimal.Zero,
			ServiceFee:  serviceFee,
		}

		err := s.store.CreateContribution(ctx, contribution)
		if errors.Is(err, storage.ErrDuplicate) {
			continue
		}
		if err != nil {
			return created > 0, err
		}

		created++
		metrics.ContributionsCreated.Inc()
		s.notifier.ContributionDue(ctx, contribution)
	}

	slog.Info("cycle contributions scheduled",
		"group_id", groupID,
		"cycle", cycle,
		"due_date", dueDate,
		"created", created,
		"eligible", len(members),
	)
	return true, nil
}
