// Package service implements the rotation engine: group lifecycle, cycle
// contribution scheduling, payout rotation, penalty assessment, and the
// payment-confirmation chain that ties them together.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tundeajayi/esusu/internal/metrics"
	"github.com/tundeajayi/esusu/internal/models"
	"github.com/tundeajayi/esusu/internal/notify"
	"github.com/tundeajayi/esusu/internal/storage"
)

// ErrAlreadyMember is returned when a user joins a group twice.
var ErrAlreadyMember = errors.New("user is already a member of this group")

// GroupService manages group creation, membership, and the
// forming -> active -> completed lifecycle.
type GroupService struct {
	store     storage.Store
	notifier  *notify.Notifier
	scheduler *SchedulerService
}

// NewGroupService creates a GroupService. The scheduler is used to generate
// cycle contributions when a group activates or a member becomes eligible.
func NewGroupService(store storage.Store, notifier *notify.Notifier, scheduler *SchedulerService) *GroupService {
	return &GroupService{store: store, notifier: notifier, scheduler: scheduler}
}

// CreateGroup validates and persists a new group in the forming state.
// The service fee defaults to 10% when left at zero with no explicit opt-out.
func (s *GroupService) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ServiceFeePercentage == 0 {
		group.ServiceFeePercentage = models.DefaultServiceFeePercentage
	}
	if err := group.Validate(); err != nil {
		return err
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", group.Name, "error", err)
		return err
	}

	slog.Info("group created",
		"group_id", group.ID,
		"name", group.Name,
		"total_members", group.TotalMembers,
		"frequency", group.Frequency,
	)
	return nil
}

// JoinGroup adds a user to a forming group, assigning the next rotation
// position. Joining a full or non-forming group is rejected with a conflict
// error; joining twice returns ErrAlreadyMember. When the join fills the
// group, the group activates and cycle 1 contributions are generated for the
// members that have paid their deposit.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	member := &models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
	}

	activated, err := s.store.AddMember(ctx, member, time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	slog.Info("member joined group",
		"group_id", groupID,
		"user_id", userID,
		"position", member.Position,
	)

	if activated {
		slog.Info("group is full, activating", "group_id", groupID)
		if _, err := s.scheduler.CreateCycleContributions(ctx, groupID, 1); err != nil {
			// The group is active either way; the next eligibility
			// change or payment retriggers scheduling.
			slog.Error("failed to create first cycle contributions", "group_id", groupID, "error", err)
		}
	}
	return member, nil
}

// PaySecurityDeposit records a member's deposit, making them eligible for
// contributions and payouts. If the group is already active, the member's
// obligation for the current cycle is created immediately.
func (s *GroupService) PaySecurityDeposit(ctx context.Context, groupID, userID string) error {
	if err := s.store.MarkDepositPaid(ctx, groupID, userID); err != nil {
		return err
	}
	slog.Info("security deposit paid", "group_id", groupID, "user_id", userID)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Status == models.GroupActive {
		if _, err := s.scheduler.CreateCycleContributions(ctx, groupID, group.CurrentCycle+1); err != nil {
			slog.Error("failed to create contribution for newly eligible member",
				"group_id", groupID, "user_id", userID, "error", err)
		}
	}
	return nil
}

// AreAllContributionsPaid reports whether every contribution of the cycle is
// paid. An empty cycle is never complete.
func (s *GroupService) AreAllContributionsPaid(ctx context.Context, groupID string, cycle int) (bool, error) {
	total, paid, err := s.store.CycleContributionCounts(ctx, groupID, cycle)
	if err != nil {
		return false, err
	}
	return total > 0 && total == paid, nil
}

// AdvanceCycle increments the group's cycle counter.
func (s *GroupService) AdvanceCycle(ctx context.Context, groupID string) error {
	if err := s.store.AdvanceGroupCycle(ctx, groupID); err != nil {
		return err
	}
	slog.Info("group cycle advanced", "group_id", groupID)
	return nil
}

// ShouldCompleteGroup reports whether every active member has received a
// payout, which ends the rotation.
func (s *GroupService) ShouldCompleteGroup(ctx context.Context, groupID string) (bool, error) {
	members, err := s.store.CountActiveMembers(ctx, groupID)
	if err != nil {
		return false, err
	}
	payouts, err := s.store.CountPayouts(ctx, groupID)
	if err != nil {
		return false, err
	}
	return members > 0 && members == payouts, nil
}

// CompleteGroup marks the group completed and notifies every active member.
// The transition is terminal: no further cycles or payouts are created.
func (s *GroupService) CompleteGroup(ctx context.Context, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Status == models.GroupCompleted {
		return nil
	}

	if err := s.store.CompleteGroup(ctx, groupID, time.Now()); err != nil {
		return fmt.Errorf("failed to complete group %s: %w", groupID, err)
	}
	metrics.GroupsCompleted.Inc()
	slog.Info("group completed", "group_id", groupID, "name", group.Name)

	members, err := s.store.ListEligibleMembers(ctx, groupID)
	if err != nil {
		slog.Error("failed to list members for completion notice", "group_id", groupID, "error", err)
		return nil
	}
	userIDs := make([]string, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}
	s.notifier.GroupCompleted(ctx, groupID, group.Name, userIDs)
	return nil
}
