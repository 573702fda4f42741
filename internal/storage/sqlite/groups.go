package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tundeajayi/esusu/internal/models"
	"github.com/tundeajayi/esusu/internal/storage"
)

// CreateGroup persists a new group in the forming state.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	group.Status = models.GroupForming
	group.TotalCycles = group.TotalMembers

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO groups (id, name, contribution_amount, frequency, total_members,
			current_members, security_deposit_pct, service_fee_pct, status,
			current_cycle, total_cycles, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, 0, ?, ?)`,
		group.ID, group.Name, group.ContributionAmount.String(), string(group.Frequency),
		group.TotalMembers, group.SecurityDepositPercentage, group.ServiceFeePercentage,
		string(group.Status), group.TotalCycles, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := scanGroup(s.db.QueryRowContext(ctx, `
		SELECT id, name, contribution_amount, frequency, total_members, current_members,
			security_deposit_pct, service_fee_pct, status, start_date, current_cycle,
			total_cycles, created_at
		FROM groups WHERE id = ?`, groupID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// AdvanceGroupCycle increments the group's cycle counter by one.
func (s *SQLiteStore) AdvanceGroupCycle(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET current_cycle = current_cycle + 1 WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to advance cycle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

// CompleteGroup marks the group completed and records the end time.
func (s *SQLiteStore) CompleteGroup(ctx context.Context, groupID string, endedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET status = ?, ended_at = ? WHERE id = ?",
		string(models.GroupCompleted), endedAt.Unix(), groupID)
	if err != nil {
		return fmt.Errorf("failed to complete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(row scanner) (*models.Group, error) {
	var (
		group     models.Group
		amount    string
		frequency string
		status    string
		startDate sql.NullInt64
	)
	err := row.Scan(&group.ID, &group.Name, &amount, &frequency, &group.TotalMembers,
		&group.CurrentMembers, &group.SecurityDepositPercentage, &group.ServiceFeePercentage,
		&status, &startDate, &group.CurrentCycle, &group.TotalCycles, &group.CreatedAt)
	if err != nil {
		return nil, err
	}

	group.ContributionAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid contribution amount %q: %w", amount, err)
	}
	group.Frequency = models.Frequency(frequency)
	group.Status = models.GroupStatus(status)
	if startDate.Valid {
		group.StartDate = time.Unix(startDate.Int64, 0).UTC()
	}
	return &group, nil
}
