package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tundeajayi/esusu/internal/models"
	"github.com/tundeajayi/esusu/internal/storage"
)

// AddMember joins a user to a forming group inside one transaction: the group
// state and capacity are checked, the next rotation position is computed, and
// the member count is updated together, so two concurrent joiners cannot both
// claim the last slot or the same position.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.GroupMember, now time.Time) (bool, error) {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.JoinedAt == 0 {
		member.JoinedAt = now.Unix()
	}
	member.Status = models.MemberActive

	var activated bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var status string
		var current, total int
		err := tx.QueryRowContext(ctx,
			"SELECT status, current_members, total_members FROM groups WHERE id = ?",
			member.GroupID,
		).Scan(&status, &current, &total)
		if err == sql.ErrNoRows {
			return fmt.Errorf("group %s: %w", member.GroupID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read group: %w", err)
		}

		// Capacity first: a filled group has already activated, and
		// "group full" is the more precise conflict for the caller.
		if current >= total {
			return storage.ErrGroupFull
		}
		if models.GroupStatus(status) != models.GroupForming {
			return storage.ErrGroupNotJoinable
		}

		// Next free rotation slot; the UNIQUE (group_id, position)
		// constraint catches a concurrent joiner computing the same
		// value.
		err = tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), 0) + 1 FROM group_members WHERE group_id = ?",
			member.GroupID,
		).Scan(&member.Position)
		if err != nil {
			return fmt.Errorf("failed to compute position: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO group_members (id, group_id, user_id, position, has_paid_deposit, status, joined_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			member.ID, member.GroupID, member.UserID, member.Position,
			boolToInt(member.HasPaidSecurityDeposit), string(member.Status), member.JoinedAt,
		)
		if err != nil {
			return mapConstraintErr(err)
		}

		if current+1 == total {
			_, err = tx.ExecContext(ctx,
				"UPDATE groups SET current_members = ?, status = ?, start_date = ? WHERE id = ?",
				current+1, string(models.GroupActive), now.Unix(), member.GroupID)
			activated = true
		} else {
			_, err = tx.ExecContext(ctx,
				"UPDATE groups SET current_members = ? WHERE id = ?",
				current+1, member.GroupID)
		}
		if err != nil {
			return fmt.Errorf("failed to update group membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return activated, nil
}

// MarkDepositPaid records that a member has paid their security deposit.
func (s *SQLiteStore) MarkDepositPaid(ctx context.Context, groupID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE group_members SET has_paid_deposit = 1 WHERE group_id = ? AND user_id = ?",
		groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark deposit paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s in group %s: %w", userID, groupID, storage.ErrNotFound)
	}
	return nil
}

// ListEligibleMembers returns active, deposit-paid members ordered by
// ascending rotation position.
func (s *SQLiteStore) ListEligibleMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, user_id, position, has_paid_deposit, status, joined_at
		FROM group_members
		WHERE group_id = ? AND status = ? AND has_paid_deposit = 1
		ORDER BY position ASC`,
		groupID, string(models.MemberActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		var (
			m       models.GroupMember
			deposit int
			status  string
		)
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Position, &deposit, &status, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.HasPaidSecurityDeposit = deposit != 0
		m.Status = models.MemberStatus(status)
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// CountActiveMembers returns the number of active members in the group.
func (s *SQLiteStore) CountActiveMembers(ctx context.Context, groupID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ? AND status = ?",
		groupID, string(models.MemberActive)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
