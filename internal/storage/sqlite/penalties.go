package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tundeajayi/esusu/internal/models"
)

// HasLatePenalty reports whether a late_payment penalty already exists for
// the contribution.
func (s *SQLiteStore) HasLatePenalty(ctx context.Context, contributionID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM penalties WHERE contribution_id = ? AND reason = ?",
		contributionID, string(models.PenaltyLatePayment)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check penalty existence: %w", err)
	}
	return count > 0, nil
}

// ApplyPenalty writes the penalty row, its ledger transaction, and the
// contribution's accumulated penalty in one transaction. A second scan racing
// on the same contribution loses the partial unique index on
// (contribution_id, reason='late_payment') and gets storage.ErrDuplicate.
func (s *SQLiteStore) ApplyPenalty(ctx context.Context, penalty *models.Penalty, entry *models.Transaction) error {
	if penalty.ID == "" {
		penalty.ID = uuid.New().String()
	}
	if penalty.CreatedAt == 0 {
		penalty.CreatedAt = time.Now().Unix()
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = penalty.CreatedAt
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var contributionID any
		if penalty.ContributionID != "" {
			contributionID = penalty.ContributionID
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO penalties (id, group_id, user_id, contribution_id, amount, reason, state, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			penalty.ID, penalty.GroupID, penalty.UserID, contributionID,
			penalty.Amount.String(), string(penalty.Reason), string(penalty.State), penalty.CreatedAt,
		)
		if err != nil {
			return mapConstraintErr(err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (id, group_id, user_id, type, amount, reference, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, entry.GroupID, entry.UserID, string(entry.Type),
			entry.Amount.String(), entry.Reference, entry.Description, entry.CreatedAt,
		)
		if err != nil {
			return mapConstraintErr(err)
		}

		if penalty.ContributionID != "" {
			// Keep the contribution's penalty column in sync with
			// the assessed charges.
			var raw string
			err = tx.QueryRowContext(ctx,
				"SELECT penalty FROM contributions WHERE id = ?",
				penalty.ContributionID).Scan(&raw)
			if err != nil {
				return fmt.Errorf("failed to read contribution penalty: %w", err)
			}
			current, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("invalid penalty %q: %w", raw, err)
			}
			_, err = tx.ExecContext(ctx,
				"UPDATE contributions SET penalty = ? WHERE id = ?",
				current.Add(penalty.Amount).String(), penalty.ContributionID)
			if err != nil {
				return fmt.Errorf("failed to update contribution penalty: %w", err)
			}
		}
		return nil
	})
}
