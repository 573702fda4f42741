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

// GetPayoutByCycle retrieves the payout recorded for a group cycle.
func (s *SQLiteStore) GetPayoutByCycle(ctx context.Context, groupID string, cycle int) (*models.Payout, error) {
	p, err := scanPayout(s.db.QueryRowContext(ctx, `
		SELECT id, group_id, cycle_number, recipient_id, amount, status, scheduled_date, processed_date
		FROM payouts WHERE group_id = ? AND cycle_number = ?`,
		groupID, cycle))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payout for group %s cycle %d: %w", groupID, cycle, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return p, nil
}

// HasPayoutForRecipient reports whether the member has already received a
// payout from the group.
func (s *SQLiteStore) HasPayoutForRecipient(ctx context.Context, groupID, userID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payouts WHERE group_id = ? AND recipient_id = ?",
		groupID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check payout existence: %w", err)
	}
	return count > 0, nil
}

// CountPayouts returns the number of payouts recorded for the group.
func (s *SQLiteStore) CountPayouts(ctx context.Context, groupID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payouts WHERE group_id = ?", groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payouts: %w", err)
	}
	return count, nil
}

// RecordPayout inserts the payout and its ledger transaction in one
// transaction. A concurrent writer that already recorded the cycle's payout
// makes this return storage.ErrDuplicate with nothing written.
func (s *SQLiteStore) RecordPayout(ctx context.Context, payout *models.Payout, entry *models.Transaction) error {
	if payout.ID == "" {
		payout.ID = uuid.New().String()
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var processed any
		if payout.ProcessedDate != nil {
			processed = payout.ProcessedDate.Unix()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payouts (id, group_id, cycle_number, recipient_id, amount, status, scheduled_date, processed_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			payout.ID, payout.GroupID, payout.CycleNumber, payout.RecipientID,
			payout.Amount.String(), string(payout.Status), payout.ScheduledDate.Unix(), processed,
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
		return nil
	})
}

func scanPayout(row scanner) (*models.Payout, error) {
	var (
		p         models.Payout
		amount    string
		status    string
		scheduled int64
		processed sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.GroupID, &p.CycleNumber, &p.RecipientID, &amount, &status, &scheduled, &processed)
	if err != nil {
		return nil, err
	}

	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid payout amount %q: %w", amount, err)
	}
	p.Status = models.PayoutStatus(status)
	p.ScheduledDate = time.Unix(scheduled, 0).UTC()
	p.ProcessedDate = nullableTime(processed)
	return &p, nil
}
