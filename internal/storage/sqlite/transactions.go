package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tundeajayi/esusu/internal/models"
)

// ListTransactions returns the group's ledger entries ordered by creation
// time. Entries are only ever written inside RecordPayout and ApplyPenalty.
func (s *SQLiteStore) ListTransactions(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, user_id, type, amount, reference, description, created_at
		FROM transactions WHERE group_id = ? ORDER BY created_at ASC, id ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		var (
			t      models.Transaction
			kind   string
			amount string
		)
		if err := rows.Scan(&t.ID, &t.GroupID, &t.UserID, &kind, &amount, &t.Reference, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid transaction amount %q: %w", amount, err)
		}
		t.Type = models.TransactionType(kind)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return out, nil
}
