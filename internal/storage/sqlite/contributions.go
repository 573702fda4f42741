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

const contributionColumns = `id, group_id, user_id, cycle_number, amount, status,
	due_date, paid_date, payment_reference, penalty, service_fee, created_at`

// CreateContribution inserts a contribution obligation. The losing side of a
// (group, user, cycle) race gets storage.ErrDuplicate.
func (s *SQLiteStore) CreateContribution(ctx context.Context, c *models.Contribution) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	if c.Status == "" {
		c.Status = models.ContributionPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contributions (id, group_id, user_id, cycle_number, amount, status,
			due_date, payment_reference, penalty, service_fee, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, '', ?, ?, ?)`,
		c.ID, c.GroupID, c.UserID, c.CycleNumber, c.Amount.String(), string(c.Status),
		c.DueDate.Unix(), c.Penalty.String(), c.ServiceFee.String(), c.CreatedAt,
	)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped == storage.ErrDuplicate {
			return mapped
		}
		return fmt.Errorf("failed to insert contribution: %w", err)
	}
	return nil
}

// GetContribution retrieves a contribution by ID.
func (s *SQLiteStore) GetContribution(ctx context.Context, contributionID string) (*models.Contribution, error) {
	c, err := scanContribution(s.db.QueryRowContext(ctx,
		"SELECT "+contributionColumns+" FROM contributions WHERE id = ?", contributionID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contribution %s: %w", contributionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}
	return c, nil
}

// MarkContributionPaid flips the contribution to paid. The status guard in
// the UPDATE makes a second call a no-op, reported via changed=false.
func (s *SQLiteStore) MarkContributionPaid(ctx context.Context, contributionID string, paidAt time.Time, paymentRef string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE contributions
		SET status = ?, paid_date = ?, payment_reference = ?
		WHERE id = ? AND status != ?`,
		string(models.ContributionPaid), paidAt.Unix(), paymentRef,
		contributionID, string(models.ContributionPaid),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark contribution paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// ListCycleContributions returns all contributions for one group cycle.
func (s *SQLiteStore) ListCycleContributions(ctx context.Context, groupID string, cycle int) ([]*models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+contributionColumns+" FROM contributions WHERE group_id = ? AND cycle_number = ? ORDER BY created_at ASC, id ASC",
		groupID, cycle)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle contributions: %w", err)
	}
	defer rows.Close()

	var out []*models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return out, nil
}

// CycleContributionCounts returns total and paid contribution counts for one
// group cycle.
func (s *SQLiteStore) CycleContributionCounts(ctx context.Context, groupID string, cycle int) (int, int, error) {
	var total, paid int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(CASE WHEN status = ? THEN 1 END)
		FROM contributions WHERE group_id = ? AND cycle_number = ?`,
		string(models.ContributionPaid), groupID, cycle).Scan(&total, &paid)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count contributions: %w", err)
	}
	return total, paid, nil
}

// PaidContributionAmounts returns the amounts of the cycle's paid contributions.
func (s *SQLiteStore) PaidContributionAmounts(ctx context.Context, groupID string, cycle int) ([]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT amount FROM contributions
		WHERE group_id = ? AND cycle_number = ? AND status = ?`,
		groupID, cycle, string(models.ContributionPaid))
	if err != nil {
		return nil, fmt.Errorf("failed to query paid amounts: %w", err)
	}
	defer rows.Close()

	var amounts []decimal.Decimal
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		amounts = append(amounts, amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate amounts: %w", err)
	}
	return amounts, nil
}

// ListOverdueContributions returns pending contributions of active groups
// whose due date is before now.
func (s *SQLiteStore) ListOverdueContributions(ctx context.Context, now time.Time) ([]*models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.group_id, c.user_id, c.cycle_number, c.amount, c.status,
			c.due_date, c.paid_date, c.payment_reference, c.penalty, c.service_fee, c.created_at
		FROM contributions c
		JOIN groups g ON g.id = c.group_id
		WHERE c.status = ? AND c.due_date < ? AND g.status = ?
		ORDER BY c.due_date ASC`,
		string(models.ContributionPending), now.Unix(), string(models.GroupActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue contributions: %w", err)
	}
	defer rows.Close()

	var out []*models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return out, nil
}

func scanContribution(row scanner) (*models.Contribution, error) {
	var (
		c        models.Contribution
		amount   string
		status   string
		dueDate  int64
		paidDate sql.NullInt64
		penalty  string
		fee      string
	)
	err := row.Scan(&c.ID, &c.GroupID, &c.UserID, &c.CycleNumber, &amount, &status,
		&dueDate, &paidDate, &c.PaymentReference, &penalty, &fee, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if c.Penalty, err = decimal.NewFromString(penalty); err != nil {
		return nil, fmt.Errorf("invalid penalty %q: %w", penalty, err)
	}
	if c.ServiceFee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("invalid service fee %q: %w", fee, err)
	}
	c.Status = models.ContributionStatus(status)
	c.DueDate = time.Unix(dueDate, 0).UTC()
	c.PaidDate = nullableTime(paidDate)
	return &c, nil
}
