// Package calculator contains the pure money and date arithmetic of the
// rotation engine: late penalties, cycle payouts, and due-date schedules.
// Nothing in this package touches storage.
package calculator

import (
	"time"

	"github.com/shopspring/decimal"
)

// PenaltyConfig controls late-payment penalty assessment.
type PenaltyConfig struct {
	// GracePeriodDays is how many days past the due date are forgiven.
	GracePeriodDays int

	// LateFeePercentage is the flat percentage of the contribution amount
	// charged once the grace period is exceeded.
	LateFeePercentage int
}

// DefaultPenaltyConfig matches the standard group terms: 2 grace days, 5% fee.
var DefaultPenaltyConfig = PenaltyConfig{
	GracePeriodDays:   2,
	LateFeePercentage: 5,
}

// LatePenalty computes the penalty for a contribution that is daysLate days
// past due. Within the grace period the penalty is zero; beyond it the
// penalty is floor(amount * rate / 100), a flat percentage regardless of how
// far past the grace period the payment is.
func LatePenalty(amount decimal.Decimal, daysLate int, cfg PenaltyConfig) decimal.Decimal {
	if daysLate <= cfg.GracePeriodDays {
		return decimal.Zero
	}
	return amount.
		Mul(decimal.NewFromInt(int64(cfg.LateFeePercentage))).
		Div(decimal.NewFromInt(100)).
		Floor()
}

// DaysLate returns the number of whole days now is past due. Zero or negative
// when the due date has not passed.
func DaysLate(now, due time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due).Hours() / 24)
}
