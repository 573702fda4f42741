package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionPenalty TransactionType = "penalty"
	TransactionPayout  TransactionType = "payout"
)

// Transaction is a human-auditable ledger entry. Every penalty and payout
// produces exactly one, keyed by a deterministic reference string used for
// reconciliation and to prevent duplicate external reporting.
type Transaction struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// GroupID is the group the entry belongs to.
	GroupID string

	// UserID is the affected member.
	UserID string

	// Type is penalty or payout.
	Type TransactionType

	// Amount is the entry's value, always positive.
	Amount decimal.Decimal

	// Reference is the deterministic reconciliation key, unique across
	// the ledger.
	Reference string

	// Description is a human-readable summary.
	Description string

	// CreatedAt is the Unix timestamp when the entry was written.
	CreatedAt int64
}

// PenaltyReference builds the ledger reference for a penalty entry.
func PenaltyReference(penaltyID string) string {
	return fmt.Sprintf("PENALTY-%s", penaltyID)
}

// PayoutReference builds the ledger reference for a payout entry.
func PayoutReference(groupID string, cycle int) string {
	return fmt.Sprintf("PAYOUT-%s-CYCLE%d", groupID, cycle)
}
