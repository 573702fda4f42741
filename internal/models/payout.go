package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus is the processing state of a payout.
type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutProcessed PayoutStatus = "processed"
	PayoutFailed    PayoutStatus = "failed"
)

// Payout is the pooled amount paid to one member for one completed cycle.
// (GroupID, CycleNumber) is unique, and so is (GroupID, RecipientID): no
// member is ever paid twice across a group's lifetime.
type Payout struct {
	// ID is the unique identifier for the payout (UUID format).
	ID string

	// GroupID is the group this payout belongs to.
	GroupID string

	// CycleNumber is the 1-based cycle this payout settles.
	CycleNumber int

	// RecipientID is the member receiving the pool.
	RecipientID string

	// Amount is the pooled contributions minus the service fee, floored.
	// Always positive.
	Amount decimal.Decimal

	// Status is the processing state.
	Status PayoutStatus

	// ScheduledDate is when the payout became due (the cycle's due date).
	ScheduledDate time.Time

	// ProcessedDate is set once the payout is recorded, nil before.
	ProcessedDate *time.Time
}
