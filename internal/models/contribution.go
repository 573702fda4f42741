package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionStatus is the payment state of a contribution.
//
// A contribution that passes its due date stays "pending" with a penalty
// attached; nothing transitions it to "late" or "missed" automatically.
type ContributionStatus string

const (
	ContributionPending ContributionStatus = "pending"
	ContributionPaid    ContributionStatus = "paid"
	ContributionLate    ContributionStatus = "late"
	ContributionMissed  ContributionStatus = "missed"
)

// Contribution is one member's payment obligation for one cycle.
// (GroupID, UserID, CycleNumber) is unique; creation is insert-if-absent.
type Contribution struct {
	// ID is the unique identifier for the contribution (UUID format).
	ID string

	// GroupID is the group this contribution belongs to.
	GroupID string

	// UserID is the member who owes this contribution.
	UserID string

	// CycleNumber is the 1-based cycle this contribution funds.
	CycleNumber int

	// Amount equals the group's contribution amount at creation time.
	Amount decimal.Decimal

	// Status is the payment state.
	Status ContributionStatus

	// DueDate is derived from the group start date and frequency.
	DueDate time.Time

	// PaidDate is set when the contribution is marked paid, nil before.
	PaidDate *time.Time

	// PaymentReference is the gateway reference recorded at payment time.
	PaymentReference string

	// Penalty is the accumulated late-payment charge, zero or positive.
	Penalty decimal.Decimal

	// ServiceFee is this contribution's share of the cycle's service fee.
	ServiceFee decimal.Decimal

	// CreatedAt is the Unix timestamp when the row was created.
	CreatedAt int64
}
