package models

import "github.com/shopspring/decimal"

// PenaltyReason classifies why a penalty was assessed.
type PenaltyReason string

const (
	PenaltyLatePayment   PenaltyReason = "late_payment"
	PenaltyMissedPayment PenaltyReason = "missed_payment"
	PenaltyDefault       PenaltyReason = "default"
)

// PenaltyState is the application state of a penalty.
type PenaltyState string

const (
	PenaltyApplied PenaltyState = "applied"
	PenaltyWaived  PenaltyState = "waived"
)

// Penalty is a charge assessed against a member, usually attached to an
// overdue contribution. At most one late_payment penalty exists per
// contribution.
type Penalty struct {
	// ID is the unique identifier for the penalty (UUID format).
	ID string

	// GroupID is the group the penalized contribution belongs to.
	GroupID string

	// UserID is the penalized member.
	UserID string

	// ContributionID links the penalty to a contribution. Empty for
	// penalties not tied to a specific contribution (e.g. default).
	ContributionID string

	// Amount is the assessed charge, always positive.
	Amount decimal.Decimal

	// Reason classifies the penalty.
	Reason PenaltyReason

	// State is applied or waived.
	State PenaltyState

	// CreatedAt is the Unix timestamp when the penalty was assessed.
	CreatedAt int64
}
