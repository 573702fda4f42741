package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the contribution schedule of a group.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// GroupStatus is the lifecycle state of a group.
//
// Valid transitions: forming -> active -> completed,
// with cancelled reachable from forming and active.
type GroupStatus string

const (
	GroupForming   GroupStatus = "forming"
	GroupActive    GroupStatus = "active"
	GroupCompleted GroupStatus = "completed"
	GroupCancelled GroupStatus = "cancelled"
)

// Group membership bounds.
const (
	MinGroupMembers = 2
	MaxGroupMembers = 50
)

// ErrInvalidGroup wraps all group validation failures.
var ErrInvalidGroup = errors.New("invalid group")

// Group represents a rotating savings group. Every member contributes
// ContributionAmount once per cycle, and each cycle one member receives the
// pool minus the service fee. TotalCycles always equals TotalMembers, so the
// group ends once every member has received exactly one payout.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group.
	Name string

	// ContributionAmount is the fixed amount each member pays per cycle.
	ContributionAmount decimal.Decimal

	// Frequency controls the due-date spacing between cycles.
	Frequency Frequency

	// TotalMembers is the member count the group needs to start (2..50).
	TotalMembers int

	// CurrentMembers is the number of members with status "active".
	CurrentMembers int

	// SecurityDepositPercentage is the upfront deposit required of each
	// member, as a percentage of ContributionAmount (0..100).
	SecurityDepositPercentage int

	// ServiceFeePercentage is deducted from each cycle's pool before
	// payout (0..100, default 10).
	ServiceFeePercentage int

	// Status is the lifecycle state.
	Status GroupStatus

	// StartDate is when the group became active. Due dates for every cycle
	// are derived from it. Zero until the group activates.
	StartDate time.Time

	// CurrentCycle is a 0-based counter; incremented after each payout.
	CurrentCycle int

	// TotalCycles equals TotalMembers.
	TotalCycles int

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// DefaultServiceFeePercentage is applied when a group is created without an
// explicit fee.
const DefaultServiceFeePercentage = 10

// Validate checks the group's fields against the allowed ranges before any
// write. All failures wrap ErrInvalidGroup.
func (g *Group) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidGroup)
	}
	if !g.ContributionAmount.IsPositive() {
		return fmt.Errorf("%w: contribution amount must be positive, got %s", ErrInvalidGroup, g.ContributionAmount)
	}
	switch g.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidGroup, g.Frequency)
	}
	if g.TotalMembers < MinGroupMembers || g.TotalMembers > MaxGroupMembers {
		return fmt.Errorf("%w: total members must be between %d and %d, got %d",
			ErrInvalidGroup, MinGroupMembers, MaxGroupMembers, g.TotalMembers)
	}
	if g.SecurityDepositPercentage < 0 || g.SecurityDepositPercentage > 100 {
		return fmt.Errorf("%w: security deposit percentage must be 0-100, got %d",
			ErrInvalidGroup, g.SecurityDepositPercentage)
	}
	if g.ServiceFeePercentage < 0 || g.ServiceFeePercentage > 100 {
		return fmt.Errorf("%w: service fee percentage must be 0-100, got %d",
			ErrInvalidGroup, g.ServiceFeePercentage)
	}
	return nil
}
