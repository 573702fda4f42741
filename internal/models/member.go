package models

// MemberStatus is the lifecycle state of a member within a group.
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberDefaulted MemberStatus = "defaulted"
	MemberRemoved   MemberStatus = "removed"
)

// GroupMember represents one user's slot in a group.
// (GroupID, UserID) is unique, and exactly one member of a group holds a
// given Position.
type GroupMember struct {
	// ID is the unique identifier for the membership row (UUID format).
	ID string

	// GroupID is the group this membership belongs to.
	GroupID string

	// UserID identifies the member.
	UserID string

	// Position is the rotation slot, contiguous 1..TotalMembers, assigned
	// in join order. It fixes the payout order for the group's lifetime.
	Position int

	// HasPaidSecurityDeposit gates eligibility: only deposit-paid members
	// receive contribution obligations and payouts.
	HasPaidSecurityDeposit bool

	// Status is the member's lifecycle state.
	Status MemberStatus

	// JoinedAt is the Unix timestamp when the member joined.
	JoinedAt int64
}
