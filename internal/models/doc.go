// Package models defines the core domain records for the Esusu rotation engine.
//
// # Entities
//
//   - Group: a rotating savings group with a fixed member count, contribution
//     amount and schedule
//   - GroupMember: a user's slot in a group, including their rotation position
//   - Contribution: one member's payment obligation for one cycle
//   - Payout: the pooled amount paid to one member for one completed cycle
//   - Penalty: a late-payment charge attached to a contribution
//   - Transaction: a ledger entry created for every penalty and payout
//   - Notification: a message record addressed to a user; delivery is handled
//     by an external collaborator
//
// # Design Principles
//
// 1. **Typed rows**: every store read converts into one of these structs;
// raw rows never reach business logic
// 2. **Money as decimals**: amounts use shopspring/decimal, never floats
// 3. **Statuses over deletes**: records are never physically deleted; status
// fields track lifecycle end
// 4. **Avoid circular references**: relationships use ID strings, not pointers
package models
