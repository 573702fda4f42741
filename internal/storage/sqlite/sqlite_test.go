package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tundeajayi/esusu/internal/models"
	"github.com/tundeajayi/esusu/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "esusu-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestGroup(members int) *models.Group {
	return &models.Group{
		Name:                 "Lagos Traders",
		ContributionAmount:   decimal.NewFromInt(1000),
		Frequency:            models.FrequencyWeekly,
		TotalMembers:         members,
		ServiceFeePercentage: 10,
	}
}

// fillGroup joins n members and marks their deposits paid.
func fillGroup(t *testing.T, store *SQLiteStore, groupID string, n int) []string {
	t.Helper()
	ctx := context.Background()
	userIDs := make([]string, n)
	for i := 0; i < n; i++ {
		userIDs[i] = string(rune('a'+i)) + "-user"
		member := &models.GroupMember{GroupID: groupID, UserID: userIDs[i]}
		if _, err := store.AddMember(ctx, member, time.Now()); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if err := store.MarkDepositPaid(ctx, groupID, userIDs[i]); err != nil {
			t.Fatalf("MarkDepositPaid failed: %v", err)
		}
	}
	return userIDs
}

func TestGroupLifecycleStorage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and forces totals", func(t *testing.T) {
		group := newTestGroup(3)
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.TotalCycles != 3 {
			t.Errorf("TotalCycles = %d, want 3", group.TotalCycles)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Status != models.GroupForming {
			t.Errorf("Status = %s, want forming", got.Status)
		}
		if !got.ContributionAmount.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("ContributionAmount = %s, want 1000", got.ContributionAmount)
		}
	})

	t.Run("GetGroup returns ErrNotFound for unknown id", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns contiguous positions in join order", func(t *testing.T) {
		store := newTestStore(t)
		group := newTestGroup(3)
		store.CreateGroup(ctx, group)

		for i, user := range []string{"ade", "bisi", "chidi"} {
			member := &models.GroupMember{GroupID: group.ID, UserID: user}
			activated, err := store.AddMember(ctx, member, time.Now())
			if err != nil {
				t.Fatalf("AddMember(%s) failed: %v", user, err)
			}
			if member.Position != i+1 {
				t.Errorf("%s position = %d, want %d", user, member.Position, i+1)
			}
			if wantActivated := i == 2; activated != wantActivated {
				t.Errorf("%s activated = %v, want %v", user, activated, wantActivated)
			}
		}

		got, _ := store.GetGroup(ctx, group.ID)
		if got.Status != models.GroupActive {
			t.Errorf("group status = %s, want active", got.Status)
		}
		if got.CurrentMembers != 3 {
			t.Errorf("current members = %d, want 3", got.CurrentMembers)
		}
		if got.StartDate.IsZero() {
			t.Error("expected start date to be set on activation")
		}
	})

	t.Run("rejects duplicate membership", func(t *testing.T) {
		store := newTestStore(t)
		group := newTestGroup(3)
		store.CreateGroup(ctx, group)

		if _, err := store.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: "ade"}, time.Now()); err != nil {
			t.Fatalf("first join failed: %v", err)
		}
		_, err := store.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: "ade"}, time.Now())
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}

		got, _ := store.GetGroup(ctx, group.ID)
		if got.CurrentMembers != 1 {
			t.Errorf("current members = %d after failed join, want 1", got.CurrentMembers)
		}
	})

	t.Run("rejects joining a full group", func(t *testing.T) {
		store := newTestStore(t)
		group := newTestGroup(2)
		store.CreateGroup(ctx, group)
		fillGroup(t, store, group.ID, 2)

		_, err := store.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: "late-user"}, time.Now())
		if !errors.Is(err, storage.ErrGroupFull) {
			t.Errorf("expected ErrGroupFull, got %v", err)
		}

		got, _ := store.GetGroup(ctx, group.ID)
		if got.CurrentMembers != 2 {
			t.Errorf("current members = %d after rejected join, want 2", got.CurrentMembers)
		}
	})

	t.Run("rejects joining a cancelled group", func(t *testing.T) {
		store := newTestStore(t)
		group := newTestGroup(3)
		store.CreateGroup(ctx, group)
		if _, err := store.db.Exec("UPDATE groups SET status = 'cancelled' WHERE id = ?", group.ID); err != nil {
			t.Fatalf("failed to cancel group: %v", err)
		}

		_, err := store.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: "ade"}, time.Now())
		if !errors.Is(err, storage.ErrGroupNotJoinable) {
			t.Errorf("expected ErrGroupNotJoinable, got %v", err)
		}
	})

	t.Run("rejects joining a missing group", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.AddMember(ctx, &models.GroupMember{GroupID: "nope", UserID: "ade"}, time.Now())
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestEligibleMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := newTestGroup(3)
	store.CreateGroup(ctx, group)

	for _, user := range []string{"ade", "bisi", "chidi"} {
		store.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: user}, time.Now())
	}
	// Only two of three pay their deposit.
	store.MarkDepositPaid(ctx, group.ID, "chidi")
	store.MarkDepositPaid(ctx, group.ID, "ade")

	members, err := store.ListEligibleMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListEligibleMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("eligible members = %d, want 2", len(members))
	}
	// Ordered by position, not by deposit payment order.
	if members[0].UserID != "ade" || members[1].UserID != "chidi" {
		t.Errorf("order = %s, %s; want ade, chidi", members[0].UserID, members[1].UserID)
	}

	count, err := store.CountActiveMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("CountActiveMembers failed: %v", err)
	}
	if count != 3 {
		t.Errorf("active members = %d, want 3", count)
	}
}

func TestContributions(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*SQLiteStore, *models.Group, []string) {
		store := newTestStore(t)
		group := newTestGroup(2)
		store.CreateGroup(ctx, group)
		users := fillGroup(t, store, group.ID, 2)
		return store, group, users
	}

	newContribution := func(group *models.Group, user string, cycle int) *models.Contribution {
		return &models.Contribution{
			GroupID:     group.ID,
			UserID:      user,
			CycleNumber: cycle,
			Amount:      group.ContributionAmount,
			DueDate:     time.Now().Add(24 * time.Hour),
			Penalty:     decimal.Zero,
			ServiceFee:  decimal.NewFromInt(100),
		}
	}

	t.Run("duplicate insert returns ErrDuplicate", func(t *testing.T) {
		store, group, users := setup(t)

		if err := store.CreateContribution(ctx, newContribution(group, users[0], 1)); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}
		err := store.CreateContribution(ctx, newContribution(group, users[0], 1))
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("MarkContributionPaid is idempotent", func(t *testing.T) {
		store, group, users := setup(t)
		c := newContribution(group, users[0], 1)
		store.CreateContribution(ctx, c)

		changed, err := store.MarkContributionPaid(ctx, c.ID, time.Now(), "PAY-REF-1")
		if err != nil {
			t.Fatalf("MarkContributionPaid failed: %v", err)
		}
		if !changed {
			t.Error("expected first call to report a change")
		}

		changed, err = store.MarkContributionPaid(ctx, c.ID, time.Now(), "PAY-REF-2")
		if err != nil {
			t.Fatalf("second MarkContributionPaid failed: %v", err)
		}
		if changed {
			t.Error("expected second call to be a no-op")
		}

		got, err := store.GetContribution(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetContribution failed: %v", err)
		}
		if got.Status != models.ContributionPaid {
			t.Errorf("status = %s, want paid", got.Status)
		}
		if got.PaidDate == nil {
			t.Error("expected paid date to be set")
		}
		if got.PaymentReference != "PAY-REF-1" {
			t.Errorf("payment reference = %q, want the first reference kept", got.PaymentReference)
		}
	})

	t.Run("cycle counts and paid amounts", func(t *testing.T) {
		store, group, users := setup(t)
		c1 := newContribution(group, users[0], 1)
		c2 := newContribution(group, users[1], 1)
		store.CreateContribution(ctx, c1)
		store.CreateContribution(ctx, c2)

		total, paid, err := store.CycleContributionCounts(ctx, group.ID, 1)
		if err != nil {
			t.Fatalf("CycleContributionCounts failed: %v", err)
		}
		if total != 2 || paid != 0 {
			t.Errorf("counts = (%d, %d), want (2, 0)", total, paid)
		}

		store.MarkContributionPaid(ctx, c1.ID, time.Now(), "ref")

		total, paid, _ = store.CycleContributionCounts(ctx, group.ID, 1)
		if total != 2 || paid != 1 {
			t.Errorf("counts = (%d, %d), want (2, 1)", total, paid)
		}

		amounts, err := store.PaidContributionAmounts(ctx, group.ID, 1)
		if err != nil {
			t.Fatalf("PaidContributionAmounts failed: %v", err)
		}
		if len(amounts) != 1 || !amounts[0].Equal(decimal.NewFromInt(1000)) {
			t.Errorf("paid amounts = %v, want [1000]", amounts)
		}
	})

	t.Run("overdue scan picks only pending past-due rows of active groups", func(t *testing.T) {
		store, group, users := setup(t)
		now := time.Now()

		overdue := newContribution(group, users[0], 1)
		overdue.DueDate = now.AddDate(0, 0, -5)
		store.CreateContribution(ctx, overdue)

		future := newContribution(group, users[1], 1)
		future.DueDate = now.AddDate(0, 0, 3)
		store.CreateContribution(ctx, future)

		paidLate := newContribution(group, users[0], 2)
		paidLate.DueDate = now.AddDate(0, 0, -5)
		store.CreateContribution(ctx, paidLate)
		store.MarkContributionPaid(ctx, paidLate.ID, now, "ref")

		got, err := store.ListOverdueContributions(ctx, now)
		if err != nil {
			t.Fatalf("ListOverdueContributions failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != overdue.ID {
			t.Fatalf("overdue = %d rows, want exactly the overdue pending one", len(got))
		}

		// Completing the group removes it from the scan.
		store.CompleteGroup(ctx, group.ID, now)
		got, _ = store.ListOverdueContributions(ctx, now)
		if len(got) != 0 {
			t.Errorf("overdue after completion = %d rows, want 0", len(got))
		}
	})
}

func TestRecordPayout(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*SQLiteStore, *models.Group, []string) {
		store := newTestStore(t)
		group := newTestGroup(2)
		store.CreateGroup(ctx, group)
		users := fillGroup(t, store, group.ID, 2)
		return store, group, users
	}

	newPayout := func(group *models.Group, recipient string, cycle int) (*models.Payout, *models.Transaction) {
		now := time.Now()
		payout := &models.Payout{
			GroupID:       group.ID,
			CycleNumber:   cycle,
			RecipientID:   recipient,
			Amount:        decimal.NewFromInt(1800),
			Status:        models.PayoutProcessed,
			ScheduledDate: now,
			ProcessedDate: &now,
		}
		entry := &models.Transaction{
			GroupID:   group.ID,
			UserID:    recipient,
			Type:      models.TransactionPayout,
			Amount:    payout.Amount,
			Reference: models.PayoutReference(group.ID, cycle),
		}
		return payout, entry
	}

	t.Run("writes payout and ledger entry together", func(t *testing.T) {
		store, group, users := setup(t)
		payout, entry := newPayout(group, users[0], 1)

		if err := store.RecordPayout(ctx, payout, entry); err != nil {
			t.Fatalf("RecordPayout failed: %v", err)
		}

		got, err := store.GetPayoutByCycle(ctx, group.ID, 1)
		if err != nil {
			t.Fatalf("GetPayoutByCycle failed: %v", err)
		}
		if got.RecipientID != users[0] {
			t.Errorf("recipient = %s, want %s", got.RecipientID, users[0])
		}
		if !got.Amount.Equal(decimal.NewFromInt(1800)) {
			t.Errorf("amount = %s, want 1800", got.Amount)
		}

		entries, err := store.ListTransactions(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("transactions = %d, want 1", len(entries))
		}
		if want := models.PayoutReference(group.ID, 1); entries[0].Reference != want {
			t.Errorf("reference = %s, want %s", entries[0].Reference, want)
		}
	})

	t.Run("duplicate cycle rolls back both rows", func(t *testing.T) {
		store, group, users := setup(t)
		payout, entry := newPayout(group, users[0], 1)
		store.RecordPayout(ctx, payout, entry)

		dup, dupEntry := newPayout(group, users[1], 1)
		dupEntry.Reference = "PAYOUT-other-ref"
		if err := store.RecordPayout(ctx, dup, dupEntry); !errors.Is(err, storage.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		entries, _ := store.ListTransactions(ctx, group.ID)
		if len(entries) != 1 {
			t.Errorf("transactions = %d after duplicate, want 1", len(entries))
		}
	})

	t.Run("same recipient cannot be paid twice", func(t *testing.T) {
		store, group, users := setup(t)
		payout, entry := newPayout(group, users[0], 1)
		store.RecordPayout(ctx, payout, entry)

		again, againEntry := newPayout(group, users[0], 2)
		if err := store.RecordPayout(ctx, again, againEntry); !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate for repeat recipient, got %v", err)
		}
	})

	t.Run("HasPayoutForRecipient and CountPayouts", func(t *testing.T) {
		store, group, users := setup(t)
		payout, entry := newPayout(group, users[0], 1)
		store.RecordPayout(ctx, payout, entry)

		has, err := store.HasPayoutForRecipient(ctx, group.ID, users[0])
		if err != nil || !has {
			t.Errorf("HasPayoutForRecipient(%s) = %v, %v; want true", users[0], has, err)
		}
		has, _ = store.HasPayoutForRecipient(ctx, group.ID, users[1])
		if has {
			t.Errorf("HasPayoutForRecipient(%s) = true, want false", users[1])
		}

		count, err := store.CountPayouts(ctx, group.ID)
		if err != nil || count != 1 {
			t.Errorf("CountPayouts = %d, %v; want 1", count, err)
		}
	})
}

func TestApplyPenalty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	group := newTestGroup(2)
	store.CreateGroup(ctx, group)
	users := fillGroup(t, store, group.ID, 2)

	c := &models.Contribution{
		GroupID:     group.ID,
		UserID:      users[0],
		CycleNumber: 1,
		Amount:      decimal.NewFromInt(2000),
		DueDate:     time.Now().AddDate(0, 0, -5),
		Penalty:     decimal.Zero,
		ServiceFee:  decimal.Zero,
	}
	store.CreateContribution(ctx, c)

	newPenalty := func() (*models.Penalty, *models.Transaction) {
		penalty := &models.Penalty{
			ID:             "pen-1",
			GroupID:        group.ID,
			UserID:         users[0],
			ContributionID: c.ID,
			Amount:         decimal.NewFromInt(100),
			Reason:         models.PenaltyLatePayment,
			State:          models.PenaltyApplied,
		}
		entry := &models.Transaction{
			GroupID:   group.ID,
			UserID:    users[0],
			Type:      models.TransactionPenalty,
			Amount:    penalty.Amount,
			Reference: models.PenaltyReference(penalty.ID),
		}
		return penalty, entry
	}

	penalty, entry := newPenalty()
	if err := store.ApplyPenalty(ctx, penalty, entry); err != nil {
		t.Fatalf("ApplyPenalty failed: %v", err)
	}

	has, err := store.HasLatePenalty(ctx, c.ID)
	if err != nil || !has {
		t.Errorf("HasLatePenalty = %v, %v; want true", has, err)
	}

	got, _ := store.GetContribution(ctx, c.ID)
	if !got.Penalty.Equal(decimal.NewFromInt(100)) {
		t.Errorf("contribution penalty = %s, want 100", got.Penalty)
	}

	// A second late_payment penalty for the same contribution loses the
	// partial unique index.
	again, againEntry := newPenalty()
	again.ID = "pen-2"
	againEntry.Reference = models.PenaltyReference("pen-2")
	if err := store.ApplyPenalty(ctx, again, againEntry); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	entries, _ := store.ListTransactions(ctx, group.ID)
	if len(entries) != 1 {
		t.Errorf("transactions = %d after duplicate penalty, want 1", len(entries))
	}
	got, _ = store.GetContribution(ctx, c.ID)
	if !got.Penalty.Equal(decimal.NewFromInt(100)) {
		t.Errorf("contribution penalty = %s after duplicate, want 100", got.Penalty)
	}
}
