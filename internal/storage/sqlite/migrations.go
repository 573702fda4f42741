package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// The UNIQUE constraints are load-bearing: concurrent writers racing to
// create the same contribution, payout, or rotation position are resolved
// here, and the losing insert surfaces as storage.ErrDuplicate.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    contribution_amount TEXT NOT NULL,
    frequency TEXT NOT NULL CHECK (frequency IN ('daily', 'weekly', 'monthly')),
    total_members INTEGER NOT NULL,
    current_members INTEGER NOT NULL DEFAULT 0,
    security_deposit_pct INTEGER NOT NULL DEFAULT 0,
    service_fee_pct INTEGER NOT NULL DEFAULT 10,
    status TEXT NOT NULL DEFAULT 'forming' CHECK (status IN ('forming', 'active', 'completed', 'cancelled')),
    start_date INTEGER,
    ended_at INTEGER,
    current_cycle INTEGER NOT NULL DEFAULT 0,
    total_cycles INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    has_paid_deposit INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'defaulted', 'removed')),
    joined_at INTEGER NOT NULL,
    UNIQUE (group_id, user_id),
    UNIQUE (group_id, position),
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS contributions (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    cycle_number INTEGER NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'paid', 'late', 'missed')),
    due_date INTEGER NOT NULL,
    paid_date INTEGER,
    payment_reference TEXT NOT NULL DEFAULT '',
    penalty TEXT NOT NULL DEFAULT '0',
    service_fee TEXT NOT NULL DEFAULT '0',
    created_at INTEGER NOT NULL,
    UNIQUE (group_id, user_id, cycle_number),
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS payouts (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    cycle_number INTEGER NOT NULL,
    recipient_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processed', 'failed')),
    scheduled_date INTEGER NOT NULL,
    processed_date INTEGER,
    UNIQUE (group_id, cycle_number),
    UNIQUE (group_id, recipient_id),
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS penalties (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    contribution_id TEXT,
    amount TEXT NOT NULL,
    reason TEXT NOT NULL CHECK (reason IN ('late_payment', 'missed_payment', 'default')),
    state TEXT NOT NULL DEFAULT 'applied' CHECK (state IN ('applied', 'waived')),
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id),
    FOREIGN KEY (contribution_id) REFERENCES contributions(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_penalties_late_once
    ON penalties(contribution_id) WHERE reason = 'late_payment';

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('penalty', 'payout')),
    amount TEXT NOT NULL,
    reference TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_members_group_id ON group_members(group_id);
CREATE INDEX IF NOT EXISTS idx_contributions_group_cycle ON contributions(group_id, cycle_number);
CREATE INDEX IF NOT EXISTS idx_contributions_due ON contributions(status, due_date);
CREATE INDEX IF NOT EXISTS idx_payouts_group_id ON payouts(group_id);
CREATE INDEX IF NOT EXISTS idx_transactions_group_id ON transactions(group_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
