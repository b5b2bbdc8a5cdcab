package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money columns are TEXT: amounts are stored as exact decimal strings and all
// arithmetic happens in Go via shopspring/decimal.
const schema = `
CREATE TABLE IF NOT EXISTS societies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS admins (
    id TEXT PRIMARY KEY,
    society_id TEXT NOT NULL,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    phone TEXT NOT NULL,
    flat_no TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    is_super_admin INTEGER NOT NULL DEFAULT 0,
    is_authorized INTEGER NOT NULL DEFAULT 0,
    is_edit_access INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (society_id) REFERENCES societies(id)
);

CREATE TABLE IF NOT EXISTS residents (
    id TEXT PRIMARY KEY,
    society_id TEXT NOT NULL,
    flat_no TEXT NOT NULL,
    owner_name TEXT NOT NULL,
    owner_contact TEXT NOT NULL,
    occupancy_type TEXT NOT NULL,
    tenant_name TEXT,
    tenant_contact TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (society_id) REFERENCES societies(id)
);

CREATE TABLE IF NOT EXISTS maintenance_statuses (
    society_id TEXT NOT NULL,
    resident_id TEXT NOT NULL,
    month_key TEXT NOT NULL,
    status TEXT NOT NULL,
    PRIMARY KEY (society_id, resident_id, month_key),
    FOREIGN KEY (resident_id) REFERENCES residents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transaction_months (
    society_id TEXT NOT NULL,
    month_key TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (society_id, month_key)
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    society_id TEXT NOT NULL,
    month_key TEXT NOT NULL,
    entry_type TEXT NOT NULL,
    amount TEXT NOT NULL,
    description TEXT NOT NULL,
    is_monthly_maintenance INTEGER NOT NULL DEFAULT 0,
    is_multiple_residents INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (society_id, month_key) REFERENCES transaction_months(society_id, month_key)
);

CREATE TABLE IF NOT EXISTS transaction_residents (
    transaction_id TEXT NOT NULL,
    resident_id TEXT NOT NULL,
    PRIMARY KEY (transaction_id, resident_id),
    FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS monthly_balances (
    society_id TEXT NOT NULL,
    month_key TEXT NOT NULL,
    credit TEXT NOT NULL,
    debit TEXT NOT NULL,
    carry_forward TEXT NOT NULL,
    balance TEXT NOT NULL,
    PRIMARY KEY (society_id, month_key)
);

CREATE TABLE IF NOT EXISTS global_balances (
    society_id TEXT PRIMARY KEY,
    total TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS society_settings (
    society_id TEXT PRIMARY KEY,
    cycle_start_day INTEGER,
    cycle_end_day INTEGER,
    maintenance_amount TEXT,
    FOREIGN KEY (society_id) REFERENCES societies(id)
);

CREATE TABLE IF NOT EXISTS notifications (
    society_id TEXT NOT NULL,
    id TEXT NOT NULL,
    resident_id TEXT NOT NULL,
    month_key TEXT NOT NULL,
    flat_no TEXT NOT NULL,
    message TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (society_id, id)
);

CREATE INDEX IF NOT EXISTS idx_admins_society_id ON admins(society_id);
CREATE INDEX IF NOT EXISTS idx_residents_society_id ON residents(society_id);
CREATE INDEX IF NOT EXISTS idx_transactions_society_month ON transactions(society_id, month_key);
CREATE INDEX IF NOT EXISTS idx_transaction_residents_txn ON transaction_residents(transaction_id);
CREATE INDEX IF NOT EXISTS idx_notifications_society_id ON notifications(society_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
