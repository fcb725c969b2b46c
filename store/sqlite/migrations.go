package sqlite

// Schema migrations, applied in order by Migrate. Each statement is
// idempotent so Migrate can run on every start.
type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{
		name: "create_ledger_bills",
		stmt: `
CREATE TABLE IF NOT EXISTS ledger_bills (
    id          TEXT PRIMARY KEY,
    patient_id  TEXT NOT NULL DEFAULT '',
    issue_date  TEXT NOT NULL,
    date_paid   TEXT,
    status      TEXT NOT NULL DEFAULT 'UNPAID',
    amount_paid INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ledger_bills_patient ON ledger_bills (patient_id);
CREATE INDEX IF NOT EXISTS idx_ledger_bills_status ON ledger_bills (status);
`,
	},
	{
		name: "create_ledger_bill_items",
		stmt: `
CREATE TABLE IF NOT EXISTS ledger_bill_items (
    bill_id     TEXT NOT NULL,
    position    INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount      INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (bill_id, position)
);
`,
	},
	{
		name: "create_ledger_payments",
		stmt: `
CREATE TABLE IF NOT EXISTS ledger_payments (
    id      TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    amount  INTEGER NOT NULL DEFAULT 0,
    paid_at TEXT NOT NULL,
    method  TEXT NOT NULL DEFAULT '',
    status  TEXT NOT NULL DEFAULT 'COMPLETED'
);

CREATE INDEX IF NOT EXISTS idx_ledger_payments_bill ON ledger_payments (bill_id);
`,
	},
}
