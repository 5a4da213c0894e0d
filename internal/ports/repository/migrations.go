package repository

import (
	"database/sql"
)

const createShiftsTable = `
CREATE TABLE IF NOT EXISTS shifts (
    id                  TEXT PRIMARY KEY,
    employer_id         TEXT NOT NULL,
    title               TEXT NOT NULL,
    location            TEXT NOT NULL DEFAULT '',
    scheduled_date      TIMESTAMPTZ NOT NULL,
    start_time          TIMESTAMPTZ NOT NULL,
    end_time            TIMESTAMPTZ NOT NULL,
    hourly_rate         NUMERIC(10,2) NOT NULL,
    worker_count        INTEGER NOT NULL DEFAULT 1,
    overtime_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.5,
    status              TEXT NOT NULL DEFAULT 'draft',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const createTimesheetsTable = `
CREATE TABLE IF NOT EXISTS timesheets (
    id                 TEXT PRIMARY KEY,
    shift_id           TEXT NOT NULL REFERENCES shifts(id),
    worker_id          TEXT NOT NULL,
    clock_in_time      TIMESTAMPTZ NOT NULL,
    clock_out_time     TIMESTAMPTZ,
    break_minutes      INTEGER,
    employer_confirmed BOOLEAN NOT NULL DEFAULT false,
    worker_confirmed   BOOLEAN NOT NULL DEFAULT false,
    disputed           BOOLEAN NOT NULL DEFAULT false,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// One open timesheet per (shift, worker). A second clock-in before the
// first clock-out is a conflict, not a new row.
const createOpenTimesheetIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_timesheets_one_open_per_shift_worker
    ON timesheets (shift_id, worker_id)
    WHERE clock_out_time IS NULL;
`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS escrow_payments (
    id                  TEXT PRIMARY KEY,
    shift_id            TEXT NOT NULL REFERENCES shifts(id),
    employer_id         TEXT NOT NULL,
    worker_id           TEXT,
    timesheet_id        TEXT,
    regular_hours       DOUBLE PRECISION NOT NULL DEFAULT 0,
    overtime_hours      DOUBLE PRECISION NOT NULL DEFAULT 0,
    regular_amount      NUMERIC(12,2) NOT NULL DEFAULT 0,
    overtime_amount     NUMERIC(12,2) NOT NULL DEFAULT 0,
    subtotal            NUMERIC(12,2) NOT NULL DEFAULT 0,
    fee_percentage      DOUBLE PRECISION NOT NULL DEFAULT 0.15,
    platform_fee        NUMERIC(12,2) NOT NULL DEFAULT 0,
    total_charged       NUMERIC(12,2) NOT NULL DEFAULT 0,
    worker_payout       NUMERIC(12,2),
    gateway_ref         TEXT,
    status              TEXT NOT NULL DEFAULT 'held',
    payment_captured_at TIMESTAMPTZ,
    released_at         TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// At most one non-refunded payment per shift. This is the store-level
// backstop for settlement idempotency: two racing first-time
// settlements cannot both insert a released payment, whatever the
// application-level pre-check saw.
const createActivePaymentIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_one_active_per_shift
    ON escrow_payments (shift_id)
    WHERE status <> 'refunded';
`

// Migrate applies the schema. Statements are idempotent so running it
// on every startup is safe.
func Migrate(db *sql.DB) error {
	stmts := []string{
		createShiftsTable,
		createTimesheetsTable,
		createOpenTimesheetIndex,
		createPaymentsTable,
		createActivePaymentIndex,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
