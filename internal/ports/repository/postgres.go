package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shiftpay.service/internal/core/model"
)

// PostgresRepository is the concrete implementation for PostgreSQL.
type PostgresRepository struct {
	DB *sql.DB
}

// NewPostgresRepository create new instance.
func NewPostgresRepository(db *sql.DB) Repository {
	return &PostgresRepository{DB: db}
}

// translate maps driver errors onto the typed store failures.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// GetShift fetches one shift by id.
func (r *PostgresRepository) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.shift_id", id))

	query := `SELECT id, employer_id, title, location, scheduled_date, start_time, end_time,
	                 hourly_rate, worker_count, overtime_multiplier, status, created_at
	          FROM shifts WHERE id = $1`

	s := &model.Shift{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.EmployerID, &s.Title, &s.Location, &s.ScheduledDate, &s.StartTime, &s.EndTime,
		&s.HourlyRate, &s.WorkerCount, &s.OvertimeMultiplier, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// TransitionShift moves the shift from one status to another as a single
// conditional write against server-held state.
func (r *PostgresRepository) TransitionShift(ctx context.Context, id string, from, to model.ShiftStatus) (bool, error) {
	query := `UPDATE shifts SET status = $1 WHERE id = $2 AND status = $3`

	res, err := r.DB.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CompleteShift marks the shift completed unless it already is or was
// cancelled.
func (r *PostgresRepository) CompleteShift(ctx context.Context, id string) (bool, error) {
	query := `UPDATE shifts SET status = $1 WHERE id = $2 AND status NOT IN ($1, $3)`

	res, err := r.DB.ExecContext(ctx, query, model.ShiftCompleted, id, model.ShiftCancelled)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetTimesheet fetches one timesheet by id.
func (r *PostgresRepository) GetTimesheet(ctx context.Context, id string) (*model.Timesheet, error) {
	query := `SELECT id, shift_id, worker_id, clock_in_time, clock_out_time, break_minutes,
	                 employer_confirmed, worker_confirmed, disputed, created_at
	          FROM timesheets WHERE id = $1`

	ts := &model.Timesheet{}
	var clockOut sql.NullTime
	var breakMin sql.NullInt64

	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&ts.ID, &ts.ShiftID, &ts.WorkerID, &ts.ClockInTime, &clockOut, &breakMin,
		&ts.EmployerConfirmed, &ts.WorkerConfirmed, &ts.Disputed, &ts.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if clockOut.Valid {
		t := clockOut.Time
		ts.ClockOutTime = &t
	}
	if breakMin.Valid {
		b := int(breakMin.Int64)
		ts.BreakMinutes = &b
	}
	return ts, nil
}

// CreateTimesheet inserts the clock-in record. The partial unique index
// on (shift_id, worker_id) for open rows rejects a second clock-in,
// surfaced as ErrConflict.
func (r *PostgresRepository) CreateTimesheet(ctx context.Context, ts *model.Timesheet) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.worker_id", ts.WorkerID))

	query := `INSERT INTO timesheets (id, shift_id, worker_id, clock_in_time,
	                                  employer_confirmed, worker_confirmed, disputed, created_at)
	          VALUES ($1, $2, $3, $4, false, false, false, $5)`

	_, err := r.DB.ExecContext(ctx, query, ts.ID, ts.ShiftID, ts.WorkerID, ts.ClockInTime, ts.CreatedAt)
	return translate(err)
}

// SetClockOut stamps the clock-out time and the recorded break, if any.
func (r *PostgresRepository) SetClockOut(ctx context.Context, id string, clockOut time.Time, breakMinutes *int) error {
	query := `UPDATE timesheets SET clock_out_time = $1, break_minutes = $2 WHERE id = $3`

	res, err := r.DB.ExecContext(ctx, query, clockOut, breakMinutes, id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePayment inserts an escrow payment row. The partial unique index
// allowing one non-refunded payment per shift rejects duplicates,
// surfaced as ErrConflict.
func (r *PostgresRepository) CreatePayment(ctx context.Context, p *model.EscrowPayment) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.shift_id", p.ShiftID))

	query := `INSERT INTO escrow_payments (id, shift_id, employer_id, worker_id, timesheet_id,
	                 regular_hours, overtime_hours, regular_amount, overtime_amount, subtotal,
	                 fee_percentage, platform_fee, total_charged, worker_payout, gateway_ref,
	                 status, payment_captured_at, released_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	var payout decimal.NullDecimal
	if p.WorkerPayout != nil {
		payout = decimal.NullDecimal{Decimal: *p.WorkerPayout, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		p.ID, p.ShiftID, p.EmployerID, p.WorkerID, p.TimesheetID,
		p.RegularHours, p.OvertimeHours, p.RegularAmount, p.OvertimeAmount, p.Subtotal,
		p.FeePercentage, p.PlatformFee, p.TotalCharged, payout, p.GatewayRef,
		p.Status, p.PaymentCapturedAt, p.ReleasedAt, p.CreatedAt,
	)
	return translate(err)
}

// GetPaymentByShift fetches the shift's non-refunded payment.
func (r *PostgresRepository) GetPaymentByShift(ctx context.Context, shiftID string) (*model.EscrowPayment, error) {
	query := `SELECT id, shift_id, employer_id, worker_id, timesheet_id,
	                 regular_hours, overtime_hours, regular_amount, overtime_amount, subtotal,
	                 fee_percentage, platform_fee, total_charged, worker_payout, gateway_ref,
	                 status, payment_captured_at, released_at, created_at
	          FROM escrow_payments
	          WHERE shift_id = $1 AND status <> $2`

	p := &model.EscrowPayment{}
	var workerID, timesheetID, gatewayRef sql.NullString
	var payout decimal.NullDecimal
	var capturedAt, releasedAt sql.NullTime

	err := r.DB.QueryRowContext(ctx, query, shiftID, model.PaymentRefunded).Scan(
		&p.ID, &p.ShiftID, &p.EmployerID, &workerID, &timesheetID,
		&p.RegularHours, &p.OvertimeHours, &p.RegularAmount, &p.OvertimeAmount, &p.Subtotal,
		&p.FeePercentage, &p.PlatformFee, &p.TotalCharged, &payout, &gatewayRef,
		&p.Status, &capturedAt, &releasedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if workerID.Valid {
		p.WorkerID = &workerID.String
	}
	if timesheetID.Valid {
		p.TimesheetID = &timesheetID.String
	}
	if gatewayRef.Valid {
		p.GatewayRef = gatewayRef.String
	}
	if payout.Valid {
		p.WorkerPayout = &payout.Decimal
	}
	if capturedAt.Valid {
		t := capturedAt.Time
		p.PaymentCapturedAt = &t
	}
	if releasedAt.Valid {
		t := releasedAt.Time
		p.ReleasedAt = &t
	}
	return p, nil
}

// ReleaseHold rewrites the held payment with the settled amounts as one
// conditional update. Zero rows affected means no held payment remains;
// the engine treats that as an already-released settlement.
func (r *PostgresRepository) ReleaseHold(ctx context.Context, shiftID string, rel PaymentRelease) (bool, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.shift_id", shiftID))

	query := `UPDATE escrow_payments
	          SET worker_id = $1, timesheet_id = $2,
	              regular_hours = $3, overtime_hours = $4,
	              regular_amount = $5, overtime_amount = $6, subtotal = $7,
	              platform_fee = $8, total_charged = $9, worker_payout = $10,
	              gateway_ref = $11, status = $12,
	              payment_captured_at = $13, released_at = $14
	          WHERE shift_id = $15 AND status = $16`

	p := rel.Payment
	var payout decimal.NullDecimal
	if p.WorkerPayout != nil {
		payout = decimal.NullDecimal{Decimal: *p.WorkerPayout, Valid: true}
	}

	res, err := r.DB.ExecContext(ctx, query,
		rel.WorkerID, rel.TimesheetID,
		p.RegularHours, p.OvertimeHours,
		p.RegularAmount, p.OvertimeAmount, p.Subtotal,
		p.PlatformFee, p.TotalCharged, payout,
		p.GatewayRef, p.Status,
		rel.CapturedAt, rel.ReleasedAt,
		shiftID, model.PaymentHeld,
	)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PromotePayment moves a payment between escrow statuses conditionally.
func (r *PostgresRepository) PromotePayment(ctx context.Context, shiftID string, from, to model.PaymentStatus) (bool, error) {
	query := `UPDATE escrow_payments SET status = $1 WHERE shift_id = $2 AND status = $3`

	res, err := r.DB.ExecContext(ctx, query, to, shiftID, from)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
