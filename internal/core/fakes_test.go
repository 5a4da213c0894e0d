package core_test

import (
	"context"
	"time"

	"shiftpay.service/internal/core/model"
	"shiftpay.service/internal/gateway"
	"shiftpay.service/internal/ports/messaging"
	"shiftpay.service/internal/ports/repository"
)

// fakeRepo is an in-memory Repository with error injection, shared by
// the service tests.
type fakeRepo struct {
	shifts     map[string]*model.Shift
	timesheets map[string]*model.Timesheet
	payments   map[string]*model.EscrowPayment // keyed by shift id

	completeShiftErr   error
	createPaymentErr   error
	createTimesheetErr error

	releaseCalls       int
	createPaymentCalls int
	completeCalls      int
	transitionCalls    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		shifts:     make(map[string]*model.Shift),
		timesheets: make(map[string]*model.Timesheet),
		payments:   make(map[string]*model.EscrowPayment),
	}
}

func (r *fakeRepo) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) TransitionShift(ctx context.Context, id string, from, to model.ShiftStatus) (bool, error) {
	r.transitionCalls++
	s, ok := r.shifts[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (r *fakeRepo) CompleteShift(ctx context.Context, id string) (bool, error) {
	r.completeCalls++
	if r.completeShiftErr != nil {
		return false, r.completeShiftErr
	}
	s, ok := r.shifts[id]
	if !ok {
		return false, nil
	}
	if s.Status == model.ShiftCompleted || s.Status == model.ShiftCancelled {
		return false, nil
	}
	s.Status = model.ShiftCompleted
	return true, nil
}

func (r *fakeRepo) GetTimesheet(ctx context.Context, id string) (*model.Timesheet, error) {
	ts, ok := r.timesheets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ts
	return &cp, nil
}

func (r *fakeRepo) CreateTimesheet(ctx context.Context, ts *model.Timesheet) error {
	if r.createTimesheetErr != nil {
		return r.createTimesheetErr
	}
	for _, existing := range r.timesheets {
		if existing.ShiftID == ts.ShiftID && existing.WorkerID == ts.WorkerID && existing.ClockOutTime == nil {
			return repository.ErrConflict
		}
	}
	cp := *ts
	r.timesheets[ts.ID] = &cp
	return nil
}

func (r *fakeRepo) SetClockOut(ctx context.Context, id string, clockOut time.Time, breakMinutes *int) error {
	ts, ok := r.timesheets[id]
	if !ok {
		return repository.ErrNotFound
	}
	ts.ClockOutTime = &clockOut
	ts.BreakMinutes = breakMinutes
	return nil
}

func (r *fakeRepo) CreatePayment(ctx context.Context, p *model.EscrowPayment) error {
	r.createPaymentCalls++
	if r.createPaymentErr != nil {
		return r.createPaymentErr
	}
	if existing, ok := r.payments[p.ShiftID]; ok && existing.Status != model.PaymentRefunded {
		return repository.ErrConflict
	}
	cp := *p
	r.payments[p.ShiftID] = &cp
	return nil
}

func (r *fakeRepo) GetPaymentByShift(ctx context.Context, shiftID string) (*model.EscrowPayment, error) {
	p, ok := r.payments[shiftID]
	if !ok || p.Status == model.PaymentRefunded {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) ReleaseHold(ctx context.Context, shiftID string, rel repository.PaymentRelease) (bool, error) {
	p, ok := r.payments[shiftID]
	if !ok || p.Status != model.PaymentHeld {
		return false, nil
	}
	r.releaseCalls++
	updated := rel.Payment
	updated.ID = p.ID
	updated.CreatedAt = p.CreatedAt
	r.payments[shiftID] = &updated
	return true, nil
}

func (r *fakeRepo) PromotePayment(ctx context.Context, shiftID string, from, to model.PaymentStatus) (bool, error) {
	p, ok := r.payments[shiftID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

// fakeGateway records release calls.
type fakeGateway struct {
	calls int
	err   error
}

func (g *fakeGateway) Release(ctx context.Context, req gateway.ReleaseRequest) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.calls++
	return "gw-test-ref", nil
}

// fakeProducer records published events.
type fakeProducer struct {
	settlements   []messaging.SettlementEvent
	notifications []messaging.NotificationEvent

	settlementErr   error
	notificationErr error
}

func (p *fakeProducer) PublishSettlement(ctx context.Context, event messaging.SettlementEvent) error {
	if p.settlementErr != nil {
		return p.settlementErr
	}
	p.settlements = append(p.settlements, event)
	return nil
}

func (p *fakeProducer) PublishNotification(ctx context.Context, event messaging.NotificationEvent) error {
	if p.notificationErr != nil {
		return p.notificationErr
	}
	p.notifications = append(p.notifications, event)
	return nil
}

// fakeNotifier fails for recipients listed in failFor.
type fakeNotifier struct {
	sent    []messaging.NotificationEvent
	failFor map[string]error
}

func (n *fakeNotifier) Send(ctx context.Context, event messaging.NotificationEvent) error {
	if err, ok := n.failFor[event.RecipientID]; ok {
		return err
	}
	n.sent = append(n.sent, event)
	return nil
}
