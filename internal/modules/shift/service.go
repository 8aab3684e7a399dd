// README: Shift summary service: loads orders and the saved record, then aggregates.
package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"carwash/internal/clock"
	"carwash/internal/modules/order"
	"carwash/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type Repository interface {
	Get(ctx context.Context, date time.Time, shift types.Shift) (Record, bool, error)
	Upsert(ctx context.Context, rec Record) error
}

type OrderLister interface {
	ListByShift(ctx context.Context, date time.Time, shift types.Shift) ([]order.Priced, error)
}

type Service struct {
	store  Repository
	orders OrderLister
	clock  clock.Clock
	log    logrus.FieldLogger
}

func NewService(store Repository, orders OrderLister, clk clock.Clock, log logrus.FieldLogger) *Service {
	return &Service{
		store:  store,
		orders: orders,
		clock:  clk,
		log:    log.WithField("module", "shift"),
	}
}

// View is a shift's orders, its saved line items and the computed summary.
type View struct {
	Date    time.Time
	Shift   types.Shift
	Orders  []order.Priced
	Record  Record
	Summary Summary
}

func (s *Service) Summary(ctx context.Context, date time.Time, shift types.Shift) (View, error) {
	if !shift.Valid() {
		return View{}, fmt.Errorf("%w: %v", ErrBadRequest, types.ErrInvalidShift)
	}
	date = types.DateOf(date)

	orders, err := s.orders.ListByShift(ctx, date, shift)
	if err != nil {
		return View{}, fmt.Errorf("list orders: %w", err)
	}
	rec, ok, err := s.store.Get(ctx, date, shift)
	if err != nil {
		return View{}, fmt.Errorf("load shift record: %w", err)
	}
	if !ok {
		rec = Record{Date: date, Shift: shift}
	}
	rec.OtherIncome = SanitizeLineItems(rec.OtherIncome)
	rec.Expenses = SanitizeLineItems(rec.Expenses)

	return View{
		Date:    date,
		Shift:   shift,
		Orders:  orders,
		Record:  rec,
		Summary: ComputeShiftSummary(orders, rec.OtherIncome, rec.Expenses, rec.CashTransfer),
	}, nil
}

type SaveCommand struct {
	Date         time.Time
	Shift        types.Shift
	OtherIncome  []LineItem
	Expenses     []LineItem
	CashTransfer types.Amount
}

// SaveRecord replaces the shift's line items and cash transfer, then
// returns the recomputed view.
func (s *Service) SaveRecord(ctx context.Context, cmd SaveCommand) (View, error) {
	if !cmd.Shift.Valid() {
		return View{}, fmt.Errorf("%w: %v", ErrBadRequest, types.ErrInvalidShift)
	}
	if cmd.Date.IsZero() {
		return View{}, fmt.Errorf("%w: %v", ErrBadRequest, types.ErrInvalidDate)
	}
	rec := Record{
		Date:         types.DateOf(cmd.Date),
		Shift:        cmd.Shift,
		OtherIncome:  SanitizeLineItems(cmd.OtherIncome),
		Expenses:     SanitizeLineItems(cmd.Expenses),
		CashTransfer: cmd.CashTransfer,
		UpdatedAt:    s.clock.Now(),
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		return View{}, fmt.Errorf("save shift record: %w", err)
	}
	view, err := s.Summary(ctx, rec.Date, rec.Shift)
	if err != nil {
		return View{}, err
	}
	s.log.WithFields(logrus.Fields{
		"date":         rec.Date.Format(types.DateLayout),
		"shift":        rec.Shift,
		"other_income": len(rec.OtherIncome),
		"expenses":     len(rec.Expenses),
		"grand_total":  types.FormatPeso(view.Summary.GrandTotal),
	}).Info("shift record saved")
	return view, nil
}

// Window reports the clock's position relative to shift. An empty shift
// means the one currently running.
func (s *Service) Window(shift types.Shift) (Window, error) {
	if shift == "" {
		shift = CurrentShift(s.clock)
	}
	if !shift.Valid() {
		return Window{}, fmt.Errorf("%w: %v", ErrBadRequest, types.ErrInvalidShift)
	}
	return WindowFor(s.clock, shift), nil
}
