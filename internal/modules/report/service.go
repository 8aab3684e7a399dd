// README: Report service: folds stored orders and shift records into calendar totals.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"carwash/internal/modules/order"
	"carwash/internal/modules/shift"
	"carwash/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type OrderSource interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]order.Priced, error)
}

type RecordSource interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]shift.Record, error)
}

type Service struct {
	orders  OrderSource
	records RecordSource
	log     logrus.FieldLogger
}

func NewService(orders OrderSource, records RecordSource, log logrus.FieldLogger) *Service {
	return &Service{orders: orders, records: records, log: log.WithField("module", "report")}
}

func (s *Service) Monthly(ctx context.Context, year int, month int) (Monthly, error) {
	if err := validYear(year); err != nil {
		return Monthly{}, err
	}
	if month < 1 || month > 12 {
		return Monthly{}, fmt.Errorf("%w: month must be 1-12", ErrBadRequest)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daily, err := s.DailyTotals(ctx, from, from.AddDate(0, 1, -1))
	if err != nil {
		return Monthly{}, err
	}
	return MonthlySales(year, time.Month(month), daily), nil
}

func (s *Service) Yearly(ctx context.Context, year int) (Yearly, error) {
	if err := validYear(year); err != nil {
		return Yearly{}, err
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	daily, err := s.DailyTotals(ctx, from, from.AddDate(1, 0, -1))
	if err != nil {
		return Yearly{}, err
	}
	monthly := map[time.Month]decimal.Decimal{}
	for key, amount := range daily {
		d, err := types.ParseDate(key)
		if err != nil {
			continue
		}
		monthly[d.Month()] = monthly[d.Month()].Add(amount)
	}
	return YearlySales(year, monthly), nil
}

type shiftKey struct {
	date  string
	shift types.Shift
}

// DailyTotals sums shift grand totals per business date. Only shifts with
// orders or a saved record count, so idle days stay at zero.
func (s *Service) DailyTotals(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	orders, err := s.orders.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	records, err := s.records.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list shift records: %w", err)
	}

	byShift := map[shiftKey][]order.Priced{}
	recs := map[shiftKey]shift.Record{}
	var keys []shiftKey
	seen := map[shiftKey]bool{}
	add := func(k shiftKey) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, o := range orders {
		k := shiftKey{date: o.Date.Format(types.DateLayout), shift: o.Shift}
		byShift[k] = append(byShift[k], o)
		add(k)
	}
	for _, r := range records {
		k := shiftKey{date: r.Date.Format(types.DateLayout), shift: r.Shift}
		recs[k] = r
		add(k)
	}

	out := make(map[string]decimal.Decimal, len(keys))
	for _, k := range keys {
		r := recs[k]
		sum := shift.ComputeShiftSummary(byShift[k], r.OtherIncome, r.Expenses, r.CashTransfer)
		out[k.date] = out[k.date].Add(sum.GrandTotal)
	}
	s.log.WithFields(logrus.Fields{
		"from":   from.Format(types.DateLayout),
		"to":     to.Format(types.DateLayout),
		"shifts": len(keys),
	}).Debug("daily totals computed")
	return out, nil
}

func validYear(year int) error {
	if year < 2000 || year > 9999 {
		return fmt.Errorf("%w: year out of range", ErrBadRequest)
	}
	return nil
}
