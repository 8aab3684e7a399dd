// README: Shift record store backed by PostgreSQL (shift_summaries table).
package shift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"carwash/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Get returns the record for one shift, or ok=false if none was saved.
func (s *Store) Get(ctx context.Context, date time.Time, shift types.Shift) (Record, bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT business_date, shift, other_income, expenses, gcash::text, updated_at
		FROM shift_summaries
		WHERE business_date = $1 AND shift = $2`,
		date, string(shift),
	)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *Store) Upsert(ctx context.Context, rec Record) error {
	income, err := json.Marshal(rec.OtherIncome)
	if err != nil {
		return err
	}
	expenses, err := json.Marshal(rec.Expenses)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO shift_summaries (business_date, shift, other_income, expenses, gcash, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		ON CONFLICT (business_date, shift) DO UPDATE
		SET other_income = EXCLUDED.other_income,
			expenses = EXCLUDED.expenses,
			gcash = EXCLUDED.gcash,
			updated_at = EXCLUDED.updated_at`,
		rec.Date,
		string(rec.Shift),
		income,
		expenses,
		rec.CashTransfer.String(),
		rec.UpdatedAt,
	)
	return err
}

// ListBetween returns records for an inclusive date range.
func (s *Store) ListBetween(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT business_date, shift, other_income, expenses, gcash::text, updated_at
		FROM shift_summaries
		WHERE business_date BETWEEN $1 AND $2
		ORDER BY business_date, shift`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec              Record
		shift            string
		income, expenses []byte
		gcash            string
	)
	if err := row.Scan(&rec.Date, &shift, &income, &expenses, &gcash, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.Shift = types.Shift(shift)
	if err := json.Unmarshal(income, &rec.OtherIncome); err != nil {
		return Record{}, fmt.Errorf("decode other_income: %w", err)
	}
	if err := json.Unmarshal(expenses, &rec.Expenses); err != nil {
		return Record{}, fmt.Errorf("decode expenses: %w", err)
	}
	d, err := decimal.NewFromString(gcash)
	if err != nil {
		return Record{}, fmt.Errorf("decode gcash: %w", err)
	}
	rec.CashTransfer = types.Amount{Decimal: d}
	return rec, nil
}
