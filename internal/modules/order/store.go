// README: Order store backed by PostgreSQL.
package order

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

const orderColumns = `id, vehicle_type, base_service, addons, w_vac, plate_number,
	washer_name, incharge_name, shift, business_date, created_at,
	base_price, base_vac, addon_prices`

const selectOrder = `SELECT id, vehicle_type, base_service, addons, w_vac, plate_number,
	washer_name, incharge_name, shift, business_date, created_at,
	base_price::text, base_vac, addon_prices
	FROM orders`

func (s *Store) Create(ctx context.Context, o *Order) error {
	addonPrices, err := json.Marshal(o.AddonPrices)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::numeric, $13, $14)`,
		string(o.ID),
		o.VehicleType,
		o.BaseService,
		o.Addons,
		o.Vacuum,
		o.PlateNumber,
		o.WasherName,
		o.InchargeName,
		string(o.Shift),
		o.Date,
		o.CreatedAt,
		o.BasePrice.String(),
		o.BaseVacuum,
		addonPrices,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, selectOrder+` WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListByShift returns one shift's orders, oldest first.
func (s *Store) ListByShift(ctx context.Context, date time.Time, shift types.Shift) ([]Order, error) {
	rows, err := s.db.Query(ctx, selectOrder+`
		WHERE business_date = $1 AND shift = $2
		ORDER BY created_at ASC, id ASC`, date, string(shift))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListBetween returns orders whose business date is in [from, to], oldest first.
func (s *Store) ListBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	rows, err := s.db.Query(ctx, selectOrder+`
		WHERE business_date BETWEEN $1 AND $2
		ORDER BY business_date ASC, created_at ASC, id ASC`, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o                    Order
		id, shift, basePrice string
		addonPrices          []byte
	)
	err := row.Scan(
		&id, &o.VehicleType, &o.BaseService, &o.Addons, &o.Vacuum, &o.PlateNumber,
		&o.WasherName, &o.InchargeName, &shift, &o.Date, &o.CreatedAt,
		&basePrice, &o.BaseVacuum, &addonPrices,
	)
	if err != nil {
		return nil, err
	}
	o.ID = types.ID(id)
	o.Shift = types.Shift(shift)
	if o.BasePrice, err = decimal.NewFromString(basePrice); err != nil {
		return nil, fmt.Errorf("decode base_price: %w", err)
	}
	if err := json.Unmarshal(addonPrices, &o.AddonPrices); err != nil {
		return nil, fmt.Errorf("decode addon_prices: %w", err)
	}
	return &o, nil
}
