// README: Catalog store backed by PostgreSQL (vehicles table, JSONB price maps).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) (Catalog, error) {
	rows, err := s.db.Query(ctx, `SELECT vehicle_name, bases, addons FROM vehicles ORDER BY vehicle_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := Catalog{}
	for rows.Next() {
		var p VehicleProfile
		var bases, addons []byte
		if err := rows.Scan(&p.Name, &bases, &addons); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(bases, &p.Bases); err != nil {
			return nil, fmt.Errorf("decode bases for %q: %w", p.Name, err)
		}
		if len(addons) > 0 {
			if err := json.Unmarshal(addons, &p.Addons); err != nil {
				return nil, fmt.Errorf("decode addons for %q: %w", p.Name, err)
			}
		}
		out[p.Name] = p
	}
	return out, rows.Err()
}

func (s *Store) Upsert(ctx context.Context, p VehicleProfile) error {
	bases, err := json.Marshal(p.Bases)
	if err != nil {
		return err
	}
	addons, err := json.Marshal(p.Addons)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO vehicles (vehicle_name, bases, addons, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (vehicle_name) DO UPDATE
		SET bases = EXCLUDED.bases, addons = EXCLUDED.addons, updated_at = NOW()`,
		p.Name, bases, addons,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, name string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM vehicles WHERE vehicle_name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM vehicles`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
