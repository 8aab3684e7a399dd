// README: User store backed by PostgreSQL.
package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"carwash/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const userColumns = `id, username, full_name, role, COALESCE(shift, ''), password_hash, created_at`

func (s *Store) Create(ctx context.Context, u *User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, username, full_name, role, shift, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`,
		string(u.ID), u.Username, u.FullName, string(u.Role), string(u.Shift), u.PasswordHash, u.CreatedAt,
	)
	return mapWriteError(err)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, string(id))
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, u *User) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET username = $2, full_name = $3, role = $4, shift = NULLIF($5, ''), password_hash = $6
		WHERE id = $1`,
		string(u.ID), u.Username, u.FullName, string(u.Role), string(u.Shift), u.PasswordHash,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u           User
		id, role, s string
	)
	if err := row.Scan(&id, &u.Username, &u.FullName, &role, &s, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = types.ID(id)
	u.Role = Role(role)
	u.Shift = types.Shift(s)
	return &u, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
