package pg

import (
	"context"
	"database/sql"
	"errors"

	"bauliver.org/internal/auth"
)

// UserStore is the SQL-backed credential store.
type UserStore struct {
	db *sql.DB
}

var _ auth.UserStore = (*UserStore)(nil)

const userColumns = `id, email, name, role, phone, password_hash, is_active, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, email, name, role, phone, password_hash, is_active, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, u.ID, u.Email, u.Name, u.Role, u.Phone, u.PasswordHash, u.Active, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrDuplicateEmail
	}
	return err
}

func (s *UserStore) Find(ctx context.Context, id string) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email))
}

func (s *UserStore) Update(ctx context.Context, u *auth.User) error {
	res, err := s.db.ExecContext(ctx, `
		update users
		set email=$2, name=$3, role=$4, phone=$5, password_hash=$6, is_active=$7, updated_at=$8
		where id=$1
	`, u.ID, u.Email, u.Name, u.Role, u.Phone, u.PasswordHash, u.Active, u.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *UserStore) scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Phone,
		&u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
