package pg

import (
	"context"
	"database/sql"
	"errors"

	"bauliver.org/internal/permit"
)

// PermitStore is the SQL-backed permit repository.
type PermitStore struct {
	db *sql.DB
}

var _ permit.Store = (*PermitStore)(nil)

const permitColumns = `id, user_id, customer_name, address, system_size_kw, status, pdf_url, created_at, updated_at`

func (s *PermitStore) Create(ctx context.Context, p *permit.Permit) error {
	_, err := s.db.ExecContext(ctx, `
		insert into permits(id, user_id, customer_name, address, system_size_kw, status, pdf_url, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, p.ID, p.UserID, p.CustomerName, p.Address, p.SystemSizeKW, p.Status, p.PDFURL, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *PermitStore) Find(ctx context.Context, id string) (*permit.Permit, error) {
	var p permit.Permit
	err := s.db.QueryRowContext(ctx,
		`select `+permitColumns+` from permits where id=$1`, id).
		Scan(&p.ID, &p.UserID, &p.CustomerName, &p.Address, &p.SystemSizeKW,
			&p.Status, &p.PDFURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, permit.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PermitStore) List(ctx context.Context) ([]*permit.Permit, error) {
	return s.queryPermits(ctx, `select `+permitColumns+` from permits order by id`)
}

func (s *PermitStore) ListByUser(ctx context.Context, userID string) ([]*permit.Permit, error) {
	return s.queryPermits(ctx,
		`select `+permitColumns+` from permits where user_id=$1 order by id`, userID)
}

func (s *PermitStore) Update(ctx context.Context, p *permit.Permit) error {
	res, err := s.db.ExecContext(ctx, `
		update permits
		set customer_name=$2, address=$3, system_size_kw=$4, status=$5, pdf_url=$6, updated_at=$7
		where id=$1
	`, p.ID, p.CustomerName, p.Address, p.SystemSizeKW, p.Status, p.PDFURL, p.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res, permit.ErrNotFound)
}

func (s *PermitStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from permits where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, permit.ErrNotFound)
}

func (s *PermitStore) queryPermits(ctx context.Context, query string, args ...any) ([]*permit.Permit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*permit.Permit
	for rows.Next() {
		var p permit.Permit
		if err := rows.Scan(&p.ID, &p.UserID, &p.CustomerName, &p.Address,
			&p.SystemSizeKW, &p.Status, &p.PDFURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// requireRow converts a zero-row result into notFound.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
