package suppliers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists suppliers. Uniqueness checks scan deleted rows as well.
type Repository interface {
	Create(ctx context.Context, s Supplier) (int64, error)
	Update(ctx context.Context, s Supplier) error
	SoftDelete(ctx context.Context, id int64) error
	GetAny(ctx context.Context, id int64) (*Supplier, error)
	List(ctx context.Context) ([]Supplier, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByPhoneNumber(ctx context.Context, phoneNumber string, excludeID int64) (bool, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository builds the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Create(ctx context.Context, s Supplier) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO suppliers (first_name, last_name, phone_number, email, company, deleted)
VALUES ($1,$2,$3,$4,$5,FALSE) RETURNING id`, s.FirstName, s.LastName, s.PhoneNumber, s.Email, s.Company).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, s Supplier) error {
	_, err := r.db.Exec(ctx, `UPDATE suppliers SET first_name=$2, last_name=$3, phone_number=$4, email=$5, company=$6 WHERE id=$1`,
		s.ID, s.FirstName, s.LastName, s.PhoneNumber, s.Email, s.Company)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE suppliers SET deleted=TRUE WHERE id=$1`, id)
	return err
}

func (r *repository) GetAny(ctx context.Context, id int64) (*Supplier, error) {
	var s Supplier
	err := r.db.QueryRow(ctx, `SELECT id, first_name, last_name, phone_number, email, company, deleted FROM suppliers WHERE id=$1`, id).
		Scan(&s.ID, &s.FirstName, &s.LastName, &s.PhoneNumber, &s.Email, &s.Company, &s.Deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT id, first_name, last_name, phone_number, email, company, deleted FROM suppliers WHERE deleted=FALSE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.PhoneNumber, &s.Email, &s.Company, &s.Deleted); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE email=$1 AND ($2 = 0 OR id <> $2))`, email, excludeID)
}

func (r *repository) ExistsByPhoneNumber(ctx context.Context, phoneNumber string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE phone_number=$1 AND ($2 = 0 OR id <> $2))`, phoneNumber, excludeID)
}

func (r *repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, query, args...).Scan(&found)
	return found, err
}
