package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists clients. The DNI uniqueness check scans deleted rows as
// well, so a deleted client's DNI cannot be reused.
type Repository interface {
	Create(ctx context.Context, c Client) (int64, error)
	Update(ctx context.Context, c Client) error
	SoftDelete(ctx context.Context, id int64) error
	GetAny(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	ExistsByDni(ctx context.Context, dni string, excludeID int64) (bool, error)
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

func (r *repository) Create(ctx context.Context, c Client) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO clients (first_name, last_name, dni, deleted)
VALUES ($1,$2,$3,FALSE) RETURNING id`, c.FirstName, c.LastName, c.Dni).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, c Client) error {
	_, err := r.db.Exec(ctx, `UPDATE clients SET first_name=$2, last_name=$3, dni=$4 WHERE id=$1`,
		c.ID, c.FirstName, c.LastName, c.Dni)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE clients SET deleted=TRUE WHERE id=$1`, id)
	return err
}

func (r *repository) GetAny(ctx context.Context, id int64) (*Client, error) {
	var c Client
	err := r.db.QueryRow(ctx, `SELECT id, first_name, last_name, dni, deleted FROM clients WHERE id=$1`, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Dni, &c.Deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.db.Query(ctx, `SELECT id, first_name, last_name, dni, deleted FROM clients WHERE deleted=FALSE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Client{}
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Dni, &c.Deleted); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *repository) ExistsByDni(ctx context.Context, dni string, excludeID int64) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE dni=$1 AND ($2 = 0 OR id <> $2))`, dni, excludeID).Scan(&found)
	return found, err
}
