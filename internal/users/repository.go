package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users. Uniqueness checks scan deleted rows as well.
type Repository interface {
	Create(ctx context.Context, u User) (int64, error)
	Update(ctx context.Context, u User) error
	SoftDelete(ctx context.Context, id int64) error
	GetAny(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	ExistsByUserName(ctx context.Context, userName string, excludeID int64) (bool, error)
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

const userColumns = "id, first_name, last_name, user_name, password_hash, phone_number, email, type, enabled, deleted"

func (r *repository) Create(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO users (first_name, last_name, user_name, password_hash, phone_number, email, type, enabled, deleted)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE) RETURNING id`,
		u.FirstName, u.LastName, u.UserName, u.PasswordHash, u.PhoneNumber, u.Email, u.Type, u.Enabled).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, u User) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET first_name=$2, last_name=$3, user_name=$4, password_hash=$5, phone_number=$6, email=$7, type=$8, enabled=$9
WHERE id=$1`,
		u.ID, u.FirstName, u.LastName, u.UserName, u.PasswordHash, u.PhoneNumber, u.Email, u.Type, u.Enabled)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET deleted=TRUE WHERE id=$1`, id)
	return err
}

func (r *repository) GetAny(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.UserName, &u.PasswordHash, &u.PhoneNumber, &u.Email, &u.Type, &u.Enabled, &u.Deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE deleted=FALSE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.UserName, &u.PasswordHash, &u.PhoneNumber, &u.Email, &u.Type, &u.Enabled, &u.Deleted); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *repository) ExistsByUserName(ctx context.Context, userName string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_name=$1 AND ($2 = 0 OR id <> $2))`, userName, excludeID)
}

func (r *repository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1 AND ($2 = 0 OR id <> $2))`, email, excludeID)
}

func (r *repository) ExistsByPhoneNumber(ctx context.Context, phoneNumber string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE phone_number=$1 AND ($2 = 0 OR id <> $2))`, phoneNumber, excludeID)
}

func (r *repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, query, args...).Scan(&found)
	return found, err
}
