package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists products. Uniqueness checks intentionally scan deleted
// rows as well.
type Repository interface {
	Create(ctx context.Context, p Product) (int64, error)
	Update(ctx context.Context, p Product) error
	SoftDelete(ctx context.Context, id int64) error
	GetAny(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	ExistsByNumber(ctx context.Context, number string, excludeID int64) (bool, error)
	ExistsByBarCode(ctx context.Context, barCode string, excludeID int64) (bool, error)
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

const productColumns = "id, number, name, stock, bar_code, price, description, category, image, user_id, supplier_id, deleted"

func (r *repository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO products (number, name, stock, bar_code, price, description, category, image, user_id, supplier_id, deleted)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,FALSE) RETURNING id`,
		p.Number, p.Name, p.Stock, p.BarCode, p.Price, p.Description, p.Category, p.Image, p.UserID, nullInt(p.SupplierID)).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, p Product) error {
	_, err := r.db.Exec(ctx, `UPDATE products SET number=$2, name=$3, stock=$4, bar_code=$5, price=$6, description=$7, category=$8, image=$9, user_id=$10, supplier_id=$11
WHERE id=$1`,
		p.ID, p.Number, p.Name, p.Stock, p.BarCode, p.Price, p.Description, p.Category, p.Image, p.UserID, nullInt(p.SupplierID))
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE products SET deleted=TRUE WHERE id=$1`, id)
	return err
}

func (r *repository) GetAny(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE deleted=FALSE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r *repository) ExistsByNumber(ctx context.Context, number string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE number=$1 AND ($2 = 0 OR id <> $2))`, number, excludeID)
}

func (r *repository) ExistsByBarCode(ctx context.Context, barCode string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE bar_code=$1 AND ($2 = 0 OR id <> $2))`, barCode, excludeID)
}

func (r *repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, query, args...).Scan(&found)
	return found, err
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var supplierID pgtype.Int8
	err := row.Scan(&p.ID, &p.Number, &p.Name, &p.Stock, &p.BarCode, &p.Price,
		&p.Description, &p.Category, &p.Image, &p.UserID, &supplierID, &p.Deleted)
	if err != nil {
		return nil, err
	}
	if supplierID.Valid {
		val := supplierID.Int64
		p.SupplierID = &val
	}
	return &p, nil
}

func nullInt(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}
