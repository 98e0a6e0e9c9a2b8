package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almacen-erp/almacen-erp/internal/platform/db"
	"github.com/almacen-erp/almacen-erp/internal/products"
)

// Repository persists the sale aggregate and serves the read-side filters.
// Filters see only non-deleted sales; GetAny is the raw lookup.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetAny(ctx context.Context, id int64) (*Sale, error)
	ListActive(ctx context.Context) ([]Sale, error)
	ListByClient(ctx context.Context, clientID int64) ([]Sale, error)
	ListByUser(ctx context.Context, userID int64) ([]Sale, error)
	ListByProduct(ctx context.Context, productID int64) ([]Sale, error)
	ListByMonth(ctx context.Context, month int) ([]Sale, error)
	ListByYear(ctx context.Context, year int) ([]Sale, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]Sale, error)
	SetDeleted(ctx context.Context, id int64) error
}

// TxRepository exposes the operations the sale workflow runs inside one
// transaction: aggregate persistence and the conditional stock decrements.
type TxRepository interface {
	InsertSale(ctx context.Context, s Sale) (int64, error)
	InsertDetail(ctx context.Context, d SaleDetail) (int64, error)
	DecrementStock(ctx context.Context, productID int64, amount int) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertSale(ctx context.Context, s Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (sale_date, total_price, user_id, client_id, deleted)
VALUES ($1,$2,$3,$4,FALSE) RETURNING id`,
		s.SaleDate, s.TotalPrice, s.UserID, nullInt(s.ClientID)).Scan(&id)
	return id, err
}

func (r *txRepository) InsertDetail(ctx context.Context, d SaleDetail) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sale_details (sale_id, amount, product_id, deleted)
VALUES ($1,$2,$3,FALSE) RETURNING id`, d.SaleID, d.Amount, d.ProductID).Scan(&id)
	return id, err
}

// DecrementStock applies the decrement only when enough stock remains, so
// the check and the mutation are one atomic statement. Zero rows affected
// means a concurrent sale consumed the stock first.
func (r *txRepository) DecrementStock(ctx context.Context, productID int64, amount int) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`, productID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *repository) GetAny(ctx context.Context, id int64) (*Sale, error) {
	row := r.db.QueryRow(ctx, `SELECT id, sale_date, total_price, user_id, client_id, deleted FROM sales WHERE id=$1`, id)
	s, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sales := []Sale{*s}
	if err := r.loadDetails(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (r *repository) ListActive(ctx context.Context) ([]Sale, error) {
	return r.listWhere(ctx, `deleted = FALSE`)
}

func (r *repository) ListByClient(ctx context.Context, clientID int64) ([]Sale, error) {
	return r.listWhere(ctx, `deleted = FALSE AND client_id = $1`, clientID)
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Sale, error) {
	return r.listWhere(ctx, `deleted = FALSE AND user_id = $1`, userID)
}

func (r *repository) ListByProduct(ctx context.Context, productID int64) ([]Sale, error) {
	return r.listWhere(ctx, `deleted = FALSE AND EXISTS (SELECT 1 FROM sale_details sd WHERE sd.sale_id = sales.id AND sd.product_id = $1)`, productID)
}

func (r *repository) ListByMonth(ctx context.Context, month int) ([]Sale, error) {
	return r.listWhere(ctx, `deleted = FALSE AND EXTRACT(MONTH FROM sale_date) = $1`, month)
}

func (r *repository) ListByYear(ctx context.Context, year int) ([]Sale, error) {
	return r.listWhere(ctx, `deleted = FALSE AND EXTRACT(YEAR FROM sale_date) = $1`, year)
}

func (r *repository) ListBetween(ctx context.Context, start, end time.Time) ([]Sale, error) {
	return r.listWhere(ctx, `deleted = FALSE AND sale_date BETWEEN $1 AND $2`, start, end)
}

// SetDeleted flips the flag on the header and its line items. The rows stay.
func (r *repository) SetDeleted(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE sales SET deleted=TRUE WHERE id=$1`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `UPDATE sale_details SET deleted=TRUE WHERE sale_id=$1`, id)
	return err
}

func (r *repository) listWhere(ctx context.Context, where string, args ...any) ([]Sale, error) {
	rows, err := r.db.Query(ctx, `SELECT id, sale_date, total_price, user_id, client_id, deleted FROM sales WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) loadDetails(ctx context.Context, sales []Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(sales))
	byID := make(map[int64]*Sale, len(sales))
	for i := range sales {
		ids = append(ids, sales[i].ID)
		byID[sales[i].ID] = &sales[i]
	}

	rows, err := r.db.Query(ctx, `SELECT d.id, d.sale_id, d.amount, d.product_id, d.deleted,
       p.number, p.name, p.stock, p.bar_code, p.price, p.description, p.category, p.image, p.user_id, p.supplier_id, p.deleted
FROM sale_details d
JOIN products p ON p.id = d.product_id
WHERE d.sale_id = ANY($1)
ORDER BY d.sale_id, d.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d SaleDetail
		var p products.Product
		var supplierID pgtype.Int8
		err := rows.Scan(&d.ID, &d.SaleID, &d.Amount, &d.ProductID, &d.Deleted,
			&p.Number, &p.Name, &p.Stock, &p.BarCode, &p.Price, &p.Description, &p.Category, &p.Image, &p.UserID, &supplierID, &p.Deleted)
		if err != nil {
			return err
		}
		p.ID = d.ProductID
		if supplierID.Valid {
			val := supplierID.Int64
			p.SupplierID = &val
		}
		d.Product = &p
		if s, ok := byID[d.SaleID]; ok {
			s.Details = append(s.Details, d)
		}
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var clientID pgtype.Int8
	if err := row.Scan(&s.ID, &s.SaleDate, &s.TotalPrice, &s.UserID, &clientID, &s.Deleted); err != nil {
		return nil, err
	}
	if clientID.Valid {
		val := clientID.Int64
		s.ClientID = &val
	}
	return &s, nil
}

func nullInt(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}
