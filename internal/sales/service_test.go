package sales

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacen-erp/almacen-erp/internal/clients"
	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
	"github.com/almacen-erp/almacen-erp/internal/products"
	"github.com/almacen-erp/almacen-erp/internal/users"
)

// fakeStores backs the reference-resolution ports with maps. The product map
// is shared with the repository fake so stock decrements are visible to
// later lookups.
type fakeStores struct {
	products map[int64]*products.Product
	users    map[int64]*users.User
	clients  map[int64]*clients.Client
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		products: make(map[int64]*products.Product),
		users:    make(map[int64]*users.User),
		clients:  make(map[int64]*clients.Client),
	}
}

func (f *fakeStores) GetAny(ctx context.Context, id int64) (*products.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeUserStore struct{ stores *fakeStores }

func (f fakeUserStore) GetAny(ctx context.Context, id int64) (*users.User, error) {
	u, ok := f.stores.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeClientStore struct{ stores *fakeStores }

func (f fakeClientStore) GetAny(ctx context.Context, id int64) (*clients.Client, error) {
	c, ok := f.stores.clients[id]
	if !ok {
		return nil, clients.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// memRepo keeps sales in a map and stages transaction writes so a failing
// transaction leaves no trace, matching the database behavior.
type memRepo struct {
	stores       *fakeStores
	sales        map[int64]*Sale
	nextSaleID   int64
	nextDetailID int64
}

func newMemRepo(stores *fakeStores) *memRepo {
	return &memRepo{stores: stores, sales: make(map[int64]*Sale), nextSaleID: 1, nextDetailID: 1}
}

type memTx struct {
	repo       *memRepo
	sale       *Sale
	details    []SaleDetail
	decrements map[int64]int
}

func (r *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memTx{repo: r, decrements: make(map[int64]int)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if tx.sale != nil {
		committed := *tx.sale
		committed.Details = tx.details
		r.sales[committed.ID] = &committed
	}
	for id, amount := range tx.decrements {
		r.stores.products[id].Stock -= amount
	}
	return nil
}

func (t *memTx) InsertSale(ctx context.Context, s Sale) (int64, error) {
	id := t.repo.nextSaleID
	t.repo.nextSaleID++
	s.ID = id
	s.Details = nil
	t.sale = &s
	return id, nil
}

func (t *memTx) InsertDetail(ctx context.Context, d SaleDetail) (int64, error) {
	id := t.repo.nextDetailID
	t.repo.nextDetailID++
	d.ID = id
	t.details = append(t.details, d)
	return id, nil
}

func (t *memTx) DecrementStock(ctx context.Context, productID int64, amount int) error {
	p, ok := t.repo.stores.products[productID]
	if !ok {
		return ErrInsufficientStock
	}
	if p.Stock-t.decrements[productID] < amount {
		return ErrInsufficientStock
	}
	t.decrements[productID] += amount
	return nil
}

func (r *memRepo) GetAny(ctx context.Context, id int64) (*Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) list(match func(*Sale) bool) []Sale {
	out := []Sale{}
	for _, s := range r.sales {
		if !s.Deleted && match(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memRepo) ListActive(ctx context.Context) ([]Sale, error) {
	return r.list(func(*Sale) bool { return true }), nil
}

func (r *memRepo) ListByClient(ctx context.Context, clientID int64) ([]Sale, error) {
	return r.list(func(s *Sale) bool { return s.ClientID != nil && *s.ClientID == clientID }), nil
}

func (r *memRepo) ListByUser(ctx context.Context, userID int64) ([]Sale, error) {
	return r.list(func(s *Sale) bool { return s.UserID == userID }), nil
}

func (r *memRepo) ListByProduct(ctx context.Context, productID int64) ([]Sale, error) {
	return r.list(func(s *Sale) bool {
		for _, d := range s.Details {
			if d.ProductID == productID {
				return true
			}
		}
		return false
	}), nil
}

func (r *memRepo) ListByMonth(ctx context.Context, month int) ([]Sale, error) {
	return r.list(func(s *Sale) bool { return int(s.SaleDate.Month()) == month }), nil
}

func (r *memRepo) ListByYear(ctx context.Context, year int) ([]Sale, error) {
	return r.list(func(s *Sale) bool { return s.SaleDate.Year() == year }), nil
}

func (r *memRepo) ListBetween(ctx context.Context, start, end time.Time) ([]Sale, error) {
	return r.list(func(s *Sale) bool {
		return !s.SaleDate.Before(start) && !s.SaleDate.After(end)
	}), nil
}

func (r *memRepo) SetDeleted(ctx context.Context, id int64) error {
	if s, ok := r.sales[id]; ok {
		s.Deleted = true
		for i := range s.Details {
			s.Details[i].Deleted = true
		}
	}
	return nil
}

type fakeNotifier struct {
	notified []int64
}

func (f *fakeNotifier) NotifyLowStock(ctx context.Context, productID int64) error {
	f.notified = append(f.notified, productID)
	return nil
}

type fixture struct {
	service  *Service
	repo     *memRepo
	stores   *fakeStores
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := newFakeStores()
	repo := newMemRepo(stores)
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, repo, stores, fakeUserStore{stores}, fakeClientStore{stores}, nil, notifier, 5)

	stores.users[1] = &users.User{ID: 1, FirstName: "Ana", LastName: "Admin", UserName: "admin", Enabled: true}
	stores.clients[1] = &clients.Client{ID: 1, FirstName: "Maria", LastName: "Gomez", Dni: "30111222"}
	stores.products[1] = &products.Product{ID: 1, Number: "PROD-001", Name: "Laptop", Stock: 10, Price: 5, UserID: 1}
	stores.products[2] = &products.Product{ID: 2, Number: "PROD-002", Name: "Monitor", Stock: 4, Price: 100, UserID: 1}

	return &fixture{service: svc, repo: repo, stores: stores, notifier: notifier}
}

func saleRequest(userID int64, clientID *int64, lines ...DetailDTO) DTO {
	return DTO{UserID: userID, ClientID: clientID, SaleDetail: lines}
}

func line(productID int64, amount int) DetailDTO {
	return DetailDTO{Amount: amount, Product: products.DTO{ID: productID}}
}

func TestCreateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the sale and decrements stock", func(t *testing.T) {
		f := newFixture(t)
		clientID := int64(1)

		out, err := f.service.Create(ctx, saleRequest(1, &clientID, line(1, 3)))
		require.NoError(t, err)

		assert.Equal(t, 15.0, out.TotalPrice)
		assert.Equal(t, int64(1), out.UserID)
		require.NotNil(t, out.ClientID)
		assert.Equal(t, int64(1), *out.ClientID)
		assert.NotEmpty(t, out.SaleDate)
		require.Len(t, out.SaleDetail, 1)
		assert.Equal(t, 3, out.SaleDetail[0].Amount)
		assert.Equal(t, 7, out.SaleDetail[0].Product.Stock)

		assert.Equal(t, 7, f.stores.products[1].Stock)
		stored, err := f.repo.GetAny(ctx, out.ID)
		require.NoError(t, err)
		assert.Equal(t, 15.0, stored.TotalPrice)
		require.Len(t, stored.Details, 1)
	})

	t.Run("total price sums all line items", func(t *testing.T) {
		f := newFixture(t)
		f.stores.products[2].Stock = 10

		out, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 2), line(2, 3)))
		require.NoError(t, err)

		assert.Equal(t, 2*5.0+3*100.0, out.TotalPrice)
		assert.Equal(t, 8, f.stores.products[1].Stock)
		assert.Equal(t, 7, f.stores.products[2].Stock)
	})

	t.Run("rejects empty details", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, saleRequest(1, nil))
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrValidation)
		assert.EqualError(t, err, "The sale or its details cannot be null or empty")
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, saleRequest(0, nil, line(1, 1)))
		require.Error(t, err)
		assert.EqualError(t, err, "The user id is required.")
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		f := newFixture(t)
		for _, amount := range []int{0, -1} {
			_, err := f.service.Create(ctx, saleRequest(1, nil, line(1, amount)))
			require.Error(t, err)
			assert.EqualError(t, err, "The amount in sale details must be greater than 0")
		}
		assert.Equal(t, 10, f.stores.products[1].Stock)
	})

	t.Run("rejects unknown products", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, saleRequest(1, nil, line(99, 1)))
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrNotFound)
		assert.EqualError(t, err, "The product with id 99 does not exist.")
	})

	t.Run("rejects insufficient stock", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, saleRequest(1, nil, line(2, 5)))
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrValidation)
		assert.EqualError(t, err, "The product in sale details does not have enough stock")
		assert.Equal(t, 4, f.stores.products[2].Stock)
	})

	t.Run("rejects unknown user and leaves stock untouched", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, saleRequest(77, nil, line(1, 1)))
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrNotFound)
		assert.EqualError(t, err, "User not found")
		assert.Equal(t, 10, f.stores.products[1].Stock)
		assert.Empty(t, f.repo.sales)
	})

	t.Run("records the sale without a client when the client is unknown", func(t *testing.T) {
		f := newFixture(t)
		clientID := int64(404)

		out, err := f.service.Create(ctx, saleRequest(1, &clientID, line(1, 1)))
		require.NoError(t, err)
		assert.Nil(t, out.ClientID)
	})

	t.Run("a failing line rolls back the whole sale", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 2), line(2, 5)))
		require.Error(t, err)
		assert.EqualError(t, err, "The product in sale details does not have enough stock")

		assert.Equal(t, 10, f.stores.products[1].Stock)
		assert.Equal(t, 4, f.stores.products[2].Stock)
		assert.Empty(t, f.repo.sales)
	})

	t.Run("notifies when stock falls to the threshold", func(t *testing.T) {
		f := newFixture(t)

		// 10 - 5 = 5, exactly at the threshold.
		_, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 5)))
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, f.notifier.notified)
	})

	t.Run("does not notify while stock stays above the threshold", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 2)))
		require.NoError(t, err)
		assert.Empty(t, f.notifier.notified)
	})
}

func TestDeleteSale(t *testing.T) {
	ctx := context.Background()

	t.Run("soft-deletes without restoring stock", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 3)))
		require.NoError(t, err)

		require.NoError(t, f.service.Delete(ctx, out.ID))
		assert.Equal(t, 7, f.stores.products[1].Stock)

		_, err = f.service.Get(ctx, out.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrNotFound)
	})

	t.Run("deleting an already deleted sale succeeds", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 1)))
		require.NoError(t, err)

		require.NoError(t, f.service.Delete(ctx, out.ID))
		require.NoError(t, f.service.Delete(ctx, out.ID))
	})

	t.Run("missing sale is not found", func(t *testing.T) {
		f := newFixture(t)
		err := f.service.Delete(ctx, 42)
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrNotFound)
		assert.EqualError(t, err, "The sale with id 42 does not exist.")
	})
}

func TestGetSale(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the sale with resolved products", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 2)))
		require.NoError(t, err)

		out, err := f.service.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, out.ID)
		require.Len(t, out.SaleDetail, 1)
	})

	t.Run("missing and deleted sales share the same error", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Get(ctx, 9)
		require.Error(t, err)
		assert.EqualError(t, err, "The sale with id 9 does not exist.")

		created, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 1)))
		require.NoError(t, err)
		require.NoError(t, f.service.Delete(ctx, created.ID))

		_, err = f.service.Get(ctx, created.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrNotFound)
	})
}

func TestListSales(t *testing.T) {
	ctx := context.Background()

	t.Run("filters exclude deleted sales", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 1)))
		require.NoError(t, err)
		_, err = f.service.Create(ctx, saleRequest(1, nil, line(1, 1)))
		require.NoError(t, err)
		require.NoError(t, f.service.Delete(ctx, first.ID))

		out, err := f.service.List(ctx)
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("client with no sales yields an empty list", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.service.ListByClient(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("by user and by product", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 1)))
		require.NoError(t, err)

		byUser, err := f.service.ListByUser(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, byUser, 1)

		byProduct, err := f.service.ListByProduct(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, byProduct, 1)

		none, err := f.service.ListByProduct(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("month bounds", func(t *testing.T) {
		f := newFixture(t)
		for _, month := range []int{0, 13} {
			_, err := f.service.ListByMonth(ctx, month)
			require.Error(t, err)
			assert.EqualError(t, err, "Invalid month number. The month number must be between 1 and 12")
		}
		out, err := f.service.ListByMonth(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("year bounds", func(t *testing.T) {
		f := newFixture(t)
		for _, year := range []int{2019, 10000} {
			_, err := f.service.ListByYear(ctx, year)
			require.Error(t, err)
			assert.EqualError(t, err, "The year must be in a valid range (2020-9999)")
		}
		out, err := f.service.ListByYear(ctx, 2026)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("between validates order and format", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ListBetween(ctx, "02/06/2026 00:00:00", "01/06/2026 00:00:00")
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrIllegalArgument)
		assert.EqualError(t, err, "The start date cannot be later than the end date.")

		_, err = f.service.ListBetween(ctx, "2026-06-01", "2026-06-02")
		require.Error(t, err)
		assert.EqualError(t, err, "The date provided does not comply with the format dd/MM/yyyy HH:mm:ss")

		out, err := f.service.ListBetween(ctx, "01/06/2026 00:00:00", "01/06/2026 00:00:00")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("between includes sales inside the range", func(t *testing.T) {
		f := newFixture(t)
		f.service.now = func() time.Time {
			return time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local)
		}
		_, err := f.service.Create(ctx, saleRequest(1, nil, line(1, 1)))
		require.NoError(t, err)

		out, err := f.service.ListBetween(ctx, "01/06/2026 00:00:00", "30/06/2026 23:59:59")
		require.NoError(t, err)
		assert.Len(t, out, 1)

		byMonth, err := f.service.ListByMonth(ctx, 6)
		require.NoError(t, err)
		assert.Len(t, byMonth, 1)

		byYear, err := f.service.ListByYear(ctx, 2026)
		require.NoError(t, err)
		assert.Len(t, byYear, 1)
	})
}
