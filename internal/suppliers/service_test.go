package suppliers

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
)

type memRepo struct {
	items  map[int64]*Supplier
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[int64]*Supplier), nextID: 1}
}

func (r *memRepo) Create(ctx context.Context, s Supplier) (int64, error) {
	id := r.nextID
	r.nextID++
	s.ID = id
	r.items[id] = &s
	return id, nil
}

func (r *memRepo) Update(ctx context.Context, s Supplier) error {
	r.items[s.ID] = &s
	return nil
}

func (r *memRepo) SoftDelete(ctx context.Context, id int64) error {
	if s, ok := r.items[id]; ok {
		s.Deleted = true
	}
	return nil
}

func (r *memRepo) GetAny(ctx context.Context, id int64) (*Supplier, error) {
	s, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) List(ctx context.Context) ([]Supplier, error) {
	out := []Supplier{}
	for _, s := range r.items {
		if !s.Deleted {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	for _, s := range r.items {
		if s.Email == email && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ExistsByPhoneNumber(ctx context.Context, phoneNumber string, excludeID int64) (bool, error) {
	for _, s := range r.items {
		if s.PhoneNumber == phoneNumber && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func validSupplier() DTO {
	return DTO{
		FirstName:   "Carlos",
		LastName:    "Perez",
		PhoneNumber: "011-4555000",
		Email:       "ventas@distribuidora.local",
		Company:     "Distribuidora Central",
	}
}

func TestSupplierCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	out, err := svc.Create(ctx, validSupplier())
	require.NoError(t, err)
	assert.NotZero(t, out.ID)

	dup := validSupplier()
	dup.PhoneNumber = "011-4999999"
	_, err = svc.Create(ctx, dup)
	require.Error(t, err)
	assert.EqualError(t, err, "The supplier email already exists.")

	dup = validSupplier()
	dup.Email = "otro@distribuidora.local"
	_, err = svc.Create(ctx, dup)
	require.Error(t, err)
	assert.EqualError(t, err, "The supplier phone number already exists.")
}

func TestSupplierUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	_, err := svc.Update(ctx, 8, validSupplier())
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.EqualError(t, err, "The supplier with id 8 does not exist.")

	created, err := svc.Create(ctx, validSupplier())
	require.NoError(t, err)

	dto := validSupplier()
	dto.Company = "Distribuidora Norte"
	out, err := svc.Update(ctx, created.ID, dto)
	require.NoError(t, err)
	assert.Equal(t, "Distribuidora Norte", out.Company)
}

func TestSupplierDeleteAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	created, err := svc.Create(ctx, validSupplier())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	err = svc.Delete(ctx, 42)
	require.Error(t, err)
	assert.EqualError(t, err, "The supplier with id 42 does not exist.")
}
