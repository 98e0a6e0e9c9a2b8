package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
	"github.com/almacen-erp/almacen-erp/internal/suppliers"
	"github.com/almacen-erp/almacen-erp/internal/users"
)

// UserStore resolves user references when a product is updated.
type UserStore interface {
	GetAny(ctx context.Context, id int64) (*users.User, error)
}

// SupplierStore resolves the optional supplier reference.
type SupplierStore interface {
	GetAny(ctx context.Context, id int64) (*suppliers.Supplier, error)
}

// Service implements the product use cases.
type Service struct {
	repo      Repository
	users     UserStore
	suppliers SupplierStore
}

// NewService builds Service.
func NewService(repo Repository, userStore UserStore, supplierStore SupplierStore) *Service {
	return &Service{repo: repo, users: userStore, suppliers: supplierStore}
}

func (s *Service) Create(ctx context.Context, dto DTO) (*DTO, error) {
	exists, err := s.repo.ExistsByBarCode(ctx, dto.BarCode, 0)
	if err != nil {
		return nil, fmt.Errorf("check barcode: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The product barcode already exists.")
	}
	exists, err = s.repo.ExistsByNumber(ctx, dto.Number, 0)
	if err != nil {
		return nil, fmt.Errorf("check number: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The product number already exists.")
	}
	if dto.UserID == 0 {
		return nil, httpx.Validation("The user id is required.")
	}
	if dto.Price <= 0 {
		return nil, httpx.IllegalArgument("The price must be greater than 0.")
	}

	p := Product{
		Number:      dto.Number,
		Name:        dto.Name,
		Stock:       dto.Stock,
		BarCode:     dto.BarCode,
		Price:       dto.Price,
		Description: dto.Description,
		Category:    dto.Category,
		Image:       dto.Image,
		UserID:      dto.UserID,
		SupplierID:  dto.SupplierID,
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	p.ID = id
	out := ToDTO(p)
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto DTO) (*DTO, error) {
	existing, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(fmt.Sprintf("The product with id %d does not exist.", id))
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	exists, err := s.repo.ExistsByNumber(ctx, dto.Number, id)
	if err != nil {
		return nil, fmt.Errorf("check number: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The product number already exists")
	}
	exists, err = s.repo.ExistsByBarCode(ctx, dto.BarCode, id)
	if err != nil {
		return nil, fmt.Errorf("check barcode: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The product barcode already exists")
	}

	if _, err := s.users.GetAny(ctx, dto.UserID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, httpx.NotFound(fmt.Sprintf("User not found with ID: %d", dto.UserID))
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if dto.SupplierID != nil {
		if _, err := s.suppliers.GetAny(ctx, *dto.SupplierID); err != nil {
			if errors.Is(err, suppliers.ErrNotFound) {
				return nil, httpx.NotFound(fmt.Sprintf("Supplier not found with ID: %d", *dto.SupplierID))
			}
			return nil, fmt.Errorf("resolve supplier: %w", err)
		}
	}

	// Full-field overwrite of the mutable subset. The id and deleted flag are
	// never touched by an update.
	existing.Number = dto.Number
	existing.Name = dto.Name
	existing.Stock = dto.Stock
	existing.BarCode = dto.BarCode
	existing.Price = dto.Price
	existing.Description = dto.Description
	existing.Category = dto.Category
	existing.Image = dto.Image
	existing.UserID = dto.UserID
	existing.SupplierID = dto.SupplierID

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	out := ToDTO(*existing)
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetAny(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.NotFound(fmt.Sprintf("The product with id %d does not exist.", id))
		}
		return fmt.Errorf("get product: %w", err)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DTO, error) {
	p, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(fmt.Sprintf("The product with id %d does not exist.", id))
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p.Deleted {
		return nil, httpx.NotFound(fmt.Sprintf("The product with id %d does not exist.", id))
	}
	out := ToDTO(*p)
	return &out, nil
}

func (s *Service) List(ctx context.Context) ([]DTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toDTOs(items), nil
}
