package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
)

// Service implements the supplier use cases.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, dto DTO) (*DTO, error) {
	exists, err := s.repo.ExistsByEmail(ctx, dto.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The supplier email already exists.")
	}
	exists, err = s.repo.ExistsByPhoneNumber(ctx, dto.PhoneNumber, 0)
	if err != nil {
		return nil, fmt.Errorf("check phone number: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The supplier phone number already exists.")
	}

	sup := Supplier{
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		PhoneNumber: dto.PhoneNumber,
		Email:       dto.Email,
		Company:     dto.Company,
	}
	id, err := s.repo.Create(ctx, sup)
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	sup.ID = id
	out := toDTO(sup)
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto DTO) (*DTO, error) {
	existing, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(fmt.Sprintf("The supplier with id %d does not exist.", id))
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	exists, err := s.repo.ExistsByEmail(ctx, dto.Email, id)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The supplier email already exists.")
	}
	exists, err = s.repo.ExistsByPhoneNumber(ctx, dto.PhoneNumber, id)
	if err != nil {
		return nil, fmt.Errorf("check phone number: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The supplier phone number already exists.")
	}

	existing.FirstName = dto.FirstName
	existing.LastName = dto.LastName
	existing.PhoneNumber = dto.PhoneNumber
	existing.Email = dto.Email
	existing.Company = dto.Company

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	out := toDTO(*existing)
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetAny(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.NotFound(fmt.Sprintf("The supplier with id %d does not exist.", id))
		}
		return fmt.Errorf("get supplier: %w", err)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DTO, error) {
	sup, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(fmt.Sprintf("The supplier with id %d does not exist.", id))
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	if sup.Deleted {
		return nil, httpx.NotFound(fmt.Sprintf("The supplier with id %d does not exist.", id))
	}
	out := toDTO(*sup)
	return &out, nil
}

func (s *Service) List(ctx context.Context) ([]DTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return toDTOs(items), nil
}

// GetAny exposes the raw row lookup used by the product update flow to
// resolve its optional supplier reference.
func (s *Service) GetAny(ctx context.Context, id int64) (*Supplier, error) {
	return s.repo.GetAny(ctx, id)
}
