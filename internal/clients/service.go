package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
)

// Service implements the client use cases.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, dto DTO) (*DTO, error) {
	exists, err := s.repo.ExistsByDni(ctx, dto.Dni, 0)
	if err != nil {
		return nil, fmt.Errorf("check dni: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The client already exists")
	}

	c := Client{FirstName: dto.FirstName, LastName: dto.LastName, Dni: dto.Dni}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.ID = id
	out := toDTO(c)
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto DTO) (*DTO, error) {
	existing, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound("The client does not exist")
		}
		return nil, fmt.Errorf("get client: %w", err)
	}

	exists, err := s.repo.ExistsByDni(ctx, dto.Dni, id)
	if err != nil {
		return nil, fmt.Errorf("check dni: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The client DNI already exists")
	}

	existing.FirstName = dto.FirstName
	existing.LastName = dto.LastName
	existing.Dni = dto.Dni

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	out := toDTO(*existing)
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetAny(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.NotFound("The client does not exist")
		}
		return fmt.Errorf("get client: %w", err)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DTO, error) {
	c, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound("The client does not exist")
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	if c.Deleted {
		return nil, httpx.NotFound("The client does not exist")
	}
	out := toDTO(*c)
	return &out, nil
}

func (s *Service) List(ctx context.Context) ([]DTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return toDTOs(items), nil
}

// GetAny exposes the raw row lookup used by the sale workflow to resolve its
// optional client reference.
func (s *Service) GetAny(ctx context.Context, id int64) (*Client, error) {
	return s.repo.GetAny(ctx, id)
}
