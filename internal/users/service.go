package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
)

// Service implements the user use cases.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, dto DTO) (*DTO, error) {
	exists, err := s.repo.ExistsByUserName(ctx, dto.UserName, 0)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The user username already exists")
	}
	exists, err = s.repo.ExistsByEmail(ctx, dto.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The user email already exists")
	}
	exists, err = s.repo.ExistsByPhoneNumber(ctx, dto.PhoneNumber, 0)
	if err != nil {
		return nil, fmt.Errorf("check phone number: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The user phone number already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		UserName:     dto.UserName,
		PasswordHash: string(hash),
		PhoneNumber:  dto.PhoneNumber,
		Email:        dto.Email,
		Type:         dto.Type,
		Enabled:      dto.Enabled,
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	out := toDTO(u)
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto DTO) (*DTO, error) {
	existing, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(fmt.Sprintf("The user with id %d does not exist.", id))
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	exists, err := s.repo.ExistsByUserName(ctx, dto.UserName, id)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The user UserName already exists")
	}
	exists, err = s.repo.ExistsByEmail(ctx, dto.Email, id)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The user Email already exists")
	}
	exists, err = s.repo.ExistsByPhoneNumber(ctx, dto.PhoneNumber, id)
	if err != nil {
		return nil, fmt.Errorf("check phone number: %w", err)
	}
	if exists {
		return nil, httpx.Validation("The user PhoneNumber already exists")
	}

	existing.FirstName = dto.FirstName
	existing.LastName = dto.LastName
	existing.UserName = dto.UserName
	existing.PhoneNumber = dto.PhoneNumber
	existing.Email = dto.Email
	existing.Type = dto.Type
	existing.Enabled = dto.Enabled
	if dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	out := toDTO(*existing)
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetAny(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.NotFound(fmt.Sprintf("The user with id %d does not exist.", id))
		}
		return fmt.Errorf("get user: %w", err)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DTO, error) {
	u, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(fmt.Sprintf("The user with id %d does not exist.", id))
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.Deleted {
		return nil, httpx.NotFound(fmt.Sprintf("The user with id %d does not exist.", id))
	}
	out := toDTO(*u)
	return &out, nil
}

func (s *Service) List(ctx context.Context) ([]DTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return toDTOs(items), nil
}

// GetAny exposes the raw row lookup used by the sale workflow to resolve its
// user reference.
func (s *Service) GetAny(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetAny(ctx, id)
}
