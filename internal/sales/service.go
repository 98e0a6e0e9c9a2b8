package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/almacen-erp/almacen-erp/internal/clients"
	"github.com/almacen-erp/almacen-erp/internal/observability"
	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
	"github.com/almacen-erp/almacen-erp/internal/products"
	"github.com/almacen-erp/almacen-erp/internal/users"
)

// ProductStore resolves the products referenced by the line items.
type ProductStore interface {
	GetAny(ctx context.Context, id int64) (*products.Product, error)
}

// UserStore resolves the selling user.
type UserStore interface {
	GetAny(ctx context.Context, id int64) (*users.User, error)
}

// ClientStore resolves the optional buying client.
type ClientStore interface {
	GetAny(ctx context.Context, id int64) (*clients.Client, error)
}

// Notifier enqueues follow-up work for products a sale pushed below the
// low-stock threshold. Delivery is best effort.
type Notifier interface {
	NotifyLowStock(ctx context.Context, productID int64) error
}

// Service implements the sale use cases.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	products ProductStore
	users    UserStore
	clients  ClientStore
	metrics  *observability.Metrics
	notifier Notifier

	lowStockThreshold int
	now               func() time.Time
}

// NewService builds Service. metrics and notifier may be nil.
func NewService(logger *slog.Logger, repo Repository, productStore ProductStore, userStore UserStore, clientStore ClientStore, metrics *observability.Metrics, notifier Notifier, lowStockThreshold int) *Service {
	return &Service{
		logger:            logger,
		repo:              repo,
		products:          productStore,
		users:             userStore,
		clients:           clientStore,
		metrics:           metrics,
		notifier:          notifier,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// Create validates the request, resolves its references, and persists the
// sale together with the stock decrements in a single transaction. Either
// everything lands or nothing does.
func (s *Service) Create(ctx context.Context, dto DTO) (*DTO, error) {
	if len(dto.SaleDetail) == 0 {
		return nil, httpx.Validation("The sale or its details cannot be null or empty")
	}
	if dto.UserID == 0 {
		return nil, httpx.Validation("The user id is required.")
	}

	resolved := make([]*products.Product, 0, len(dto.SaleDetail))
	for _, line := range dto.SaleDetail {
		if line.Amount <= 0 {
			return nil, httpx.Validation("The amount in sale details must be greater than 0")
		}
		p, err := s.products.GetAny(ctx, line.Product.ID)
		if err != nil {
			if errors.Is(err, products.ErrNotFound) {
				return nil, httpx.NotFound(fmt.Sprintf("The product with id %d does not exist.", line.Product.ID))
			}
			return nil, fmt.Errorf("resolve product: %w", err)
		}
		if p.Stock < line.Amount {
			s.metrics.InsufficientStock()
			return nil, ErrInsufficientStock
		}
		resolved = append(resolved, p)
	}

	if _, err := s.users.GetAny(ctx, dto.UserID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, httpx.NotFound("User not found")
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	// A dangling client reference does not block the sale. The sale is simply
	// recorded without a client.
	clientID := dto.ClientID
	if clientID != nil {
		if _, err := s.clients.GetAny(ctx, *clientID); err != nil {
			if errors.Is(err, clients.ErrNotFound) {
				clientID = nil
			} else {
				return nil, fmt.Errorf("resolve client: %w", err)
			}
		}
	}

	lines := make([]PricedLine, 0, len(dto.SaleDetail))
	for i, line := range dto.SaleDetail {
		lines = append(lines, PricedLine{Amount: line.Amount, UnitPrice: resolved[i].Price})
	}

	sale := Sale{
		SaleDate:   s.now(),
		TotalPrice: TotalPrice(lines),
		UserID:     dto.UserID,
		ClientID:   clientID,
	}
	for i, line := range dto.SaleDetail {
		sale.Details = append(sale.Details, SaleDetail{
			Amount:    line.Amount,
			ProductID: resolved[i].ID,
		})
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		saleID, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		sale.ID = saleID
		for i := range sale.Details {
			sale.Details[i].SaleID = saleID
			detailID, err := tx.InsertDetail(ctx, sale.Details[i])
			if err != nil {
				return fmt.Errorf("insert sale detail: %w", err)
			}
			sale.Details[i].ID = detailID
			if err := tx.DecrementStock(ctx, sale.Details[i].ProductID, sale.Details[i].Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, httpx.ErrValidation) {
			// Lost the race with a concurrent sale for the same stock.
			s.metrics.InsufficientStock()
			return nil, err
		}
		return nil, fmt.Errorf("create sale: %w", err)
	}
	s.metrics.SaleCreated(len(sale.Details))

	for i := range sale.Details {
		remaining := resolved[i].Stock - sale.Details[i].Amount
		snapshot := *resolved[i]
		snapshot.Stock = remaining
		sale.Details[i].Product = &snapshot

		if s.notifier != nil && remaining <= s.lowStockThreshold {
			if err := s.notifier.NotifyLowStock(ctx, snapshot.ID); err != nil {
				s.logger.Warn("low stock notification failed",
					slog.Int64("product_id", snapshot.ID), slog.Any("error", err))
			}
		}
	}

	out := toDTO(sale)
	return &out, nil
}

// Delete soft-deletes the sale. Stock is never restored; the sale happened.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetAny(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.NotFound(fmt.Sprintf("The sale with id %d does not exist.", id))
		}
		return fmt.Errorf("get sale: %w", err)
	}
	if err := s.repo.SetDeleted(ctx, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DTO, error) {
	sale, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(fmt.Sprintf("The sale with id %d does not exist.", id))
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if sale.Deleted {
		return nil, httpx.NotFound(fmt.Sprintf("The sale with id %d does not exist.", id))
	}
	out := toDTO(*sale)
	return &out, nil
}

func (s *Service) List(ctx context.Context) ([]DTO, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return toDTOs(items), nil
}

func (s *Service) ListByClient(ctx context.Context, clientID int64) ([]DTO, error) {
	items, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list sales by client: %w", err)
	}
	return toDTOs(items), nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]DTO, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sales by user: %w", err)
	}
	return toDTOs(items), nil
}

func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]DTO, error) {
	items, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list sales by product: %w", err)
	}
	return toDTOs(items), nil
}

func (s *Service) ListByMonth(ctx context.Context, month int) ([]DTO, error) {
	if month < 1 || month > 12 {
		return nil, httpx.Validation("Invalid month number. The month number must be between 1 and 12")
	}
	items, err := s.repo.ListByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list sales by month: %w", err)
	}
	return toDTOs(items), nil
}

func (s *Service) ListByYear(ctx context.Context, year int) ([]DTO, error) {
	if year < 2020 || year > 9999 {
		return nil, httpx.Validation("The year must be in a valid range (2020-9999)")
	}
	items, err := s.repo.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list sales by year: %w", err)
	}
	return toDTOs(items), nil
}

func (s *Service) ListBetween(ctx context.Context, startDate, endDate string) ([]DTO, error) {
	start, err := ParseSaleDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseSaleDate(endDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, httpx.IllegalArgument("The start date cannot be later than the end date.")
	}
	items, err := s.repo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list sales between dates: %w", err)
	}
	return toDTOs(items), nil
}
