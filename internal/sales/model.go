package sales

import (
	"errors"
	"time"

	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
	"github.com/almacen-erp/almacen-erp/internal/products"
)

// ErrNotFound indicates the sale row does not exist at all.
var ErrNotFound = errors.New("record not found")

// ErrInsufficientStock is raised both by the validation pass and by the
// conditional stock decrement when a concurrent sale won the race.
var ErrInsufficientStock = httpx.Validation("The product in sale details does not have enough stock")

// Sale is the aggregate root: a header plus its ordered line items. Line
// items have no lifecycle of their own.
type Sale struct {
	ID         int64
	SaleDate   time.Time
	TotalPrice float64
	UserID     int64
	ClientID   *int64
	Deleted    bool
	Details    []SaleDetail
}

// SaleDetail is one product+quantity entry within a sale. Product carries
// the resolved product row for the external representation.
type SaleDetail struct {
	ID        int64
	SaleID    int64
	Amount    int
	ProductID int64
	Deleted   bool

	Product *products.Product
}
