package products

import "errors"

// ErrNotFound indicates the product row does not exist at all.
var ErrNotFound = errors.New("record not found")

// Product is a sellable item. Stock is mutated only by the sale workflow.
type Product struct {
	ID          int64
	Number      string
	Name        string
	Stock       int
	BarCode     string
	Price       float64
	Description string
	Category    string
	Image       string
	UserID      int64
	SupplierID  *int64
	Deleted     bool
}
