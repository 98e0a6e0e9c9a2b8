package suppliers

import "errors"

// ErrNotFound indicates the supplier row does not exist at all.
var ErrNotFound = errors.New("record not found")

// Supplier sources products. Email and phone number are unique.
type Supplier struct {
	ID          int64
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
	Company     string
	Deleted     bool
}
