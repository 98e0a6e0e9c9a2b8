package clients

import "errors"

// ErrNotFound indicates the client row does not exist at all.
var ErrNotFound = errors.New("record not found")

// Client is a buyer identified by a unique DNI.
type Client struct {
	ID        int64
	FirstName string
	LastName  string
	Dni       string
	Deleted   bool
}
