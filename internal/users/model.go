package users

import "errors"

// ErrNotFound indicates the user row does not exist at all.
var ErrNotFound = errors.New("record not found")

// User is an operator of the system. Passwords are stored as bcrypt hashes.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	UserName     string
	PasswordHash string
	PhoneNumber  string
	Email        string
	Type         string
	Enabled      bool
	Deleted      bool
}
