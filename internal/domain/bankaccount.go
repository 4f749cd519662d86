package domain

import "time"

// BankAccount is a withdrawal destination owned by a user.
type BankAccount struct {
	ID            string
	UserID        string
	BankName      string
	AccountHolder string
	IBAN          string
	CreatedAt     time.Time
}
